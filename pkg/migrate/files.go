package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var (
	migrationNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	unsafeNameRe    = regexp.MustCompile(`[^a-z0-9_]+`)
)

// File is one goose SQL migration.
type File struct {
	Version int64
	Name    string
	Path    string
}

// sourceFS resolves dir to the embedded migrations or the local filesystem.
func sourceFS(dir string) (fs.FS, string) {
	if dir == EmbeddedDir {
		return embedded, EmbeddedDir
	}
	return os.DirFS(dir), "."
}

// List returns the migrations in dir ordered by version. Files that are not
// named YYYYMMDDHHMMSS_name.sql are an error.
func List(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	fsys, root := sourceFS(dir)
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m := migrationNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", e.Name())
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse version of %q: %w", e.Name(), err)
		}
		files = append(files, File{Version: version, Name: m[2], Path: pathJoin(root, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks filenames, version uniqueness and that every migration
// has both directions with balanced statement blocks.
func ValidateDir(dir string) error {
	files, err := List(dir)
	if err != nil {
		return err
	}
	fsys, _ := sourceFS(dir)

	for i, f := range files {
		if i > 0 && files[i-1].Version == f.Version {
			return fmt.Errorf("duplicate migration version %d in %q and %q", f.Version, files[i-1].Path, f.Path)
		}
		raw, err := fs.ReadFile(fsys, f.Path)
		if err != nil {
			return fmt.Errorf("read file %q: %w", f.Path, err)
		}
		if err := checkBody(string(raw)); err != nil {
			return fmt.Errorf("migration %q: %w", f.Path, err)
		}
	}
	return nil
}

func checkBody(body string) error {
	up := strings.Index(body, "-- +goose Up")
	down := strings.Index(body, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("missing \"-- +goose Up\"")
	case down < 0:
		return fmt.Errorf("missing \"-- +goose Down\"")
	case down < up:
		return fmt.Errorf("\"-- +goose Down\" precedes \"-- +goose Up\"")
	}
	begins := strings.Count(body, "-- +goose StatementBegin")
	ends := strings.Count(body, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("%d StatementBegin markers but %d StatementEnd", begins, ends)
	}
	return nil
}

// CreateSQLMigration writes an empty migration named after name into dir.
// The version is the current UTC time, bumped past the newest existing
// migration when the clock is behind it.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	existing, err := List(dir)
	if err != nil {
		return "", err
	}
	version, _ := strconv.ParseInt(now.UTC().Format(versionLayout), 10, 64)
	if n := len(existing); n > 0 && existing[n-1].Version >= version {
		version = existing[n-1].Version + 1
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%d_%s.sql", version, safe))
	body := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`, safe)

	f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", fullpath, err)
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, f.Close()
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = unsafeNameRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func pathJoin(root, name string) string {
	if root == "." {
		return name
	}
	return root + "/" + name
}
