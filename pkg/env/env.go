package env

import (
	"os"
	"strings"

	"github.com/angelmondragon/partsbin-backend/pkg/config"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Bool reads key with config.ParseBool. Unset or unparsable values yield the
// fallback.
func Bool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := config.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
