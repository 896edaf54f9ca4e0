// Package metadata stores small JSON documents under well-known keys.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/partsbin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

// Repository is a gorm-backed key/value store of JSON documents.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// Load returns the raw document stored under key. The boolean is false when
// the key is absent.
func (r *Repository) Load(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var row models.MetadataEntry
	err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load metadata")
	}
	return json.RawMessage(row.Value), true, nil
}

// Get decodes the document stored under key into dst.
func (r *Repository) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := r.Load(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, pkgerrors.Wrapf(pkgerrors.CodeInternal, err, "decode metadata %s", key)
	}
	return true, nil
}

// Save upserts value as JSON under key.
func (r *Repository) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrapf(pkgerrors.CodeValidation, err, "encode metadata %s", key)
	}
	row := models.MetadataEntry{Key: key, Value: string(raw), UpdatedAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save metadata")
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&models.MetadataEntry{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete metadata")
	}
	return nil
}
