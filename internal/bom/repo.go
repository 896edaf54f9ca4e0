package bom

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/partsbin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

// Repository keeps BOMs in the boms table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func notFound(id uuid.UUID) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "bom %s not found", id)
}

func (r *Repository) List(ctx context.Context) ([]Bom, error) {
	var rows []models.Bom
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list boms")
	}
	out := make([]Bom, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Bom, error) {
	var row models.Bom
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load bom")
	}
	b := fromModel(row)
	return &b, nil
}

func (r *Repository) Create(ctx context.Context, b NewBom) (uuid.UUID, error) {
	id := uuid.New()
	row := toModel(id, b)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert bom")
	}
	return id, nil
}

// Replace overwrites a stored BOM. Missing ids are NOT_FOUND rather than
// being created.
func (r *Repository) Replace(ctx context.Context, b Bom) error {
	row := toModel(b.ID, b.NewBom)
	row.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Bom{}).
		Where("id = ?", b.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: replace bom")
	}
	if res.RowsAffected == 0 {
		return notFound(b.ID)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Bom{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: delete bom")
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}
