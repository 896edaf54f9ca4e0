package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/partsbin-backend/pkg/db"
	"github.com/angelmondragon/partsbin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

// Repository is the gorm-backed Store.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) Create(ctx context.Context, item NewItem) (uuid.UUID, error) {
	if item.AvailableQuantity < 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "available quantity cannot be negative")
	}
	if v := normalizeVendorNumber(item.VendorPartNumber); v != nil {
		existing, err := r.FindByVendorNumber(ctx, *v)
		if err != nil {
			return uuid.Nil, err
		}
		if existing != nil {
			return uuid.Nil, NewDuplicateVendorNumberError(*v, existing.ID, nil)
		}
	}

	id := uuid.New()
	row := toModel(id, item)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Slots").Create(&row).Error; err != nil {
			return err
		}
		if slots := slotRows(id, item.SlotIDs); len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if row.VendorPartNumber != nil && db.IsUniqueViolation(err, "") {
			return uuid.Nil, r.duplicateFor(ctx, *row.VendorPartNumber, nil, err)
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory item")
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	var row models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Slots").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("item %s not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
	}
	item := fromModel(row)
	return &item, nil
}

// Replace overwrites every field of an existing item, including its slot
// assignments.
func (r *Repository) Replace(ctx context.Context, item Item) error {
	if item.AvailableQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "available quantity cannot be negative")
	}
	if err := r.ensureExists(ctx, item.ID); err != nil {
		return err
	}
	if v := normalizeVendorNumber(item.VendorPartNumber); v != nil {
		owner, err := r.FindByVendorNumber(ctx, *v)
		if err != nil {
			return err
		}
		if owner != nil && owner.ID != item.ID {
			newID := item.ID
			return NewDuplicateVendorNumberError(*v, owner.ID, &newID)
		}
	}

	row := toModel(item.ID, item.NewItem)
	row.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InventoryItem{}).
			Where("id = ?", item.ID).
			Select("*").
			Omit("id", "created_at", "Slots").
			Updates(&row)
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.InventoryItemSlot{}).Error; err != nil {
			return err
		}
		if slots := slotRows(item.ID, item.SlotIDs); len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if row.VendorPartNumber != nil && db.IsUniqueViolation(err, "") {
			newID := item.ID
			return r.duplicateFor(ctx, *row.VendorPartNumber, &newID, err)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace inventory item")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.InventoryItemSlot{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.InventoryItem{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory item")
	}
	if affected == 0 {
		return NotFound("item %s not found", id)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]Item, error) {
	var rows []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Preload("Slots").
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory items")
	}
	return fromModels(rows), nil
}

func (r *Repository) FindByVendorNumber(ctx context.Context, vendorPartNumber string) (*Item, error) {
	if vendorPartNumber == "" {
		return nil, nil
	}
	var row models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Slots").
		Where("vendor_part_number = ?", vendorPartNumber).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find by vendor part number")
	}
	item := fromModel(row)
	return &item, nil
}

// FindByManufacturerPartNumbers returns the items whose manufacturer part
// number is exactly one of mpns. Blank entries are ignored.
func (r *Repository) FindByManufacturerPartNumbers(ctx context.Context, mpns []string) ([]Item, error) {
	wanted := make([]string, 0, len(mpns))
	for _, mpn := range mpns {
		if mpn = strings.TrimSpace(mpn); mpn != "" {
			wanted = append(wanted, mpn)
		}
	}
	if len(wanted) == 0 {
		return []Item{}, nil
	}
	var rows []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Preload("Slots").
		Where("manufacturer_part_number IN ?", wanted).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find by manufacturer part number")
	}
	return fromModels(rows), nil
}

func (r *Repository) FindBySlot(ctx context.Context, slotID int) ([]Item, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Slots").
		Where("id IN (?)", r.db.Model(&models.InventoryItemSlot{}).Select("item_id").Where("slot_id = ?", slotID)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find by slot")
	}
	if len(rows) == 0 {
		return nil, NotFound("no items found in slot %d", slotID)
	}
	return fromModels(rows), nil
}

func (r *Repository) SlotsOf(ctx context.Context, id uuid.UUID) ([]int, error) {
	if err := r.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	var slots []int
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItemSlot{}).
		Where("item_id = ?", id).
		Order("slot_id ASC").
		Pluck("slot_id", &slots).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list item slots")
	}
	if slots == nil {
		slots = []int{}
	}
	return slots, nil
}

func (r *Repository) AddToSlot(ctx context.Context, id uuid.UUID, slotID int) error {
	if slotID < 0 {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid slot id %d", slotID)
	}
	if err := r.ensureExists(ctx, id); err != nil {
		return err
	}
	row := models.InventoryItemSlot{ItemID: id, SlotID: slotID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: assign slot")
	}
	return r.touch(ctx, id)
}

func (r *Repository) RemoveFromSlot(ctx context.Context, id uuid.UUID, slotID int) error {
	if err := r.ensureExists(ctx, id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Where("item_id = ? AND slot_id = ?", id, slotID).
		Delete(&models.InventoryItemSlot{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: unassign slot")
	}
	if res.RowsAffected == 0 {
		return NotFound("item %s is not in slot %d", id, slotID)
	}
	return r.touch(ctx, id)
}

func (r *Repository) SetComments(ctx context.Context, id uuid.UUID, comments string) error {
	return r.updateColumn(ctx, id, "comments", comments)
}

func (r *Repository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "available quantity cannot be negative")
	}
	return r.updateColumn(ctx, id, "available_quantity", quantity)
}

func (r *Repository) SetProductDetails(ctx context.Context, id uuid.UUID, details *ProductDetails) error {
	row := models.InventoryItem{ProductDetails: toDetailsRecord(details), UpdatedAt: time.Now().UTC()}
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Select("product_details", "updated_at").
		Updates(&row)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: update product details")
	}
	if res.RowsAffected == 0 {
		return NotFound("item %s not found", id)
	}
	return nil
}

func (r *Repository) updateColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, fmt.Sprintf("db: update %s", column))
	}
	if res.RowsAffected == 0 {
		return NotFound("item %s not found", id)
	}
	return nil
}

func (r *Repository) touch(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: touch inventory item")
	}
	return nil
}

func (r *Repository) ensureExists(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check inventory item")
	}
	if count == 0 {
		return NotFound("item %s not found", id)
	}
	return nil
}

// duplicateFor resolves the owner of a vendor number after the unique index
// rejected a write.
func (r *Repository) duplicateFor(ctx context.Context, vendorPartNumber string, newID *uuid.UUID, cause error) error {
	owner, err := r.FindByVendorNumber(ctx, vendorPartNumber)
	if err != nil || owner == nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, "vendor part number already exists")
	}
	return NewDuplicateVendorNumberError(vendorPartNumber, owner.ID, newID)
}

func fromModels(rows []models.InventoryItem) []Item {
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromModel(row))
	}
	return items
}
