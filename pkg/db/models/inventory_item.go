package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/pkg/types"
)

// InventoryItem is one stocked part, keyed by id and optionally by the
// distributor's part number.
type InventoryItem struct {
	ID                       uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	AvailableQuantity        int                         `gorm:"column:available_quantity;not null;default:0"`
	Description              string                      `gorm:"column:description;not null;default:''"`
	IsDescriptionPlaceholder bool                        `gorm:"column:is_description_placeholder;not null;default:false"`
	Orders                   types.OrderRecords          `gorm:"column:orders;type:jsonb;not null"`
	Barcodes1D               types.StringSet             `gorm:"column:barcodes_1d;type:jsonb;not null"`
	Barcodes2D               types.StringSet             `gorm:"column:barcodes_2d;type:jsonb;not null"`
	Comments                 string                      `gorm:"column:comments;not null;default:''"`
	VendorPartNumber         *string                     `gorm:"column:vendor_part_number;uniqueIndex:ux_inventory_items_vendor_part_number"`
	ManufacturerName         *string                     `gorm:"column:manufacturer_name"`
	ManufacturerPartNumber   *string                     `gorm:"column:manufacturer_part_number;index:ix_inventory_items_manufacturer_part_number"`
	ProductDetails           *types.ProductDetailsRecord `gorm:"column:product_details;type:jsonb;serializer:json"`
	Slots                    []InventoryItemSlot         `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt                time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
