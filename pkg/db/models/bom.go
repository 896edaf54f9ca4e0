package models

import (
	"time"

	"github.com/google/uuid"
)

// Bom is a stored bill of materials. Project and entries are kept as JSON
// documents; only the name is queried on its own.
type Bom struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      *string    `gorm:"column:name"`
	InfoLine  string     `gorm:"column:info_line;not null;default:''"`
	Project   BomProject `gorm:"column:project;type:jsonb;serializer:json;not null"`
	Rows      []BomRow   `gorm:"column:entries;type:jsonb;serializer:json;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type BomProject struct {
	Name        *string `json:"name,omitempty"`
	AuthorNames *string `json:"author_names,omitempty"`
	Comments    string  `json:"comments"`
}

type BomRow struct {
	Qty                    int         `json:"qty"`
	Value                  *string     `json:"value,omitempty"`
	Device                 string      `json:"device"`
	Parts                  []string    `json:"parts"`
	Description            *string     `json:"description,omitempty"`
	Manufacturer           *string     `json:"manufacturer,omitempty"`
	Comments               string      `json:"comments"`
	InventoryItemIDs       []uuid.UUID `json:"inventory_item_mapping_ids"`
	Package                string      `json:"package,omitempty"`
	Category               *string     `json:"category,omitempty"`
	ManufacturerPartNumber *string     `json:"manufacturer_part_number,omitempty"`
	MPN                    *string     `json:"mpn,omitempty"`
}
