// Package bom stores bills of materials and matches their entries against
// the inventory.
package bom

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// FusionEntry holds the columns a Fusion 360 BOM export adds to a row.
type FusionEntry struct {
	Package                string  `json:"package"`
	Category               *string `json:"category,omitempty"`
	ManufacturerPartNumber *string `json:"manufacturer_part_number,omitempty"`
	MPN                    *string `json:"mpn,omitempty"`
}

// Entry is one BOM row: a device used Qty times under the listed part
// designators, plus the inventory items it has been mapped to.
type Entry struct {
	Qty              int          `json:"qty" validate:"gte=0"`
	Value            *string      `json:"value,omitempty"`
	Device           string       `json:"device"`
	Parts            []string     `json:"parts"`
	Description      *string      `json:"description,omitempty"`
	Manufacturer     *string      `json:"manufacturer,omitempty"`
	Comments         string       `json:"comments"`
	InventoryItemIDs []uuid.UUID  `json:"inventory_item_mapping_ids"`
	Fusion360        *FusionEntry `json:"fusion360_ext,omitempty"`
}

type ProjectInfo struct {
	Name        *string `json:"name,omitempty"`
	AuthorNames *string `json:"author_names,omitempty"`
	Comments    string  `json:"comments"`
}

type NewBom struct {
	Name     *string     `json:"name,omitempty"`
	InfoLine string      `json:"info_line"`
	Project  ProjectInfo `json:"project"`
	Rows     []Entry     `json:"rows" validate:"dive"`
}

type Bom struct {
	ID uuid.UUID `json:"id"`
	NewBom
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// manufacturerPartNumbers returns the distinct non-blank part numbers the
// Fusion columns carry, in column order.
func (e Entry) manufacturerPartNumbers() []string {
	if e.Fusion360 == nil {
		return nil
	}
	var out []string
	for _, p := range []*string{e.Fusion360.ManufacturerPartNumber, e.Fusion360.MPN} {
		v := trimmed(p)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
