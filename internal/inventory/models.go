package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// OrderInfo describes one shipment of a part as recorded by the distributor.
// Nil fields are unknown and never conflict with anything.
type OrderInfo struct {
	Description     *string `json:"description"`
	Quantity        int     `json:"quantity" validate:"gt=0"`
	SalesOrderID    *int64  `json:"sales_order_id" validate:"omitempty,gt=0"`
	InvoiceID       *int64  `json:"invoice_id" validate:"omitempty,gt=0"`
	CountryOfOrigin *string `json:"country_of_origin"`
	LotCode         *string `json:"lot_code"`
	// Conflicts marks an entry that was appended next to a same-invoice entry
	// it disagreed with.
	Conflicts bool `json:"conflicts"`
}

// ProductDetails is the refined subset of distributor product data kept on an
// item. A nil Warnings slice means no warnings were computed.
type ProductDetails struct {
	ProductURL          *string  `json:"product_url"`
	DatasheetURL        *string  `json:"datasheet_url"`
	ImageURL            *string  `json:"image_url"`
	DetailedDescription *string  `json:"detailed_description"`
	Warnings            []string `json:"warnings"`
}

// Merge combines two detail records field by field. Non-empty incoming
// values win; the existing value is kept otherwise.
func (d *ProductDetails) Merge(incoming *ProductDetails) *ProductDetails {
	if d == nil {
		return incoming.clone()
	}
	if incoming == nil {
		return d.clone()
	}
	merged := &ProductDetails{
		ProductURL:          firstNonEmpty(incoming.ProductURL, d.ProductURL),
		DatasheetURL:        firstNonEmpty(incoming.DatasheetURL, d.DatasheetURL),
		ImageURL:            firstNonEmpty(incoming.ImageURL, d.ImageURL),
		DetailedDescription: firstNonEmpty(incoming.DetailedDescription, d.DetailedDescription),
		Warnings:            d.Warnings,
	}
	if len(incoming.Warnings) > 0 {
		merged.Warnings = incoming.Warnings
	}
	merged.Warnings = cloneStrings(merged.Warnings)
	return merged
}

func (d *ProductDetails) clone() *ProductDetails {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Warnings = cloneStrings(d.Warnings)
	return &cp
}

// NewItem is an inventory item that has not been stored yet.
type NewItem struct {
	AvailableQuantity        int             `json:"available_quantity"`
	Description              string          `json:"description"`
	IsDescriptionPlaceholder bool            `json:"is_description_placeholder"`
	SlotIDs                  []int           `json:"slot_ids"`
	Orders                   []OrderInfo     `json:"orders"`
	Barcodes1D               []string        `json:"barcodes_1d"`
	Barcodes2D               []string        `json:"barcodes_2d"`
	Comments                 string          `json:"comments"`
	VendorPartNumber         *string         `json:"vendor_part_number"`
	ManufacturerName         *string         `json:"manufacturer_name"`
	ManufacturerPartNumber   *string         `json:"manufacturer_part_number"`
	ProductDetails           *ProductDetails `json:"product_details"`
}

// Item is a stored inventory item.
type Item struct {
	ID uuid.UUID `json:"id"`
	NewItem
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportRecord is an incoming shipment before reconciliation. It is never
// persisted as-is.
type ImportRecord struct {
	Quantity                 int             `json:"quantity" validate:"gte=0"`
	Description              string          `json:"description"`
	IsDescriptionPlaceholder bool            `json:"is_description_placeholder"`
	Order                    *OrderInfo      `json:"order,omitempty" validate:"omitempty"`
	Barcode1D                *string         `json:"barcode_1d,omitempty"`
	Barcode2D                *string         `json:"barcode_2d,omitempty"`
	VendorPartNumber         *string         `json:"vendor_part_number,omitempty"`
	ManufacturerName         *string         `json:"manufacturer_name,omitempty"`
	ManufacturerPartNumber   *string         `json:"manufacturer_part_number,omitempty"`
	ProductDetails           *ProductDetails `json:"product_details,omitempty"`
}

// ToNewItem maps an import record onto a fresh item with no slots or comments.
func (r ImportRecord) ToNewItem() NewItem {
	item := NewItem{
		AvailableQuantity:        r.Quantity,
		Description:              r.Description,
		IsDescriptionPlaceholder: r.IsDescriptionPlaceholder,
		SlotIDs:                  []int{},
		Orders:                   []OrderInfo{},
		Barcodes1D:               UnionStrings(nil, r.Barcode1D),
		Barcodes2D:               UnionStrings(nil, r.Barcode2D),
		VendorPartNumber:         r.VendorPartNumber,
		ManufacturerName:         r.ManufacturerName,
		ManufacturerPartNumber:   r.ManufacturerPartNumber,
		ProductDetails:           r.ProductDetails.clone(),
	}
	if r.Order != nil {
		item.Orders = append(item.Orders, *r.Order)
	}
	return item
}

// HasVendorPartNumber reports whether the record can be matched to stock.
func (r ImportRecord) HasVendorPartNumber() bool {
	return r.VendorPartNumber != nil && *r.VendorPartNumber != ""
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// UnionStrings adds value to set, returning a sorted copy without duplicates.
func UnionStrings(set []string, value *string) []string {
	seen := make(map[string]struct{}, len(set)+1)
	out := make([]string, 0, len(set)+1)
	for _, s := range set {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if value != nil && *value != "" {
		if _, ok := seen[*value]; !ok {
			out = append(out, *value)
		}
	}
	sort.Strings(out)
	return out
}

func sortedInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
