package inventory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/pkg/db/models"
	"github.com/angelmondragon/partsbin-backend/pkg/types"
)

func toModel(id uuid.UUID, item NewItem) models.InventoryItem {
	row := models.InventoryItem{
		ID:                       id,
		AvailableQuantity:        item.AvailableQuantity,
		Description:              item.Description,
		IsDescriptionPlaceholder: item.IsDescriptionPlaceholder,
		Orders:                   toOrderRecords(item.Orders),
		Barcodes1D:               types.NewStringSet(item.Barcodes1D...),
		Barcodes2D:               types.NewStringSet(item.Barcodes2D...),
		Comments:                 item.Comments,
		VendorPartNumber:         normalizeVendorNumber(item.VendorPartNumber),
		ManufacturerName:         item.ManufacturerName,
		ManufacturerPartNumber:   item.ManufacturerPartNumber,
		ProductDetails:           toDetailsRecord(item.ProductDetails),
	}
	return row
}

func slotRows(id uuid.UUID, slotIDs []int) []models.InventoryItemSlot {
	slots := sortedInts(slotIDs)
	rows := make([]models.InventoryItemSlot, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, models.InventoryItemSlot{ItemID: id, SlotID: slot})
	}
	return rows
}

func fromModel(row models.InventoryItem) Item {
	slots := make([]int, 0, len(row.Slots))
	for _, s := range row.Slots {
		slots = append(slots, s.SlotID)
	}
	sort.Ints(slots)
	return Item{
		ID: row.ID,
		NewItem: NewItem{
			AvailableQuantity:        row.AvailableQuantity,
			Description:              row.Description,
			IsDescriptionPlaceholder: row.IsDescriptionPlaceholder,
			SlotIDs:                  slots,
			Orders:                   fromOrderRecords(row.Orders),
			Barcodes1D:               []string(types.NewStringSet(row.Barcodes1D...)),
			Barcodes2D:               []string(types.NewStringSet(row.Barcodes2D...)),
			Comments:                 row.Comments,
			VendorPartNumber:         row.VendorPartNumber,
			ManufacturerName:         row.ManufacturerName,
			ManufacturerPartNumber:   row.ManufacturerPartNumber,
			ProductDetails:           fromDetailsRecord(row.ProductDetails),
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toOrderRecords(orders []OrderInfo) types.OrderRecords {
	out := make(types.OrderRecords, 0, len(orders))
	for _, o := range orders {
		out = append(out, types.OrderRecord{
			Description:     o.Description,
			Quantity:        o.Quantity,
			SalesOrderID:    o.SalesOrderID,
			InvoiceID:       o.InvoiceID,
			CountryOfOrigin: o.CountryOfOrigin,
			LotCode:         o.LotCode,
			Conflicts:       o.Conflicts,
		})
	}
	return out
}

func fromOrderRecords(records types.OrderRecords) []OrderInfo {
	out := make([]OrderInfo, 0, len(records))
	for _, r := range records {
		out = append(out, OrderInfo{
			Description:     r.Description,
			Quantity:        r.Quantity,
			SalesOrderID:    r.SalesOrderID,
			InvoiceID:       r.InvoiceID,
			CountryOfOrigin: r.CountryOfOrigin,
			LotCode:         r.LotCode,
			Conflicts:       r.Conflicts,
		})
	}
	return out
}

func toDetailsRecord(d *ProductDetails) *types.ProductDetailsRecord {
	if d == nil {
		return nil
	}
	return &types.ProductDetailsRecord{
		ProductURL:          d.ProductURL,
		DatasheetURL:        d.DatasheetURL,
		ImageURL:            d.ImageURL,
		DetailedDescription: d.DetailedDescription,
		Warnings:            cloneStrings(d.Warnings),
	}
}

func fromDetailsRecord(r *types.ProductDetailsRecord) *ProductDetails {
	if r == nil {
		return nil
	}
	return &ProductDetails{
		ProductURL:          r.ProductURL,
		DatasheetURL:        r.DatasheetURL,
		ImageURL:            r.ImageURL,
		DetailedDescription: r.DetailedDescription,
		Warnings:            cloneStrings(r.Warnings),
	}
}

// normalizeVendorNumber maps an empty vendor number to nil so the unique index
// only covers real part numbers.
func normalizeVendorNumber(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
