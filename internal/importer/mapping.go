package importer

import (
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/digikey"
)

// FromProductBarcode maps a 1D label lookup. The vendor description is
// always real, and the order carries no identifiers.
func FromProductBarcode(resp digikey.ProductBarcodeResponse, barcode string) inventory.ImportRecord {
	description := resp.ProductDescription
	return inventory.ImportRecord{
		Quantity:    resp.Quantity,
		Description: description,
		Order: &inventory.OrderInfo{
			Description: optional(description),
			Quantity:    resp.Quantity,
		},
		Barcode1D:              optional(barcode),
		VendorPartNumber:       optional(resp.DigiKeyPartNumber),
		ManufacturerName:       resp.ManufacturerName,
		ManufacturerPartNumber: resp.ManufacturerPartNumber,
	}
}

// FromProduct2DBarcode maps a data matrix label lookup. Without a product
// description the part number stands in as a placeholder.
func FromProduct2DBarcode(resp digikey.Product2DBarcodeResponse, barcode string) inventory.ImportRecord {
	description := resp.DigiKeyPartNumber
	placeholder := true
	if resp.ProductDescription != nil {
		description = *resp.ProductDescription
		placeholder = false
	}
	return inventory.ImportRecord{
		Quantity:                 resp.Quantity,
		Description:              description,
		IsDescriptionPlaceholder: placeholder,
		Order: &inventory.OrderInfo{
			Description:     resp.ProductDescription,
			Quantity:        resp.Quantity,
			SalesOrderID:    resp.SalesorderID,
			InvoiceID:       resp.InvoiceID,
			CountryOfOrigin: resp.CountryOfOrigin,
			LotCode:         resp.LotCode,
		},
		Barcode2D:              optional(barcode),
		VendorPartNumber:       optional(resp.DigiKeyPartNumber),
		ManufacturerName:       resp.ManufacturerName,
		ManufacturerPartNumber: resp.ManufacturerPartNumber,
	}
}

// FromPackList maps every pack list line to its own record.
func FromPackList(resp digikey.PackListBarcodeResponse) []inventory.ImportRecord {
	records := make([]inventory.ImportRecord, 0, len(resp.PackListDetails))
	for _, line := range resp.PackListDetails {
		records = append(records, inventory.ImportRecord{
			Quantity:                 line.Quantity,
			Description:              line.DigiKeyPartNumber,
			IsDescriptionPlaceholder: true,
			Order: &inventory.OrderInfo{
				Quantity:     line.Quantity,
				SalesOrderID: resp.SalesorderID,
				InvoiceID:    resp.InvoiceID,
			},
			VendorPartNumber: optional(line.DigiKeyPartNumber),
		})
	}
	return records
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
