package digikey

import (
	"sort"
	"strings"
)

// ProductBarcodeResponse is the Barcoding v3 answer for a 1D product label.
type ProductBarcodeResponse struct {
	DigiKeyPartNumber      string  `json:"DigiKeyPartNumber"`
	ManufacturerPartNumber *string `json:"ManufacturerPartNumber"`
	ManufacturerName       *string `json:"ManufacturerName"`
	ProductDescription     string  `json:"ProductDescription"`
	Quantity               int     `json:"Quantity"`
}

func (r *ProductBarcodeResponse) validate() error {
	return requireFields(map[string]bool{
		"DigiKeyPartNumber": strings.TrimSpace(r.DigiKeyPartNumber) != "",
		"Quantity":          r.Quantity >= 0,
	})
}

// Product2DBarcodeResponse is the Barcoding v3 answer for a 2D (data matrix)
// product label. It carries the order identifiers printed on the bag.
type Product2DBarcodeResponse struct {
	DigiKeyPartNumber      string  `json:"DigiKeyPartNumber"`
	ManufacturerPartNumber *string `json:"ManufacturerPartNumber"`
	ManufacturerName       *string `json:"ManufacturerName"`
	ProductDescription     *string `json:"ProductDescription"`
	Quantity               int     `json:"Quantity"`
	SalesorderID           *int64  `json:"SalesorderId"`
	InvoiceID              *int64  `json:"InvoiceId"`
	CountryOfOrigin        *string `json:"CountryOfOrigin"`
	LotCode                *string `json:"LotCode"`
}

func (r *Product2DBarcodeResponse) validate() error {
	return requireFields(map[string]bool{
		"DigiKeyPartNumber": strings.TrimSpace(r.DigiKeyPartNumber) != "",
		"Quantity":          r.Quantity >= 0,
	})
}

// PackListDetail is one line of a pack list.
type PackListDetail struct {
	DigiKeyPartNumber string `json:"DigiKeyPartNumber"`
	Quantity          int    `json:"Quantity"`
}

// PackListBarcodeResponse is the Barcoding v3 answer for a pack list label.
type PackListBarcodeResponse struct {
	SalesorderID    *int64           `json:"SalesorderId"`
	InvoiceID       *int64           `json:"InvoiceId"`
	PackListDetails []PackListDetail `json:"PackListDetails"`
}

func (r *PackListBarcodeResponse) validate() error {
	fields := map[string]bool{"PackListDetails": r.PackListDetails != nil}
	for _, line := range r.PackListDetails {
		if strings.TrimSpace(line.DigiKeyPartNumber) == "" {
			fields["PackListDetails.DigiKeyPartNumber"] = false
		}
		if line.Quantity < 0 {
			fields["PackListDetails.Quantity"] = false
		}
	}
	return requireFields(fields)
}

// ProductDetails is the products/v4 productdetails envelope.
type ProductDetails struct {
	Product *Product `json:"Product"`
}

func (r *ProductDetails) validate() error {
	return requireFields(map[string]bool{"Product": r.Product != nil})
}

// Product is the subset of the v4 product search model the inventory uses.
type Product struct {
	Description               *Description     `json:"Description"`
	Manufacturer              *Manufacturer    `json:"Manufacturer"`
	ManufacturerProductNumber *string          `json:"ManufacturerProductNumber"`
	ProductURL                *string          `json:"ProductUrl"`
	DatasheetURL              *string          `json:"DatasheetUrl"`
	PhotoURL                  *string          `json:"PhotoUrl"`
	QuantityAvailable         *int64           `json:"QuantityAvailable"`
	ProductStatus             *ProductStatus   `json:"ProductStatus"`
	Discontinued              *bool            `json:"Discontinued"`
	EndOfLife                 *bool            `json:"EndOfLife"`
	NormallyStocking          *bool            `json:"NormallyStocking"`
	Classifications           *Classifications `json:"Classifications"`
}

type Description struct {
	ProductDescription  *string `json:"ProductDescription"`
	DetailedDescription *string `json:"DetailedDescription"`
}

type Manufacturer struct {
	ID   *int64  `json:"Id"`
	Name *string `json:"Name"`
}

type ProductStatus struct {
	ID     *int64 `json:"Id"`
	Status string `json:"Status"`
}

type Classifications struct {
	ReachStatus              *string `json:"ReachStatus"`
	RohsStatus               *string `json:"RohsStatus"`
	MoistureSensitivityLevel *string `json:"MoistureSensitivityLevel"`
	ExportControlClassNumber *string `json:"ExportControlClassNumber"`
	HtsusCode                *string `json:"HtsusCode"`
}

func requireFields(fields map[string]bool) error {
	var missing []string
	for name, ok := range fields {
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &validationError{fields: missing}
}

type validationError struct {
	fields []string
}

func (e *validationError) Error() string {
	return "invalid fields: " + strings.Join(e.fields, ", ")
}
