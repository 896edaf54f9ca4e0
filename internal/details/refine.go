// Package details turns raw DigiKey product data into the product details
// kept on an inventory item.
package details

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/digikey"
)

const lowStockThreshold = 1000

// Refine extracts URLs and the detailed description and computes the stock
// and compliance warnings. Warnings is never nil.
func Refine(p digikey.Product) inventory.ProductDetails {
	out := inventory.ProductDetails{
		ProductURL:   p.ProductURL,
		DatasheetURL: p.DatasheetURL,
		ImageURL:     p.PhotoURL,
		Warnings:     Warnings(p),
	}
	if p.Description != nil {
		out.DetailedDescription = p.Description.DetailedDescription
	}
	return out
}

// Warnings lists the human readable warnings for a product in a fixed order.
func Warnings(p digikey.Product) []string {
	warnings := []string{}

	if p.QuantityAvailable != nil {
		// The sold out branch can only fire if the threshold ever drops to 0.
		if *p.QuantityAvailable < lowStockThreshold {
			warnings = append(warnings, "Low stock")
		} else if *p.QuantityAvailable == 0 {
			warnings = append(warnings, "Sold out")
		}
	}

	if p.ProductStatus != nil && p.ProductStatus.Status != "Active" {
		warnings = append(warnings, "Product status: "+p.ProductStatus.Status)
	}
	if p.NormallyStocking != nil && !*p.NormallyStocking {
		warnings = append(warnings, "Not normally stocked")
	}
	if p.Discontinued != nil && *p.Discontinued {
		warnings = append(warnings, "Discontinued")
	}
	if p.EndOfLife != nil && *p.EndOfLife {
		warnings = append(warnings, "End of life")
	}

	if c := p.Classifications; c != nil {
		if w, ok := rohsWarning(c.RohsStatus); ok {
			warnings = append(warnings, w)
		}
		if w, ok := moistureWarning(c.MoistureSensitivityLevel); ok {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

func rohsWarning(status *string) (string, bool) {
	if status == nil {
		return "No RoHS status", true
	}
	switch *status {
	case "RoHS Compliant", "Not Applicable", "ROHS3 Compliant":
		return "", false
	case "RoHS non-compliant":
		return "Not RoHS compliant", true
	case "RoHS Compliant By Exemption":
		return "RoHS compliant by exemption", true
	default:
		return "RoHS status: " + *status, true
	}
}

// moistureWarning reads values such as "3  (168 Hours)". Levels 0 and 1 are
// unlimited floor life and need no warning.
func moistureWarning(msl *string) (string, bool) {
	if msl == nil || strings.EqualFold(*msl, "not applicable") {
		return "", false
	}
	raw := *msl

	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return "Moisture sensitivity level: " + raw, true
	}
	level, err := strconv.Atoi(fields[0])
	if err != nil {
		return "Moisture sensitivity level: " + raw, true
	}
	if level == 0 || level == 1 {
		return "", false
	}

	note := strings.TrimLeftFunc(raw, unicode.IsSpace)
	note = strings.TrimLeftFunc(note[len(fields[0]):], unicode.IsSpace)
	note = strings.Trim(note, "()")
	return fmt.Sprintf("Moisture sensitivity level: %d - %s", level, note), true
}
