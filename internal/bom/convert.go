package bom

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/pkg/db/models"
)

func toModel(id uuid.UUID, b NewBom) models.Bom {
	rows := make([]models.BomRow, 0, len(b.Rows))
	for _, e := range b.Rows {
		row := models.BomRow{
			Qty:              e.Qty,
			Value:            e.Value,
			Device:           e.Device,
			Parts:            nonNil(e.Parts),
			Description:      e.Description,
			Manufacturer:     e.Manufacturer,
			Comments:         e.Comments,
			InventoryItemIDs: uniqueIDs(e.InventoryItemIDs),
		}
		if f := e.Fusion360; f != nil {
			row.Package = f.Package
			row.Category = f.Category
			row.ManufacturerPartNumber = f.ManufacturerPartNumber
			row.MPN = f.MPN
		}
		rows = append(rows, row)
	}
	return models.Bom{
		ID:       id,
		Name:     b.Name,
		InfoLine: b.InfoLine,
		Project: models.BomProject{
			Name:        b.Project.Name,
			AuthorNames: b.Project.AuthorNames,
			Comments:    b.Project.Comments,
		},
		Rows: rows,
	}
}

func fromModel(m models.Bom) Bom {
	rows := make([]Entry, 0, len(m.Rows))
	for _, r := range m.Rows {
		e := Entry{
			Qty:              r.Qty,
			Value:            r.Value,
			Device:           r.Device,
			Parts:            nonNil(r.Parts),
			Description:      r.Description,
			Manufacturer:     r.Manufacturer,
			Comments:         r.Comments,
			InventoryItemIDs: uniqueIDs(r.InventoryItemIDs),
		}
		if r.Package != "" || r.Category != nil || r.ManufacturerPartNumber != nil || r.MPN != nil {
			e.Fusion360 = &FusionEntry{
				Package:                r.Package,
				Category:               r.Category,
				ManufacturerPartNumber: r.ManufacturerPartNumber,
				MPN:                    r.MPN,
			}
		}
		rows = append(rows, e)
	}
	return Bom{
		ID: m.ID,
		NewBom: NewBom{
			Name:     m.Name,
			InfoLine: m.InfoLine,
			Project: ProjectInfo{
				Name:        m.Project.Name,
				AuthorNames: m.Project.AuthorNames,
				Comments:    m.Project.Comments,
			},
			Rows: rows,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// uniqueIDs keeps the first occurrence of each id. The mapping is a set.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
