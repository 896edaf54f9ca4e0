package bom

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
)

// DefaultMatchLimit caps Match results when the caller passes no limit.
const DefaultMatchLimit = 10

// Inventory is the part of inventory.Store the matcher reads.
type Inventory interface {
	FindByManufacturerPartNumbers(ctx context.Context, mpns []string) ([]inventory.Item, error)
	Search(ctx context.Context, query string, limit int) ([]inventory.Item, error)
}

// Match suggests inventory items for a BOM entry. Items whose manufacturer
// part number equals one from the entry come first, followed by text search
// hits over the entry's device, value, description, manufacturer and part
// numbers. Each item appears once and at most limit are returned.
func Match(ctx context.Context, inv Inventory, entry Entry, limit int) ([]inventory.Item, error) {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	mpns := entry.manufacturerPartNumbers()

	var exact []inventory.Item
	if len(mpns) > 0 {
		var err error
		exact, err = inv.FindByManufacturerPartNumbers(ctx, mpns)
		if err != nil {
			return nil, err
		}
	}

	var text []inventory.Item
	if query := searchQuery(entry, mpns); query != "" {
		var err error
		text, err = inv.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(exact)+len(text))
	out := make([]inventory.Item, 0, limit)
	for _, group := range [][]inventory.Item{exact, text} {
		for _, item := range group {
			if len(out) == limit {
				return out, nil
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			out = append(out, item)
		}
	}
	return out, nil
}

func searchQuery(entry Entry, mpns []string) string {
	terms := make([]string, 0, 4+len(mpns))
	for _, term := range []string{
		strings.TrimSpace(entry.Device),
		trimmed(entry.Value),
		trimmed(entry.Description),
		trimmed(entry.Manufacturer),
	} {
		if term != "" {
			terms = append(terms, term)
		}
	}
	terms = append(terms, mpns...)
	return strings.Join(terms, " ")
}
