package inventory

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/partsbin-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

type searchField struct {
	column string
	weight int
	value  func(Item) string
}

var searchFields = []searchField{
	{column: "description", weight: 10, value: func(it Item) string { return it.Description }},
	{column: "vendor_part_number", weight: 5, value: func(it Item) string { return deref(it.VendorPartNumber) }},
	{column: "manufacturer_part_number", weight: 5, value: func(it Item) string { return deref(it.ManufacturerPartNumber) }},
	{column: "comments", weight: 10, value: func(it Item) string { return it.Comments }},
	{column: "manufacturer_name", weight: 5, value: func(it Item) string { return deref(it.ManufacturerName) }},
	{column: "CAST(product_details AS TEXT)", weight: 10, value: func(it Item) string {
		if it.ProductDetails == nil {
			return ""
		}
		return deref(it.ProductDetails.DetailedDescription)
	}},
}

type scoredItem struct {
	item  Item
	score int
}

// Search ranks items by weighted term matches. The database narrows the
// candidates with LIKE; scoring happens here so postgres and sqlite rank the
// same way.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return []Item{}, nil
	}

	q := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Preload("Slots")
	cond := r.db.Session(&gorm.Session{NewDB: true})
	first := true
	for _, term := range terms {
		pattern := "%" + escapeLike(term) + "%"
		for _, f := range searchFields {
			expr := "LOWER(" + f.column + ") LIKE ? ESCAPE '\\'"
			if first {
				cond = cond.Where(expr, pattern)
				first = false
				continue
			}
			cond = cond.Or(expr, pattern)
		}
	}

	var rows []models.InventoryItem
	if err := q.Where(cond).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search inventory items")
	}

	scored := make([]scoredItem, 0, len(rows))
	for _, row := range rows {
		item := fromModel(row)
		if score := scoreItem(item, terms); score > 0 {
			scored = append(scored, scoredItem{item: item, score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].item.Description < scored[j].item.Description
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	items := make([]Item, 0, len(scored))
	for _, s := range scored {
		items = append(items, s.item)
	}
	return items, nil
}

func scoreItem(item Item, terms []string) int {
	score := 0
	for _, f := range searchFields {
		value := strings.ToLower(f.value(item))
		if value == "" {
			continue
		}
		for _, term := range terms {
			if strings.Contains(value, term) {
				score += f.weight
			}
		}
	}
	return score
}

func searchTerms(query string) []string {
	seen := map[string]struct{}{}
	var terms []string
	for _, t := range strings.Fields(strings.ToLower(query)) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
