package bom

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
)

type fakeInventory struct {
	byMPN     []inventory.Item
	hits      []inventory.Item
	mpns      []string
	query     string
	limit     int
	searchErr error
}

func (f *fakeInventory) FindByManufacturerPartNumbers(_ context.Context, mpns []string) ([]inventory.Item, error) {
	f.mpns = mpns
	return f.byMPN, nil
}

func (f *fakeInventory) Search(_ context.Context, query string, limit int) ([]inventory.Item, error) {
	f.query = query
	f.limit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func strPtr(s string) *string { return &s }

func item(desc string) inventory.Item {
	return inventory.Item{ID: uuid.New(), NewItem: inventory.NewItem{Description: desc}}
}

func ids(items []inventory.Item) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func capEntry() Entry {
	return Entry{
		Qty:          4,
		Value:        strPtr("100n"),
		Device:       "C-EUC0603",
		Parts:        []string{"C1", "C2", "C3", "C4"},
		Description:  strPtr(" CAPACITOR "),
		Manufacturer: strPtr("Murata"),
		Fusion360: &FusionEntry{
			Package:                "C0603",
			ManufacturerPartNumber: strPtr("GRM188R71H104KA93D"),
			MPN:                    strPtr("GRM188R71H104KA93D"),
		},
	}
}

func TestMatchPutsExactPartNumbersFirst(t *testing.T) {
	exact := item("MLCC 100nF exact")
	textA, textB := item("cap a"), item("cap b")
	inv := &fakeInventory{
		byMPN: []inventory.Item{exact},
		hits:  []inventory.Item{textA, exact, textB},
	}

	got, err := Match(context.Background(), inv, capEntry(), 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{exact.ID, textA.ID, textB.ID}, ids(got))
	assert.Equal(t, []string{"GRM188R71H104KA93D"}, inv.mpns)
	assert.Equal(t, "C-EUC0603 100n CAPACITOR Murata GRM188R71H104KA93D", inv.query)
	assert.Equal(t, DefaultMatchLimit, inv.limit)
}

func TestMatchTruncatesToLimit(t *testing.T) {
	exact1, exact2 := item("e1"), item("e2")
	inv := &fakeInventory{
		byMPN: []inventory.Item{exact1, exact2},
		hits:  []inventory.Item{item("t1"), item("t2")},
	}
	got, err := Match(context.Background(), inv, capEntry(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, exact1.ID, got[0].ID)
	assert.Equal(t, exact2.ID, got[1].ID)
}

func TestMatchWithoutPartNumbersOnlySearches(t *testing.T) {
	hit := item("header 2x5")
	inv := &fakeInventory{hits: []inventory.Item{hit}}
	entry := Entry{Device: "PINHD-2X5", Fusion360: &FusionEntry{Package: "2X05", MPN: strPtr("  ")}}

	got, err := Match(context.Background(), inv, entry, 5)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{hit.ID}, ids(got))
	assert.Nil(t, inv.mpns, "no exact lookup without a part number")
	assert.Equal(t, "PINHD-2X5", inv.query)
}

func TestMatchEmptyEntry(t *testing.T) {
	inv := &fakeInventory{hits: []inventory.Item{item("x")}}
	got, err := Match(context.Background(), inv, Entry{}, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, inv.query)
}

func TestMatchPropagatesSearchError(t *testing.T) {
	boom := errors.New("search down")
	inv := &fakeInventory{searchErr: boom}
	_, err := Match(context.Background(), inv, capEntry(), 5)
	assert.ErrorIs(t, err, boom)
}
