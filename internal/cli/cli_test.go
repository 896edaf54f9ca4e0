package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/angelmondragon/partsbin-backend/internal/importer"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

type fakeImporter struct {
	barcode  string
	slots    []int
	result   importer.Result
	err      error
	refresh  uuid.UUID
	refreshN int
}

func (f *fakeImporter) ImportByBarcode(_ context.Context, barcode string) (*importer.Result, error) {
	f.barcode = barcode
	if f.err != nil {
		return nil, f.err
	}
	return &f.result, nil
}

func (f *fakeImporter) ImportPackList(_ context.Context, barcode string) ([]importer.Result, error) {
	f.barcode = barcode
	if f.err != nil {
		return nil, f.err
	}
	return []importer.Result{f.result, f.result}, nil
}

func (f *fakeImporter) ImportIntoSlots(_ context.Context, barcode string, slots []int) (*importer.Result, error) {
	f.barcode = barcode
	f.slots = slots
	return &f.result, f.err
}

func (f *fakeImporter) RefreshDetails(_ context.Context, id uuid.UUID) (*inventory.Item, error) {
	f.refresh = id
	item := f.result.Item
	return &item, f.err
}

func (f *fakeImporter) RefreshAllDetails(context.Context) (int, error) {
	return f.refreshN, f.err
}

type fakeStore struct {
	inventory.Store
	slotItems map[int][]inventory.Item
	query     string
	limit     int
}

func (s *fakeStore) FindBySlot(_ context.Context, slot int) ([]inventory.Item, error) {
	items, ok := s.slotItems[slot]
	if !ok {
		return nil, inventory.NotFound("no items in slot %d", slot)
	}
	return items, nil
}

func (s *fakeStore) Search(_ context.Context, query string, limit int) ([]inventory.Item, error) {
	s.query = query
	s.limit = limit
	return []inventory.Item{sampleItem()}, nil
}

func strPtr(s string) *string { return &s }

func sampleItem() inventory.Item {
	return inventory.Item{
		ID: uuid.MustParse("6f1c1a8e-3b7d-4a51-9a43-1f3b8e1c2d4f"),
		NewItem: inventory.NewItem{
			AvailableQuantity: 12,
			Description:       "CAP CER 0.1UF 50V X7R 0603",
			SlotIDs:           []int{0x1a},
			VendorPartNumber:  strPtr("1276-1005-1-ND"),
			ManufacturerName:  strPtr("Samsung"),
		},
	}
}

type harness struct {
	importer *fakeImporter
	store    *fakeStore
	closed   bool
}

func newHarness() *harness {
	return &harness{
		importer: &fakeImporter{result: importer.Result{Item: sampleItem(), Outcome: importer.OutcomeMergedIntoExisting}},
		store:    &fakeStore{slotItems: map[int][]inventory.Item{0x1a: {sampleItem()}}},
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(func(context.Context, *RootOptions) (*App, error) {
		return &App{Importer: h.importer, Store: h.store, Close: func() error {
			h.closed = true
			return nil
		}}, nil
	})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	assert.Equal(t, "partsctl", cmd.Use)
	for _, name := range []string{"import", "pack-list", "search", "slot", "refresh"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness()
	_, _, err := h.run(t, "search", "cap", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestImportText(t *testing.T) {
	h := newHarness()
	out, _, err := h.run(t, "import", "4550112345678")
	require.NoError(t, err)
	assert.Equal(t, "4550112345678", h.importer.barcode)
	assert.Contains(t, out, "merged_into_existing: 6f1c1a8e-3b7d-4a51-9a43-1f3b8e1c2d4f [1276-1005-1-ND]")
	assert.Contains(t, out, "(qty 12) slots 1a")
	assert.True(t, h.closed)
}

func TestImportIntoSlotsJSON(t *testing.T) {
	h := newHarness()
	out, _, err := h.run(t, "import", "4550112345678", "--slot", "1a", "--slot", "0x2", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, []int{0x1a, 2}, h.importer.slots)

	var resp struct {
		Status string          `json:"status"`
		Data   importer.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, sampleItem().ID, resp.Data.Item.ID)
}

func TestImportRejectsBadSlot(t *testing.T) {
	h := newHarness()
	_, _, err := h.run(t, "import", "4550112345678", "--slot", "zz")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, h.importer.barcode)
}

func TestImportFailureReportsCode(t *testing.T) {
	h := newHarness()
	h.importer.err = inventory.NewManufacturerMismatchError("manufacturer_name", "Samsung", "Murata")

	_, stderr, err := h.run(t, "import", "4550112345678")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Error [STATE_CONFLICT]: manufacturer info mismatch: 'Samsung' vs 'Murata'")

	out, _, err := h.run(t, "import", "4550112345678", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, out, `"status":"error"`)
	assert.Contains(t, out, `"code":"STATE_CONFLICT"`)
}

func TestPackListYAML(t *testing.T) {
	h := newHarness()
	out, _, err := h.run(t, "pack-list", "PL-77", "--format", "yaml")
	require.NoError(t, err)

	var resp struct {
		Status string           `yaml:"status"`
		Data   []map[string]any `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "merged_into_existing", resp.Data[0]["outcome"])
}

func TestSearchJoinsArgs(t *testing.T) {
	h := newHarness()
	out, _, err := h.run(t, "search", "0.1uf", "0603", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, "0.1uf 0603", h.store.query)
	assert.Equal(t, 5, h.store.limit)
	assert.Contains(t, out, "CAP CER 0.1UF 50V X7R 0603")

	_, _, err = h.run(t, "search", "cap", "--limit", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSlotCommand(t *testing.T) {
	h := newHarness()
	out, _, err := h.run(t, "slot", "one", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "CAP CER 0.1UF 50V X7R 0603. made by Samsung. 12 items are available.")

	out, _, err = h.run(t, "slot", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "No items found for slot 2")

	_, _, err = h.run(t, "slot", "hello")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRefreshCommand(t *testing.T) {
	h := newHarness()
	h.importer.refreshN = 4

	out, _, err := h.run(t, "refresh", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "refreshed 4 item(s)")

	id := uuid.New()
	_, _, err = h.run(t, "refresh", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, h.importer.refresh)

	for _, args := range [][]string{{"refresh"}, {"refresh", id.String(), "--all"}, {"refresh", "not-a-uuid"}} {
		_, _, err = h.run(t, args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
	}
}

func TestOpenFailure(t *testing.T) {
	cmd := NewRootCommand(func(context.Context, *RootOptions) (*App, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"slot", "1a"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.False(t, errors.Is(err, inventory.ErrNotFound))
}
