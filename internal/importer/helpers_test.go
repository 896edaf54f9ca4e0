package importer

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "importer-test", Output: io.Discard})
}

// memStore keeps items in memory and counts writes.
type memStore struct {
	mu       sync.Mutex
	items    map[uuid.UUID]inventory.Item
	creates  int
	replaces int
}

var _ inventory.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{items: map[uuid.UUID]inventory.Item{}}
}

func (m *memStore) Create(_ context.Context, item inventory.NewItem) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.VendorPartNumber != nil {
		for id, existing := range m.items {
			if existing.VendorPartNumber != nil && *existing.VendorPartNumber == *item.VendorPartNumber {
				return uuid.Nil, inventory.NewDuplicateVendorNumberError(*item.VendorPartNumber, id, nil)
			}
		}
	}
	id := uuid.New()
	now := time.Now().UTC()
	m.items[id] = inventory.Item{ID: id, NewItem: item, CreatedAt: now, UpdatedAt: now}
	m.creates++
	return id, nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, inventory.NotFound("item %s not found", id)
	}
	return &item, nil
}

func (m *memStore) Replace(_ context.Context, item inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return inventory.NotFound("item %s not found", item.ID)
	}
	item.UpdatedAt = time.Now().UTC()
	m.items[item.ID] = item
	m.replaces++
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return inventory.NotFound("item %s not found", id)
	}
	delete(m.items, id)
	return nil
}

func (m *memStore) List(_ context.Context) ([]inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]inventory.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) FindByVendorNumber(_ context.Context, vendorPartNumber string) (*inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.VendorPartNumber != nil && *item.VendorPartNumber == vendorPartNumber {
			cp := item
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByManufacturerPartNumbers(_ context.Context, mpns []string) ([]inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []inventory.Item{}
	for _, item := range m.items {
		if item.ManufacturerPartNumber == nil {
			continue
		}
		for _, mpn := range mpns {
			if mpn != "" && *item.ManufacturerPartNumber == mpn {
				out = append(out, item)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) FindBySlot(_ context.Context, slotID int) ([]inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []inventory.Item
	for _, item := range m.items {
		for _, s := range item.SlotIDs {
			if s == slotID {
				out = append(out, item)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, inventory.NotFound("no items in slot %d", slotID)
	}
	return out, nil
}

func (m *memStore) SlotsOf(_ context.Context, id uuid.UUID) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, inventory.NotFound("item %s not found", id)
	}
	return append([]int{}, item.SlotIDs...), nil
}

func (m *memStore) AddToSlot(_ context.Context, id uuid.UUID, slotID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return inventory.NotFound("item %s not found", id)
	}
	for _, s := range item.SlotIDs {
		if s == slotID {
			return nil
		}
	}
	item.SlotIDs = append(append([]int{}, item.SlotIDs...), slotID)
	sort.Ints(item.SlotIDs)
	m.items[id] = item
	return nil
}

func (m *memStore) RemoveFromSlot(_ context.Context, id uuid.UUID, slotID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return inventory.NotFound("item %s not found", id)
	}
	kept := make([]int, 0, len(item.SlotIDs))
	for _, s := range item.SlotIDs {
		if s != slotID {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(item.SlotIDs) {
		return inventory.NotFound("item %s is not in slot %d", id, slotID)
	}
	item.SlotIDs = kept
	m.items[id] = item
	return nil
}

func (m *memStore) update(id uuid.UUID, fn func(*inventory.Item)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return inventory.NotFound("item %s not found", id)
	}
	fn(&item)
	m.items[id] = item
	return nil
}

func (m *memStore) SetComments(_ context.Context, id uuid.UUID, comments string) error {
	return m.update(id, func(it *inventory.Item) { it.Comments = comments })
}

func (m *memStore) SetQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	return m.update(id, func(it *inventory.Item) { it.AvailableQuantity = quantity })
}

func (m *memStore) SetProductDetails(_ context.Context, id uuid.UUID, details *inventory.ProductDetails) error {
	return m.update(id, func(it *inventory.Item) { it.ProductDetails = details })
}

func (m *memStore) Search(_ context.Context, query string, limit int) ([]inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var out []inventory.Item
	for _, item := range m.items {
		if strings.Contains(strings.ToLower(item.Description), q) {
			out = append(out, item)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
