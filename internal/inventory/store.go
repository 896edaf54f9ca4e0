package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Store persists inventory items. Lookups that miss return an error wrapping
// ErrNotFound, except FindByVendorNumber which returns nil, nil.
type Store interface {
	Create(ctx context.Context, item NewItem) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	Replace(ctx context.Context, item Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Item, error)

	FindByVendorNumber(ctx context.Context, vendorPartNumber string) (*Item, error)
	FindByManufacturerPartNumbers(ctx context.Context, mpns []string) ([]Item, error)
	FindBySlot(ctx context.Context, slotID int) ([]Item, error)
	SlotsOf(ctx context.Context, id uuid.UUID) ([]int, error)
	AddToSlot(ctx context.Context, id uuid.UUID, slotID int) error
	RemoveFromSlot(ctx context.Context, id uuid.UUID, slotID int) error

	SetComments(ctx context.Context, id uuid.UUID, comments string) error
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	SetProductDetails(ctx context.Context, id uuid.UUID, details *ProductDetails) error

	Search(ctx context.Context, query string, limit int) ([]Item, error)
}
