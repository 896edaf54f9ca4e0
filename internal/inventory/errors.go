package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

// ErrNotFound is the cause of every lookup miss returned by a Store.
var ErrNotFound = errors.New("inventory: not found")

// NotFound wraps ErrNotFound with a NOT_FOUND code and message.
func NotFound(format string, args ...any) error {
	return pkgerrors.Wrapf(pkgerrors.CodeNotFound, ErrNotFound, format, args...)
}

// IsNotFound reports whether err is a store lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// DuplicateVendorNumberError reports that another item already owns a vendor
// part number. NewID is nil when the rejected item had not been stored yet.
type DuplicateVendorNumberError struct {
	VendorPartNumber string
	ExistingID       uuid.UUID
	NewID            *uuid.UUID
}

func (e *DuplicateVendorNumberError) Error() string {
	if e.NewID == nil {
		return fmt.Sprintf("vendor part number %q already belongs to item %s", e.VendorPartNumber, e.ExistingID)
	}
	return fmt.Sprintf("vendor part number %q already belongs to item %s, cannot assign it to item %s", e.VendorPartNumber, e.ExistingID, *e.NewID)
}

// NewDuplicateVendorNumberError returns a CONFLICT error caused by a
// DuplicateVendorNumberError.
func NewDuplicateVendorNumberError(vendorPartNumber string, existing uuid.UUID, newID *uuid.UUID) error {
	cause := &DuplicateVendorNumberError{VendorPartNumber: vendorPartNumber, ExistingID: existing, NewID: newID}
	details := map[string]any{
		"vendor_part_number": vendorPartNumber,
		"existing_id":        existing.String(),
		"new_id":             nil,
	}
	if newID != nil {
		details["new_id"] = newID.String()
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, cause.Error()).WithDetails(details)
}

// ManufacturerMismatchError reports that a shipment names a different
// manufacturer (or manufacturer part number) than the stored item.
type ManufacturerMismatchError struct {
	Field    string
	Existing string
	Incoming string
}

func (e *ManufacturerMismatchError) Error() string {
	return fmt.Sprintf("manufacturer info mismatch: '%s' vs '%s'", e.Existing, e.Incoming)
}

// NewManufacturerMismatchError returns a STATE_CONFLICT error caused by a
// ManufacturerMismatchError.
func NewManufacturerMismatchError(field, existing, incoming string) error {
	cause := &ManufacturerMismatchError{Field: field, Existing: existing, Incoming: incoming}
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, cause, cause.Error()).WithDetails(map[string]any{
		"field":    field,
		"existing": existing,
		"incoming": incoming,
	})
}

// MergeConflictError reports an attempt to merge two conflicting orders.
type MergeConflictError struct {
	Left  OrderInfo
	Right OrderInfo
}

func (e *MergeConflictError) Error() string {
	return "cannot merge conflicting order info: " + describeOrder(e.Left) + " vs " + describeOrder(e.Right)
}

// NewMergeConflictError returns a STATE_CONFLICT error caused by a
// MergeConflictError.
func NewMergeConflictError(left, right OrderInfo) error {
	cause := &MergeConflictError{Left: left, Right: right}
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, cause, "cannot merge conflicting order info").WithDetails(map[string]any{
		"left":  left,
		"right": right,
	})
}

func describeOrder(o OrderInfo) string {
	parts := []string{fmt.Sprintf("qty=%d", o.Quantity)}
	if o.InvoiceID != nil {
		parts = append(parts, fmt.Sprintf("invoice=%d", *o.InvoiceID))
	}
	if o.SalesOrderID != nil {
		parts = append(parts, fmt.Sprintf("sales_order=%d", *o.SalesOrderID))
	}
	if o.CountryOfOrigin != nil {
		parts = append(parts, "country="+*o.CountryOfOrigin)
	}
	if o.LotCode != nil {
		parts = append(parts, "lot="+*o.LotCode)
	}
	return "{" + strings.Join(parts, " ") + "}"
}
