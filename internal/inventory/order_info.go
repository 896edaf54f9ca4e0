package inventory

import (
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

// Validate checks that a shipment has a positive quantity and that any
// known sales order or invoice id is positive. Zero ids would read as
// unknown once merged.
func (o OrderInfo) Validate() error {
	details := map[string]string{}
	if o.Quantity <= 0 {
		details["order.quantity"] = "must be greater than 0"
	}
	if o.SalesOrderID != nil && *o.SalesOrderID <= 0 {
		details["order.sales_order_id"] = "must be greater than 0"
	}
	if o.InvoiceID != nil && *o.InvoiceID <= 0 {
		details["order.invoice_id"] = "must be greater than 0"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order").WithDetails(details)
	}
	return nil
}

// ConflictsWith reports whether two shipments cannot describe the same
// physical order. Quantities must match exactly; the optional identifiers
// only conflict when both sides know them and they differ.
func (o OrderInfo) ConflictsWith(other OrderInfo) bool {
	return differInt64(o.SalesOrderID, other.SalesOrderID) ||
		differInt64(o.InvoiceID, other.InvoiceID) ||
		differString(o.CountryOfOrigin, other.CountryOfOrigin) ||
		o.Quantity != other.Quantity ||
		differString(o.LotCode, other.LotCode)
}

// Merge fills o's unknown fields from other. The receiver's quantity is kept
// and the result never carries the conflict mark. Conflicting orders cannot be
// merged.
func (o OrderInfo) Merge(other OrderInfo) (OrderInfo, error) {
	if o.ConflictsWith(other) {
		return OrderInfo{}, NewMergeConflictError(o, other)
	}
	return OrderInfo{
		Description:     firstNonEmpty(o.Description, other.Description),
		Quantity:        o.Quantity,
		SalesOrderID:    firstSetInt64(o.SalesOrderID, other.SalesOrderID),
		InvoiceID:       firstSetInt64(o.InvoiceID, other.InvoiceID),
		CountryOfOrigin: firstNonEmpty(o.CountryOfOrigin, other.CountryOfOrigin),
		LotCode:         firstNonEmpty(o.LotCode, other.LotCode),
	}, nil
}

// SameInvoice compares invoice ids, treating two unknown ids as equal.
func (o OrderInfo) SameInvoice(other OrderInfo) bool {
	switch {
	case o.InvoiceID == nil && other.InvoiceID == nil:
		return true
	case o.InvoiceID == nil || other.InvoiceID == nil:
		return false
	default:
		return *o.InvoiceID == *other.InvoiceID
	}
}

func differInt64(a, b *int64) bool {
	return a != nil && b != nil && *a != *b
}

func differString(a, b *string) bool {
	return a != nil && b != nil && *a != *b
}

func firstSetInt64(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil && *v != 0 {
			return v
		}
	}
	return nil
}
