package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// OrderRecord is the persisted form of one shipment in an item's order history.
type OrderRecord struct {
	Description     *string `json:"description,omitempty"`
	Quantity        int     `json:"quantity"`
	SalesOrderID    *int64  `json:"sales_order_id,omitempty"`
	InvoiceID       *int64  `json:"invoice_id,omitempty"`
	CountryOfOrigin *string `json:"country_of_origin,omitempty"`
	LotCode         *string `json:"lot_code,omitempty"`
	Conflicts       bool    `json:"conflicts"`
}

// OrderRecords is an order history marshaled as JSONB.
type OrderRecords []OrderRecord

// Value serializes the history to JSON. A nil history is stored as [].
func (o OrderRecords) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes JSONB into the history.
func (o *OrderRecords) Scan(value interface{}) error {
	if value == nil {
		*o = OrderRecords{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded OrderRecords
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode order history: %w", err)
	}
	if decoded == nil {
		decoded = OrderRecords{}
	}
	*o = decoded
	return nil
}

// StringSet is a sorted, de-duplicated list of strings marshaled as JSONB.
type StringSet []string

// NewStringSet returns the sorted union of values.
func NewStringSet(values ...string) StringSet {
	seen := make(map[string]struct{}, len(values))
	out := make(StringSet, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Value serializes the set to a JSON array.
func (s StringSet) Value() (driver.Value, error) {
	raw, err := json.Marshal(NewStringSet(s...))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes a JSON array into the set.
func (s *StringSet) Scan(value interface{}) error {
	if value == nil {
		*s = StringSet{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode string set: %w", err)
	}
	*s = NewStringSet(decoded...)
	return nil
}

// ProductDetailsRecord is the persisted form of refined vendor product data.
type ProductDetailsRecord struct {
	ProductURL          *string  `json:"product_url,omitempty"`
	DatasheetURL        *string  `json:"datasheet_url,omitempty"`
	ImageURL            *string  `json:"image_url,omitempty"`
	DetailedDescription *string  `json:"detailed_description,omitempty"`
	Warnings            []string `json:"warnings"`
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
