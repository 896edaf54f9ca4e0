// Package speech renders slot contents as sentences a voice assistant can read
// aloud, and parses slot ids as they come back from speech recognition.
package speech

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
)

var spelledDigits = regexp.MustCompile(`(?i)\b(zero|one|two|three|four|five|six|seven|eight|nine)\b`)

var digitWords = map[string]string{
	"zero":  "0",
	"one":   "1",
	"two":   "2",
	"three": "3",
	"four":  "4",
	"five":  "5",
	"six":   "6",
	"seven": "7",
	"eight": "8",
	"nine":  "9",
}

// InvalidSlotError is returned when a spoken slot id is not hexadecimal.
type InvalidSlotError struct {
	Normalized string
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("Invalid slot ID: expected a hex number, but got %s", e.Normalized)
}

// NormalizeSpokenSlot lowercases a dictated slot id, turns spelled-out digits
// into numbers and drops whitespace. Recognisers sometimes hear "3" as "siri".
func NormalizeSpokenSlot(spoken string) string {
	s := strings.ToLower(spoken)
	s = spelledDigits.ReplaceAllStringFunc(s, func(word string) string {
		return digitWords[strings.ToLower(word)]
	})
	s = strings.Join(strings.Fields(s), "")
	return strings.ReplaceAll(s, "siri", "3")
}

// ParseSpokenSlot converts a dictated slot id to its numeric value.
func ParseSpokenSlot(spoken string) (int, error) {
	normalized := NormalizeSpokenSlot(spoken)
	id, err := ParseHexSlot(normalized)
	if err != nil {
		return 0, &InvalidSlotError{Normalized: normalized}
	}
	return id, nil
}

// ParseHexSlot parses a hex slot id with an optional 0x prefix.
func ParseHexSlot(s string) (int, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if trimmed == "" {
		return 0, &InvalidSlotError{Normalized: s}
	}
	v, err := strconv.ParseUint(trimmed, 16, 31)
	if err != nil {
		return 0, &InvalidSlotError{Normalized: s}
	}
	return int(v), nil
}

// SpokenSlotID spells a slot id one hex character at a time, so "fa" is read
// as "f-a".
func SpokenSlotID(id int) string {
	hex := strconv.FormatInt(int64(id), 16)
	return strings.Join(strings.Split(hex, ""), "-")
}

// NoItemsMessage is read when a slot is empty.
func NoItemsMessage(id int) string {
	return fmt.Sprintf("No items found for slot %s", SpokenSlotID(id))
}

// SlotSummary describes the items in a slot.
func SlotSummary(id int, items []inventory.Item) string {
	switch len(items) {
	case 0:
		return NoItemsMessage(id)
	case 1:
		return itemSentence(items[0])
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("...Item %d: %s", i+1, itemSentence(item)))
	}
	return fmt.Sprintf("Found %d items in slot %s:. %s", len(items), SpokenSlotID(id), strings.Join(lines, "\n"))
}

func itemSentence(item inventory.Item) string {
	description := item.Description
	if description == "" {
		description = "No description found"
	}
	madeBy := ""
	if item.ManufacturerName != nil && *item.ManufacturerName != "" {
		madeBy = "made by " + *item.ManufacturerName
	}
	noun := "items are"
	if item.AvailableQuantity == 1 {
		noun = "item is"
	}
	comments := ""
	if c := strings.TrimSpace(item.Comments); c != "" {
		comments = "Additional comments: " + c
	}
	return fmt.Sprintf("%s. %s. %d %s available. %s", description, madeBy, item.AvailableQuantity, noun, comments)
}
