package speech

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
)

func strPtr(s string) *string { return &s }

func TestNormalizeSpokenSlot(t *testing.T) {
	cases := map[string]string{
		"1A":              "1a",
		"One A":           "1a",
		"f four":          "f4",
		"Siri B":          "3b",
		"someone":         "someone",
		"TWO  zero\tnine": "209",
		"  c  ":           "c",
		"eighteen":        "eighteen",
		"nine-one":        "9-1",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSpokenSlot(in), in)
	}
}

func TestParseSpokenSlot(t *testing.T) {
	id, err := ParseSpokenSlot("one a")
	require.NoError(t, err)
	assert.Equal(t, 0x1a, id)

	id, err = ParseSpokenSlot("Siri f")
	require.NoError(t, err)
	assert.Equal(t, 0x3f, id)

	_, err = ParseSpokenSlot("hello world")
	require.Error(t, err)
	var invalid *InvalidSlotError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "helloworld", invalid.Normalized)
	assert.Equal(t, "Invalid slot ID: expected a hex number, but got helloworld", err.Error())
}

func TestParseHexSlot(t *testing.T) {
	id, err := ParseHexSlot("0x1F")
	require.NoError(t, err)
	assert.Equal(t, 31, id)

	for _, bad := range []string{"", "0x", "zz", "-1"} {
		_, err := ParseHexSlot(bad)
		assert.Error(t, err, bad)
	}
}

func TestSpokenSlotID(t *testing.T) {
	assert.Equal(t, "f-a", SpokenSlotID(0xfa))
	assert.Equal(t, "0", SpokenSlotID(0))
	assert.Equal(t, "No items found for slot 1-2-3", NoItemsMessage(0x123))
}

func TestSlotSummarySingleItem(t *testing.T) {
	item := inventory.Item{NewItem: inventory.NewItem{
		Description:       "RES 10K OHM 5% 1/8W 0805",
		ManufacturerName:  strPtr("YAGEO"),
		AvailableQuantity: 1,
		Comments:          "  reel  ",
	}}
	assert.Equal(t,
		"RES 10K OHM 5% 1/8W 0805. made by YAGEO. 1 item is available. Additional comments: reel",
		SlotSummary(0x1a, []inventory.Item{item}))

	bare := inventory.Item{NewItem: inventory.NewItem{AvailableQuantity: 0}}
	assert.Equal(t, "No description found. . 0 items are available. ", SlotSummary(0x1a, []inventory.Item{bare}))
}

func TestSlotSummaryManyItems(t *testing.T) {
	items := []inventory.Item{
		{NewItem: inventory.NewItem{Description: "A", AvailableQuantity: 2}},
		{NewItem: inventory.NewItem{Description: "B", AvailableQuantity: 1}},
	}
	assert.Equal(t,
		"Found 2 items in slot f-a:. ...Item 1: A. . 2 items are available. \n...Item 2: B. . 1 item is available. ",
		SlotSummary(0xfa, items))
	assert.Equal(t, "No items found for slot f-a", SlotSummary(0xfa, nil))
}
