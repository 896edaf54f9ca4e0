package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItemSlot assigns an item to a physical storage slot.
type InventoryItemSlot struct {
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;primaryKey"`
	SlotID    int       `gorm:"column:slot_id;primaryKey;index:idx_inventory_item_slots_slot_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
