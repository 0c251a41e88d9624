package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// ChangeType classifies an inventory quantity change
type ChangeType string

const (
	ChangeUsed     ChangeType = "USED"
	ChangeWaste    ChangeType = "WASTE"
	ChangeReceived ChangeType = "RECEIVED"
	ChangeCount    ChangeType = "COUNT"
)

func (t ChangeType) String() string {
	return string(t)
}

func (t *ChangeType) Scan(value interface{}) error {
	*t = ChangeType(value.(string))
	return nil
}

func (t ChangeType) Value() (driver.Value, error) {
	return string(t), nil
}

// IsConsumption reports whether entries of this type count as usage
// for the consumption analyzer (stock leaving the kitchen, not arriving).
func (t ChangeType) IsConsumption() bool {
	return t == ChangeUsed || t == ChangeWaste
}

// InventoryItem represents a stocked good belonging to a restaurant
type InventoryItem struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	RestaurantID      uint             `gorm:"not null;index" json:"restaurant_id"`
	Name              string           `gorm:"not null;index" json:"name"`
	Category          string           `json:"category"`
	Unit              string           `gorm:"default:units" json:"unit"` // units, kg, g, l, ml
	CurrentQuantity   float64          `gorm:"default:0" json:"current_quantity"`
	ParLevel          *float64         `json:"par_level,omitempty"` // target minimum stock, nil when not set
	SupplierProductID *uint            `gorm:"index" json:"supplier_product_id,omitempty"`
	IsActive          bool             `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	SupplierProduct *SupplierProduct `gorm:"foreignKey:SupplierProductID" json:"supplier_product,omitempty"`
}

// InventoryLogEntry is one immutable record of a quantity change.
// Entries are append-only: they are never updated or deleted, and they are
// the sole input of the consumption analyzer.
type InventoryLogEntry struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ItemID           uint       `gorm:"not null;index:idx_log_item_created" json:"item_id"`
	ChangeType       ChangeType `gorm:"not null" json:"change_type"`
	Quantity         float64    `gorm:"not null" json:"quantity"` // signed: negative for usage/waste
	PreviousQuantity float64    `json:"previous_quantity"`
	NewQuantity      float64    `json:"new_quantity"`
	Reference        string     `json:"reference"` // order number, adjustment reason, etc.
	UserID           *uint      `json:"user_id,omitempty"`
	CreatedAt        time.Time  `gorm:"index:idx_log_item_created" json:"created_at"`

	// Relations
	Item *InventoryItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

// TableName specifies the table name for InventoryItem
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// TableName specifies the table name for InventoryLogEntry
func (InventoryLogEntry) TableName() string {
	return "inventory_log_entries"
}
