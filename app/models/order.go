package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the status of a purchase order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s *OrderStatus) Scan(value interface{}) error {
	*s = OrderStatus(value.(string))
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Order represents a purchase order to one supplier. The reorder engine
// only ever creates orders in draft status; a human reviews, submits or
// cancels them afterwards through the regular CRUD flows.
type Order struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	OrderNumber       string         `gorm:"not null;uniqueIndex:idx_orders_restaurant_number" json:"order_number"`
	RestaurantID      uint           `gorm:"not null;uniqueIndex:idx_orders_restaurant_number" json:"restaurant_id"`
	SupplierID        uint           `gorm:"not null;index" json:"supplier_id"`
	CreatedByID       uint           `json:"created_by_id"`
	Status            OrderStatus    `gorm:"index" json:"status"`
	Items             []OrderLineItem `gorm:"foreignKey:OrderID" json:"items"`
	Subtotal          float64        `json:"subtotal"`
	Tax               float64        `json:"tax"`
	DeliveryFee       float64        `json:"delivery_fee"`
	Total             float64        `json:"total"`
	Notes             string         `json:"notes"`
	BelowMinimumOrder bool           `gorm:"default:false" json:"below_minimum_order"` // informational, never blocks creation
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// OrderLineItem represents one product line on a purchase order.
// UnitPrice is snapshotted from the supplier catalog at creation time.
type OrderLineItem struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	OrderID           uint             `gorm:"not null;index" json:"order_id"`
	SupplierProductID uint             `gorm:"not null;index" json:"supplier_product_id"`
	Quantity          float64          `gorm:"not null" json:"quantity"`
	UnitPrice         float64          `gorm:"not null" json:"unit_price"`
	Subtotal          float64          `json:"subtotal"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	// Relations
	SupplierProduct *SupplierProduct `gorm:"foreignKey:SupplierProductID" json:"supplier_product,omitempty"`
}

// OrderCounter holds the per-restaurant order number sequence. Numbers are
// allocated by an atomic increment inside the order creation transaction,
// are strictly increasing and are never reused, even when orders are
// deleted later.
type OrderCounter struct {
	ID           uint  `gorm:"primaryKey" json:"id"`
	RestaurantID uint  `gorm:"not null;uniqueIndex" json:"restaurant_id"`
	LastNumber   int64 `gorm:"not null;default:0" json:"last_number"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName specifies the table name for OrderLineItem
func (OrderLineItem) TableName() string {
	return "order_line_items"
}

// TableName specifies the table name for OrderCounter
func (OrderCounter) TableName() string {
	return "order_counters"
}
