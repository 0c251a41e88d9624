package models

import (
	"time"

	"gorm.io/gorm"
)

// Supplier represents a vendor the restaurant orders from
type Supplier struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RestaurantID uint           `gorm:"not null;index" json:"restaurant_id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	LeadTimeDays int            `gorm:"default:3" json:"lead_time_days"` // days between placing and receiving an order
	DeliveryFee  float64        `gorm:"default:0" json:"delivery_fee"`
	MinimumOrder float64        `gorm:"default:0" json:"minimum_order"` // 0 means no minimum
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// SupplierProduct represents one product in a supplier's catalog.
// Its Price is the live price snapshotted onto order line items at
// synthesis time.
type SupplierProduct struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SupplierID uint           `gorm:"not null;index" json:"supplier_id"`
	Name       string         `gorm:"not null" json:"name"`
	Unit       string         `json:"unit"`
	Price      float64        `gorm:"not null" json:"price"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// TableName specifies the table name for Supplier
func (Supplier) TableName() string {
	return "suppliers"
}

// TableName specifies the table name for SupplierProduct
func (SupplierProduct) TableName() string {
	return "supplier_products"
}
