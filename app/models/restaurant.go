package models

import (
	"time"

	"gorm.io/gorm"
)

// Restaurant represents a tenant. Every item, insight, order and
// notification produced by the engine is scoped to one restaurant.
type Restaurant struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	OwnerUserID uint           `gorm:"not null;index" json:"owner_user_id"` // receives auto-order notifications
	Timezone    string         `gorm:"default:UTC" json:"timezone"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Restaurant
func (Restaurant) TableName() string {
	return "restaurants"
}
