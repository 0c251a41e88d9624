package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType classifies engine notifications
type NotificationType string

const (
	NotificationOrderCreated    NotificationType = "auto_order_created"
	NotificationLowStock        NotificationType = "low_stock"
	NotificationAnalysisSummary NotificationType = "analysis_summary"
)

func (t NotificationType) String() string {
	return string(t)
}

func (t *NotificationType) Scan(value interface{}) error {
	*t = NotificationType(value.(string))
	return nil
}

func (t NotificationType) Value() (driver.Value, error) {
	return string(t), nil
}

// JSONMap stores structured notification metadata as a JSON column
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}
	return json.Unmarshal(data, m)
}

// Notification is an informational record for a user. The engine only
// creates notifications; read/dismiss lifecycle belongs to the
// notification subsystem.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	RestaurantID uint             `gorm:"not null;index" json:"restaurant_id"`
	UserID       uint             `gorm:"not null;index" json:"user_id"`
	Type         NotificationType `gorm:"not null" json:"type"`
	Title        string           `gorm:"not null" json:"title"`
	Message      string           `json:"message"`
	Metadata     JSONMap          `gorm:"type:text" json:"metadata"` // machine-readable payload for the UI
	IsRead       bool             `gorm:"default:false" json:"is_read"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
