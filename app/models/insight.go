package models

import (
	"database/sql/driver"
	"time"
)

// TrendDirection classifies recent usage against the preceding period
type TrendDirection string

const (
	TrendUp     TrendDirection = "UP"
	TrendDown   TrendDirection = "DOWN"
	TrendStable TrendDirection = "STABLE"
)

func (d TrendDirection) String() string {
	return string(d)
}

func (d *TrendDirection) Scan(value interface{}) error {
	*d = TrendDirection(value.(string))
	return nil
}

func (d TrendDirection) Value() (driver.Value, error) {
	return string(d), nil
}

// ConsumptionInsight is the latest computed forecast snapshot for one item.
// At most one row exists per (restaurant, item); every analysis run
// overwrites it. No row exists for items with insufficient ledger data.
type ConsumptionInsight struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	RestaurantID      uint           `gorm:"not null;uniqueIndex:idx_insights_restaurant_item" json:"restaurant_id"`
	ItemID            uint           `gorm:"not null;uniqueIndex:idx_insights_restaurant_item" json:"item_id"`
	AvgDailyUsage     float64        `json:"avg_daily_usage"`
	AvgWeeklyUsage    float64        `json:"avg_weekly_usage"`
	TrendDirection    TrendDirection `gorm:"default:STABLE" json:"trend_direction"`
	DaysUntilStockout *float64       `json:"days_until_stockout,omitempty"` // nil when usage rate is zero
	SuggestedParLevel *int           `json:"suggested_par_level,omitempty"`
	DataPointCount    int            `json:"data_point_count"`
	PeriodDays        int            `json:"period_days"` // actual observed span, not the requested window
	LastAnalyzedAt    time.Time      `json:"last_analyzed_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TableName specifies the table name for ConsumptionInsight
func (ConsumptionInsight) TableName() string {
	return "consumption_insights"
}
