package services

import (
	"errors"
	"fmt"

	"ProcureApp/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsightService persists consumption insights, one row per
// (restaurant, item)
type InsightService struct {
	db *gorm.DB
}

// NewInsightService creates a new insight service
func NewInsightService(db *gorm.DB) *InsightService {
	return &InsightService{db: db}
}

// UpsertInsight writes an item's latest insight, overwriting any previous
// snapshot. Running it twice with the same computed values leaves every
// column but last_analyzed_at unchanged.
func (s *InsightService) UpsertInsight(insight models.ConsumptionInsight) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "restaurant_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"avg_daily_usage",
			"avg_weekly_usage",
			"trend_direction",
			"days_until_stockout",
			"suggested_par_level",
			"data_point_count",
			"period_days",
			"last_analyzed_at",
			"updated_at",
		}),
	}).Create(&insight).Error
	if err != nil {
		return fmt.Errorf("failed to upsert insight for item %d: %w", insight.ItemID, err)
	}
	return nil
}

// GetInsight returns the stored insight for an item, or nil when the item
// has never accumulated enough ledger data to be analyzed
func (s *InsightService) GetInsight(restaurantID, itemID uint) (*models.ConsumptionInsight, error) {
	var insight models.ConsumptionInsight
	err := s.db.
		Where("restaurant_id = ? AND item_id = ?", restaurantID, itemID).
		First(&insight).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// GetInsightsForRestaurant returns all stored insights for a restaurant,
// keyed by item id
func (s *InsightService) GetInsightsForRestaurant(restaurantID uint) (map[uint]models.ConsumptionInsight, error) {
	var insights []models.ConsumptionInsight
	if err := s.db.Where("restaurant_id = ?", restaurantID).Find(&insights).Error; err != nil {
		return nil, err
	}

	byItem := make(map[uint]models.ConsumptionInsight, len(insights))
	for _, insight := range insights {
		byItem[insight.ItemID] = insight
	}
	return byItem, nil
}
