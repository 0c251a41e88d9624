package services

import (
	"math"
	"time"

	"ProcureApp/app/models"
)

const (
	// AnalysisWindowDays is the ledger lookback window for one analysis
	AnalysisWindowDays = 30
	// trendWindowDays is the span of each half of the trend comparison
	trendWindowDays = 14
	// trendChangeThreshold filters week-to-week noise: usage must move more
	// than this percentage before the trend flips off STABLE
	trendChangeThreshold = 15.0
	// leadTimeSafetyFactor pads the suggested par to cover lead-time variance
	leadTimeSafetyFactor = 1.5
	// minDataPoints is the minimum ledger entries needed for an analysis
	minDataPoints = 3
	// DefaultLeadTimeDays is assumed when an item has no linked supplier
	DefaultLeadTimeDays = 3
)

// UsageAnalysis is the computed consumption profile for one item
type UsageAnalysis struct {
	AvgDailyUsage     float64
	AvgWeeklyUsage    float64
	TrendDirection    models.TrendDirection
	DaysUntilStockout *float64
	SuggestedParLevel *int
	DataPointCount    int
	PeriodDays        int
}

// ConsumptionAnalyzer turns a ledger slice into usage statistics.
// It is pure: no database access, no side effects.
type ConsumptionAnalyzer struct{}

// NewConsumptionAnalyzer creates a new consumption analyzer
func NewConsumptionAnalyzer() *ConsumptionAnalyzer {
	return &ConsumptionAnalyzer{}
}

// Analyze computes usage statistics from usage/waste ledger entries ordered
// by time ascending. It returns (nil, false) when fewer than minDataPoints
// qualifying entries exist; that is insufficient data, not an error, and
// the caller must skip the insight upsert.
func (a *ConsumptionAnalyzer) Analyze(entries []models.InventoryLogEntry, currentQuantity float64, leadTimeDays int, now time.Time) (*UsageAnalysis, bool) {
	qualifying := make([]models.InventoryLogEntry, 0, len(entries))
	for _, e := range entries {
		if e.ChangeType.IsConsumption() {
			qualifying = append(qualifying, e)
		}
	}

	if len(qualifying) < minDataPoints {
		return nil, false
	}

	totalUsage := 0.0
	for _, e := range qualifying {
		totalUsage += math.Abs(e.Quantity)
	}

	// Rate over the actual observed span, not the requested window.
	// Sparse data would otherwise understate the daily rate.
	first := qualifying[0].CreatedAt
	last := qualifying[len(qualifying)-1].CreatedAt
	actualDays := last.Sub(first).Hours() / 24
	if actualDays < 1 {
		actualDays = 1
	}

	avgDaily := totalUsage / actualDays
	avgWeekly := avgDaily * 7

	analysis := &UsageAnalysis{
		AvgDailyUsage:  avgDaily,
		AvgWeeklyUsage: avgWeekly,
		TrendDirection: a.classifyTrend(qualifying, now),
		DataPointCount: len(qualifying),
		PeriodDays:     int(math.Round(actualDays)),
	}

	if avgDaily > 0 {
		days := currentQuantity / avgDaily
		analysis.DaysUntilStockout = &days
	}

	if leadTimeDays <= 0 {
		leadTimeDays = DefaultLeadTimeDays
	}
	suggested := int(math.Ceil(avgDaily * float64(leadTimeDays) * leadTimeSafetyFactor))
	analysis.SuggestedParLevel = &suggested

	return analysis, true
}

// classifyTrend compares the most recent 14 days of usage against the 14
// days before that. A zero baseline is always STABLE: there is nothing to
// divide by and no meaningful percentage to report.
func (a *ConsumptionAnalyzer) classifyTrend(entries []models.InventoryLogEntry, now time.Time) models.TrendDirection {
	recentCutoff := now.AddDate(0, 0, -trendWindowDays)
	priorCutoff := now.AddDate(0, 0, -2*trendWindowDays)

	recentUsage := 0.0
	priorUsage := 0.0
	for _, e := range entries {
		switch {
		case e.CreatedAt.After(recentCutoff):
			recentUsage += math.Abs(e.Quantity)
		case e.CreatedAt.After(priorCutoff):
			priorUsage += math.Abs(e.Quantity)
		}
	}

	if priorUsage == 0 {
		return models.TrendStable
	}

	changePercent := (recentUsage - priorUsage) / priorUsage * 100
	switch {
	case changePercent > trendChangeThreshold:
		return models.TrendUp
	case changePercent < -trendChangeThreshold:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// ToInsight converts an analysis into the persistable insight snapshot
func (a *UsageAnalysis) ToInsight(restaurantID, itemID uint, analyzedAt time.Time) models.ConsumptionInsight {
	return models.ConsumptionInsight{
		RestaurantID:      restaurantID,
		ItemID:            itemID,
		AvgDailyUsage:     a.AvgDailyUsage,
		AvgWeeklyUsage:    a.AvgWeeklyUsage,
		TrendDirection:    a.TrendDirection,
		DaysUntilStockout: a.DaysUntilStockout,
		SuggestedParLevel: a.SuggestedParLevel,
		DataPointCount:    a.DataPointCount,
		PeriodDays:        a.PeriodDays,
		LastAnalyzedAt:    analyzedAt,
	}
}
