package services

import (
	"fmt"
	"math"

	"ProcureApp/app/models"
)

// TriggerKind identifies which replenishment rule fired
type TriggerKind string

const (
	TriggerForecastStockout TriggerKind = "forecast_stockout"
	TriggerBelowPar         TriggerKind = "below_par"
)

// ReorderReason is one structured explanation for a reorder decision.
// Reasons stay structured until the notification boundary renders them,
// which keeps the decision engine testable without string matching.
type ReorderReason struct {
	Kind    TriggerKind
	Details string
}

// ReorderDecision is the decision engine's verdict for one item
type ReorderDecision struct {
	Item            models.InventoryItem
	NeedsOrder      bool
	Quantity        float64
	Reasons         []ReorderReason
	MissingSupplier bool // a trigger fired but the item has no supplier link
}

// ReorderService decides whether items need replenishment and how much
type ReorderService struct{}

// NewReorderService creates a new reorder service
func NewReorderService() *ReorderService {
	return &ReorderService{}
}

// Evaluate applies the two replenishment triggers to one item, in order:
//
//  1. Forecast: the stockout projection runs out within the supplier's
//     lead time (plus one day of slack). Quantity tops up to the larger of
//     two weeks of usage and the suggested par.
//  2. Par level: stock fell under half of the configured par. Quantity
//     tops back up to par. Applies even when no insight exists.
//
// When both fire, the larger quantity wins and both reasons are kept.
// Items without a supplier link cannot be auto-ordered; the decision is
// marked MissingSupplier so the caller can notify instead.
func (s *ReorderService) Evaluate(item models.InventoryItem, insight *models.ConsumptionInsight) ReorderDecision {
	decision := ReorderDecision{Item: item}
	leadTime := s.leadTimeDays(item)

	if insight != nil && insight.DaysUntilStockout != nil {
		daysLeft := *insight.DaysUntilStockout
		if daysLeft <= float64(leadTime+1) {
			twoWeekBuffer := insight.AvgWeeklyUsage*2 - item.CurrentQuantity
			topUpToPar := 0.0
			if insight.SuggestedParLevel != nil {
				topUpToPar = float64(*insight.SuggestedParLevel) - item.CurrentQuantity
			}

			qty := math.Ceil(math.Max(twoWeekBuffer, topUpToPar))
			if qty > 0 {
				decision.NeedsOrder = true
				decision.Quantity = qty
				decision.Reasons = append(decision.Reasons, ReorderReason{
					Kind: TriggerForecastStockout,
					Details: fmt.Sprintf("%s runs out in %.1f days (supplier lead time %d days)",
						item.Name, daysLeft, leadTime),
				})
			}
		}
	}

	if item.ParLevel != nil && *item.ParLevel > 0 && item.CurrentQuantity < *item.ParLevel*0.5 {
		qty := *item.ParLevel - item.CurrentQuantity
		if qty > 0 {
			decision.NeedsOrder = true
			if qty > decision.Quantity {
				decision.Quantity = qty
			}
			decision.Reasons = append(decision.Reasons, ReorderReason{
				Kind: TriggerBelowPar,
				Details: fmt.Sprintf("%s is critically low: %.1f on hand vs par level %.1f",
					item.Name, item.CurrentQuantity, *item.ParLevel),
			})
		}
	}

	if decision.NeedsOrder && item.SupplierProductID == nil {
		decision.NeedsOrder = false
		decision.MissingSupplier = true
	}

	return decision
}

// leadTimeDays resolves the lead time from the item's linked supplier,
// falling back to the default when no link exists
func (s *ReorderService) leadTimeDays(item models.InventoryItem) int {
	if item.SupplierProduct != nil && item.SupplierProduct.Supplier != nil && item.SupplierProduct.Supplier.LeadTimeDays > 0 {
		return item.SupplierProduct.Supplier.LeadTimeDays
	}
	return DefaultLeadTimeDays
}

// RenderReasons turns structured reasons into the human-readable lines
// attached to notifications
func RenderReasons(reasons []ReorderReason) []string {
	lines := make([]string, 0, len(reasons))
	for _, r := range reasons {
		lines = append(lines, r.Details)
	}
	return lines
}
