package services

import (
	"fmt"
	"log"
	"math"

	"ProcureApp/app/models"

	"gorm.io/gorm"
)

// TaxRate is the fixed sales tax applied to synthesized order subtotals
const TaxRate = 0.0825

// SynthesizedOrder pairs a created draft order with the decision context
// the notifier needs
type SynthesizedOrder struct {
	Order    models.Order
	Supplier models.Supplier
	Reasons  []ReorderReason
}

// SynthesisSummary reports what one synthesis pass produced. Partial
// success is expected: items whose supplier or price cannot be resolved
// are skipped, never the whole run.
type SynthesisSummary struct {
	OrdersCreated  int
	ItemsOrdered   int
	ItemsSkipped   int
	EstimatedSpend float64
	Orders         []SynthesizedOrder
}

// OrderSynthesizer turns reorder decisions into draft purchase orders,
// one order per supplier per run
type OrderSynthesizer struct {
	db          *gorm.DB
	supplierSvc *SupplierService
}

// NewOrderSynthesizer creates a new order synthesizer
func NewOrderSynthesizer(db *gorm.DB, supplierSvc *SupplierService) *OrderSynthesizer {
	return &OrderSynthesizer{db: db, supplierSvc: supplierSvc}
}

// decidedLine is one resolved, priced decision inside a supplier group
type decidedLine struct {
	decision ReorderDecision
	product  models.SupplierProduct
}

// Synthesize groups positive reorder decisions by supplier and creates one
// draft order per supplier. Items whose supplier product cannot be
// resolved are skipped and counted; everything else proceeds.
func (s *OrderSynthesizer) Synthesize(restaurant models.Restaurant, decisions []ReorderDecision, createdByID uint) (*SynthesisSummary, error) {
	summary := &SynthesisSummary{}

	groups := make(map[uint][]decidedLine)
	for _, d := range decisions {
		if !d.NeedsOrder || d.Quantity <= 0 {
			continue
		}
		if d.Item.SupplierProductID == nil {
			summary.ItemsSkipped++
			continue
		}

		product, err := s.supplierSvc.GetSupplierProduct(*d.Item.SupplierProductID)
		if err != nil {
			log.Printf("Skipping item %q in order synthesis: %v", d.Item.Name, err)
			summary.ItemsSkipped++
			continue
		}

		groups[product.SupplierID] = append(groups[product.SupplierID], decidedLine{decision: d, product: *product})
	}

	for supplierID, lines := range groups {
		created, err := s.createDraftOrder(restaurant, supplierID, lines, createdByID)
		if err != nil {
			log.Printf("Failed to create draft order for supplier %d: %v", supplierID, err)
			summary.ItemsSkipped += len(lines)
			continue
		}

		summary.OrdersCreated++
		summary.ItemsOrdered += len(created.Order.Items)
		summary.EstimatedSpend += created.Order.Total
		summary.Orders = append(summary.Orders, *created)
	}

	return summary, nil
}

// createDraftOrder prices one supplier group and persists the order with
// its line items atomically. The order number comes from the per-restaurant
// counter inside the same transaction, so a partially created order is
// never observable and numbers are never reused.
func (s *OrderSynthesizer) createDraftOrder(restaurant models.Restaurant, supplierID uint, lines []decidedLine, createdByID uint) (*SynthesizedOrder, error) {
	supplier := lines[0].product.Supplier

	var order models.Order
	var reasons []ReorderReason

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderNumber, err := s.nextOrderNumber(tx, restaurant.ID)
		if err != nil {
			return err
		}

		subtotal := 0.0
		items := make([]models.OrderLineItem, 0, len(lines))
		for _, line := range lines {
			lineSubtotal := round2(line.decision.Quantity * line.product.Price)
			subtotal += lineSubtotal
			items = append(items, models.OrderLineItem{
				SupplierProductID: line.product.ID,
				Quantity:          line.decision.Quantity,
				UnitPrice:         line.product.Price,
				Subtotal:          lineSubtotal,
			})
			reasons = append(reasons, line.decision.Reasons...)
		}

		subtotal = round2(subtotal)
		tax := round2(subtotal * TaxRate)

		order = models.Order{
			OrderNumber:       orderNumber,
			RestaurantID:      restaurant.ID,
			SupplierID:        supplierID,
			CreatedByID:       createdByID,
			Status:            models.OrderStatusDraft,
			Items:             items,
			Subtotal:          subtotal,
			Tax:               tax,
			DeliveryFee:       supplier.DeliveryFee,
			Total:             round2(subtotal + tax + supplier.DeliveryFee),
			Notes:             fmt.Sprintf("Auto-generated by the reordering engine: %d item(s) flagged for replenishment", len(items)),
			BelowMinimumOrder: supplier.MinimumOrder > 0 && subtotal < supplier.MinimumOrder,
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	return &SynthesizedOrder{Order: order, Supplier: *supplier, Reasons: reasons}, nil
}

// nextOrderNumber allocates the next sequential order number for a
// restaurant. The counter row is bumped with an atomic UPDATE inside the
// caller's transaction: the row lock it takes serializes concurrent
// synthesis runs for the same restaurant until commit, so two runs can
// never allocate the same number.
func (s *OrderSynthesizer) nextOrderNumber(tx *gorm.DB, restaurantID uint) (string, error) {
	counter := models.OrderCounter{RestaurantID: restaurantID}
	if err := tx.Where(models.OrderCounter{RestaurantID: restaurantID}).FirstOrCreate(&counter).Error; err != nil {
		return "", fmt.Errorf("failed to load order counter: %w", err)
	}

	if err := tx.Model(&models.OrderCounter{}).
		Where("restaurant_id = ?", restaurantID).
		Update("last_number", gorm.Expr("last_number + 1")).Error; err != nil {
		return "", fmt.Errorf("failed to bump order counter: %w", err)
	}

	if err := tx.Where("restaurant_id = ?", restaurantID).First(&counter).Error; err != nil {
		return "", fmt.Errorf("failed to read order counter: %w", err)
	}

	return fmt.Sprintf("ORD-%06d", counter.LastNumber), nil
}

// round2 rounds a monetary amount to cents
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
