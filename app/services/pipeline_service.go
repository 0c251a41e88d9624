package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ProcureApp/app/events"
	"ProcureApp/app/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RestaurantRunSummary reports one restaurant's analysis+reorder cycle
type RestaurantRunSummary struct {
	RestaurantID   uint    `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	ItemsAnalyzed  int     `json:"items_analyzed"`
	ItemsSkipped   int     `json:"items_skipped"` // insufficient ledger data
	ItemsFailed    int     `json:"items_failed"`  // storage failures, retried next run
	OrdersCreated  int     `json:"orders_created"`
	ItemsOrdered   int     `json:"items_ordered"`
	EstimatedSpend float64 `json:"estimated_spend"`
	Error          string  `json:"error,omitempty"`
}

// BatchRunSummary reports one full batch run across all restaurants
type BatchRunSummary struct {
	RunID       string                 `json:"run_id"`
	StartedAt   time.Time              `json:"started_at"`
	FinishedAt  time.Time              `json:"finished_at"`
	Restaurants []RestaurantRunSummary `json:"restaurants"`
}

// PipelineService orchestrates the forecasting and reordering pipeline.
// It has two entry points: the nightly batch run over every restaurant,
// and the event run for a single item when its stock falls below par.
type PipelineService struct {
	db            *gorm.DB
	analyzer      *ConsumptionAnalyzer
	ledgerSvc     *LedgerService
	insightSvc    *InsightService
	reorderSvc    *ReorderService
	synthesizer   *OrderSynthesizer
	notifSvc      *NotificationService
	workers       int
	tenantTimeout time.Duration
}

// NewPipelineService creates a new pipeline service
func NewPipelineService(db *gorm.DB, ledgerSvc *LedgerService, insightSvc *InsightService, synthesizer *OrderSynthesizer, notifSvc *NotificationService, workers int, tenantTimeout time.Duration) *PipelineService {
	if workers < 1 {
		workers = 1
	}
	return &PipelineService{
		db:            db,
		analyzer:      NewConsumptionAnalyzer(),
		ledgerSvc:     ledgerSvc,
		insightSvc:    insightSvc,
		reorderSvc:    NewReorderService(),
		synthesizer:   synthesizer,
		notifSvc:      notifSvc,
		workers:       workers,
		tenantTimeout: tenantTimeout,
	}
}

// RunBatch runs the nightly analysis+reorder cycle for every active
// restaurant. Restaurants are independent and processed concurrently by a
// bounded worker pool; each gets its own timeout so one pathological
// dataset cannot starve the rest. A restaurant's failure never aborts its
// siblings, and aborting mid-run leaves already-committed insights and
// orders valid.
func (s *PipelineService) RunBatch(ctx context.Context) (*BatchRunSummary, error) {
	summary := &BatchRunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	var restaurants []models.Restaurant
	if err := s.db.Where("is_active = ?", true).Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	log.Printf("Batch run %s started for %d restaurant(s)", summary.RunID, len(restaurants))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		semaphore = make(chan struct{}, s.workers)
	)

	for _, restaurant := range restaurants {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(r models.Restaurant) {
			defer wg.Done()
			defer func() { <-semaphore }()

			tenantCtx := ctx
			if s.tenantTimeout > 0 {
				var cancel context.CancelFunc
				tenantCtx, cancel = context.WithTimeout(ctx, s.tenantTimeout)
				defer cancel()
			}

			result := s.runRestaurant(tenantCtx, r)

			mu.Lock()
			summary.Restaurants = append(summary.Restaurants, result)
			mu.Unlock()
		}(restaurant)
	}

	wg.Wait()
	summary.FinishedAt = time.Now()

	log.Printf("Batch run %s finished in %v", summary.RunID, summary.FinishedAt.Sub(summary.StartedAt))
	s.notifSvc.BroadcastRunSummary(summary)
	return summary, nil
}

// runRestaurant runs the full cycle for one restaurant: analyze every
// item, upsert fresh insights, then make one reorder pass over the whole
// inventory
func (s *PipelineService) runRestaurant(ctx context.Context, restaurant models.Restaurant) RestaurantRunSummary {
	result := RestaurantRunSummary{
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
	}

	var items []models.InventoryItem
	err := s.db.
		Preload("SupplierProduct.Supplier").
		Where("restaurant_id = ? AND is_active = ?", restaurant.ID, true).
		Find(&items).Error
	if err != nil {
		result.Error = fmt.Sprintf("failed to list items: %v", err)
		return result
	}

	since := time.Now().AddDate(0, 0, -AnalysisWindowDays)
	for _, item := range items {
		if ctx.Err() != nil {
			result.Error = "run aborted: " + ctx.Err().Error()
			return result
		}

		switch analyzed, err := s.analyzeItem(restaurant, item, since); {
		case err != nil:
			log.Printf("Analysis failed for item %d (%s): %v", item.ID, item.Name, err)
			result.ItemsFailed++
		case analyzed:
			result.ItemsAnalyzed++
		default:
			result.ItemsSkipped++
		}
	}

	if ctx.Err() != nil {
		result.Error = "run aborted: " + ctx.Err().Error()
		return result
	}

	s.reorderRestaurant(restaurant, items, &result)

	if err := s.notifSvc.NotifyAnalysisSummary(restaurant, result); err != nil {
		log.Printf("Failed to create analysis summary notification for restaurant %d: %v", restaurant.ID, err)
	}

	return result
}

// analyzeItem analyzes one item's ledger and upserts the insight.
// Returns (false, nil) on insufficient data, which is a skip, not an error.
func (s *PipelineService) analyzeItem(restaurant models.Restaurant, item models.InventoryItem, since time.Time) (bool, error) {
	entries, err := s.ledgerSvc.ListUsageEntries(restaurant.ID, item.ID, since)
	if err != nil {
		return false, fmt.Errorf("ledger read: %w", err)
	}

	leadTime := DefaultLeadTimeDays
	if item.SupplierProduct != nil && item.SupplierProduct.Supplier != nil && item.SupplierProduct.Supplier.LeadTimeDays > 0 {
		leadTime = item.SupplierProduct.Supplier.LeadTimeDays
	}

	analysis, ok := s.analyzer.Analyze(entries, item.CurrentQuantity, leadTime, time.Now())
	if !ok {
		return false, nil
	}

	insight := analysis.ToInsight(restaurant.ID, item.ID, time.Now())
	if err := s.insightSvc.UpsertInsight(insight); err != nil {
		return false, err
	}

	return true, nil
}

// reorderRestaurant evaluates every item against its freshly written
// insight and synthesizes draft orders once for the whole restaurant
func (s *PipelineService) reorderRestaurant(restaurant models.Restaurant, items []models.InventoryItem, result *RestaurantRunSummary) {
	insights, err := s.insightSvc.GetInsightsForRestaurant(restaurant.ID)
	if err != nil {
		log.Printf("Failed to load insights for restaurant %d: %v", restaurant.ID, err)
		result.Error = fmt.Sprintf("failed to load insights: %v", err)
		return
	}

	var decisions []ReorderDecision
	for _, item := range items {
		var insight *models.ConsumptionInsight
		if stored, ok := insights[item.ID]; ok {
			insight = &stored
		}

		decision := s.reorderSvc.Evaluate(item, insight)
		if decision.MissingSupplier {
			if err := s.notifSvc.NotifyLowStockWithoutSupplier(restaurant, item, decision.Reasons); err != nil {
				log.Printf("Failed to create low-stock notification for item %d: %v", item.ID, err)
			}
			continue
		}
		if decision.NeedsOrder {
			decisions = append(decisions, decision)
		}
	}

	if len(decisions) == 0 {
		return
	}

	synthesis, err := s.synthesizer.Synthesize(restaurant, decisions, restaurant.OwnerUserID)
	if err != nil {
		log.Printf("Order synthesis failed for restaurant %d: %v", restaurant.ID, err)
		result.Error = fmt.Sprintf("order synthesis failed: %v", err)
		return
	}

	result.OrdersCreated = synthesis.OrdersCreated
	result.ItemsOrdered = synthesis.ItemsOrdered
	result.EstimatedSpend = synthesis.EstimatedSpend

	for _, created := range synthesis.Orders {
		if err := s.notifSvc.NotifyOrderCreated(restaurant, created.Order, created.Supplier, created.Reasons); err != nil {
			log.Printf("Failed to create order notification for order %s: %v", created.Order.OrderNumber, err)
		}
	}
}

// RunForItem is the event-triggered entry point: it re-evaluates a single
// item against whatever insight is currently stored, without refreshing
// the batch-wide analysis. Duplicate events are safe because the decision
// only looks at current state.
func (s *PipelineService) RunForItem(ctx context.Context, ev events.LowStockEvent) (*RestaurantRunSummary, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, ev.RestaurantID).Error; err != nil {
		return nil, fmt.Errorf("failed to load restaurant %d: %w", ev.RestaurantID, err)
	}

	var item models.InventoryItem
	err := s.db.
		Preload("SupplierProduct.Supplier").
		Where("restaurant_id = ?", ev.RestaurantID).
		First(&item, ev.ItemID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", ev.ItemID, err)
	}

	result := RestaurantRunSummary{
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
	}

	insight, err := s.insightSvc.GetInsight(restaurant.ID, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load insight for item %d: %w", item.ID, err)
	}

	decision := s.reorderSvc.Evaluate(item, insight)
	if decision.MissingSupplier {
		if err := s.notifSvc.NotifyLowStockWithoutSupplier(restaurant, item, decision.Reasons); err != nil {
			return nil, err
		}
		return &result, nil
	}
	if !decision.NeedsOrder {
		log.Printf("Event run: item %d (%s) does not need reordering", item.ID, item.Name)
		return &result, nil
	}

	synthesis, err := s.synthesizer.Synthesize(restaurant, []ReorderDecision{decision}, restaurant.OwnerUserID)
	if err != nil {
		return nil, err
	}

	result.OrdersCreated = synthesis.OrdersCreated
	result.ItemsOrdered = synthesis.ItemsOrdered
	result.EstimatedSpend = synthesis.EstimatedSpend

	for _, created := range synthesis.Orders {
		if err := s.notifSvc.NotifyOrderCreated(restaurant, created.Order, created.Supplier, created.Reasons); err != nil {
			log.Printf("Failed to create order notification for order %s: %v", created.Order.OrderNumber, err)
		}
	}

	return &result, nil
}
