package services

import (
	"context"
	"testing"
	"time"

	"ProcureApp/app/events"
	"ProcureApp/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestPipeline(db *gorm.DB) *PipelineService {
	ledgerSvc := NewLedgerService(db)
	insightSvc := NewInsightService(db)
	synthesizer := NewOrderSynthesizer(db, NewSupplierService(db))
	notifSvc := NewNotificationService(db)
	return NewPipelineService(db, ledgerSvc, insightSvc, synthesizer, notifSvc, 2, time.Minute)
}

func TestBatchRunFullCycle(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)
	supplier := seedSupplier(t, db, restaurant.ID, 2, 10, 0)
	tomatoProduct := seedSupplierProduct(t, db, supplier.ID, "Tomatoes", 2)
	flourProduct := seedSupplierProduct(t, db, supplier.ID, "Flour", 3)

	// Par trigger, no ledger history
	seedItem(t, db, restaurant.ID, "Tomatoes", 5, floatPtr(20), uintPtr(tomatoProduct.ID))

	// Low stock but no supplier link: notification-only
	seedItem(t, db, restaurant.ID, "Basil", 1, floatPtr(10), nil)

	// Heavy steady usage with almost no stock left: forecast trigger
	flour := seedItem(t, db, restaurant.ID, "Flour", 5, nil, uintPtr(flourProduct.ID))
	now := time.Now().UTC()
	for i := 0; i < 30; i++ {
		seedUsageEntry(t, db, flour.ID, -5, now.AddDate(0, 0, -(29-i)))
	}

	pipeline := newTestPipeline(db)
	summary, err := pipeline.RunBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Restaurants, 1)
	result := summary.Restaurants[0]
	assert.Equal(t, 1, result.ItemsAnalyzed) // only Flour has enough data
	assert.Equal(t, 2, result.ItemsSkipped)
	assert.Zero(t, result.ItemsFailed)
	assert.Equal(t, 1, result.OrdersCreated)
	assert.Equal(t, 2, result.ItemsOrdered)
	assert.Empty(t, result.Error)

	// One insight, for Flour only
	var insights []models.ConsumptionInsight
	require.NoError(t, db.Find(&insights).Error)
	require.Len(t, insights, 1)
	assert.Equal(t, flour.ID, insights[0].ItemID)
	assert.Equal(t, models.TrendStable, insights[0].TrendDirection)
	assert.Greater(t, insights[0].AvgDailyUsage, 4.0)
	require.NotNil(t, insights[0].DaysUntilStockout)
	assert.Less(t, *insights[0].DaysUntilStockout, 2.0)

	// Tomatoes and Flour share a supplier: one draft order, two lines
	var orders []models.Order
	require.NoError(t, db.Preload("Items").Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusDraft, orders[0].Status)
	require.Len(t, orders[0].Items, 2)
	for _, line := range orders[0].Items {
		assert.Greater(t, line.Quantity, 0.0)
	}

	// Order summary, Basil low-stock, and the analysis summary
	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 3)

	byType := map[models.NotificationType]models.Notification{}
	for _, n := range notifications {
		byType[n.Type] = n
		assert.Equal(t, restaurant.OwnerUserID, n.UserID)
	}
	assert.Contains(t, byType, models.NotificationOrderCreated)
	assert.Contains(t, byType, models.NotificationLowStock)
	assert.Contains(t, byType, models.NotificationAnalysisSummary)

	orderNotif := byType[models.NotificationOrderCreated]
	assert.EqualValues(t, 2, orderNotif.Metadata["item_count"])
	assert.NotEmpty(t, orderNotif.Metadata["reasons"])
}

func TestBatchRunIsRepeatableForInsights(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)
	item := seedItem(t, db, restaurant.ID, "Flour", 500, nil, nil)

	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		seedUsageEntry(t, db, item.ID, -2, now.AddDate(0, 0, -(20-i*2)))
	}

	pipeline := newTestPipeline(db)

	_, err := pipeline.RunBatch(context.Background())
	require.NoError(t, err)

	var first models.ConsumptionInsight
	require.NoError(t, db.First(&first).Error)

	_, err = pipeline.RunBatch(context.Background())
	require.NoError(t, err)

	// Same ledger data: still one row, same statistics
	var insights []models.ConsumptionInsight
	require.NoError(t, db.Find(&insights).Error)
	require.Len(t, insights, 1)
	assert.Equal(t, first.AvgDailyUsage, insights[0].AvgDailyUsage)
	assert.Equal(t, first.DataPointCount, insights[0].DataPointCount)
}

func TestBatchRunSkipsInactiveRestaurants(t *testing.T) {
	db := openTestDB(t)
	inactive := seedRestaurant(t, db)
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	pipeline := newTestPipeline(db)
	summary, err := pipeline.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Restaurants)
}

func TestBatchRunTenantTimeoutAbortsRun(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)
	supplier := seedSupplier(t, db, restaurant.ID, 2, 0, 0)
	product := seedSupplierProduct(t, db, supplier.ID, "Tomatoes", 2)
	seedItem(t, db, restaurant.ID, "Tomatoes", 5, floatPtr(20), uintPtr(product.ID))

	ledgerSvc := NewLedgerService(db)
	insightSvc := NewInsightService(db)
	synthesizer := NewOrderSynthesizer(db, NewSupplierService(db))
	notifSvc := NewNotificationService(db)
	pipeline := NewPipelineService(db, ledgerSvc, insightSvc, synthesizer, notifSvc, 1, time.Nanosecond)

	summary, err := pipeline.RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Restaurants, 1)

	result := summary.Restaurants[0]
	assert.Contains(t, result.Error, "run aborted")
	assert.Zero(t, result.ItemsAnalyzed)
	assert.Zero(t, result.OrdersCreated)

	// The aborted tenant committed nothing: the below-par item would have
	// produced an order and notifications on a normal run
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBatchRunCancelledContextKeepsCommittedWork(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)
	supplier := seedSupplier(t, db, restaurant.ID, 2, 0, 0)
	product := seedSupplierProduct(t, db, supplier.ID, "Tomatoes", 2)
	seedItem(t, db, restaurant.ID, "Tomatoes", 5, floatPtr(20), uintPtr(product.ID))

	pipeline := newTestPipeline(db)

	summary, err := pipeline.RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Restaurants, 1)
	require.Equal(t, 1, summary.Restaurants[0].OrdersCreated)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err = pipeline.RunBatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Restaurants)

	// The first run's draft is untouched by the aborted run
	var orders []models.Order
	require.NoError(t, db.Find(&orders).Error)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-000001", orders[0].OrderNumber)
}

func TestEventRunCreatesOrderForLowItem(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)
	supplier := seedSupplier(t, db, restaurant.ID, 2, 0, 0)
	product := seedSupplierProduct(t, db, supplier.ID, "Tomatoes", 2)
	item := seedItem(t, db, restaurant.ID, "Tomatoes", 5, floatPtr(20), uintPtr(product.ID))

	pipeline := newTestPipeline(db)

	ev := events.LowStockEvent{
		ItemID:          item.ID,
		RestaurantID:    restaurant.ID,
		ItemName:        item.Name,
		CurrentQuantity: 5,
		ParLevel:        20,
	}

	result, err := pipeline.RunForItem(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrdersCreated)

	var orders []models.Order
	require.NoError(t, db.Preload("Items").Find(&orders).Error)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 15.0, orders[0].Items[0].Quantity)
	assert.Equal(t, "ORD-000001", orders[0].OrderNumber)

	// Re-delivered events re-evaluate current state; stock is still low,
	// so a second draft is created with the next number
	result, err = pipeline.RunForItem(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrdersCreated)

	require.NoError(t, db.Order("id ASC").Find(&orders).Error)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-000002", orders[1].OrderNumber)
}

func TestEventRunSkipsHealthyItem(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)
	supplier := seedSupplier(t, db, restaurant.ID, 2, 0, 0)
	product := seedSupplierProduct(t, db, supplier.ID, "Tomatoes", 2)
	item := seedItem(t, db, restaurant.ID, "Tomatoes", 18, floatPtr(20), uintPtr(product.ID))

	pipeline := newTestPipeline(db)

	ev := events.LowStockEvent{ItemID: item.ID, RestaurantID: restaurant.ID}
	result, err := pipeline.RunForItem(context.Background(), ev)
	require.NoError(t, err)
	assert.Zero(t, result.OrdersCreated)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEventRunNotifiesWhenSupplierMissing(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)
	item := seedItem(t, db, restaurant.ID, "Basil", 1, floatPtr(10), nil)

	pipeline := newTestPipeline(db)

	ev := events.LowStockEvent{ItemID: item.ID, RestaurantID: restaurant.ID}
	result, err := pipeline.RunForItem(context.Background(), ev)
	require.NoError(t, err)
	assert.Zero(t, result.OrdersCreated)

	var notifications []models.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationLowStock, notifications[0].Type)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEventRunUnknownItem(t *testing.T) {
	db := openTestDB(t)
	restaurant := seedRestaurant(t, db)

	pipeline := newTestPipeline(db)

	_, err := pipeline.RunForItem(context.Background(), events.LowStockEvent{
		ItemID: 999, RestaurantID: restaurant.ID,
	})
	assert.Error(t, err)
}
