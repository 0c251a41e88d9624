package services

import (
	"fmt"
	"strings"

	"ProcureApp/app/models"
	"ProcureApp/app/websocket"

	"gorm.io/gorm"
)

// NotificationService creates notification records for the restaurant's
// owner. Delivery (push/email) belongs to the notification subsystem; the
// engine only enqueues records, so at-least-once semantics are fine.
type NotificationService struct {
	db       *gorm.DB
	wsServer *websocket.Server
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// SetWebSocketServer enables pushing created notifications to the live feed
func (s *NotificationService) SetWebSocketServer(server *websocket.Server) {
	s.wsServer = server
}

// Create persists a notification and pushes it to the live feed
func (s *NotificationService) Create(restaurantID, userID uint, notifType models.NotificationType, title, message string, metadata models.JSONMap) error {
	notification := models.Notification{
		RestaurantID: restaurantID,
		UserID:       userID,
		Type:         notifType,
		Title:        title,
		Message:      message,
		Metadata:     metadata,
	}

	if err := s.db.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.wsServer != nil {
		s.wsServer.Broadcast(websocket.TypeNotification, notification)
	}

	return nil
}

// NotifyOrderCreated emits the summary notification for one synthesized
// draft order. Structured reasons are rendered to text here, at the
// boundary, and also carried verbatim in the metadata.
func (s *NotificationService) NotifyOrderCreated(restaurant models.Restaurant, order models.Order, supplier models.Supplier, reasons []ReorderReason) error {
	lines := RenderReasons(reasons)

	title := fmt.Sprintf("Draft order %s created for %s", order.OrderNumber, supplier.Name)
	message := fmt.Sprintf("%d item(s), estimated total $%.2f. %s",
		len(order.Items), order.Total, strings.Join(lines, "; "))

	metadata := models.JSONMap{
		"order_id":            order.ID,
		"order_number":        order.OrderNumber,
		"supplier_id":         supplier.ID,
		"supplier_name":       supplier.Name,
		"item_count":          len(order.Items),
		"estimated_total":     order.Total,
		"below_minimum_order": order.BelowMinimumOrder,
		"reasons":             lines,
	}

	err := s.Create(restaurant.ID, restaurant.OwnerUserID, models.NotificationOrderCreated, title, message, metadata)
	if err != nil {
		return err
	}

	if s.wsServer != nil {
		s.wsServer.Broadcast(websocket.TypeOrderCreated, order)
	}
	return nil
}

// BroadcastRunSummary pushes a finished batch run summary to the live feed
func (s *NotificationService) BroadcastRunSummary(summary *BatchRunSummary) {
	if s.wsServer != nil {
		s.wsServer.Broadcast(websocket.TypeRunSummary, summary)
	}
}

// NotifyLowStockWithoutSupplier emits the notification-only outcome for an
// item that needs replenishment but has no supplier product linked
func (s *NotificationService) NotifyLowStockWithoutSupplier(restaurant models.Restaurant, item models.InventoryItem, reasons []ReorderReason) error {
	lines := RenderReasons(reasons)

	title := fmt.Sprintf("%s needs restocking", item.Name)
	message := fmt.Sprintf("%s is low (%.1f %s on hand) but has no linked supplier product, so no order was created. %s",
		item.Name, item.CurrentQuantity, item.Unit, strings.Join(lines, "; "))

	metadata := models.JSONMap{
		"item_id":          item.ID,
		"item_name":        item.Name,
		"current_quantity": item.CurrentQuantity,
		"reasons":          lines,
	}

	return s.Create(restaurant.ID, restaurant.OwnerUserID, models.NotificationLowStock, title, message, metadata)
}

// NotifyAnalysisSummary emits one per-restaurant summary after a batch run
func (s *NotificationService) NotifyAnalysisSummary(restaurant models.Restaurant, summary RestaurantRunSummary) error {
	title := "Nightly inventory analysis finished"
	message := fmt.Sprintf("%d item(s) analyzed, %d skipped for insufficient data, %d draft order(s) created (estimated $%.2f).",
		summary.ItemsAnalyzed, summary.ItemsSkipped, summary.OrdersCreated, summary.EstimatedSpend)

	metadata := models.JSONMap{
		"items_analyzed":  summary.ItemsAnalyzed,
		"items_skipped":   summary.ItemsSkipped,
		"items_failed":    summary.ItemsFailed,
		"orders_created":  summary.OrdersCreated,
		"estimated_spend": summary.EstimatedSpend,
	}

	return s.Create(restaurant.ID, restaurant.OwnerUserID, models.NotificationAnalysisSummary, title, message, metadata)
}
