package services

import (
	"fmt"
	"log"
	"time"

	"ProcureApp/app/events"
	"ProcureApp/app/models"

	"gorm.io/gorm"
)

// LedgerService reads and appends inventory log entries. The ledger is
// append-only: entries are never updated or deleted.
type LedgerService struct {
	db        *gorm.DB
	publisher *events.Publisher
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// SetPublisher enables low-stock event publication on stock adjustments
func (s *LedgerService) SetPublisher(publisher *events.Publisher) {
	s.publisher = publisher
}

// ListUsageEntries returns an item's USED and WASTE entries since the given
// time, ordered by creation time ascending
func (s *LedgerService) ListUsageEntries(restaurantID, itemID uint, since time.Time) ([]models.InventoryLogEntry, error) {
	var entries []models.InventoryLogEntry
	err := s.db.
		Joins("JOIN inventory_items ON inventory_items.id = inventory_log_entries.item_id").
		Where("inventory_items.restaurant_id = ?", restaurantID).
		Where("inventory_log_entries.item_id = ?", itemID).
		Where("inventory_log_entries.change_type IN ?", []models.ChangeType{models.ChangeUsed, models.ChangeWaste}).
		Where("inventory_log_entries.created_at >= ?", since).
		Order("inventory_log_entries.created_at ASC").
		Find(&entries).Error
	return entries, err
}

// AdjustStock applies a signed quantity change to an item and appends the
// matching ledger entry in one transaction. When the adjustment lands the
// item below its par level, a low-stock event is published.
func (s *LedgerService) AdjustStock(itemID uint, changeType models.ChangeType, quantity float64, reference string, userID uint) error {
	var item models.InventoryItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}

		previous := item.CurrentQuantity
		item.CurrentQuantity += quantity
		if item.CurrentQuantity < 0 {
			item.CurrentQuantity = 0
		}

		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		entry := models.InventoryLogEntry{
			ItemID:           itemID,
			ChangeType:       changeType,
			Quantity:         quantity,
			PreviousQuantity: previous,
			NewQuantity:      item.CurrentQuantity,
			Reference:        reference,
		}
		if userID != 0 {
			entry.UserID = &userID
		}

		return tx.Create(&entry).Error
	})
	if err != nil {
		return fmt.Errorf("failed to adjust stock for item %d: %w", itemID, err)
	}

	s.publishIfLow(item)
	return nil
}

// publishIfLow emits a low-stock event when the item sits below par.
// Publication failures are logged only: the adjustment itself already
// committed and the nightly batch covers any missed event.
func (s *LedgerService) publishIfLow(item models.InventoryItem) {
	if s.publisher == nil || item.ParLevel == nil || *item.ParLevel <= 0 {
		return
	}
	if item.CurrentQuantity >= *item.ParLevel {
		return
	}

	ev := events.LowStockEvent{
		ItemID:          item.ID,
		RestaurantID:    item.RestaurantID,
		ItemName:        item.Name,
		CurrentQuantity: item.CurrentQuantity,
		ParLevel:        *item.ParLevel,
	}
	if err := s.publisher.PublishLowStock(ev); err != nil {
		log.Printf("Failed to publish low-stock event for item %d: %v", item.ID, err)
	}
}

// GetLowStockItems returns a restaurant's active items sitting below par
func (s *LedgerService) GetLowStockItems(restaurantID uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Where("par_level IS NOT NULL AND par_level > 0 AND current_quantity < par_level").
		Order("current_quantity ASC").
		Find(&items).Error
	return items, err
}
