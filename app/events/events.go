package events

// SubjectLowStock is the subject low-stock events are published on
const SubjectLowStock = "procure.inventory.low_stock"

// LowStockEvent signals that an item's stock fell below its par level.
// Duplicate deliveries are safe: the event run re-evaluates current state,
// so at-least-once delivery is acceptable.
type LowStockEvent struct {
	ItemID          uint    `json:"item_id"`
	RestaurantID    uint    `json:"restaurant_id"`
	ItemName        string  `json:"item_name"`
	CurrentQuantity float64 `json:"current_quantity"`
	ParLevel        float64 `json:"par_level"`
}
