package services

import (
	"testing"
	"time"

	"ProcureApp/app/database"
	"ProcureApp/app/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory sqlite database with the engine's schema.
// MaxOpenConns(1) keeps every connection on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func seedRestaurant(t *testing.T, db *gorm.DB) models.Restaurant {
	t.Helper()

	restaurant := models.Restaurant{Name: "Testaurant", OwnerUserID: 42, IsActive: true}
	require.NoError(t, db.Create(&restaurant).Error)
	return restaurant
}

func seedSupplier(t *testing.T, db *gorm.DB, restaurantID uint, leadTimeDays int, deliveryFee, minimumOrder float64) models.Supplier {
	t.Helper()

	supplier := models.Supplier{
		RestaurantID: restaurantID,
		Name:         "Fresh Farms",
		LeadTimeDays: leadTimeDays,
		DeliveryFee:  deliveryFee,
		MinimumOrder: minimumOrder,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&supplier).Error)
	return supplier
}

func seedSupplierProduct(t *testing.T, db *gorm.DB, supplierID uint, name string, price float64) models.SupplierProduct {
	t.Helper()

	product := models.SupplierProduct{
		SupplierID: supplierID,
		Name:       name,
		Unit:       "kg",
		Price:      price,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedItem(t *testing.T, db *gorm.DB, restaurantID uint, name string, quantity float64, parLevel *float64, supplierProductID *uint) models.InventoryItem {
	t.Helper()

	item := models.InventoryItem{
		RestaurantID:      restaurantID,
		Name:              name,
		Unit:              "kg",
		CurrentQuantity:   quantity,
		ParLevel:          parLevel,
		SupplierProductID: supplierProductID,
		IsActive:          true,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedUsageEntry(t *testing.T, db *gorm.DB, itemID uint, quantity float64, createdAt time.Time) {
	t.Helper()

	entry := models.InventoryLogEntry{
		ItemID:     itemID,
		ChangeType: models.ChangeUsed,
		Quantity:   quantity,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&entry).Error)
}

func floatPtr(v float64) *float64 { return &v }
func uintPtr(v uint) *uint        { return &v }
