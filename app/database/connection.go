package database

import (
	"fmt"
	"log"
	"time"

	"ProcureApp/app/config"
	"ProcureApp/app/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// Initialize sets up the database connection from configuration
func Initialize(cfg *config.AppConfig) error {
	var err error

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	}

	switch cfg.Database.Driver {
	case "sqlite":
		log.Printf("Connecting to sqlite database at %s", cfg.Database.SQLitePath)
		db, err = gorm.Open(sqlite.Open(cfg.Database.SQLitePath), gormConfig)
	default:
		log.Printf("Connecting to postgres database: host=%s port=%d dbname=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
		db, err = gorm.Open(postgres.Open(cfg.Database.DSN()), gormConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RunMigrations creates or updates the engine's tables
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		// Tenant models
		&models.Restaurant{},

		// Supplier models
		&models.Supplier{},
		&models.SupplierProduct{},

		// Inventory models
		&models.InventoryItem{},
		&models.InventoryLogEntry{},

		// Forecast models
		&models.ConsumptionInsight{},

		// Order models
		&models.Order{},
		&models.OrderLineItem{},
		&models.OrderCounter{},

		// Notification models
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
