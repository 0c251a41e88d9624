package services

import (
	"fmt"

	"ProcureApp/app/models"

	"gorm.io/gorm"
)

// SupplierService reads supplier catalog data for the reorder engine
type SupplierService struct {
	db *gorm.DB
}

// NewSupplierService creates a new supplier service
func NewSupplierService(db *gorm.DB) *SupplierService {
	return &SupplierService{db: db}
}

// GetSupplierProduct resolves a catalog product with its supplier loaded.
// The product's price is the live price used to snapshot line items.
func (s *SupplierService) GetSupplierProduct(id uint) (*models.SupplierProduct, error) {
	var product models.SupplierProduct
	err := s.db.Preload("Supplier").First(&product, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve supplier product %d: %w", id, err)
	}
	if product.Supplier == nil {
		return nil, fmt.Errorf("supplier product %d has no supplier", id)
	}
	return &product, nil
}
