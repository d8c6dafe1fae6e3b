package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/hindusthan/agriserve/internal/models"
	apperrors "github.com/hindusthan/agriserve/pkg/errors"
)

// ErrCustomerNotFound indicates the requested customer does not exist.
var ErrCustomerNotFound = apperrors.New("CUSTOMER_NOT_FOUND", "Customer not found", http.StatusNotFound)

// CustomerService manages the farmer profile records collected in the field.
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService constructs a CustomerService instance.
func NewCustomerService(db *gorm.DB) (*CustomerService, error) {
	if db == nil {
		return nil, errors.New("customer service: db is required")
	}
	return &CustomerService{db: db}, nil
}

// Create persists a new customer profile.
func (s *CustomerService) Create(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return errors.New("customer service: customer is required")
	}
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("customer service: create: %w", err)
	}
	return nil
}

// Get returns a customer by primary key.
func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customer service: get: %w", err)
	}
	return &customer, nil
}

// List returns a page of customers ordered by creation time.
func (s *CustomerService) List(ctx context.Context, skip, limit int) ([]models.Customer, int64, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("customer service: count: %w", err)
	}

	var customers []models.Customer
	if err := s.db.WithContext(ctx).
		Order("created_at").
		Offset(skip).
		Limit(limit).
		Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("customer service: list: %w", err)
	}

	return customers, total, nil
}

// UpdateFields writes only the supplied columns and returns the fresh record.
func (s *CustomerService) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Customer, error) {
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("customer service: update fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrCustomerNotFound
	}

	return s.Get(ctx, id)
}

// Delete removes a customer by primary key.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{})
	if result.Error != nil {
		return fmt.Errorf("customer service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
