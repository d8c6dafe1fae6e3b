package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hindusthan/agriserve/internal/models"
	apperrors "github.com/hindusthan/agriserve/pkg/errors"
)

// UserService is the persistence layer for identity records. The auth
// orchestrator is the only writer of verification state; the plain CRUD
// operations back the admin user routes.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// FindByEmail looks up a user by exact email match.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find by email: %w", err)
	}
	return &user, nil
}

// FindByID looks up a user by primary key.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find by id: %w", err)
	}
	return &user, nil
}

// Create persists a new user record.
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user service: user is required")
	}
	if strings.TrimSpace(user.Email) == "" {
		return apperrors.NewBadRequest("email is required")
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("user service: create: %w", err)
	}
	return nil
}

// UpdateFields writes only the supplied columns. GORM refreshes updated_at
// alongside the partial update.
func (s *UserService) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	if len(fields) == 0 {
		return s.FindByID(ctx, id)
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("user service: update fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	return s.FindByID(ctx, id)
}

// MarkVerified flips is_verified false -> true with a conditional update so
// two concurrent verification attempts cannot both succeed. It reports
// whether this call performed the transition.
func (s *UserService) MarkVerified(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_verified = ?", id, false).
		Updates(map[string]any{"is_verified": true, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, fmt.Errorf("user service: mark verified: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Delete removes a user by primary key.
func (s *UserService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("user service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns a page of users ordered by creation time.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]models.User, int64, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("created_at").
		Offset(skip).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list: %w", err)
	}

	return users, total, nil
}
