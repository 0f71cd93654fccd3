// Package repositories holds the thin persistence layer. Every repository is
// constructed with an explicit *gorm.DB handle; there is no ambient database
// state anywhere in the application.
package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/pkg/apperr"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by email address.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
	}
	return user, err
}

// FindByUsername looks up a user by username.
func (r *UserRepository) FindByUsername(username string) (models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("user %s: %w", username, apperr.ErrNotFound)
	}
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(id string) (models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return user, err
}

// Create persists a new user record. A username or email collision that
// slipped past the service-level checks surfaces as apperr.ErrDuplicate.
func (r *UserRepository) Create(user *models.User) error {
	err := r.db.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("user %s: %w", user.Username, apperr.ErrDuplicate)
	}
	return err
}
