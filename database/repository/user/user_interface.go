package userRepo

import (
	"errors"

	"machly/models"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address; (nil, nil) when absent.
	GetByEmail(email string) (*models.User, error)
	// GetAll retrieves all users, optionally filtered by role ("" for all).
	GetAll(role string) ([]models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// Update modifies an existing user record.
	Update(user *models.User) error
	// Delete removes a user record by its ID.
	Delete(id string) error
	// CountByRole counts users with the given role.
	CountByRole(role string) (int64, error)
	// CountUnverifiedProviders counts providers awaiting verification.
	CountUnverifiedProviders() (int64, error)
	// Count counts all users.
	Count() (int64, error)
}
