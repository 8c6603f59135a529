// Package admin implements platform oversight: stats, account management,
// and moderation switches the other services do not expose.
package admin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "machly/database/repository/booking"
	machineRepo "machly/database/repository/machine"
	userRepo "machly/database/repository/user"
	"machly/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when the target user or machine is missing.
	ErrNotFound = errors.New("not found")
	// ErrLastAdmin is returned when deleting the only admin account.
	ErrLastAdmin = errors.New("cannot remove the last admin account")
	// ErrEmailTaken is returned when the admin email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalid is returned for malformed admin account data.
	ErrInvalid = errors.New("invalid admin account data")
)

// Stats is the platform dashboard snapshot. Revenue is the decimal sum of
// all booking totals ever recorded.
type Stats struct {
	Users               int64        `json:"users"`
	Renters             int64        `json:"renters"`
	Providers           int64        `json:"providers"`
	UnverifiedProviders int64        `json:"unverifiedProviders"`
	Machines            int64        `json:"machines"`
	Bookings            int64        `json:"bookings"`
	Revenue             models.Money `json:"revenue"`
}

// AdminService manages the admin-only surface.
type AdminService interface {
	Stats() (*Stats, error)
	ListUsers(role string) ([]models.User, error)
	GetUser(userID string) (*models.User, error)
	CreateAdmin(name, email, password string) (*models.User, error)
	VerifyProvider(userID string) error
	SetUserRole(userID, role string) error
	DeleteUser(userID string) error
	ListBookings(status string) ([]models.Booking, error)
	ListMachines(category string) ([]models.Machine, error)
	SetMachineActive(machineID string, active bool) error
}

// DefaultAdminService implements AdminService.
type DefaultAdminService struct {
	UserRepo    userRepo.UserRepository
	MachineRepo machineRepo.MachineRepository
	BookingRepo bookingRepo.BookingRepository
}

// NewDefaultAdminService wires an admin service over the given repositories.
func NewDefaultAdminService(ur userRepo.UserRepository, mr machineRepo.MachineRepository, br bookingRepo.BookingRepository) *DefaultAdminService {
	return &DefaultAdminService{UserRepo: ur, MachineRepo: mr, BookingRepo: br}
}

// Stats assembles the dashboard counters.
func (s *DefaultAdminService) Stats() (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.Users, err = s.UserRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.Renters, err = s.UserRepo.CountByRole(models.RoleRenter); err != nil {
		return nil, fmt.Errorf("failed to count renters: %w", err)
	}
	if stats.Providers, err = s.UserRepo.CountByRole(models.RoleProvider); err != nil {
		return nil, fmt.Errorf("failed to count providers: %w", err)
	}
	if stats.UnverifiedProviders, err = s.UserRepo.CountUnverifiedProviders(); err != nil {
		return nil, fmt.Errorf("failed to count unverified providers: %w", err)
	}
	if stats.Machines, err = s.MachineRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count machines: %w", err)
	}
	if stats.Bookings, err = s.BookingRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if stats.Revenue, err = s.BookingRepo.SumTotalPrices(); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return stats, nil
}

// ListUsers returns accounts, optionally filtered by role.
func (s *DefaultAdminService) ListUsers(role string) ([]models.User, error) {
	users, err := s.UserRepo.GetAll(role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a single account by id.
func (s *DefaultAdminService) GetUser(userID string) (*models.User, error) {
	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// CreateAdmin registers a new admin account.
func (s *DefaultAdminService) CreateAdmin(name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalid)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}

	existing, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	admin := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.UserRepo.Create(admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}

// VerifyProvider marks a provider account as vetted.
func (s *DefaultAdminService) VerifyProvider(userID string) error {
	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	if user.Role != models.RoleProvider {
		return fmt.Errorf("%w: user %s is not a provider", ErrInvalid, userID)
	}

	user.Verified = true
	if err := s.UserRepo.Update(user); err != nil {
		return fmt.Errorf("failed to verify provider: %w", err)
	}
	return nil
}

// SetUserRole changes an account's role. Demoting the only admin is refused.
func (s *DefaultAdminService) SetUserRole(userID, role string) error {
	switch role {
	case models.RoleRenter, models.RoleProvider, models.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, role)
	}

	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	if user.Role == role {
		return nil
	}

	if user.Role == models.RoleAdmin {
		admins, err := s.UserRepo.CountByRole(models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	if err := s.UserRepo.Update(user); err != nil {
		return fmt.Errorf("failed to change role: %w", err)
	}
	return nil
}

// DeleteUser removes an account. The platform always keeps at least one
// admin.
func (s *DefaultAdminService) DeleteUser(userID string) error {
	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		admins, err := s.UserRepo.CountByRole(models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := s.UserRepo.Delete(userID); err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListBookings returns all bookings, optionally filtered by status.
func (s *DefaultAdminService) ListBookings(status string) ([]models.Booking, error) {
	bookings, err := s.BookingRepo.GetAll(status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListMachines returns machines regardless of their active flag, optionally
// filtered by category.
func (s *DefaultAdminService) ListMachines(category string) ([]models.Machine, error) {
	machines, err := s.MachineRepo.GetAll(category, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

// SetMachineActive toggles a listing's visibility. A deactivated machine
// keeps its existing bookings but accepts no new ones.
func (s *DefaultAdminService) SetMachineActive(machineID string, active bool) error {
	if err := s.MachineRepo.SetActive(machineID, active); err != nil {
		if errors.Is(err, machineRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to toggle machine: %w", err)
	}
	return nil
}
