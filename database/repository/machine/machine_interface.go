package machineRepo

import (
	"errors"

	"machly/models"
)

var (
	// ErrNotFound is returned when no machine matches the lookup.
	ErrNotFound = errors.New("machine not found")
	// ErrVersionConflict is returned when a calendar write lost a concurrent
	// update race; callers retry or surface a conflict.
	ErrVersionConflict = errors.New("machine calendar version conflict")
)

// MachineRepository defines methods for machine data access.
type MachineRepository interface {
	// GetByID retrieves a machine by its unique ID.
	GetByID(id string) (*models.Machine, error)
	// GetByProvider retrieves all machines owned by a provider.
	GetByProvider(providerID string) ([]models.Machine, error)
	// GetAll retrieves machines, optionally filtered by category, and
	// restricted to active listings when activeOnly is set.
	GetAll(category string, activeOnly bool) ([]models.Machine, error)
	// Create inserts a new machine record.
	Create(machine *models.Machine) error
	// Update replaces mutable listing fields of an existing machine.
	Update(machine *models.Machine) error
	// Delete removes a machine by ID; ownerID restricts deletion to the
	// owning provider when non-empty.
	Delete(id, ownerID string) error
	// AppendPhotos adds uploaded photo URLs to a machine.
	AppendPhotos(id string, urls []string) error
	// ReplaceCalendar writes a new calendar for the machine, guarded by the
	// expected calendar version. Returns ErrVersionConflict on a lost race.
	ReplaceCalendar(id string, calendar models.Calendar, expectedVersion int64) error
	// SetRating updates the denormalized review aggregate fields.
	SetRating(id string, rating float64, reviewsCount int) error
	// SetActive flips the listing's active flag.
	SetActive(id string, active bool) error
	// Count counts all machines.
	Count() (int64, error)
}
