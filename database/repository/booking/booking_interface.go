package bookingRepo

import (
	"context"
	"errors"

	"machly/models"
)

var (
	// ErrNotFound is returned when no booking matches the lookup.
	ErrNotFound = errors.New("booking not found")
	// ErrVersionConflict is returned when the paired machine calendar write
	// lost a concurrent update race and the transaction was rolled back.
	ErrVersionConflict = errors.New("machine calendar version conflict")
)

// BookingRepository defines methods for booking data access. The two
// lifecycle mutations that also touch the machine calendar are transactional:
// either both documents change or neither does.
type BookingRepository interface {
	// GetByID retrieves a booking by its unique ID.
	GetByID(id string) (*models.Booking, error)
	// GetByRenter retrieves a renter's bookings, newest first.
	GetByRenter(renterID string) ([]models.Booking, error)
	// GetByProvider retrieves a provider's bookings, newest first.
	GetByProvider(providerID string) ([]models.Booking, error)
	// GetByMachine retrieves all bookings for one machine.
	GetByMachine(machineID string) ([]models.Booking, error)
	// GetAll retrieves bookings, optionally filtered by status.
	GetAll(status string) ([]models.Booking, error)
	// Update replaces an existing booking document.
	Update(booking *models.Booking) error
	// CountActiveForMachine counts Pending/Confirmed bookings on a machine.
	CountActiveForMachine(machineID string) (int64, error)
	// Count counts all bookings.
	Count() (int64, error)
	// SumTotalPrices sums all booking totals (admin revenue figure).
	SumTotalPrices() (models.Money, error)
	// CreateWithReservation inserts the booking and writes the machine's new
	// calendar (with the reserved entry appended) in a single transaction.
	CreateWithReservation(ctx context.Context, booking *models.Booking, calendar models.Calendar, expectedVersion int64) error
	// ReleaseWithCalendar persists a booking update and the machine's new
	// calendar (reserved entries removed) in a single transaction.
	ReleaseWithCalendar(ctx context.Context, booking *models.Booking, calendar models.Calendar, expectedVersion int64) error
}
