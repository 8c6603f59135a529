package booking

import (
	"errors"
	"fmt"

	machineRepo "machly/database/repository/machine"
	"machly/models"
)

// GetByID returns the booking if the actor participates in it or is an admin.
func (s *DefaultBookingService) GetByID(actor models.Actor, bookingID string) (*models.Booking, error) {
	booking, err := s.fetch(bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListForRenter returns the renter's bookings, newest first.
func (s *DefaultBookingService) ListForRenter(renterID string) ([]models.Booking, error) {
	bookings, err := s.BookingRepo.GetByRenter(renterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list renter bookings: %w", err)
	}
	return bookings, nil
}

// ListForProvider returns bookings across all of the provider's machines.
func (s *DefaultBookingService) ListForProvider(providerID string) ([]models.Booking, error) {
	bookings, err := s.BookingRepo.GetByProvider(providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider bookings: %w", err)
	}
	return bookings, nil
}

// ListForMachine returns a machine's bookings for its owner or an admin.
func (s *DefaultBookingService) ListForMachine(actor models.Actor, machineID string) ([]models.Booking, error) {
	machine, err := s.MachineRepo.GetByID(machineID)
	if err != nil {
		if errors.Is(err, machineRepo.ErrNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to fetch machine: %w", err)
	}
	if machine.ProviderID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	bookings, err := s.BookingRepo.GetByMachine(machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list machine bookings: %w", err)
	}
	return bookings, nil
}
