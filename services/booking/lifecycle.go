package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "machly/database/repository/booking"
	machineRepo "machly/database/repository/machine"
	"machly/models"
	"machly/services/pricing"
	"machly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// calendar writes retry a couple of times when an out-of-process writer
// bumps the machine's calendar version underneath us.
const maxVersionRetries = 3

// Create reserves [start, end) on the machine and records a Pending booking.
// The conflict check and the reservation write run under the per-machine
// lock, and the write itself is guarded by the calendar version, so two
// renters can never hold the same range.
func (s *DefaultBookingService) Create(ctx context.Context, actor models.Actor, req CreateRequest) (*models.Booking, error) {
	if !req.End.After(req.Start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidRange)
	}
	if req.Start.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: start is in the past", ErrInvalidRange)
	}

	machine, err := s.MachineRepo.GetByID(req.MachineID)
	if err != nil {
		if errors.Is(err, machineRepo.ErrNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to fetch machine: %w", err)
	}
	if !machine.IsActive {
		return nil, ErrMachineInactive
	}
	if machine.ProviderID == actor.ID {
		return nil, ErrOwnMachine
	}

	unlock := s.locks.Lock(machine.ID)
	defer unlock()

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		if machine.Calendar.HasConflict(req.Start, req.End) {
			return nil, ErrConflict
		}

		booking := &models.Booking{
			ID:         uuid.New().String(),
			MachineID:  machine.ID,
			RenterID:   actor.ID,
			ProviderID: machine.ProviderID,
			Start:      req.Start,
			End:        req.End,
			Status:     models.BookingPending,
			TotalPrice: pricing.CalculatePrice(machine, req.Start, req.End, req.Quantity),
			CreatedAt:  time.Now().UTC(),
		}
		calendar := machine.Calendar.Add(models.CalendarEntry{
			ID:        uuid.New().String(),
			Start:     req.Start,
			End:       req.End,
			Status:    models.EntryReserved,
			BookingID: booking.ID,
		})

		err = s.BookingRepo.CreateWithReservation(ctx, booking, calendar, machine.CalendarVersion)
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			machine, err = s.MachineRepo.GetByID(machine.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to refetch machine: %w", err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		s.notify(machine.ProviderID, models.NotifyBookingCreated, "New booking request",
			fmt.Sprintf("Your machine %q has a new booking request.", machine.Title), booking.ID)
		return booking, nil
	}
	return nil, ErrConflict
}

// UpdateStatus moves the booking through its state machine. Confirmation is
// the provider's call; cancellation is delegated to Cancel; Finished is only
// reachable through checkout.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, bookingID, status string) (*models.Booking, error) {
	if status == models.BookingCanceled {
		return s.Cancel(ctx, actor, bookingID)
	}

	booking, err := s.fetch(bookingID)
	if err != nil {
		return nil, err
	}
	if status == models.BookingFinished {
		return nil, ErrFinishRequiresCheckout
	}
	if status != models.BookingConfirmed {
		return nil, &TransitionError{From: booking.Status, To: status}
	}

	if booking.ProviderID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !models.CanTransition(booking.Status, models.BookingConfirmed) {
		return nil, &TransitionError{From: booking.Status, To: models.BookingConfirmed}
	}

	booking.Status = models.BookingConfirmed
	if err := s.BookingRepo.Update(booking); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	s.notify(booking.RenterID, models.NotifyBookingConfirmed, "Booking confirmed",
		"Your booking request was accepted by the provider.", booking.ID)
	return booking, nil
}

// Cancel releases the booking's reserved calendar range and marks it
// Canceled. Renter, provider, or an admin may cancel while the booking is
// still active.
func (s *DefaultBookingService) Cancel(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	booking, err := s.fetch(bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != booking.RenterID && actor.ID != booking.ProviderID {
		return nil, ErrForbidden
	}
	if !booking.Active() {
		return nil, &TransitionError{From: booking.Status, To: models.BookingCanceled}
	}

	unlock := s.locks.Lock(booking.MachineID)
	defer unlock()

	booking.Status = models.BookingCanceled

	machine, err := s.MachineRepo.GetByID(booking.MachineID)
	if errors.Is(err, machineRepo.ErrNotFound) {
		// The machine is gone; there is no calendar left to release.
		if err := s.BookingRepo.Update(booking); err != nil {
			return nil, fmt.Errorf("failed to cancel booking: %w", err)
		}
		return booking, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch machine: %w", err)
	}

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		calendar, removed := machine.Calendar.RemoveForBooking(booking.ID)
		if removed == 0 {
			utils.GetLogger().Warn("Cancel: booking had no calendar entry to release",
				zap.String("bookingID", booking.ID), zap.String("machineID", machine.ID))
		}

		err = s.BookingRepo.ReleaseWithCalendar(ctx, booking, calendar, machine.CalendarVersion)
		if errors.Is(err, bookingRepo.ErrVersionConflict) {
			machine, err = s.MachineRepo.GetByID(machine.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to refetch machine: %w", err)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to cancel booking: %w", err)
		}

		s.notifyCancellation(actor, booking)
		return booking, nil
	}
	return nil, fmt.Errorf("failed to cancel booking: %w", bookingRepo.ErrVersionConflict)
}

// notifyCancellation tells the other party. When an admin cancels, both
// renter and provider hear about it.
func (s *DefaultBookingService) notifyCancellation(actor models.Actor, booking *models.Booking) {
	msg := "The booking was canceled."
	if actor.ID != booking.RenterID {
		s.notify(booking.RenterID, models.NotifyBookingCanceled, "Booking canceled", msg, booking.ID)
	}
	if actor.ID != booking.ProviderID {
		s.notify(booking.ProviderID, models.NotifyBookingCanceled, "Booking canceled", msg, booking.ID)
	}
}

func (s *DefaultBookingService) fetch(bookingID string) (*models.Booking, error) {
	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return booking, nil
}

// notify persists a notification; delivery problems are logged, never
// surfaced to the caller.
func (s *DefaultBookingService) notify(userID, typ, title, message, bookingID string) {
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.NotificationRepo.Create(n); err != nil {
		utils.GetLogger().Error("failed to persist notification",
			zap.String("userID", userID), zap.String("bookingID", bookingID), zap.Error(err))
	}
}
