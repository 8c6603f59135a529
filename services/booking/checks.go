package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"machly/models"
)

var (
	// ErrCheckPhotosRequired is returned when checkin or checkout carries no
	// photo evidence.
	ErrCheckPhotosRequired = errors.New("checkin and checkout require at least one photo")
	// ErrAlreadyCheckedIn is returned on a repeated checkin.
	ErrAlreadyCheckedIn = errors.New("booking already has a checkin record")
	// ErrCheckinRequired is returned when checking out before checking in.
	ErrCheckinRequired = errors.New("booking has no checkin record")
)

// CheckIn records the handover evidence on a confirmed booking.
func (s *DefaultBookingService) CheckIn(ctx context.Context, actor models.Actor, bookingID string, req CheckRequest) (*models.Booking, error) {
	booking, err := s.fetch(bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(actor, booking); err != nil {
		return nil, err
	}
	if booking.Status != models.BookingConfirmed {
		return nil, &TransitionError{From: booking.Status, To: models.BookingConfirmed}
	}
	if booking.Checkin != nil {
		return nil, ErrAlreadyCheckedIn
	}
	if len(req.Photos) == 0 {
		return nil, ErrCheckPhotosRequired
	}

	booking.Checkin = &models.CheckRecord{
		Photos:    req.Photos,
		Timestamp: time.Now().UTC(),
		Notes:     req.Notes,
	}
	if err := s.BookingRepo.Update(booking); err != nil {
		return nil, fmt.Errorf("failed to record checkin: %w", err)
	}
	return booking, nil
}

// CheckOut records the return evidence and finishes the booking. The
// machine's calendar entry stays in place as a historical block.
func (s *DefaultBookingService) CheckOut(ctx context.Context, actor models.Actor, bookingID string, req CheckRequest) (*models.Booking, error) {
	booking, err := s.fetch(bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(actor, booking); err != nil {
		return nil, err
	}
	if !models.CanTransition(booking.Status, models.BookingFinished) {
		return nil, &TransitionError{From: booking.Status, To: models.BookingFinished}
	}
	if booking.Checkin == nil {
		return nil, ErrCheckinRequired
	}
	if len(req.Photos) == 0 {
		return nil, ErrCheckPhotosRequired
	}

	booking.Checkout = &models.CheckRecord{
		Photos:    req.Photos,
		Timestamp: time.Now().UTC(),
		Notes:     req.Notes,
	}
	booking.Status = models.BookingFinished
	if err := s.BookingRepo.Update(booking); err != nil {
		return nil, fmt.Errorf("failed to record checkout: %w", err)
	}

	s.notify(booking.RenterID, models.NotifyBookingFinished, "Booking finished",
		"The machine was returned and the booking is complete. You can now leave a review.", booking.ID)
	return booking, nil
}

// checkParticipant allows the renter, the provider, or an admin.
func checkParticipant(actor models.Actor, booking *models.Booking) error {
	if actor.IsAdmin() || actor.ID == booking.RenterID || actor.ID == booking.ProviderID {
		return nil
	}
	return ErrForbidden
}
