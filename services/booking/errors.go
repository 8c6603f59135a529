package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the booking does not exist.
	ErrNotFound = errors.New("booking not found")
	// ErrMachineNotFound is returned when the target machine does not exist.
	ErrMachineNotFound = errors.New("machine not found")
	// ErrForbidden is returned when the actor may not act on the booking.
	ErrForbidden = errors.New("not permitted to act on this booking")
	// ErrConflict is returned when the requested range intersects the
	// machine calendar.
	ErrConflict = errors.New("requested dates conflict with the machine calendar")
	// ErrInvalidRange is returned for malformed booking date ranges.
	ErrInvalidRange = errors.New("invalid booking date range")
	// ErrMachineInactive is returned when booking a deactivated machine.
	ErrMachineInactive = errors.New("machine is not available for booking")
	// ErrOwnMachine is returned when a provider tries to book their own machine.
	ErrOwnMachine = errors.New("cannot book your own machine")
	// ErrFinishRequiresCheckout is returned when a caller tries to mark a
	// booking Finished directly instead of checking out.
	ErrFinishRequiresCheckout = errors.New("bookings are finished through checkout")
)

// TransitionError reports a booking status change the state machine forbids.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}
