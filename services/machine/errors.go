package machine

import "errors"

var (
	// ErrNotFound is returned when the machine does not exist.
	ErrNotFound = errors.New("machine not found")
	// ErrForbidden is returned when the actor does not own the machine.
	ErrForbidden = errors.New("not permitted to act on this machine")
	// ErrInvalid is returned for malformed listing data.
	ErrInvalid = errors.New("invalid machine data")
	// ErrConflict is returned when a blocked range intersects the calendar.
	ErrConflict = errors.New("requested dates conflict with the machine calendar")
	// ErrEntryNotFound is returned when the calendar entry does not exist.
	ErrEntryNotFound = errors.New("calendar entry not found")
	// ErrReservedEntry is returned when unblocking an entry a booking holds.
	ErrReservedEntry = errors.New("entry is reserved by a booking; cancel the booking instead")
	// ErrHasActiveBookings is returned when deleting or deactivating a
	// machine that still has pending or confirmed bookings.
	ErrHasActiveBookings = errors.New("machine has active bookings")
)
