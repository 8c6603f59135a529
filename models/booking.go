package models

import "time"

// Booking statuses. Pending and Confirmed hold a reserved calendar entry on
// the machine; Finished keeps its entry as a historical block, Canceled frees it.
const (
	BookingPending   = "Pending"
	BookingConfirmed = "Confirmed"
	BookingFinished  = "Finished"
	BookingCanceled  = "Canceled"
)

// bookingTransitions is the allowed state machine. Finished and Canceled are
// terminal.
var bookingTransitions = map[string][]string{
	BookingPending:   {BookingConfirmed, BookingCanceled},
	BookingConfirmed: {BookingFinished, BookingCanceled},
}

// ValidStatus reports whether s names a known booking status.
func ValidStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingFinished, BookingCanceled:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is a time-bounded reservation of a machine by a renter.
type Booking struct {
	ID         string       `bson:"id" json:"id"`
	MachineID  string       `bson:"machineId" json:"machineId"`
	RenterID   string       `bson:"renterId" json:"renterId"`
	ProviderID string       `bson:"providerId" json:"providerId"`
	Start      time.Time    `bson:"start" json:"start"`
	End        time.Time    `bson:"end" json:"end"`
	Status     string       `bson:"status" json:"status"`
	TotalPrice Money        `bson:"totalPrice" json:"totalPrice"`
	Checkin    *CheckRecord `bson:"checkin,omitempty" json:"checkin,omitempty"`
	Checkout   *CheckRecord `bson:"checkout,omitempty" json:"checkout,omitempty"`
	CreatedAt  time.Time    `bson:"createdAt" json:"createdAt"`
}

// Active reports whether the booking still holds its machine time range.
func (b *Booking) Active() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// CheckRecord is the photo evidence attached at checkin or checkout.
type CheckRecord struct {
	Photos    []string  `bson:"photos" json:"photos"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
}
