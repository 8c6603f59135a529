package models

import "time"

// Review is a renter's rating of a machine, linked to one finished booking.
// At most one review may exist per booking.
type Review struct {
	ID        string    `bson:"id" json:"id"`
	MachineID string    `bson:"machineId" json:"machineId"`
	RenterID  string    `bson:"renterId" json:"renterId"`
	BookingID string    `bson:"bookingId" json:"bookingId"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
