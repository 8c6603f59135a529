package models

import "time"

// Notification types written by the booking lifecycle.
const (
	NotifyBookingCreated   = "booking_created"
	NotifyBookingConfirmed = "booking_confirmed"
	NotifyBookingCanceled  = "booking_canceled"
	NotifyBookingFinished  = "booking_finished"
)

// Notification is an in-app message persisted for a user. Delivery (push,
// email) is out of scope; clients poll and mark read.
type Notification struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Type      string    `bson:"type" json:"type"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
