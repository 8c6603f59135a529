package booking

import (
	"context"
	"time"

	bookingRepo "machly/database/repository/booking"
	machineRepo "machly/database/repository/machine"
	notificationRepo "machly/database/repository/notification"
	"machly/models"
	"machly/utils"
)

// CreateRequest carries the renter's booking intent.
type CreateRequest struct {
	MachineID string    `json:"machineId" binding:"required"`
	Start     time.Time `json:"start" binding:"required"`
	End       time.Time `json:"end" binding:"required"`
	Quantity  *float64  `json:"quantity,omitempty"`
}

// CheckRequest carries the evidence attached at checkin or checkout.
type CheckRequest struct {
	Photos []string
	Notes  string
}

// BookingService manages the booking lifecycle: creation with calendar
// reservation, the status state machine, and checkin/checkout evidence.
type BookingService interface {
	Create(ctx context.Context, actor models.Actor, req CreateRequest) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, bookingID, status string) (*models.Booking, error)
	Cancel(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)
	CheckIn(ctx context.Context, actor models.Actor, bookingID string, req CheckRequest) (*models.Booking, error)
	CheckOut(ctx context.Context, actor models.Actor, bookingID string, req CheckRequest) (*models.Booking, error)
	GetByID(actor models.Actor, bookingID string) (*models.Booking, error)
	ListForRenter(renterID string) ([]models.Booking, error)
	ListForProvider(providerID string) ([]models.Booking, error)
	ListForMachine(actor models.Actor, machineID string) ([]models.Booking, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	BookingRepo      bookingRepo.BookingRepository
	MachineRepo      machineRepo.MachineRepository
	NotificationRepo notificationRepo.NotificationRepository
	locks            *utils.KeyedMutex
}

// NewDefaultBookingService wires a booking service over the given
// repositories. The keyed mutex must be the same instance handed to every
// other calendar writer.
func NewDefaultBookingService(br bookingRepo.BookingRepository, mr machineRepo.MachineRepository, nr notificationRepo.NotificationRepository, locks *utils.KeyedMutex) *DefaultBookingService {
	return &DefaultBookingService{
		BookingRepo:      br,
		MachineRepo:      mr,
		NotificationRepo: nr,
		locks:            locks,
	}
}
