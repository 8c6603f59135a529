package machine

import (
	"context"
	"io"
	"time"

	bookingRepo "machly/database/repository/booking"
	machineRepo "machly/database/repository/machine"
	"machly/models"
	"machly/services/storage"
	"machly/utils"
)

// ListingRequest carries the provider-editable fields of a machine listing.
type ListingRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	Category     string              `json:"category" binding:"required"`
	CategoryData models.CategoryData `json:"categoryData"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
}

// SearchParams filters the public machine catalogue. Zero values mean no
// filtering on that axis; Start/End, when both set, keep only machines free
// over that range.
type SearchParams struct {
	Category  string
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
	Start     *time.Time
	End       *time.Time
}

// MachineService manages machine listings, their photos, and the
// provider-controlled side of the availability calendar.
type MachineService interface {
	Create(actor models.Actor, req ListingRequest) (*models.Machine, error)
	Update(actor models.Actor, machineID string, req ListingRequest) (*models.Machine, error)
	Delete(actor models.Actor, machineID string) error
	AddPhoto(ctx context.Context, actor models.Actor, machineID string, photo io.Reader) (string, error)
	GetByID(machineID string) (*models.Machine, error)
	ListForProvider(providerID string) ([]models.Machine, error)
	Search(params SearchParams) ([]models.Machine, error)
	CheckAvailability(machineID string, start, end time.Time) (bool, error)
	BlockDates(actor models.Actor, machineID string, start, end time.Time) (*models.CalendarEntry, error)
	UnblockDates(actor models.Actor, machineID, entryID string) error
	FutureCalendar(machineID string) ([]models.CalendarEntry, error)
}

// DefaultMachineService implements MachineService.
type DefaultMachineService struct {
	MachineRepo machineRepo.MachineRepository
	BookingRepo bookingRepo.BookingRepository
	Storage     storage.StorageService
	locks       *utils.KeyedMutex
}

// NewDefaultMachineService wires a machine service over the given
// repositories. The keyed mutex must be shared with the booking service so
// all calendar writers serialize per machine.
func NewDefaultMachineService(mr machineRepo.MachineRepository, br bookingRepo.BookingRepository, st storage.StorageService, locks *utils.KeyedMutex) *DefaultMachineService {
	return &DefaultMachineService{
		MachineRepo: mr,
		BookingRepo: br,
		Storage:     st,
		locks:       locks,
	}
}
