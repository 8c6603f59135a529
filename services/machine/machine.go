package machine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	machineRepo "machly/database/repository/machine"
	"machly/models"

	"github.com/google/uuid"
)

func validateListing(req ListingRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if !models.ValidCategory(req.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, req.Category)
	}
	if !req.CategoryData.BaseRate.IsPositive() {
		return fmt.Errorf("%w: base rate must be positive", ErrInvalid)
	}
	if req.CategoryData.WithOperator && req.CategoryData.OperatorRate == nil {
		return fmt.Errorf("%w: operator rate is required when offered with operator", ErrInvalid)
	}
	return nil
}

// Create registers a new machine listing for the acting provider.
func (s *DefaultMachineService) Create(actor models.Actor, req ListingRequest) (*models.Machine, error) {
	if err := validateListing(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	machine := &models.Machine{
		ID:           uuid.New().String(),
		ProviderID:   actor.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     req.Category,
		CategoryData: req.CategoryData,
		Location:     models.NewGeoLocation(req.Latitude, req.Longitude),
		Calendar:     models.Calendar{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.MachineRepo.Create(machine); err != nil {
		return nil, fmt.Errorf("failed to create machine: %w", err)
	}
	return machine, nil
}

// Update edits the listing fields of an owned machine. Calendar, photos,
// and rating aggregates are untouched.
func (s *DefaultMachineService) Update(actor models.Actor, machineID string, req ListingRequest) (*models.Machine, error) {
	if err := validateListing(req); err != nil {
		return nil, err
	}

	machine, err := s.owned(actor, machineID)
	if err != nil {
		return nil, err
	}

	machine.Title = strings.TrimSpace(req.Title)
	machine.Description = req.Description
	machine.Category = req.Category
	machine.CategoryData = req.CategoryData
	machine.Location = models.NewGeoLocation(req.Latitude, req.Longitude)
	if err := s.MachineRepo.Update(machine); err != nil {
		return nil, fmt.Errorf("failed to update machine: %w", err)
	}
	return machine, nil
}

// Delete removes an owned machine. A machine with pending or confirmed
// bookings cannot be deleted.
func (s *DefaultMachineService) Delete(actor models.Actor, machineID string) error {
	machine, err := s.owned(actor, machineID)
	if err != nil {
		return err
	}

	active, err := s.BookingRepo.CountActiveForMachine(machine.ID)
	if err != nil {
		return fmt.Errorf("failed to count active bookings: %w", err)
	}
	if active > 0 {
		return ErrHasActiveBookings
	}

	ownerID := machine.ProviderID
	if actor.IsAdmin() {
		ownerID = ""
	}
	if err := s.MachineRepo.Delete(machine.ID, ownerID); err != nil {
		if errors.Is(err, machineRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete machine: %w", err)
	}
	return nil
}

// AddPhoto uploads the image and appends its URL to the machine's gallery.
func (s *DefaultMachineService) AddPhoto(ctx context.Context, actor models.Actor, machineID string, photo io.Reader) (string, error) {
	machine, err := s.owned(actor, machineID)
	if err != nil {
		return "", err
	}

	url, err := s.Storage.UploadImage(ctx, photo, "machines/"+machine.ID)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	if err := s.MachineRepo.AppendPhotos(machine.ID, []string{url}); err != nil {
		return "", fmt.Errorf("failed to attach photo: %w", err)
	}
	return url, nil
}

// GetByID returns a machine listing.
func (s *DefaultMachineService) GetByID(machineID string) (*models.Machine, error) {
	machine, err := s.MachineRepo.GetByID(machineID)
	if err != nil {
		if errors.Is(err, machineRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch machine: %w", err)
	}
	return machine, nil
}

// ListForProvider returns all machines owned by the provider, active or not.
func (s *DefaultMachineService) ListForProvider(providerID string) ([]models.Machine, error) {
	machines, err := s.MachineRepo.GetByProvider(providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider machines: %w", err)
	}
	return machines, nil
}

// owned fetches the machine and checks the actor owns it; admins pass.
func (s *DefaultMachineService) owned(actor models.Actor, machineID string) (*models.Machine, error) {
	machine, err := s.GetByID(machineID)
	if err != nil {
		return nil, err
	}
	if machine.ProviderID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return machine, nil
}
