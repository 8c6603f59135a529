package machine

import (
	"errors"
	"fmt"
	"time"

	machineRepo "machly/database/repository/machine"
	"machly/models"

	"github.com/google/uuid"
)

const maxVersionRetries = 3

// BlockDates marks [start, end) as unavailable on an owned machine. The
// range must not intersect any existing entry, reserved or blocked.
func (s *DefaultMachineService) BlockDates(actor models.Actor, machineID string, start, end time.Time) (*models.CalendarEntry, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalid)
	}

	machine, err := s.owned(actor, machineID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(machine.ID)
	defer unlock()

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		if machine.Calendar.HasConflict(start, end) {
			return nil, ErrConflict
		}

		entry := models.CalendarEntry{
			ID:     uuid.New().String(),
			Start:  start,
			End:    end,
			Status: models.EntryBlocked,
		}
		err = s.MachineRepo.ReplaceCalendar(machine.ID, machine.Calendar.Add(entry), machine.CalendarVersion)
		if errors.Is(err, machineRepo.ErrVersionConflict) {
			machine, err = s.GetByID(machine.ID)
			if err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to block dates: %w", err)
		}
		return &entry, nil
	}
	return nil, ErrConflict
}

// UnblockDates removes a blocked entry from an owned machine's calendar.
// Reserved entries belong to their booking and cannot be removed here.
func (s *DefaultMachineService) UnblockDates(actor models.Actor, machineID, entryID string) error {
	machine, err := s.owned(actor, machineID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(machine.ID)
	defer unlock()

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		entry := machine.Calendar.EntryByID(entryID)
		if entry == nil {
			return ErrEntryNotFound
		}
		if entry.Status == models.EntryReserved {
			return ErrReservedEntry
		}

		calendar, _ := machine.Calendar.Remove(entryID)
		err = s.MachineRepo.ReplaceCalendar(machine.ID, calendar, machine.CalendarVersion)
		if errors.Is(err, machineRepo.ErrVersionConflict) {
			machine, err = s.GetByID(machine.ID)
			if err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to unblock dates: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to unblock dates: %w", machineRepo.ErrVersionConflict)
}

// FutureCalendar returns the machine's entries that have not yet ended.
func (s *DefaultMachineService) FutureCalendar(machineID string) ([]models.CalendarEntry, error) {
	machine, err := s.GetByID(machineID)
	if err != nil {
		return nil, err
	}

	entries := []models.CalendarEntry{}
	for e := range machine.Calendar.Future(time.Now().UTC()) {
		entries = append(entries, e)
	}
	return entries, nil
}
