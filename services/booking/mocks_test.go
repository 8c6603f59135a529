package booking

import (
	"context"

	bookingRepo "machly/database/repository/booking"
	machineRepo "machly/database/repository/machine"
	"machly/models"

	"github.com/shopspring/decimal"
)

// mockMachineRepo keeps machines in memory and enforces the calendar
// version check the way the Mongo implementation does.
type mockMachineRepo struct {
	machines map[string]*models.Machine
}

func newMockMachineRepo(machines ...*models.Machine) *mockMachineRepo {
	r := &mockMachineRepo{machines: make(map[string]*models.Machine)}
	for _, m := range machines {
		r.machines[m.ID] = m
	}
	return r
}

func (r *mockMachineRepo) GetByID(id string) (*models.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, machineRepo.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *mockMachineRepo) GetByProvider(providerID string) ([]models.Machine, error) {
	var out []models.Machine
	for _, m := range r.machines {
		if m.ProviderID == providerID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *mockMachineRepo) GetAll(category string, activeOnly bool) ([]models.Machine, error) {
	var out []models.Machine
	for _, m := range r.machines {
		if category != "" && m.Category != category {
			continue
		}
		if activeOnly && !m.IsActive {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *mockMachineRepo) Create(machine *models.Machine) error {
	cp := *machine
	r.machines[machine.ID] = &cp
	return nil
}

func (r *mockMachineRepo) Update(machine *models.Machine) error {
	m, ok := r.machines[machine.ID]
	if !ok {
		return machineRepo.ErrNotFound
	}
	m.Title = machine.Title
	m.Description = machine.Description
	m.Category = machine.Category
	m.CategoryData = machine.CategoryData
	m.Location = machine.Location
	return nil
}

func (r *mockMachineRepo) Delete(id, ownerID string) error {
	m, ok := r.machines[id]
	if !ok || (ownerID != "" && m.ProviderID != ownerID) {
		return machineRepo.ErrNotFound
	}
	delete(r.machines, id)
	return nil
}

func (r *mockMachineRepo) AppendPhotos(id string, urls []string) error {
	m, ok := r.machines[id]
	if !ok {
		return machineRepo.ErrNotFound
	}
	m.Photos = append(m.Photos, urls...)
	return nil
}

func (r *mockMachineRepo) ReplaceCalendar(id string, calendar models.Calendar, expectedVersion int64) error {
	m, ok := r.machines[id]
	if !ok {
		return machineRepo.ErrNotFound
	}
	if m.CalendarVersion != expectedVersion {
		return machineRepo.ErrVersionConflict
	}
	m.Calendar = calendar
	m.CalendarVersion++
	return nil
}

func (r *mockMachineRepo) SetRating(id string, rating float64, reviewsCount int) error {
	m, ok := r.machines[id]
	if !ok {
		return machineRepo.ErrNotFound
	}
	m.Rating = rating
	m.ReviewsCount = reviewsCount
	return nil
}

func (r *mockMachineRepo) SetActive(id string, active bool) error {
	m, ok := r.machines[id]
	if !ok {
		return machineRepo.ErrNotFound
	}
	m.IsActive = active
	return nil
}

func (r *mockMachineRepo) Count() (int64, error) {
	return int64(len(r.machines)), nil
}

// mockBookingRepo keeps bookings in memory. The transactional methods apply
// the booking write and the calendar write together, as the Mongo
// implementation does inside a session.
type mockBookingRepo struct {
	bookings map[string]*models.Booking
	machines *mockMachineRepo
}

func newMockBookingRepo(machines *mockMachineRepo, bookings ...*models.Booking) *mockBookingRepo {
	r := &mockBookingRepo{bookings: make(map[string]*models.Booking), machines: machines}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *mockBookingRepo) GetByID(id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *mockBookingRepo) GetByRenter(renterID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.RenterID == renterID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *mockBookingRepo) GetByProvider(providerID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *mockBookingRepo) GetByMachine(machineID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.MachineID == machineID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *mockBookingRepo) GetAll(status string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *mockBookingRepo) Update(booking *models.Booking) error {
	if _, ok := r.bookings[booking.ID]; !ok {
		return bookingRepo.ErrNotFound
	}
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *mockBookingRepo) CountActiveForMachine(machineID string) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if b.MachineID == machineID && b.Active() {
			n++
		}
	}
	return n, nil
}

func (r *mockBookingRepo) Count() (int64, error) {
	return int64(len(r.bookings)), nil
}

func (r *mockBookingRepo) SumTotalPrices() (models.Money, error) {
	sum := decimal.Zero
	for _, b := range r.bookings {
		sum = sum.Add(b.TotalPrice.Decimal)
	}
	return models.NewMoney(sum), nil
}

func (r *mockBookingRepo) CreateWithReservation(ctx context.Context, booking *models.Booking, calendar models.Calendar, expectedVersion int64) error {
	if err := r.machines.ReplaceCalendar(booking.MachineID, calendar, expectedVersion); err != nil {
		if err == machineRepo.ErrVersionConflict {
			return bookingRepo.ErrVersionConflict
		}
		return err
	}
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *mockBookingRepo) ReleaseWithCalendar(ctx context.Context, booking *models.Booking, calendar models.Calendar, expectedVersion int64) error {
	if err := r.machines.ReplaceCalendar(booking.MachineID, calendar, expectedVersion); err != nil {
		if err == machineRepo.ErrVersionConflict {
			return bookingRepo.ErrVersionConflict
		}
		return err
	}
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

// mockNotificationRepo records notifications for assertion.
type mockNotificationRepo struct {
	sent []models.Notification
}

func (r *mockNotificationRepo) Create(n *models.Notification) error {
	r.sent = append(r.sent, *n)
	return nil
}

func (r *mockNotificationRepo) GetByUser(userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *mockNotificationRepo) MarkRead(id, userID string) error {
	for i := range r.sent {
		if r.sent[i].ID == id && r.sent[i].UserID == userID {
			r.sent[i].Read = true
			return nil
		}
	}
	return nil
}
