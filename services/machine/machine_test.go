package machine

import (
	"context"
	"io"
	"testing"
	"time"

	bookingRepo "machly/database/repository/booking"
	machineRepo "machly/database/repository/machine"
	"machly/models"
	"machly/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = models.Actor{ID: "provider-1", Role: models.RoleProvider}
	other = models.Actor{ID: "provider-2", Role: models.RoleProvider}
	admin = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

type memMachineRepo struct {
	machines map[string]*models.Machine
}

func (r *memMachineRepo) GetByID(id string) (*models.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, machineRepo.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMachineRepo) GetByProvider(providerID string) ([]models.Machine, error) {
	var out []models.Machine
	for _, m := range r.machines {
		if m.ProviderID == providerID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMachineRepo) GetAll(category string, activeOnly bool) ([]models.Machine, error) {
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

func (r *memMachineRepo) Create(m *models.Machine) error {
	cp := *m
	r.machines[m.ID] = &cp
	return nil
}

func (r *memMachineRepo) Update(m *models.Machine) error {
	stored, ok := r.machines[m.ID]
	if !ok {
		return machineRepo.ErrNotFound
	}
	stored.Title = m.Title
	stored.Description = m.Description
	stored.Category = m.Category
	stored.CategoryData = m.CategoryData
	stored.Location = m.Location
	return nil
}

func (r *memMachineRepo) Delete(id, ownerID string) error {
	m, ok := r.machines[id]
	if !ok || (ownerID != "" && m.ProviderID != ownerID) {
		return machineRepo.ErrNotFound
	}
	delete(r.machines, id)
	return nil
}

func (r *memMachineRepo) AppendPhotos(id string, urls []string) error {
	m, ok := r.machines[id]
	if !ok {
		return machineRepo.ErrNotFound
	}
	m.Photos = append(m.Photos, urls...)
	return nil
}

func (r *memMachineRepo) ReplaceCalendar(id string, calendar models.Calendar, expectedVersion int64) error {
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

func (r *memMachineRepo) SetRating(id string, rating float64, reviewsCount int) error {
	m, ok := r.machines[id]
	if !ok {
		return machineRepo.ErrNotFound
	}
	m.Rating = rating
	m.ReviewsCount = reviewsCount
	return nil
}

func (r *memMachineRepo) SetActive(id string, active bool) error {
	m, ok := r.machines[id]
	if !ok {
		return machineRepo.ErrNotFound
	}
	m.IsActive = active
	return nil
}

func (r *memMachineRepo) Count() (int64, error) { return int64(len(r.machines)), nil }

// stubBookingRepo only answers the active-booking count.
type stubBookingRepo struct {
	bookingRepo.BookingRepository
	activeCount int64
}

func (r *stubBookingRepo) CountActiveForMachine(machineID string) (int64, error) {
	return r.activeCount, nil
}

// stubStorage returns a canned URL.
type stubStorage struct{}

func (stubStorage) UploadImage(ctx context.Context, file io.Reader, folder string) (string, error) {
	return "https://cdn.test/" + folder + "/photo.jpg", nil
}

func (stubStorage) Delete(ctx context.Context, publicID string) error { return nil }

func newTestService(machines ...*models.Machine) (*DefaultMachineService, *memMachineRepo, *stubBookingRepo) {
	mr := &memMachineRepo{machines: make(map[string]*models.Machine)}
	for _, m := range machines {
		mr.machines[m.ID] = m
	}
	br := &stubBookingRepo{}
	return NewDefaultMachineService(mr, br, stubStorage{}, utils.NewKeyedMutex()), mr, br
}

func validRequest() ListingRequest {
	return ListingRequest{
		Title:    "Case IH Austoft 8810",
		Category: models.CategoryCane,
		CategoryData: models.CategoryData{
			BaseRate: models.NewMoney(decimal.NewFromInt(8)),
		},
		Latitude:  -12.04,
		Longitude: -77.03,
	}
}

func day(d int) time.Time {
	return time.Date(2027, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateMachine(t *testing.T) {
	svc, mr, _ := newTestService()

	machine, err := svc.Create(owner, validRequest())
	require.NoError(t, err)
	assert.Equal(t, owner.ID, machine.ProviderID)
	assert.True(t, machine.IsActive)
	assert.Equal(t, "Point", machine.Location.Type)
	assert.InDelta(t, -12.04, machine.Location.Latitude(), 1e-9)
	assert.Len(t, mr.machines, 1)
}

func TestCreateMachineValidation(t *testing.T) {
	svc, _, _ := newTestService()

	req := validRequest()
	req.Title = "  "
	_, err := svc.Create(owner, req)
	assert.ErrorIs(t, err, ErrInvalid)

	req = validRequest()
	req.Category = "TRUCKS"
	_, err = svc.Create(owner, req)
	assert.ErrorIs(t, err, ErrInvalid)

	req = validRequest()
	req.CategoryData.BaseRate = models.ZeroMoney()
	_, err = svc.Create(owner, req)
	assert.ErrorIs(t, err, ErrInvalid)

	req = validRequest()
	req.CategoryData.WithOperator = true
	_, err = svc.Create(owner, req)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateMachineOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	machine, err := svc.Create(owner, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Title = "Updated title"

	_, err = svc.Update(other, machine.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(owner, machine.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", updated.Title)

	_, err = svc.Update(admin, machine.ID, req)
	assert.NoError(t, err)
}

func TestDeleteMachineWithActiveBookings(t *testing.T) {
	svc, _, br := newTestService()
	machine, err := svc.Create(owner, validRequest())
	require.NoError(t, err)

	br.activeCount = 2
	err = svc.Delete(owner, machine.ID)
	assert.ErrorIs(t, err, ErrHasActiveBookings)

	br.activeCount = 0
	require.NoError(t, svc.Delete(owner, machine.ID))

	_, err = svc.GetByID(machine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddPhoto(t *testing.T) {
	svc, mr, _ := newTestService()
	machine, err := svc.Create(owner, validRequest())
	require.NoError(t, err)

	_, err = svc.AddPhoto(context.Background(), other, machine.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	url, err := svc.AddPhoto(context.Background(), owner, machine.ID, nil)
	require.NoError(t, err)
	assert.Contains(t, url, machine.ID)
	assert.Equal(t, []string{url}, mr.machines[machine.ID].Photos)
}

func TestBlockDates(t *testing.T) {
	svc, mr, _ := newTestService()
	machine, err := svc.Create(owner, validRequest())
	require.NoError(t, err)

	entry, err := svc.BlockDates(owner, machine.ID, day(1), day(5))
	require.NoError(t, err)
	assert.Equal(t, models.EntryBlocked, entry.Status)
	assert.Equal(t, int64(1), mr.machines[machine.ID].CalendarVersion)

	// Overlapping block is rejected.
	_, err = svc.BlockDates(owner, machine.ID, day(3), day(6))
	assert.ErrorIs(t, err, ErrConflict)

	// Only the owner may block.
	_, err = svc.BlockDates(other, machine.ID, day(10), day(12))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.BlockDates(owner, machine.ID, day(5), day(5))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUnblockDates(t *testing.T) {
	svc, mr, _ := newTestService()
	machine, err := svc.Create(owner, validRequest())
	require.NoError(t, err)

	entry, err := svc.BlockDates(owner, machine.ID, day(1), day(5))
	require.NoError(t, err)

	err = svc.UnblockDates(owner, machine.ID, "missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	require.NoError(t, svc.UnblockDates(owner, machine.ID, entry.ID))
	assert.Empty(t, mr.machines[machine.ID].Calendar)
}

func TestUnblockDatesReservedEntry(t *testing.T) {
	machine := &models.Machine{
		ID:         "m1",
		ProviderID: owner.ID,
		IsActive:   true,
		Calendar: models.Calendar{
			{ID: "e1", Start: day(1), End: day(3), Status: models.EntryReserved, BookingID: "b1"},
		},
	}
	svc, _, _ := newTestService(machine)

	err := svc.UnblockDates(owner, "m1", "e1")
	assert.ErrorIs(t, err, ErrReservedEntry)
}

func TestSearch(t *testing.T) {
	lima := models.NewGeoLocation(-12.0464, -77.0428)
	cusco := models.NewGeoLocation(-13.5319, -71.9675)

	m1 := &models.Machine{ID: "m1", ProviderID: owner.ID, Category: models.CategoryCane, Location: lima, IsActive: true}
	m2 := &models.Machine{ID: "m2", ProviderID: owner.ID, Category: models.CategorySeeds, Location: cusco, IsActive: true}
	m3 := &models.Machine{ID: "m3", ProviderID: owner.ID, Category: models.CategoryCane, Location: lima, IsActive: false}
	m4 := &models.Machine{
		ID: "m4", ProviderID: owner.ID, Category: models.CategoryCane, Location: lima, IsActive: true,
		Calendar: models.Calendar{{ID: "e", Start: day(1), End: day(10), Status: models.EntryBlocked}},
	}
	svc, _, _ := newTestService(m1, m2, m3, m4)

	// Inactive machines never surface.
	all, err := svc.Search(SearchParams{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Category filter.
	cane, err := svc.Search(SearchParams{Category: models.CategoryCane})
	require.NoError(t, err)
	assert.Len(t, cane, 2)

	// Geo filter: Cusco is ~570km from Lima.
	lat, lng := -12.0464, -77.0428
	near, err := svc.Search(SearchParams{Latitude: &lat, Longitude: &lng, RadiusKm: 50})
	require.NoError(t, err)
	for _, m := range near {
		assert.NotEqual(t, "m2", m.ID)
	}
	assert.Len(t, near, 2)

	// Availability filter drops the machine blocked over the range.
	start, end := day(2), day(4)
	free, err := svc.Search(SearchParams{Start: &start, End: &end})
	require.NoError(t, err)
	for _, m := range free {
		assert.NotEqual(t, "m4", m.ID)
	}
	assert.Len(t, free, 2)
}

func TestCheckAvailability(t *testing.T) {
	machine := &models.Machine{
		ID: "m1", ProviderID: owner.ID, IsActive: true,
		Calendar: models.Calendar{{ID: "e", Start: day(1), End: day(5), Status: models.EntryBlocked}},
	}
	svc, mr, _ := newTestService(machine)

	free, err := svc.CheckAvailability("m1", day(5), day(8))
	require.NoError(t, err)
	assert.True(t, free)

	free, err = svc.CheckAvailability("m1", day(4), day(8))
	require.NoError(t, err)
	assert.False(t, free)

	mr.machines["m1"].IsActive = false
	free, err = svc.CheckAvailability("m1", day(5), day(8))
	require.NoError(t, err)
	assert.False(t, free)
}

func TestFutureCalendar(t *testing.T) {
	past := time.Now().UTC().AddDate(0, 0, -10)
	future := time.Now().UTC().AddDate(0, 0, 10)
	machine := &models.Machine{
		ID: "m1", ProviderID: owner.ID, IsActive: true,
		Calendar: models.Calendar{
			{ID: "old", Start: past.AddDate(0, 0, -2), End: past, Status: models.EntryBlocked},
			{ID: "new", Start: future, End: future.AddDate(0, 0, 2), Status: models.EntryBlocked},
		},
	}
	svc, _, _ := newTestService(machine)

	entries, err := svc.FutureCalendar("m1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].ID)
}
