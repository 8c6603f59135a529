package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"machly/models"
	"machly/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	renter   = models.Actor{ID: "renter-1", Role: models.RoleRenter}
	provider = models.Actor{ID: "provider-1", Role: models.RoleProvider}
	admin    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	stranger = models.Actor{ID: "stranger-1", Role: models.RoleRenter}
)

func testMachine() *models.Machine {
	return &models.Machine{
		ID:         "machine-1",
		ProviderID: provider.ID,
		Title:      "John Deere 5075E",
		Category:   models.CategoryServices,
		CategoryData: models.CategoryData{
			BaseRate: models.NewMoney(decimal.NewFromInt(50)),
		},
		IsActive: true,
	}
}

func newTestService(machines ...*models.Machine) (*DefaultBookingService, *mockMachineRepo, *mockBookingRepo, *mockNotificationRepo) {
	mr := newMockMachineRepo(machines...)
	br := newMockBookingRepo(mr)
	nr := &mockNotificationRepo{}
	return NewDefaultBookingService(br, mr, nr, utils.NewKeyedMutex()), mr, br, nr
}

func future(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days).Truncate(time.Hour)
}

func TestCreateBooking(t *testing.T) {
	svc, mr, _, nr := newTestService(testMachine())

	booking, err := svc.Create(context.Background(), renter, CreateRequest{
		MachineID: "machine-1",
		Start:     future(1),
		End:       future(3),
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, renter.ID, booking.RenterID)
	assert.Equal(t, provider.ID, booking.ProviderID)
	assert.Equal(t, "100", booking.TotalPrice.String())

	machine, err := mr.GetByID("machine-1")
	require.NoError(t, err)
	require.Len(t, machine.Calendar, 1)
	assert.Equal(t, models.EntryReserved, machine.Calendar[0].Status)
	assert.Equal(t, booking.ID, machine.Calendar[0].BookingID)
	assert.Equal(t, int64(1), machine.CalendarVersion)

	require.Len(t, nr.sent, 1)
	assert.Equal(t, provider.ID, nr.sent[0].UserID)
	assert.Equal(t, models.NotifyBookingCreated, nr.sent[0].Type)
}

func TestCreateBookingConflict(t *testing.T) {
	svc, _, _, _ := newTestService(testMachine())
	ctx := context.Background()

	_, err := svc.Create(ctx, renter, CreateRequest{
		MachineID: "machine-1", Start: future(1), End: future(5),
	})
	require.NoError(t, err)

	// Partial overlap with the reserved range is rejected.
	_, err = svc.Create(ctx, stranger, CreateRequest{
		MachineID: "machine-1", Start: future(3), End: future(7),
	})
	assert.ErrorIs(t, err, ErrConflict)

	// An abutting range starting exactly at the end is fine.
	_, err = svc.Create(ctx, stranger, CreateRequest{
		MachineID: "machine-1", Start: future(5), End: future(7),
	})
	assert.NoError(t, err)
}

func TestCreateBookingValidation(t *testing.T) {
	machine := testMachine()
	svc, _, _, _ := newTestService(machine)
	ctx := context.Background()

	_, err := svc.Create(ctx, renter, CreateRequest{
		MachineID: "machine-1", Start: future(3), End: future(1),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Create(ctx, renter, CreateRequest{
		MachineID: "machine-1", Start: future(-2), End: future(1),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Create(ctx, renter, CreateRequest{
		MachineID: "missing", Start: future(1), End: future(2),
	})
	assert.ErrorIs(t, err, ErrMachineNotFound)

	_, err = svc.Create(ctx, provider, CreateRequest{
		MachineID: "machine-1", Start: future(1), End: future(2),
	})
	assert.ErrorIs(t, err, ErrOwnMachine)

	machine.IsActive = false
	svc2, _, _, _ := newTestService(machine)
	_, err = svc2.Create(ctx, renter, CreateRequest{
		MachineID: "machine-1", Start: future(1), End: future(2),
	})
	assert.ErrorIs(t, err, ErrMachineInactive)
}

func createPending(t *testing.T, svc *DefaultBookingService) *models.Booking {
	t.Helper()
	booking, err := svc.Create(context.Background(), renter, CreateRequest{
		MachineID: "machine-1", Start: future(1), End: future(3),
	})
	require.NoError(t, err)
	return booking
}

func TestConfirmBooking(t *testing.T) {
	svc, _, _, nr := newTestService(testMachine())
	booking := createPending(t, svc)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, stranger, booking.ID, models.BookingConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := svc.UpdateStatus(ctx, provider, booking.ID, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)

	last := nr.sent[len(nr.sent)-1]
	assert.Equal(t, renter.ID, last.UserID)
	assert.Equal(t, models.NotifyBookingConfirmed, last.Type)

	// Confirming twice violates the state machine.
	_, err = svc.UpdateStatus(ctx, provider, booking.ID, models.BookingConfirmed)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.BookingConfirmed, te.From)
}

func TestUpdateStatusFinishedRejected(t *testing.T) {
	svc, _, _, _ := newTestService(testMachine())
	booking := createPending(t, svc)

	_, err := svc.UpdateStatus(context.Background(), provider, booking.ID, models.BookingFinished)
	assert.ErrorIs(t, err, ErrFinishRequiresCheckout)
}

func TestCancelBookingReleasesCalendar(t *testing.T) {
	svc, mr, _, _ := newTestService(testMachine())
	booking := createPending(t, svc)

	canceled, err := svc.Cancel(context.Background(), renter, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCanceled, canceled.Status)

	machine, err := mr.GetByID("machine-1")
	require.NoError(t, err)
	assert.Empty(t, machine.Calendar)

	// The freed range can be booked again.
	_, err = svc.Create(context.Background(), stranger, CreateRequest{
		MachineID: "machine-1", Start: future(1), End: future(3),
	})
	assert.NoError(t, err)
}

func TestCancelBookingPermissions(t *testing.T) {
	svc, _, _, _ := newTestService(testMachine())
	ctx := context.Background()

	booking := createPending(t, svc)
	_, err := svc.Cancel(ctx, stranger, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// An admin may cancel any active booking.
	_, err = svc.Cancel(ctx, admin, booking.ID)
	assert.NoError(t, err)

	// A terminal booking cannot be canceled again.
	_, err = svc.Cancel(ctx, renter, booking.ID)
	var te *TransitionError
	assert.True(t, errors.As(err, &te))
}

func TestCheckInCheckOut(t *testing.T) {
	svc, mr, _, _ := newTestService(testMachine())
	ctx := context.Background()
	booking := createPending(t, svc)

	// Checkin before confirmation is rejected.
	_, err := svc.CheckIn(ctx, renter, booking.ID, CheckRequest{Photos: []string{"p1"}})
	var te *TransitionError
	require.ErrorAs(t, err, &te)

	_, err = svc.UpdateStatus(ctx, provider, booking.ID, models.BookingConfirmed)
	require.NoError(t, err)

	// Checkout before checkin is rejected.
	_, err = svc.CheckOut(ctx, renter, booking.ID, CheckRequest{Photos: []string{"p2"}})
	assert.ErrorIs(t, err, ErrCheckinRequired)

	_, err = svc.CheckIn(ctx, renter, booking.ID, CheckRequest{})
	assert.ErrorIs(t, err, ErrCheckPhotosRequired)

	checked, err := svc.CheckIn(ctx, renter, booking.ID, CheckRequest{Photos: []string{"p1"}, Notes: "full tank"})
	require.NoError(t, err)
	require.NotNil(t, checked.Checkin)
	assert.Equal(t, []string{"p1"}, checked.Checkin.Photos)

	_, err = svc.CheckIn(ctx, renter, booking.ID, CheckRequest{Photos: []string{"p1"}})
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	finished, err := svc.CheckOut(ctx, provider, booking.ID, CheckRequest{Photos: []string{"p2"}})
	require.NoError(t, err)
	assert.Equal(t, models.BookingFinished, finished.Status)
	require.NotNil(t, finished.Checkout)

	// The finished booking keeps its calendar entry as history.
	machine, err := mr.GetByID("machine-1")
	require.NoError(t, err)
	assert.Len(t, machine.Calendar, 1)
}

func TestGetByIDPermissions(t *testing.T) {
	svc, _, _, _ := newTestService(testMachine())
	booking := createPending(t, svc)

	_, err := svc.GetByID(stranger, booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetByID(renter, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = svc.GetByID(admin, booking.ID)
	assert.NoError(t, err)

	_, err = svc.GetByID(renter, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForMachinePermissions(t *testing.T) {
	svc, _, _, _ := newTestService(testMachine())
	createPending(t, svc)

	_, err := svc.ListForMachine(renter, "machine-1")
	assert.ErrorIs(t, err, ErrForbidden)

	bookings, err := svc.ListForMachine(provider, "machine-1")
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}
