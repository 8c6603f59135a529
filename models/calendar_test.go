package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(day int) time.Time {
	return time.Date(2027, 6, day, 0, 0, 0, 0, time.UTC)
}

func calendarWith(start, end time.Time) Calendar {
	return Calendar{{ID: "e1", Start: start, End: end, Status: EntryBlocked}}
}

func TestHasConflict(t *testing.T) {
	cal := calendarWith(d(10), d(20))

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"identical range", d(10), d(20), true},
		{"starts inside", d(15), d(25), true},
		{"ends inside", d(5), d(15), true},
		{"covers entry", d(5), d(25), true},
		{"contained in entry", d(12), d(18), true},
		{"before entry", d(1), d(9), false},
		{"after entry", d(21), d(25), false},
		{"abuts end", d(20), d(25), false},
		{"abuts start", d(5), d(10), false},
		{"zero-length probe inside", d(15), d(15), true},
		{"zero-length probe at start", d(10), d(10), true},
		{"zero-length probe at end", d(20), d(20), true},
		{"zero-length probe outside", d(25), d(25), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.HasConflict(tt.start, tt.end))
		})
	}
}

func TestHasConflictEmptyCalendar(t *testing.T) {
	assert.False(t, Calendar{}.HasConflict(d(1), d(30)))
}

func TestRemoveForBooking(t *testing.T) {
	cal := Calendar{
		{ID: "e1", Start: d(1), End: d(3), Status: EntryReserved, BookingID: "b1"},
		{ID: "e2", Start: d(5), End: d(7), Status: EntryBlocked},
		{ID: "e3", Start: d(9), End: d(11), Status: EntryReserved, BookingID: "b1"},
	}

	out, removed := cal.RemoveForBooking("b1")
	assert.Equal(t, 2, removed)
	require.Len(t, out, 1)
	assert.Equal(t, "e2", out[0].ID)

	// The original calendar is untouched.
	assert.Len(t, cal, 3)

	out, removed = cal.RemoveForBooking("unknown")
	assert.Equal(t, 0, removed)
	assert.Len(t, out, 3)
}

func TestRemove(t *testing.T) {
	cal := Calendar{
		{ID: "e1", Start: d(1), End: d(3), Status: EntryBlocked},
		{ID: "e2", Start: d(5), End: d(7), Status: EntryBlocked},
	}

	out, found := cal.Remove("e1")
	assert.True(t, found)
	require.Len(t, out, 1)
	assert.Equal(t, "e2", out[0].ID)

	out, found = cal.Remove("missing")
	assert.False(t, found)
	assert.Len(t, out, 2)
}

func TestEntryByID(t *testing.T) {
	cal := calendarWith(d(1), d(3))
	require.NotNil(t, cal.EntryByID("e1"))
	assert.Nil(t, cal.EntryByID("missing"))
}

func TestFuture(t *testing.T) {
	cal := Calendar{
		{ID: "past", Start: d(1), End: d(3), Status: EntryBlocked},
		{ID: "ongoing", Start: d(9), End: d(12), Status: EntryBlocked},
		{ID: "ahead", Start: d(20), End: d(22), Status: EntryBlocked},
	}

	var ids []string
	for e := range cal.Future(d(10)) {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"ongoing", "ahead"}, ids)

	// The sequence can be ranged over again.
	n := 0
	for range cal.Future(d(10)) {
		n++
	}
	assert.Equal(t, 2, n)

	// Early break stops the walk.
	for range cal.Future(d(10)) {
		n = 100
		break
	}
	assert.Equal(t, 100, n)
}

func TestBookingTransitions(t *testing.T) {
	assert.True(t, CanTransition(BookingPending, BookingConfirmed))
	assert.True(t, CanTransition(BookingPending, BookingCanceled))
	assert.True(t, CanTransition(BookingConfirmed, BookingFinished))
	assert.True(t, CanTransition(BookingConfirmed, BookingCanceled))

	assert.False(t, CanTransition(BookingPending, BookingFinished))
	assert.False(t, CanTransition(BookingFinished, BookingCanceled))
	assert.False(t, CanTransition(BookingCanceled, BookingPending))
	assert.False(t, CanTransition(BookingFinished, BookingConfirmed))
}
