package models

import (
	"iter"
	"time"
)

// Calendar entry statuses.
const (
	EntryBlocked  = "blocked"
	EntryReserved = "reserved"
)

// CalendarEntry is one blocked-or-reserved interval on a machine's
// availability timeline. BookingID is set iff Status is "reserved".
type CalendarEntry struct {
	ID        string    `bson:"id" json:"id"`
	Start     time.Time `bson:"start" json:"start"`
	End       time.Time `bson:"end" json:"end"`
	Status    string    `bson:"status" json:"status"`
	BookingID string    `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
}

// Calendar is the per-machine ordered set of interval entries.
type Calendar []CalendarEntry

// HasConflict reports whether [start, end) intersects any existing entry.
// The three-clause form matches what both the availability probe and the
// block-dates path check; it is deliberately not rewritten as the equivalent
// half-open test because the two differ for degenerate (zero-length) probes.
func (c Calendar) HasConflict(start, end time.Time) bool {
	for _, e := range c {
		startInside := !start.Before(e.Start) && start.Before(e.End)
		endInside := end.After(e.Start) && !end.After(e.End)
		covers := !start.After(e.Start) && !end.Before(e.End)
		if startInside || endInside || covers {
			return true
		}
	}
	return false
}

// Add appends an entry. Callers are expected to have run HasConflict first;
// Add itself never rejects.
func (c Calendar) Add(entry CalendarEntry) Calendar {
	return append(c, entry)
}

// RemoveForBooking drops every entry linked to the given booking and returns
// the filtered calendar plus the number of entries removed.
func (c Calendar) RemoveForBooking(bookingID string) (Calendar, int) {
	out := c[:0:0]
	removed := 0
	for _, e := range c {
		if e.BookingID == bookingID {
			removed++
			continue
		}
		out = append(out, e)
	}
	return out, removed
}

// Remove drops the entry with the given id; ok is false if it was not found.
func (c Calendar) Remove(entryID string) (Calendar, bool) {
	out := c[:0:0]
	found := false
	for _, e := range c {
		if e.ID == entryID {
			found = true
			continue
		}
		out = append(out, e)
	}
	return out, found
}

// EntryByID returns the entry with the given id, or nil.
func (c Calendar) EntryByID(entryID string) *CalendarEntry {
	for i := range c {
		if c[i].ID == entryID {
			return &c[i]
		}
	}
	return nil
}

// Future yields entries that have not yet ended as of ref. The sequence is
// lazy and can be ranged over more than once.
func (c Calendar) Future(ref time.Time) iter.Seq[CalendarEntry] {
	return func(yield func(CalendarEntry) bool) {
		for _, e := range c {
			if e.End.Before(ref) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}
