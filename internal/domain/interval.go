package domain

import (
	"time"

	"github.com/google/uuid"
)

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one instant. Intervals that touch at a
// boundary overlap: a reservation ending on a given day conflicts with one
// starting that same day. Back-to-back same-day turnover is therefore
// rejected; callers wanting it must shorten an interval explicitly.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// HasConflict reports whether the candidate interval [start, end] collides
// with any existing reservation for carID.
//
// The reservation identified by excludeID is skipped, so an amendment never
// conflicts with itself; pass uuid.Nil when creating. Reservations in a
// terminal state (completed, cancelled) no longer occupy the car and are
// skipped. Records with a zero start or end instant cannot be positioned on
// the timeline and are skipped rather than failing the scan — one corrupt
// row must not block all future bookings for the car. A candidate with a
// zero instant likewise conflicts with nothing.
func HasConflict(reservations []Reservation, carID uuid.UUID, start, end time.Time, excludeID uuid.UUID) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	for _, r := range reservations {
		if r.CarID != carID || r.ID == excludeID {
			continue
		}
		if r.Status.Terminal() {
			continue
		}
		if r.StartDate.IsZero() || r.EndDate.IsZero() {
			continue
		}
		if Overlaps(start, end, r.StartDate, r.EndDate) {
			return true
		}
	}
	return false
}
