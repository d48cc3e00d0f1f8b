package domain

import (
	"time"

	"github.com/google/uuid"
)

// ComputeCarStatus derives a car's occupancy state from its reservation set
// at the instant now:
//
//   - IN_USE if any live reservation's closed interval contains now,
//   - else RESERVED if any live reservation starts strictly after now,
//   - else FREE.
//
// Only live (non-terminal) reservations count. The function is pure and
// idempotent, which lets the lifecycle manager recompute it after every
// write without tracking what changed. Should the no-overlap invariant ever
// be violated upstream, multiple reservations can qualify at once; IN_USE
// still wins deterministically over RESERVED.
//
// Reservation bounds are stored at local-midnight day precision, so callers
// must normalize now with Midnight before invoking; otherwise a car would
// read as free during the afternoon of a rental's last day.
func ComputeCarStatus(carID uuid.UUID, reservations []Reservation, now time.Time) CarStatus {
	status := StatusFree
	for _, r := range reservations {
		if r.CarID != carID || r.Status.Terminal() {
			continue
		}
		if r.StartDate.IsZero() || r.EndDate.IsZero() {
			continue
		}
		if !now.Before(r.StartDate) && !now.After(r.EndDate) {
			return StatusInUse
		}
		if r.StartDate.After(now) {
			status = StatusReserved
		}
	}
	return status
}
