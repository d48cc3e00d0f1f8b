package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a reservation.
// BOOKED is the only live state; COMPLETED and CANCELED are terminal —
// there is no transition out of them.
type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "BOOKED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCanceled  ReservationStatus = "CANCELED"
)

// Terminal reports whether the status admits no further transitions.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCanceled
}

// Reservation is a time-bounded claim on one car by one customer.
// StartDate and EndDate form a closed interval at calendar-day precision:
// a reservation occupies the car from the start of StartDate through the
// end of EndDate, and two reservations that touch at a boundary day
// conflict. Days and TotalPrice are derived by the service layer and never
// accepted from clients.
//
// Invariant: for a given car, the reservations whose status is not terminal
// are pairwise non-overlapping.
type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	CarID           uuid.UUID         `json:"car_id"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         time.Time         `json:"end_date"`
	PricePerDay     float64           `json:"price_per_day"`
	DiscountPercent float64           `json:"discount_percent"`
	Days            int               `json:"days"`
	TotalPrice      float64           `json:"total_price"`
	Destination     string            `json:"destination,omitempty"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ReservationPatch names exactly the fields a client may change on an
// existing reservation. Nil means "leave unchanged". Derived fields (Days,
// TotalPrice) and Status are deliberately absent: derived fields are
// recomputed by the service, and status only moves through the explicit
// Complete/Cancel operations.
type ReservationPatch struct {
	CarID           *uuid.UUID
	StartDate       *time.Time
	EndDate         *time.Time
	PricePerDay     *float64
	DiscountPercent *float64
	Destination     *string
}

// Clock abstracts time.Now so status derivation and overlap checks can be
// tested against a fixed instant.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
