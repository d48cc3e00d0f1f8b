// Package domain contains the core data types and scheduling rules for the
// Fleetbook API. This package has zero external dependencies beyond uuid and
// is imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// CarStatus is the derived occupancy state of a car.
// It is a cache of ComputeCarStatus over the car's live reservation set,
// recomputed and persisted after every reservation write affecting the car.
// Clients can never set it directly.
type CarStatus string

const (
	StatusFree     CarStatus = "FREE"
	StatusReserved CarStatus = "RESERVED"
	StatusInUse    CarStatus = "IN_USE"
)

// Car represents a single rentable vehicle in the fleet.
type Car struct {
	ID          uuid.UUID `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Plate       string    `json:"plate"`
	VIN         string    `json:"vin,omitempty"`
	PricePerDay float64   `json:"price_per_day"`
	Status      CarStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
