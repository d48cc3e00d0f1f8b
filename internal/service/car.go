package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/repo"
)

// CarService implements fleet management. It holds the reservation repo as
// well because a car's occupancy status is derived from its reservation set
// and deleting a car is gated on that set being empty of live bookings.
type CarService struct {
	cars  repo.CarRepo
	rsv   repo.ReservationRepo
	clock domain.Clock
	loc   *time.Location
}

// NewCarService constructs a CarService backed by the provided repos.
func NewCarService(cars repo.CarRepo, rsv repo.ReservationRepo, clock domain.Clock, loc *time.Location) *CarService {
	return &CarService{cars: cars, rsv: rsv, clock: clock, loc: loc}
}

// Create validates and persists a new car. New cars start FREE; the status
// field on the input is ignored.
func (s *CarService) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	if err := validateCar(car); err != nil {
		return domain.Car{}, err
	}
	car.Status = domain.StatusFree

	result, err := s.cars.Create(ctx, car)
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single car by ID.
func (s *CarService) GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error) {
	result, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of cars plus the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *CarService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Car, int64, error) {
	cars, total, err := s.cars.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CarService.ListPaged: %w", err)
	}
	if cars == nil {
		cars = []domain.Car{}
	}
	return cars, total, nil
}

// Update validates and persists changes to a car's descriptive fields.
// The derived status cannot be changed here — it only moves through the
// reservation lifecycle.
func (s *CarService) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	if err := validateCar(car); err != nil {
		return domain.Car{}, err
	}

	result, err := s.cars.Update(ctx, car)
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a car. A car with live (non-terminal) reservations cannot
// be deleted; cancel or complete them first.
func (s *CarService) Delete(ctx context.Context, id uuid.UUID) error {
	reservations, err := s.rsv.ListByCar(ctx, id)
	if err != nil {
		return fmt.Errorf("service.CarService.Delete: %w", err)
	}
	for _, r := range reservations {
		if !r.Status.Terminal() {
			return fmt.Errorf("%w: car has active reservations", domain.ErrConflict)
		}
	}

	if err := s.cars.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CarService.Delete: %w", err)
	}
	return nil
}

// Status derives the car's occupancy state from its live reservation set at
// the current instant. It recomputes rather than reading the cached column,
// so the answer is correct even while a booking is mid-flight elsewhere.
// Returns domain.ErrNotFound for an unknown car.
func (s *CarService) Status(ctx context.Context, id uuid.UUID) (domain.CarStatus, error) {
	if _, err := s.cars.GetByID(ctx, id); err != nil {
		return "", fmt.Errorf("service.CarService.Status: %w", err)
	}

	reservations, err := s.rsv.ListByCar(ctx, id)
	if err != nil {
		return "", fmt.Errorf("service.CarService.Status: %w", err)
	}

	now := domain.Midnight(s.clock.Now(), s.loc)
	return domain.ComputeCarStatus(id, reservations, now), nil
}

// validateCar enforces rules common to Create and Update.
func validateCar(car domain.Car) error {
	if strings.TrimSpace(car.Brand) == "" {
		return fmt.Errorf("%w: brand is required", domain.ErrValidation)
	}
	if strings.TrimSpace(car.Model) == "" {
		return fmt.Errorf("%w: model is required", domain.ErrValidation)
	}
	if strings.TrimSpace(car.Plate) == "" {
		return fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	if car.PricePerDay <= 0 {
		return fmt.Errorf("%w: price per day must be positive", domain.ErrValidation)
	}
	return nil
}
