// Package service contains the business logic for the Fleetbook API.
// Services validate inputs, enforce the no-double-booking invariant, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/repo"
)

// Notifier is the outbound notification channel the reservation service
// dispatches lifecycle events to. Implementations must not block the caller
// and must swallow their own failures — a lost notification never fails or
// rolls back a committed reservation.
type Notifier interface {
	Notify(event string, fields map[string]any)
}

// CreateReservationInput carries the client-supplied fields for a new
// reservation. PricePerDay is optional; nil falls back to the car's base
// price. Days, total price, and status are always derived server-side.
type CreateReservationInput struct {
	CarID           uuid.UUID
	CustomerID      uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	PricePerDay     *float64
	DiscountPercent float64
	Destination     string
}

// MonthlyRevenue is the revenue report for one calendar month: every
// non-cancelled reservation whose interval overlaps the month, with the sum
// of their totals. A reservation spanning a month boundary appears in both
// months' reports.
type MonthlyRevenue struct {
	Month string               `json:"month"`
	Items []domain.Reservation `json:"items"`
	Total float64              `json:"total"`
	Count int                  `json:"count"`
}

// ReservationService is the reservation lifecycle manager. Every create,
// amend, and cancel funnels through it so the overlap gate runs on each
// mutation and the affected car's derived status is recomputed before the
// operation is reported complete.
type ReservationService struct {
	cars     repo.CarRepo
	rsv      repo.ReservationRepo
	clock    domain.Clock
	notifier Notifier
	locks    *keyLock
	loc      *time.Location
}

// NewReservationService constructs a ReservationService. notifier may be nil
// when no outbound channel is configured.
func NewReservationService(cars repo.CarRepo, rsv repo.ReservationRepo, clock domain.Clock, notifier Notifier, loc *time.Location) *ReservationService {
	return &ReservationService{
		cars:     cars,
		rsv:      rsv,
		clock:    clock,
		notifier: notifier,
		locks:    newKeyLock(),
		loc:      loc,
	}
}

// CheckAvailability reports whether [start, end] is free for the car. It is
// the same gate the Create path runs, so a true result cannot be followed by
// a conflict under sequential execution. Pass uuid.Nil for excludeID unless
// probing on behalf of an existing reservation being amended.
func (s *ReservationService) CheckAvailability(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	start, end = s.normalize(start), s.normalize(end)

	existing, err := s.rsv.ListByCar(ctx, carID)
	if err != nil {
		return false, fmt.Errorf("service.ReservationService.CheckAvailability: %w", err)
	}
	return !domain.HasConflict(existing, carID, start, end, excludeID), nil
}

// Create validates, prices, and persists a new reservation, then recomputes
// the car's derived status. On an interval conflict it returns
// domain.ErrConflict and writes nothing.
func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput) (domain.Reservation, error) {
	if err := validateCreate(input); err != nil {
		return domain.Reservation{}, err
	}

	start := s.normalize(input.StartDate)
	end := s.normalize(input.EndDate)
	if end.Before(start) {
		return domain.Reservation{}, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}

	car, err := s.cars.GetByID(ctx, input.CarID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	unitPrice := car.PricePerDay
	if input.PricePerDay != nil {
		unitPrice = *input.PricePerDay
	}

	// The conflict check and the insert must see the same reservation set.
	s.locks.Lock(input.CarID)
	defer s.locks.Unlock(input.CarID)

	existing, err := s.rsv.ListByCar(ctx, input.CarID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	if domain.HasConflict(existing, input.CarID, start, end, uuid.Nil) {
		return domain.Reservation{}, fmt.Errorf("%w: car is already booked in that period", domain.ErrConflict)
	}

	days := domain.DayCount(start, end, s.loc)
	res := domain.Reservation{
		CarID:           input.CarID,
		CustomerID:      input.CustomerID,
		StartDate:       start,
		EndDate:         end,
		PricePerDay:     unitPrice,
		DiscountPercent: input.DiscountPercent,
		Days:            days,
		TotalPrice:      domain.TotalPrice(unitPrice, days, input.DiscountPercent),
		Destination:     input.Destination,
		Status:          domain.ReservationBooked,
	}

	created, err := s.rsv.Create(ctx, res)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	if err := s.refreshCarStatus(ctx, input.CarID); err != nil {
		return domain.Reservation{}, err
	}

	s.notify("reservation.created", created)
	return created, nil
}

// Amend applies a patch to an existing reservation. A patch touching the
// dates or the car re-runs the overlap gate with the reservation's own id
// excluded; on conflict the stored record is returned to the caller's error
// path untouched. Day count and total price are always recomputed, and the
// derived status is refreshed for the new car — and for the old car when
// the patch moved the reservation, so the vehicle that lost the booking
// never keeps a stale occupied status.
func (s *ReservationService) Amend(ctx context.Context, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error) {
	current, err := s.rsv.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Amend: %w", err)
	}
	if current.Status.Terminal() {
		return domain.Reservation{}, fmt.Errorf("%w: reservation is already %s", domain.ErrValidation, current.Status)
	}

	updated := current
	if patch.CarID != nil {
		updated.CarID = *patch.CarID
	}
	if patch.StartDate != nil {
		updated.StartDate = s.normalize(*patch.StartDate)
	}
	if patch.EndDate != nil {
		updated.EndDate = s.normalize(*patch.EndDate)
	}
	if patch.PricePerDay != nil {
		updated.PricePerDay = *patch.PricePerDay
	}
	if patch.DiscountPercent != nil {
		updated.DiscountPercent = *patch.DiscountPercent
	}
	if patch.Destination != nil {
		updated.Destination = *patch.Destination
	}

	if updated.EndDate.Before(updated.StartDate) {
		return domain.Reservation{}, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}
	if updated.DiscountPercent < 0 || updated.DiscountPercent > 100 {
		return domain.Reservation{}, fmt.Errorf("%w: discount percent must be between 0 and 100", domain.ErrValidation)
	}

	carChanged := updated.CarID != current.CarID
	if carChanged {
		if _, err := s.cars.GetByID(ctx, updated.CarID); err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Amend: %w", err)
		}
	}

	s.locks.LockPair(current.CarID, updated.CarID)
	defer s.locks.UnlockPair(current.CarID, updated.CarID)

	intervalChanged := carChanged ||
		!updated.StartDate.Equal(current.StartDate) ||
		!updated.EndDate.Equal(current.EndDate)

	if intervalChanged {
		existing, err := s.rsv.ListByCar(ctx, updated.CarID)
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Amend: %w", err)
		}
		if domain.HasConflict(existing, updated.CarID, updated.StartDate, updated.EndDate, id) {
			return domain.Reservation{}, fmt.Errorf("%w: car is already booked in that period", domain.ErrConflict)
		}
	}

	updated.Days = domain.DayCount(updated.StartDate, updated.EndDate, s.loc)
	updated.TotalPrice = domain.TotalPrice(updated.PricePerDay, updated.Days, updated.DiscountPercent)

	stored, err := s.rsv.Update(ctx, updated)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Amend: %w", err)
	}

	if err := s.refreshCarStatus(ctx, updated.CarID); err != nil {
		return domain.Reservation{}, err
	}
	if carChanged {
		if err := s.refreshCarStatus(ctx, current.CarID); err != nil {
			return domain.Reservation{}, err
		}
	}

	s.notify("reservation.amended", stored)
	return stored, nil
}

// Complete moves a BOOKED reservation to COMPLETED and refreshes the car's
// status. Completing an already-terminal reservation is a validation error.
func (s *ReservationService) Complete(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return s.finalize(ctx, id, domain.ReservationCompleted, "reservation.completed")
}

// Cancel moves a BOOKED reservation to CANCELED, freeing its interval, and
// refreshes the car's status.
func (s *ReservationService) Cancel(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return s.finalize(ctx, id, domain.ReservationCanceled, "reservation.cancelled")
}

func (s *ReservationService) finalize(ctx context.Context, id uuid.UUID, status domain.ReservationStatus, event string) (domain.Reservation, error) {
	current, err := s.rsv.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.finalize: %w", err)
	}
	if current.Status.Terminal() {
		return domain.Reservation{}, fmt.Errorf("%w: reservation is already %s", domain.ErrValidation, current.Status)
	}

	s.locks.Lock(current.CarID)
	defer s.locks.Unlock(current.CarID)

	updated, err := s.rsv.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.finalize: %w", err)
	}

	if err := s.refreshCarStatus(ctx, current.CarID); err != nil {
		return domain.Reservation{}, err
	}

	s.notify(event, updated)
	return updated, nil
}

// Delete removes a reservation outright (hard delete) and refreshes the
// car's status. Prefer Cancel, which keeps the record for reporting.
func (s *ReservationService) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.rsv.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.ReservationService.Delete: %w", err)
	}

	s.locks.Lock(current.CarID)
	defer s.locks.Unlock(current.CarID)

	if err := s.rsv.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ReservationService.Delete: %w", err)
	}

	if err := s.refreshCarStatus(ctx, current.CarID); err != nil {
		return err
	}

	s.notify("reservation.deleted", current)
	return nil
}

// GetByID returns a single reservation.
func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	res, err := s.rsv.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	return res, nil
}

// ListPaged returns one page of reservations plus the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReservationService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	out, total, err := s.rsv.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReservationService.ListPaged: %w", err)
	}
	if out == nil {
		out = []domain.Reservation{}
	}
	return out, total, nil
}

// RevenueMonth aggregates reservation revenue for the month named by a
// "YYYY-MM" token (empty or malformed tokens mean the current month).
// Membership is by interval overlap with the month window, not by a point
// instant, and cancelled reservations contribute nothing.
func (s *ReservationService) RevenueMonth(ctx context.Context, monthToken string) (MonthlyRevenue, error) {
	all, err := s.rsv.List(ctx)
	if err != nil {
		return MonthlyRevenue{}, fmt.Errorf("service.ReservationService.RevenueMonth: %w", err)
	}

	window := domain.MonthWindowFor(monthToken, s.clock.Now(), s.loc)
	report := MonthlyRevenue{
		Month: window.Start.Format("2006-01"),
		Items: []domain.Reservation{},
	}
	for _, r := range all {
		if r.Status == domain.ReservationCanceled {
			continue
		}
		if !window.OverlapsRange(r.StartDate, r.EndDate) {
			continue
		}
		report.Items = append(report.Items, r)
		report.Total += r.TotalPrice
		report.Count++
	}
	return report, nil
}

// refreshCarStatus recomputes the derived status from the car's live
// reservation set and persists it. The caller's mutation is not complete
// until this succeeds; a reservation write whose status write fails is
// surfaced as an error rather than left silently stale.
func (s *ReservationService) refreshCarStatus(ctx context.Context, carID uuid.UUID) error {
	current, err := s.rsv.ListByCar(ctx, carID)
	if err != nil {
		return fmt.Errorf("service.ReservationService.refreshCarStatus: %w", err)
	}

	now := domain.Midnight(s.clock.Now(), s.loc)
	status := domain.ComputeCarStatus(carID, current, now)

	if err := s.cars.UpdateStatus(ctx, carID, status); err != nil {
		return fmt.Errorf("service.ReservationService.refreshCarStatus: %w", err)
	}
	return nil
}

func (s *ReservationService) notify(event string, res domain.Reservation) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(event, map[string]any{
		"reservation_id": res.ID.String(),
		"car_id":         res.CarID.String(),
		"customer_id":    res.CustomerID.String(),
		"start_date":     res.StartDate.Format("2006-01-02"),
		"end_date":       res.EndDate.Format("2006-01-02"),
		"total_price":    res.TotalPrice,
		"status":         string(res.Status),
	})
}

func (s *ReservationService) normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return domain.Midnight(t, s.loc)
}

func validateCreate(input CreateReservationInput) error {
	if input.CarID == uuid.Nil {
		return fmt.Errorf("%w: car id is required", domain.ErrValidation)
	}
	if input.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: customer id is required", domain.ErrValidation)
	}
	if input.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", domain.ErrValidation)
	}
	if input.EndDate.IsZero() {
		return fmt.Errorf("%w: end date is required", domain.ErrValidation)
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return fmt.Errorf("%w: discount percent must be between 0 and 100", domain.ErrValidation)
	}
	if input.PricePerDay != nil && *input.PricePerDay <= 0 {
		return fmt.Errorf("%w: price per day must be positive", domain.ErrValidation)
	}
	return nil
}
