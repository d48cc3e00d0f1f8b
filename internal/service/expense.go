package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/repo"
)

// MonthlyExpenses is the expense report for one calendar month of a single
// ledger: the entries whose spend instant falls inside the month window,
// with their sum and count.
type MonthlyExpenses struct {
	Month string           `json:"month"`
	Items []domain.Expense `json:"items"`
	Total float64          `json:"total"`
	Count int              `json:"count"`
}

// ExpenseService implements the expense ledgers and their month aggregation.
// It holds the car repo because creating a car-scoped expense requires the
// car to exist.
type ExpenseService struct {
	expenses repo.ExpenseRepo
	cars     repo.CarRepo
	clock    domain.Clock
	loc      *time.Location
}

// NewExpenseService constructs an ExpenseService backed by the provided repos.
func NewExpenseService(expenses repo.ExpenseRepo, cars repo.CarRepo, clock domain.Clock, loc *time.Location) *ExpenseService {
	return &ExpenseService{expenses: expenses, cars: cars, clock: clock, loc: loc}
}

// Create validates and persists an expense into the ledger selected by
// e.CarID (nil = general). An omitted SpentAt defaults to the creation time.
// Returns domain.ErrNotFound when the referenced car does not exist.
func (s *ExpenseService) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	if strings.TrimSpace(e.Title) == "" {
		return domain.Expense{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if e.Amount <= 0 {
		return domain.Expense{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if e.CarID != nil {
		if _, err := s.cars.GetByID(ctx, *e.CarID); err != nil {
			return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
		}
	}

	result, err := s.expenses.Create(ctx, e)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}
	return result, nil
}

// List returns one full ledger: the general ledger when carID is nil,
// otherwise that car's ledger. Always returns a non-nil slice.
func (s *ExpenseService) List(ctx context.Context, carID *uuid.UUID) ([]domain.Expense, error) {
	var (
		out []domain.Expense
		err error
	)
	if carID != nil {
		out, err = s.expenses.ListByCar(ctx, *carID)
	} else {
		out, err = s.expenses.ListGeneral(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.List: %w", err)
	}
	if out == nil {
		out = []domain.Expense{}
	}
	return out, nil
}

// Delete removes an expense from whichever ledger holds it.
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.expenses.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ExpenseService.Delete: %w", err)
	}
	return nil
}

// AggregateMonth sums one ledger over the month named by a "YYYY-MM" token
// (empty or malformed tokens mean the current month). Entries with a
// missing spend instant are skipped with a warning rather than counted as
// zero, so one corrupt record never spoils the report.
func (s *ExpenseService) AggregateMonth(ctx context.Context, monthToken string, carID *uuid.UUID) (MonthlyExpenses, error) {
	entries, err := s.List(ctx, carID)
	if err != nil {
		return MonthlyExpenses{}, fmt.Errorf("service.ExpenseService.AggregateMonth: %w", err)
	}

	window := domain.MonthWindowFor(monthToken, s.clock.Now(), s.loc)
	report := MonthlyExpenses{
		Month: window.Start.Format("2006-01"),
		Items: []domain.Expense{},
	}
	for _, e := range entries {
		when := e.SpentAt
		if when.IsZero() {
			when = e.CreatedAt
		}
		if when.IsZero() {
			slog.Warn("expense with no usable date skipped from aggregation", "expense_id", e.ID)
			continue
		}
		if !window.Contains(when) {
			continue
		}
		report.Items = append(report.Items, e)
		report.Total += e.Amount
		report.Count++
	}
	return report, nil
}
