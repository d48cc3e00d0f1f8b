// Package handler implements the HTTP handlers for the Fleetbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, car.go, reservation.go, expense.go, report.go) but all
// share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/service"
)

// CarServicer defines the business operations the car handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type CarServicer interface {
	Create(ctx context.Context, car domain.Car) (domain.Car, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Car, int64, error)
	Update(ctx context.Context, car domain.Car) (domain.Car, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Status(ctx context.Context, id uuid.UUID) (domain.CarStatus, error)
}

// ReservationServicer defines the business operations the reservation
// handlers depend on.
type ReservationServicer interface {
	Create(ctx context.Context, input service.CreateReservationInput) (domain.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error)
	Amend(ctx context.Context, id uuid.UUID, patch domain.ReservationPatch) (domain.Reservation, error)
	Complete(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Cancel(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CheckAvailability(ctx context.Context, carID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
	RevenueMonth(ctx context.Context, monthToken string) (service.MonthlyRevenue, error)
}

// ExpenseServicer defines the business operations the expense handlers
// depend on.
type ExpenseServicer interface {
	Create(ctx context.Context, e domain.Expense) (domain.Expense, error)
	List(ctx context.Context, carID *uuid.UUID) ([]domain.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AggregateMonth(ctx context.Context, monthToken string, carID *uuid.UUID) (service.MonthlyExpenses, error)
}

// Server holds the handler dependencies. Methods are in domain-specific
// files but all operate on this struct.
type Server struct {
	cars         CarServicer
	reservations ReservationServicer
	expenses     ExpenseServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(cars CarServicer, reservations ReservationServicer, expenses ExpenseServicer) *Server {
	return &Server{cars: cars, reservations: reservations, expenses: expenses}
}

// Routes mounts every endpoint on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/cars", func(r chi.Router) {
		r.Post("/", s.CreateCar)
		r.Get("/", s.ListCars)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetCar)
			r.Put("/", s.UpdateCar)
			r.Delete("/", s.DeleteCar)
			r.Get("/status", s.GetCarStatus)
		})
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", s.CreateReservation)
		r.Get("/", s.ListReservations)
		r.Post("/check", s.CheckAvailability)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetReservation)
			r.Put("/", s.AmendReservation)
			r.Delete("/", s.DeleteReservation)
			r.Post("/complete", s.CompleteReservation)
			r.Post("/cancel", s.CancelReservation)
		})
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Post("/", s.CreateExpense)
		r.Get("/", s.ListExpenses)
		r.Delete("/{id}", s.DeleteExpense)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/expenses", s.ExpenseReport)
		r.Get("/revenue", s.RevenueReport)
	})

	return r
}
