package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/repo"
)

// ---- fixed clock -----------------------------------------------------------

// fixedClock returns the same instant on every call, making status
// derivation and month windows deterministic.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// ---- function-field mocks --------------------------------------------------

// mockCarRepo is a hand-written test double for repo.CarRepo.
// Set only the method fields your test needs.
type mockCarRepo struct {
	create       func(ctx context.Context, car domain.Car) (domain.Car, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Car, error)
	list         func(ctx context.Context) ([]domain.Car, error)
	listPaged    func(ctx context.Context, p domain.PaginationParams) ([]domain.Car, int64, error)
	update       func(ctx context.Context, car domain.Car) (domain.Car, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.CarStatus) error
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCarRepo) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.create(ctx, car)
}
func (m *mockCarRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error) {
	return m.getByID(ctx, id)
}
func (m *mockCarRepo) List(ctx context.Context) ([]domain.Car, error) {
	return m.list(ctx)
}
func (m *mockCarRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Car, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockCarRepo) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.update(ctx, car)
}
func (m *mockCarRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CarStatus) error {
	return m.updateStatus(ctx, id, status)
}
func (m *mockCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockCarRepo must satisfy repo.CarRepo.
var _ repo.CarRepo = (*mockCarRepo)(nil)

// mockExpenseRepo is a hand-written test double for repo.ExpenseRepo.
type mockExpenseRepo struct {
	create      func(ctx context.Context, e domain.Expense) (domain.Expense, error)
	listGeneral func(ctx context.Context) ([]domain.Expense, error)
	listByCar   func(ctx context.Context, carID uuid.UUID) ([]domain.Expense, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockExpenseRepo) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	return m.create(ctx, e)
}
func (m *mockExpenseRepo) ListGeneral(ctx context.Context) ([]domain.Expense, error) {
	return m.listGeneral(ctx)
}
func (m *mockExpenseRepo) ListByCar(ctx context.Context, carID uuid.UUID) ([]domain.Expense, error) {
	return m.listByCar(ctx, carID)
}
func (m *mockExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ExpenseRepo = (*mockExpenseRepo)(nil)

// ---- in-memory fake store --------------------------------------------------

// fakeStore is a map-backed implementation of CarRepo and ReservationRepo
// for multi-step scenario tests, where a function-field mock would have to
// re-implement most of this anyway. All methods are safe for concurrent use
// so contention tests can hammer it from multiple goroutines.
type fakeStore struct {
	mu           sync.Mutex
	cars         map[uuid.UUID]domain.Car
	reservations map[uuid.UUID]domain.Reservation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cars:         make(map[uuid.UUID]domain.Car),
		reservations: make(map[uuid.UUID]domain.Reservation),
	}
}

type fakeCarRepo struct{ s *fakeStore }
type fakeReservationRepo struct{ s *fakeStore }

var (
	_ repo.CarRepo         = (*fakeCarRepo)(nil)
	_ repo.ReservationRepo = (*fakeReservationRepo)(nil)
)

func (f *fakeCarRepo) Create(_ context.Context, car domain.Car) (domain.Car, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	car.ID = uuid.New()
	if car.Status == "" {
		car.Status = domain.StatusFree
	}
	car.CreatedAt = time.Now()
	car.UpdatedAt = car.CreatedAt
	f.s.cars[car.ID] = car
	return car, nil
}

func (f *fakeCarRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Car, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	car, ok := f.s.cars[id]
	if !ok {
		return domain.Car{}, domain.ErrNotFound
	}
	return car, nil
}

func (f *fakeCarRepo) List(_ context.Context) ([]domain.Car, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]domain.Car, 0, len(f.s.cars))
	for _, c := range f.s.cars {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCarRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Car, int64, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	return all, int64(len(all)), nil
}

func (f *fakeCarRepo) Update(_ context.Context, car domain.Car) (domain.Car, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	existing, ok := f.s.cars[car.ID]
	if !ok {
		return domain.Car{}, domain.ErrNotFound
	}
	car.Status = existing.Status
	f.s.cars[car.ID] = car
	return car, nil
}

func (f *fakeCarRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.CarStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	car, ok := f.s.cars[id]
	if !ok {
		return domain.ErrNotFound
	}
	car.Status = status
	f.s.cars[id] = car
	return nil
}

func (f *fakeCarRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.cars[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.s.cars, id)
	return nil
}

func (f *fakeReservationRepo) Create(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	f.s.reservations[res.ID] = res
	return res, nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	res, ok := f.s.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return res, nil
}

func (f *fakeReservationRepo) List(_ context.Context) ([]domain.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]domain.Reservation, 0, len(f.s.reservations))
	for _, r := range f.s.reservations {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationRepo) ListByCar(_ context.Context, carID uuid.UUID) ([]domain.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Reservation
	for _, r := range f.s.reservations {
		if r.CarID == carID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	return all, int64(len(all)), nil
}

func (f *fakeReservationRepo) Update(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.reservations[res.ID]; !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	res.UpdatedAt = time.Now()
	f.s.reservations[res.ID] = res
	return res, nil
}

func (f *fakeReservationRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ReservationStatus) (domain.Reservation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	res, ok := f.s.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	res.Status = status
	res.UpdatedAt = time.Now()
	f.s.reservations[id] = res
	return res, nil
}

func (f *fakeReservationRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.reservations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.s.reservations, id)
	return nil
}

// ---- notifier spy ----------------------------------------------------------

// spyNotifier records dispatched events; safe for concurrent use.
type spyNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *spyNotifier) Notify(event string, _ map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *spyNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}
