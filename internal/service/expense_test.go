package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/service"
)

func expenseOn(when time.Time, amount float64) domain.Expense {
	return domain.Expense{
		ID:      uuid.New(),
		Title:   "Fuel",
		Payee:   "Station",
		Amount:  amount,
		SpentAt: when,
	}
}

func TestExpenseService_Create_Validation(t *testing.T) {
	svc := service.NewExpenseService(&mockExpenseRepo{}, &mockCarRepo{}, fixedClock{now: day(2024, 6, 1)}, time.UTC)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Expense{Title: " ", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, domain.Expense{Title: "Fuel", Amount: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExpenseService_Create_UnknownCarRejected(t *testing.T) {
	cars := &mockCarRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Car, error) {
			return domain.Car{}, domain.ErrNotFound
		},
	}
	svc := service.NewExpenseService(&mockExpenseRepo{}, cars, fixedClock{now: day(2024, 6, 1)}, time.UTC)

	carID := uuid.New()
	_, err := svc.Create(context.Background(), domain.Expense{Title: "Tires", Amount: 400, CarID: &carID})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpenseService_Create_GeneralLedgerSkipsCarLookup(t *testing.T) {
	expenses := &mockExpenseRepo{
		create: func(_ context.Context, e domain.Expense) (domain.Expense, error) {
			e.ID = uuid.New()
			return e, nil
		},
	}
	// car repo left with nil method fields: any call would panic the test
	svc := service.NewExpenseService(expenses, &mockCarRepo{}, fixedClock{now: day(2024, 6, 1)}, time.UTC)

	got, err := svc.Create(context.Background(), domain.Expense{Title: "Rent", Amount: 1200})

	require.NoError(t, err)
	assert.Nil(t, got.CarID)
}

func TestExpenseService_AggregateMonth_FiltersToWindow(t *testing.T) {
	// the canonical scenario: entries on 05-31, 06-15, 07-01 queried for 2024-06
	expenses := &mockExpenseRepo{
		listGeneral: func(_ context.Context) ([]domain.Expense, error) {
			return []domain.Expense{
				expenseOn(day(2024, 5, 31), 50),
				expenseOn(day(2024, 6, 15), 75),
				expenseOn(day(2024, 7, 1), 20),
			}, nil
		},
	}
	svc := service.NewExpenseService(expenses, &mockCarRepo{}, fixedClock{now: day(2024, 1, 1)}, time.UTC)

	report, err := svc.AggregateMonth(context.Background(), "2024-06", nil)

	require.NoError(t, err)
	assert.Equal(t, "2024-06", report.Month)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, 75.0, report.Total)
	require.Len(t, report.Items, 1)
	assert.True(t, report.Items[0].SpentAt.Equal(day(2024, 6, 15)))
}

func TestExpenseService_AggregateMonth_SkipsRecordsWithNoDate(t *testing.T) {
	expenses := &mockExpenseRepo{
		listGeneral: func(_ context.Context) ([]domain.Expense, error) {
			return []domain.Expense{
				expenseOn(day(2024, 6, 15), 75),
				expenseOn(time.Time{}, 999), // corrupt: no spend and no creation instant
			}, nil
		},
	}
	svc := service.NewExpenseService(expenses, &mockCarRepo{}, fixedClock{now: day(2024, 1, 1)}, time.UTC)

	report, err := svc.AggregateMonth(context.Background(), "2024-06", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Count, "a corrupt record must not abort or distort the report")
	assert.Equal(t, 75.0, report.Total)
}

func TestExpenseService_AggregateMonth_FallsBackToCreatedAt(t *testing.T) {
	e := expenseOn(time.Time{}, 30)
	e.CreatedAt = day(2024, 6, 10)

	expenses := &mockExpenseRepo{
		listGeneral: func(_ context.Context) ([]domain.Expense, error) {
			return []domain.Expense{e}, nil
		},
	}
	svc := service.NewExpenseService(expenses, &mockCarRepo{}, fixedClock{now: day(2024, 1, 1)}, time.UTC)

	report, err := svc.AggregateMonth(context.Background(), "2024-06", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, 30.0, report.Total)
}

func TestExpenseService_AggregateMonth_CarScoped(t *testing.T) {
	carID := uuid.New()
	expenses := &mockExpenseRepo{
		listByCar: func(_ context.Context, id uuid.UUID) ([]domain.Expense, error) {
			assert.Equal(t, carID, id)
			e := expenseOn(day(2024, 6, 5), 120)
			e.CarID = &id
			return []domain.Expense{e}, nil
		},
	}
	svc := service.NewExpenseService(expenses, &mockCarRepo{}, fixedClock{now: day(2024, 1, 1)}, time.UTC)

	report, err := svc.AggregateMonth(context.Background(), "2024-06", &carID)

	require.NoError(t, err)
	assert.Equal(t, 120.0, report.Total)
}

func TestExpenseService_AggregateMonth_EmptyTokenMeansCurrentMonth(t *testing.T) {
	expenses := &mockExpenseRepo{
		listGeneral: func(_ context.Context) ([]domain.Expense, error) {
			return []domain.Expense{expenseOn(day(2024, 6, 15), 75)}, nil
		},
	}
	svc := service.NewExpenseService(expenses, &mockCarRepo{}, fixedClock{now: day(2024, 6, 20)}, time.UTC)

	report, err := svc.AggregateMonth(context.Background(), "", nil)

	require.NoError(t, err)
	assert.Equal(t, "2024-06", report.Month)
	assert.Equal(t, 75.0, report.Total)
}
