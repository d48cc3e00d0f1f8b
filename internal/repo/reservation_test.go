package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/repo"
)

// reservationFixture returns a BOOKED reservation for the given car.
func reservationFixture(carID uuid.UUID) domain.Reservation {
	return domain.Reservation{
		CarID:           carID,
		CustomerID:      uuid.New(),
		StartDate:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		PricePerDay:     100,
		DiscountPercent: 0,
		Days:            3,
		TotalPrice:      300,
		Destination:     "coast road",
		Status:          domain.ReservationBooked,
	}
}

func TestReservationRepo_CreateAndGet(t *testing.T) {
	tx := newTestTx(t)
	cars := repo.NewCarRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	car, err := cars.Create(ctx, carFixture())
	require.NoError(t, err)

	input := reservationFixture(car.ID)
	created, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, car.ID, created.CarID)
	assert.Equal(t, 3, created.Days)
	assert.Equal(t, 300.0, created.TotalPrice)
	assert.Equal(t, domain.ReservationBooked, created.Status)

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.StartDate.Equal(input.StartDate))
	assert.True(t, got.EndDate.Equal(input.EndDate))
}

func TestReservationRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewReservationRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationRepo_ListByCar(t *testing.T) {
	tx := newTestTx(t)
	cars := repo.NewCarRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	car1, err := cars.Create(ctx, carFixture())
	require.NoError(t, err)
	car2, err := cars.Create(ctx, carFixture())
	require.NoError(t, err)

	_, err = r.Create(ctx, reservationFixture(car1.ID))
	require.NoError(t, err)

	other := reservationFixture(car2.ID)
	_, err = r.Create(ctx, other)
	require.NoError(t, err)

	got, err := r.ListByCar(ctx, car1.ID)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, car1.ID, got[0].CarID)
}

func TestReservationRepo_Update(t *testing.T) {
	tx := newTestTx(t)
	cars := repo.NewCarRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	car, err := cars.Create(ctx, carFixture())
	require.NoError(t, err)
	created, err := r.Create(ctx, reservationFixture(car.ID))
	require.NoError(t, err)

	created.EndDate = created.EndDate.AddDate(0, 0, 2)
	created.Days = 5
	created.TotalPrice = 500

	updated, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, 5, updated.Days)
	assert.Equal(t, 500.0, updated.TotalPrice)
	assert.True(t, updated.EndDate.Equal(created.EndDate))
}

func TestReservationRepo_UpdateStatus(t *testing.T) {
	tx := newTestTx(t)
	cars := repo.NewCarRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	car, err := cars.Create(ctx, carFixture())
	require.NoError(t, err)
	created, err := r.Create(ctx, reservationFixture(car.ID))
	require.NoError(t, err)

	got, err := r.UpdateStatus(ctx, created.ID, domain.ReservationCanceled)

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCanceled, got.Status)
}

func TestReservationRepo_Delete_NotFound(t *testing.T) {
	r := repo.NewReservationRepo(newTestTx(t))

	err := r.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationRepo_DeleteCascadesWithCar(t *testing.T) {
	tx := newTestTx(t)
	cars := repo.NewCarRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	car, err := cars.Create(ctx, carFixture())
	require.NoError(t, err)
	created, err := r.Create(ctx, reservationFixture(car.ID))
	require.NoError(t, err)

	require.NoError(t, cars.Delete(ctx, car.ID))

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
