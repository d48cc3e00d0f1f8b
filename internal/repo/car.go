// Package repo contains all database access logic for the Fleetbook API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mwarren/fleetbook/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// CarRepo defines the persistence operations for cars.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the services to be unit-tested with mocks.
type CarRepo interface {
	// Create inserts a new car and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, car domain.Car) (domain.Car, error)

	// GetByID retrieves a single car by its UUID primary key.
	// Returns domain.ErrNotFound if no car with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error)

	// List returns all cars ordered by brand, model.
	List(ctx context.Context) ([]domain.Car, error)

	// ListPaged returns one page of cars plus the total row count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Car, int64, error)

	// Update overwrites the mutable fields of an existing car and returns the
	// updated record. The derived status column is NOT touched here — use
	// UpdateStatus. Returns domain.ErrNotFound if no car with that ID exists.
	Update(ctx context.Context, car domain.Car) (domain.Car, error)

	// UpdateStatus persists the derived occupancy status for a car.
	// Returns domain.ErrNotFound if no car with that ID exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CarStatus) error

	// Delete removes a car by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgCarRepo is the Postgres implementation of CarRepo.
type pgCarRepo struct {
	db db
}

// NewCarRepo constructs a CarRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCarRepo(db db) CarRepo {
	return &pgCarRepo{db: db}
}

const carColumns = `id, brand, model, year, plate, vin, price_per_day, status, created_at, updated_at`

func (r *pgCarRepo) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		INSERT INTO cars (brand, model, year, plate, vin, price_per_day, status)
		VALUES (@brand, @model, @year, @plate, @vin, @price_per_day, @status)
		RETURNING ` + carColumns

	status := car.Status
	if status == "" {
		status = domain.StatusFree
	}

	args := pgx.NamedArgs{
		"brand":         car.Brand,
		"model":         car.Model,
		"year":          car.Year,
		"plate":         car.Plate,
		"vin":           car.VIN,
		"price_per_day": car.PricePerDay,
		"status":        status,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCar(row)
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error) {
	const q = `SELECT ` + carColumns + ` FROM cars WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanCar(row)
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) List(ctx context.Context) ([]domain.Car, error) {
	const q = `SELECT ` + carColumns + ` FROM cars ORDER BY brand, model`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.List: %w", err)
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CarRepo.List: scan: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CarRepo.List: rows: %w", err)
	}

	return cars, nil
}

func (r *pgCarRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Car, int64, error) {
	const q = `
		SELECT ` + carColumns + `, count(*) OVER () AS total
		FROM cars
		ORDER BY brand, model
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		cars  []domain.Car
		total int64
	)
	for rows.Next() {
		c, n, err := scanCarWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.CarRepo.ListPaged: scan: %w", err)
		}
		cars = append(cars, c)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.ListPaged: rows: %w", err)
	}

	return cars, total, nil
}

func (r *pgCarRepo) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		UPDATE cars
		SET brand         = @brand,
		    model         = @model,
		    year          = @year,
		    plate         = @plate,
		    vin           = @vin,
		    price_per_day = @price_per_day,
		    updated_at    = now()
		WHERE id = @id
		RETURNING ` + carColumns

	args := pgx.NamedArgs{
		"id":            car.ID,
		"brand":         car.Brand,
		"model":         car.Model,
		"year":          car.Year,
		"plate":         car.Plate,
		"vin":           car.VIN,
		"price_per_day": car.PricePerDay,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCar(row)
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CarStatus) error {
	const q = `UPDATE cars SET status = @status, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "status": status})
	if err != nil {
		return fmt.Errorf("repo.CarRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CarRepo.UpdateStatus: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM cars WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CarRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CarRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanCar maps a single database row into a domain.Car.
func scanCar(s scanner) (domain.Car, error) {
	var (
		c  domain.Car
		id pgtype.UUID
	)

	err := s.Scan(&id, &c.Brand, &c.Model, &c.Year, &c.Plate, &c.VIN,
		&c.PricePerDay, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Car{}, domain.ErrNotFound
		}
		return domain.Car{}, err
	}

	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}

func scanCarWithTotal(s scanner) (domain.Car, int64, error) {
	var (
		c     domain.Car
		id    pgtype.UUID
		total int64
	)

	err := s.Scan(&id, &c.Brand, &c.Model, &c.Year, &c.Plate, &c.VIN,
		&c.PricePerDay, &c.Status, &c.CreatedAt, &c.UpdatedAt, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Car{}, 0, domain.ErrNotFound
		}
		return domain.Car{}, 0, err
	}

	c.ID = uuid.UUID(id.Bytes)
	return c, total, nil
}
