package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mwarren/fleetbook/backend/internal/domain"
)

// ReservationRepo defines the persistence operations for reservations.
// The overlap gate and status recomputation both work on full reservation
// sets, so the read operations return whole collections rather than
// filtered projections.
type ReservationRepo interface {
	// Create inserts a new reservation and returns the persisted record.
	Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// GetByID retrieves a single reservation by its UUID primary key.
	// Returns domain.ErrNotFound if no reservation with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// List returns all reservations ordered by start_date ascending.
	List(ctx context.Context) ([]domain.Reservation, error)

	// ListByCar returns all reservations for one car, in start_date order.
	// Terminal-status reservations are included; the domain layer decides
	// what blocks and what counts.
	ListByCar(ctx context.Context, carID uuid.UUID) ([]domain.Reservation, error)

	// ListPaged returns one page of reservations plus the total row count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error)

	// Update overwrites the mutable and derived fields of a reservation and
	// returns the updated record. Returns domain.ErrNotFound if it does not
	// exist.
	Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// UpdateStatus moves a reservation to the given lifecycle status.
	// Returns domain.ErrNotFound if it does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) (domain.Reservation, error)

	// Delete removes a reservation by ID. Returns domain.ErrNotFound if it
	// does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationColumns = `id, car_id, customer_id, start_date, end_date,
	price_per_day, discount_percent, days, total_price, destination, status,
	created_at, updated_at`

func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	const q = `
		INSERT INTO reservations
			(car_id, customer_id, start_date, end_date, price_per_day,
			 discount_percent, days, total_price, destination, status)
		VALUES
			(@car_id, @customer_id, @start_date, @end_date, @price_per_day,
			 @discount_percent, @days, @total_price, @destination, @status)
		RETURNING ` + reservationColumns

	row := r.db.QueryRow(ctx, q, reservationArgs(res))
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY start_date`

	return r.queryMany(ctx, "List", q, nil)
}

func (r *pgReservationRepo) ListByCar(ctx context.Context, carID uuid.UUID) ([]domain.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
		FROM reservations WHERE car_id = @car_id ORDER BY start_date`

	return r.queryMany(ctx, "ListByCar", q, pgx.NamedArgs{"car_id": carID})
}

func (r *pgReservationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	const q = `
		SELECT ` + reservationColumns + `, count(*) OVER () AS total
		FROM reservations
		ORDER BY start_date DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.Reservation
		total int64
	)
	for rows.Next() {
		res, n, err := scanReservationWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: scan: %w", err)
		}
		out = append(out, res)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: rows: %w", err)
	}

	return out, total, nil
}

func (r *pgReservationRepo) Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	const q = `
		UPDATE reservations
		SET car_id           = @car_id,
		    customer_id      = @customer_id,
		    start_date       = @start_date,
		    end_date         = @end_date,
		    price_per_day    = @price_per_day,
		    discount_percent = @discount_percent,
		    days             = @days,
		    total_price      = @total_price,
		    destination      = @destination,
		    status           = @status,
		    updated_at       = now()
		WHERE id = @id
		RETURNING ` + reservationColumns

	args := reservationArgs(res)
	args["id"] = res.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) (domain.Reservation, error) {
	const q = `
		UPDATE reservations
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + reservationColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": status})
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM reservations WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ReservationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ReservationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgReservationRepo) queryMany(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Reservation, error) {
	var rows pgx.Rows
	var err error
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.%s: scan: %w", op, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.%s: rows: %w", op, err)
	}

	return out, nil
}

func reservationArgs(res domain.Reservation) pgx.NamedArgs {
	return pgx.NamedArgs{
		"car_id":           res.CarID,
		"customer_id":      res.CustomerID,
		"start_date":       res.StartDate,
		"end_date":         res.EndDate,
		"price_per_day":    res.PricePerDay,
		"discount_percent": res.DiscountPercent,
		"days":             res.Days,
		"total_price":      res.TotalPrice,
		"destination":      res.Destination,
		"status":           res.Status,
	}
}

// scanReservation maps a single database row into a domain.Reservation.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res        domain.Reservation
		id         pgtype.UUID
		carID      pgtype.UUID
		customerID pgtype.UUID
	)

	err := s.Scan(&id, &carID, &customerID, &res.StartDate, &res.EndDate,
		&res.PricePerDay, &res.DiscountPercent, &res.Days, &res.TotalPrice,
		&res.Destination, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}

	res.ID = uuid.UUID(id.Bytes)
	res.CarID = uuid.UUID(carID.Bytes)
	res.CustomerID = uuid.UUID(customerID.Bytes)
	return res, nil
}

func scanReservationWithTotal(s scanner) (domain.Reservation, int64, error) {
	var (
		res        domain.Reservation
		id         pgtype.UUID
		carID      pgtype.UUID
		customerID pgtype.UUID
		total      int64
	)

	err := s.Scan(&id, &carID, &customerID, &res.StartDate, &res.EndDate,
		&res.PricePerDay, &res.DiscountPercent, &res.Days, &res.TotalPrice,
		&res.Destination, &res.Status, &res.CreatedAt, &res.UpdatedAt, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, 0, domain.ErrNotFound
		}
		return domain.Reservation{}, 0, err
	}

	res.ID = uuid.UUID(id.Bytes)
	res.CarID = uuid.UUID(carID.Bytes)
	res.CustomerID = uuid.UUID(customerID.Bytes)
	return res, total, nil
}
