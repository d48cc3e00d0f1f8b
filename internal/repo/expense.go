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

// ExpenseRepo defines the persistence operations for the two expense
// ledgers. Car-scoped and general expenses live in separate tables
// (car_expenses, expenses); the CarID field on domain.Expense routes each
// write to the right one.
type ExpenseRepo interface {
	// Create inserts a new expense into the ledger selected by e.CarID
	// (nil = general ledger) and returns the persisted record.
	Create(ctx context.Context, e domain.Expense) (domain.Expense, error)

	// ListGeneral returns the full general ledger ordered by spent_at.
	ListGeneral(ctx context.Context) ([]domain.Expense, error)

	// ListByCar returns one car's full ledger ordered by spent_at.
	ListByCar(ctx context.Context, carID uuid.UUID) ([]domain.Expense, error)

	// Delete removes an expense by ID from whichever ledger holds it.
	// Returns domain.ErrNotFound if neither does.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgExpenseRepo is the Postgres implementation of ExpenseRepo.
type pgExpenseRepo struct {
	db db
}

// NewExpenseRepo constructs an ExpenseRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewExpenseRepo(db db) ExpenseRepo {
	return &pgExpenseRepo{db: db}
}

func (r *pgExpenseRepo) Create(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	if e.CarID != nil {
		const q = `
			INSERT INTO car_expenses (car_id, title, payee, purpose, amount, spent_at)
			VALUES (@car_id, @title, @payee, @purpose, @amount,
			        COALESCE(@spent_at, now()))
			RETURNING id, car_id, title, payee, purpose, amount, spent_at, created_at`

		args := expenseArgs(e)
		args["car_id"] = *e.CarID

		row := r.db.QueryRow(ctx, q, args)
		result, err := scanCarExpense(row)
		if err != nil {
			return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Create: %w", err)
		}
		return result, nil
	}

	const q = `
		INSERT INTO expenses (title, payee, purpose, amount, spent_at)
		VALUES (@title, @payee, @purpose, @amount, COALESCE(@spent_at, now()))
		RETURNING id, title, payee, purpose, amount, spent_at, created_at`

	row := r.db.QueryRow(ctx, q, expenseArgs(e))
	result, err := scanExpense(row)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgExpenseRepo) ListGeneral(ctx context.Context) ([]domain.Expense, error) {
	const q = `
		SELECT id, title, payee, purpose, amount, spent_at, created_at
		FROM expenses
		ORDER BY spent_at`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListGeneral: %w", err)
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExpenseRepo.ListGeneral: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListGeneral: rows: %w", err)
	}

	return out, nil
}

func (r *pgExpenseRepo) ListByCar(ctx context.Context, carID uuid.UUID) ([]domain.Expense, error) {
	const q = `
		SELECT id, car_id, title, payee, purpose, amount, spent_at, created_at
		FROM car_expenses
		WHERE car_id = @car_id
		ORDER BY spent_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"car_id": carID})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListByCar: %w", err)
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		e, err := scanCarExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExpenseRepo.ListByCar: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListByCar: rows: %w", err)
	}

	return out, nil
}

func (r *pgExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// The record is in exactly one of the two disjoint ledgers.
	for _, q := range []string{
		`DELETE FROM car_expenses WHERE id = @id`,
		`DELETE FROM expenses WHERE id = @id`,
	} {
		tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
		if err != nil {
			return fmt.Errorf("repo.ExpenseRepo.Delete: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
	}
	return fmt.Errorf("repo.ExpenseRepo.Delete: %w", domain.ErrNotFound)
}

func expenseArgs(e domain.Expense) pgx.NamedArgs {
	var spentAt any
	if !e.SpentAt.IsZero() {
		spentAt = e.SpentAt
	}
	return pgx.NamedArgs{
		"title":    e.Title,
		"payee":    e.Payee,
		"purpose":  e.Purpose,
		"amount":   e.Amount,
		"spent_at": spentAt,
	}
}

// scanExpense maps a general-ledger row (no car_id column).
func scanExpense(s scanner) (domain.Expense, error) {
	var (
		e  domain.Expense
		id pgtype.UUID
	)

	err := s.Scan(&id, &e.Title, &e.Payee, &e.Purpose, &e.Amount, &e.SpentAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, domain.ErrNotFound
		}
		return domain.Expense{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	return e, nil
}

// scanCarExpense maps a car-ledger row (includes car_id).
func scanCarExpense(s scanner) (domain.Expense, error) {
	var (
		e     domain.Expense
		id    pgtype.UUID
		carID pgtype.UUID
	)

	err := s.Scan(&id, &carID, &e.Title, &e.Payee, &e.Purpose, &e.Amount, &e.SpentAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, domain.ErrNotFound
		}
		return domain.Expense{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	cid := uuid.UUID(carID.Bytes)
	e.CarID = &cid
	return e, nil
}
