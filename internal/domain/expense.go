package domain

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a dated monetary record in one of two disjoint ledgers:
// CarID set means the expense belongs to that car's ledger, nil means it
// belongs to the organization-wide general ledger. The two ledgers live in
// separate tables; CarID only routes the record to the right one.
//
// SpentAt defaults to the creation instant when the client omits it.
type Expense struct {
	ID        uuid.UUID  `json:"id"`
	CarID     *uuid.UUID `json:"car_id,omitempty"`
	Title     string     `json:"title"`
	Payee     string     `json:"payee,omitempty"`
	Purpose   string     `json:"purpose,omitempty"`
	Amount    float64    `json:"amount"`
	SpentAt   time.Time  `json:"spent_at"`
	CreatedAt time.Time  `json:"created_at"`
}
