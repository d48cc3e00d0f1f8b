package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/mwarren/fleetbook/backend/internal/domain"
)

// CreateExpenseRequest carries a new ledger entry. car_id routes the entry
// to that car's ledger; omitting it writes to the general ledger. spent_at
// is a calendar day and defaults to the creation time when absent.
type CreateExpenseRequest struct {
	CarID   *uuid.UUID          `json:"car_id,omitempty"`
	Title   string              `json:"title"`
	Payee   string              `json:"payee,omitempty"`
	Purpose string              `json:"purpose,omitempty"`
	Amount  float64             `json:"amount"`
	SpentAt *openapi_types.Date `json:"spent_at,omitempty"`
}

// ExpenseListResponse is one full ledger.
type ExpenseListResponse struct {
	Items []domain.Expense `json:"items"`
	Count int              `json:"count"`
}

// CreateExpense handles POST /expenses.
func (s *Server) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	var spentAt time.Time
	if req.SpentAt != nil {
		spentAt = req.SpentAt.Time
	}

	e, err := s.expenses.Create(r.Context(), domain.Expense{
		CarID:   req.CarID,
		Title:   req.Title,
		Payee:   req.Payee,
		Purpose: req.Purpose,
		Amount:  req.Amount,
		SpentAt: spentAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ListExpenses handles GET /expenses. Without a car_id query param it
// returns the general ledger; with one it returns that car's ledger.
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	carID, ok := optionalCarID(w, r)
	if !ok {
		return
	}

	items, err := s.expenses.List(r.Context(), carID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExpenseListResponse{Items: items, Count: len(items)})
}

// DeleteExpense handles DELETE /expenses/{id}.
func (s *Server) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.expenses.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// optionalCarID parses an optional car_id query param, writing a 400 itself
// when the value is present but malformed.
func optionalCarID(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get("car_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, "invalid car_id")
		return nil, false
	}
	return &id, true
}
