package handler

import (
	"net/http"

	"github.com/mwarren/fleetbook/backend/internal/domain"
)

// RevenueReportResponse is the monthly revenue report: every non-cancelled
// reservation overlapping the month, with the sum of their totals. A
// reservation spanning a month boundary shows up in both months' reports.
type RevenueReportResponse struct {
	Month string                `json:"month"`
	Items []ReservationResponse `json:"items"`
	Total float64               `json:"total"`
	Count int                   `json:"count"`
}

// ExpenseReportResponse is the monthly sum over one expense ledger.
type ExpenseReportResponse struct {
	Month string           `json:"month"`
	Items []domain.Expense `json:"items"`
	Total float64          `json:"total"`
	Count int              `json:"count"`
}

// RevenueReport handles GET /reports/revenue?month=YYYY-MM. An empty or
// malformed month falls back to the current month.
func (s *Server) RevenueReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reservations.RevenueMonth(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RevenueReportResponse{
		Month: report.Month,
		Items: reservationsToResponse(report.Items),
		Total: report.Total,
		Count: report.Count,
	})
}

// ExpenseReport handles GET /reports/expenses?month=YYYY-MM&car_id=...
// Without car_id it reports on the general ledger, with it on that car's
// ledger — the two never mix in one report.
func (s *Server) ExpenseReport(w http.ResponseWriter, r *http.Request) {
	carID, ok := optionalCarID(w, r)
	if !ok {
		return
	}

	report, err := s.expenses.AggregateMonth(r.Context(), r.URL.Query().Get("month"), carID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExpenseReportResponse{
		Month: report.Month,
		Items: report.Items,
		Total: report.Total,
		Count: report.Count,
	})
}
