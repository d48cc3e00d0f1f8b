package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/mwarren/fleetbook/backend/internal/domain"
	"github.com/mwarren/fleetbook/backend/internal/service"
)

// CreateReservationRequest carries the client-writable fields for a new
// reservation. Dates are plain calendar days ("2006-01-02"); price_per_day
// is optional and falls back to the car's base price. Days, total price,
// and status never appear here — they are derived server-side.
type CreateReservationRequest struct {
	CarID           uuid.UUID           `json:"car_id"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	StartDate       *openapi_types.Date `json:"start_date"`
	EndDate         *openapi_types.Date `json:"end_date"`
	PricePerDay     *float64            `json:"price_per_day,omitempty"`
	DiscountPercent float64             `json:"discount_percent,omitempty"`
	Destination     string              `json:"destination,omitempty"`
}

// AmendReservationRequest is the patch shape for PUT /reservations/{id}.
// Every field is optional; absent fields leave the stored value unchanged.
type AmendReservationRequest struct {
	CarID           *uuid.UUID          `json:"car_id,omitempty"`
	StartDate       *openapi_types.Date `json:"start_date,omitempty"`
	EndDate         *openapi_types.Date `json:"end_date,omitempty"`
	PricePerDay     *float64            `json:"price_per_day,omitempty"`
	DiscountPercent *float64            `json:"discount_percent,omitempty"`
	Destination     *string             `json:"destination,omitempty"`
}

// CheckAvailabilityRequest probes whether a car is free for an interval.
// exclude_id lets a client re-check on behalf of an existing reservation
// without that reservation blocking itself.
type CheckAvailabilityRequest struct {
	CarID     uuid.UUID           `json:"car_id"`
	StartDate *openapi_types.Date `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
	ExcludeID *uuid.UUID          `json:"exclude_id,omitempty"`
}

// ReservationResponse is the wire shape of a reservation. Start and end
// render as calendar days, matching the request format.
type ReservationResponse struct {
	ID              uuid.UUID                `json:"id"`
	CarID           uuid.UUID                `json:"car_id"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	StartDate       openapi_types.Date       `json:"start_date"`
	EndDate         openapi_types.Date       `json:"end_date"`
	PricePerDay     float64                  `json:"price_per_day"`
	DiscountPercent float64                  `json:"discount_percent"`
	Days            int                      `json:"days"`
	TotalPrice      float64                  `json:"total_price"`
	Destination     string                   `json:"destination,omitempty"`
	Status          domain.ReservationStatus `json:"status"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ReservationListResponse is one page of reservations plus the total count.
type ReservationListResponse struct {
	Items []ReservationResponse `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func reservationToResponse(r domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		CarID:           r.CarID,
		CustomerID:      r.CustomerID,
		StartDate:       openapi_types.Date{Time: r.StartDate},
		EndDate:         openapi_types.Date{Time: r.EndDate},
		PricePerDay:     r.PricePerDay,
		DiscountPercent: r.DiscountPercent,
		Days:            r.Days,
		TotalPrice:      r.TotalPrice,
		Destination:     r.Destination,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func reservationsToResponse(rs []domain.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, reservationToResponse(r))
	}
	return out
}

// dateOrZero unwraps an optional wire date; a missing date becomes the zero
// time, which the service layer rejects as a validation error.
func dateOrZero(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

// CreateReservation handles POST /reservations.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	res, err := s.reservations.Create(r.Context(), service.CreateReservationInput{
		CarID:           req.CarID,
		CustomerID:      req.CustomerID,
		StartDate:       dateOrZero(req.StartDate),
		EndDate:         dateOrZero(req.EndDate),
		PricePerDay:     req.PricePerDay,
		DiscountPercent: req.DiscountPercent,
		Destination:     req.Destination,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationToResponse(res))
}

// GetReservation handles GET /reservations/{id}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := s.reservations.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// ListReservations handles GET /reservations with optional page/limit.
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	p := paginationFromQuery(r)
	items, total, err := s.reservations.ListPaged(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReservationListResponse{
		Items: reservationsToResponse(items),
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// AmendReservation handles PUT /reservations/{id}.
func (s *Server) AmendReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AmendReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	patch := domain.ReservationPatch{
		CarID:           req.CarID,
		PricePerDay:     req.PricePerDay,
		DiscountPercent: req.DiscountPercent,
		Destination:     req.Destination,
	}
	if req.StartDate != nil {
		patch.StartDate = &req.StartDate.Time
	}
	if req.EndDate != nil {
		patch.EndDate = &req.EndDate.Time
	}

	res, err := s.reservations.Amend(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// CompleteReservation handles POST /reservations/{id}/complete.
func (s *Server) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	s.finalizeReservation(w, r, s.reservations.Complete)
}

// CancelReservation handles POST /reservations/{id}/cancel.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	s.finalizeReservation(w, r, s.reservations.Cancel)
}

func (s *Server) finalizeReservation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := op(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// DeleteReservation handles DELETE /reservations/{id}.
func (s *Server) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.reservations.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckAvailability handles POST /reservations/check. It runs the same
// overlap gate as the create path and mutates nothing.
func (s *Server) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req CheckAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.CarID == uuid.Nil || req.StartDate == nil || req.EndDate == nil {
		badRequest(w, "car_id, start_date and end_date are required")
		return
	}

	excludeID := uuid.Nil
	if req.ExcludeID != nil {
		excludeID = *req.ExcludeID
	}

	available, err := s.reservations.CheckAvailability(r.Context(), req.CarID, req.StartDate.Time, req.EndDate.Time, excludeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}
