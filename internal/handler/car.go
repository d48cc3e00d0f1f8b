package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mwarren/fleetbook/backend/internal/domain"
)

// CarRequest is the client-writable subset of a car. Status is absent on
// purpose: it is derived from the reservation set and never accepted as
// input.
type CarRequest struct {
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	Plate       string  `json:"plate"`
	VIN         string  `json:"vin,omitempty"`
	PricePerDay float64 `json:"price_per_day"`
}

// CarListResponse is one page of cars plus the total matching count.
type CarListResponse struct {
	Items []domain.Car `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// CreateCar handles POST /cars.
func (s *Server) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req CarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	car, err := s.cars.Create(r.Context(), domain.Car{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Plate:       req.Plate,
		VIN:         req.VIN,
		PricePerDay: req.PricePerDay,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, car)
}

// GetCar handles GET /cars/{id}.
func (s *Server) GetCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	car, err := s.cars.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// ListCars handles GET /cars with optional page/limit query params.
func (s *Server) ListCars(w http.ResponseWriter, r *http.Request) {
	p := paginationFromQuery(r)
	items, total, err := s.cars.ListPaged(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Car{}
	}
	writeJSON(w, http.StatusOK, CarListResponse{Items: items, Total: total, Page: p.Page, Limit: p.Limit})
}

// UpdateCar handles PUT /cars/{id}. The request carries the full writable
// set of fields; the stored status survives the update untouched.
func (s *Server) UpdateCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req CarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	car, err := s.cars.Update(r.Context(), domain.Car{
		ID:          id,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Plate:       req.Plate,
		VIN:         req.VIN,
		PricePerDay: req.PricePerDay,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// DeleteCar handles DELETE /cars/{id}. Deleting a car with live
// reservations is refused with 409.
func (s *Server) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.cars.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCarStatus handles GET /cars/{id}/status. The status is recomputed from
// the live reservation set on every call rather than read from the cached
// column, so the answer is correct even if the car has sat untouched across
// a day boundary.
func (s *Server) GetCarStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	status, err := s.cars.Status(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(status)})
}

// pathID parses the {id} URL param as a UUID, writing a 400 itself when the
// value is malformed.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func paginationFromQuery(r *http.Request) domain.PaginationParams {
	var page, limit *int
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = &v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = &v
	}
	return domain.NewPaginationParams(page, limit)
}
