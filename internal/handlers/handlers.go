package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/avitran/flightledger/internal/booking"
	"github.com/avitran/flightledger/internal/service"
)

// Handler contains the HTTP handlers for the API.
type Handler struct {
	bookingService service.BookingService
}

// NewHandler creates a new Handler instance.
func NewHandler(bookingService service.BookingService) *Handler {
	return &Handler{bookingService: bookingService}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the ledger's typed failures onto HTTP statuses so
// callers can pattern-match on failure kind.
func respondServiceError(w http.ResponseWriter, err error) {
	var se *booking.StatusUnavailableError
	var pe *booking.PermissionDeniedError
	switch {
	case errors.As(err, &se):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &pe):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// actorFrom reads the identity the gateway established. The core does not
// authenticate; it trusts the upstream X-Actor headers and only propagates
// permission failures.
func actorFrom(r *http.Request) service.Actor {
	return service.Actor{
		Name:  r.Header.Get("X-Actor"),
		Admin: r.Header.Get("X-Actor-Admin") == "true",
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

// GetFlights handles GET /api/flights. ?q= searches by name;
// ?origin=&destination=&from=&to= searches by route and departure window.
// Origin and destination may each be omitted to match any endpoint.
func (h *Handler) GetFlights(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if q := query.Get("q"); q != "" {
		respondJSON(w, http.StatusOK, h.bookingService.SearchFlights(r.Context(), q))
		return
	}
	if query.Get("origin") != "" || query.Get("destination") != "" || query.Get("from") != "" || query.Get("to") != "" {
		originID, err := optionalID(query.Get("origin"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid origin ID")
			return
		}
		destinationID, err := optionalID(query.Get("destination"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid destination ID")
			return
		}
		from, to, err := departureWindow(query.Get("from"), query.Get("to"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid departure window")
			return
		}
		respondJSON(w, http.StatusOK, h.bookingService.SearchByRoute(r.Context(), originID, destinationID, from, to))
		return
	}
	respondJSON(w, http.StatusOK, h.bookingService.ListFlights(r.Context()))
}

func optionalID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

// departureWindow parses the RFC 3339 window bounds; an omitted bound is
// left open.
func departureWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	var err error
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339, fromStr); err != nil {
			return from, to, err
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339, toStr); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

// GetFlight handles GET /api/flights/{id}.
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid flight ID")
		return
	}
	flight, err := h.bookingService.GetFlight(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Flight not found")
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// PublishFlight handles POST /api/flights/{id}/publish.
func (h *Handler) PublishFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid flight ID")
		return
	}
	if err := h.bookingService.PublishFlight(r.Context(), actorFrom(r), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Flight published"})
}

// UpdateFlight handles PATCH /api/flights/{id}.
func (h *Handler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid flight ID")
		return
	}
	var upd service.FlightUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.bookingService.UpdateFlight(r.Context(), actorFrom(r), id, upd); err != nil {
		respondServiceError(w, err)
		return
	}
	flight, _ := h.bookingService.GetFlight(r.Context(), id)
	respondJSON(w, http.StatusOK, flight)
}

// DeleteFlight handles DELETE /api/flights/{id}.
func (h *Handler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid flight ID")
		return
	}
	if err := h.bookingService.DeleteFlight(r.Context(), actorFrom(r), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// CreateDaemon handles POST /api/daemons.
func (h *Handler) CreateDaemon(w http.ResponseWriter, r *http.Request) {
	var req service.DaemonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Flight name is required")
		return
	}
	if req.Capacity <= 0 {
		respondError(w, http.StatusBadRequest, "Capacity must be positive")
		return
	}
	if !req.Arrival.After(req.Departure) {
		respondError(w, http.StatusBadRequest, "Arrival must be after departure")
		return
	}
	if req.OriginID == req.DestinationID {
		respondError(w, http.StatusBadRequest, "Origin and destination must differ")
		return
	}
	daemon, err := h.bookingService.CreateDaemon(r.Context(), actorFrom(r), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, daemon)
}

// GetDaemons handles GET /api/daemons.
func (h *Handler) GetDaemons(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.bookingService.ListDaemons(r.Context()))
}

// UpdateDaemon handles PATCH /api/daemons/{id}.
func (h *Handler) UpdateDaemon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid daemon ID")
		return
	}
	var upd service.FlightUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.bookingService.UpdateDaemon(r.Context(), actorFrom(r), id, upd); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Daemon updated"})
}

// DeleteDaemon handles DELETE /api/daemons/{id}.
func (h *Handler) DeleteDaemon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid daemon ID")
		return
	}
	if err := h.bookingService.DeleteDaemon(r.Context(), actorFrom(r), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GenerateNext handles POST /api/daemons/{id}/generate.
func (h *Handler) GenerateNext(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid daemon ID")
		return
	}
	flight, err := h.bookingService.GenerateNext(r.Context(), actorFrom(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, flight)
}

// CreateOrder handles POST /api/orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PassengerID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "Passenger ID is required")
		return
	}
	if req.FlightID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "Flight ID is required")
		return
	}
	if req.Seat < 0 {
		respondError(w, http.StatusBadRequest, "Seat must not be negative")
		return
	}
	order, err := h.bookingService.CreateOrder(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	order, err := h.bookingService.GetOrder(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// PayOrder handles POST /api/orders/{id}/pay.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	if err := h.bookingService.PayOrder(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	order, _ := h.bookingService.GetOrder(r.Context(), id)
	respondJSON(w, http.StatusOK, order)
}

// CancelOrder handles POST /api/orders/{id}/cancel. The response reports
// whether a refund is owed.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	refund, err := h.bookingService.CancelOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order cancelled",
		"refund":  refund,
	})
}

// RemoveOrder handles DELETE /api/orders/{id}.
func (h *Handler) RemoveOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	if err := h.bookingService.RemoveOrder(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GetOrderReceipt handles GET /api/orders/{id}/receipt.
func (h *Handler) GetOrderReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	receipt, err := h.bookingService.OrderReceipt(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"receipt": receipt})
}

// RegisterPassenger handles POST /api/passengers.
func (h *Handler) RegisterPassenger(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Document string `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	id, err := h.bookingService.RegisterPassenger(r.Context(), req.Name, req.Document)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// GetPassengerOrders handles GET /api/passengers/{id}/orders.
func (h *Handler) GetPassengerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid passenger ID")
		return
	}
	orders, err := h.bookingService.ListOrders(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetCities handles GET /api/cities.
func (h *Handler) GetCities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.bookingService.ListCities(r.Context()))
}

// AddCity handles POST /api/cities.
func (h *Handler) AddCity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	city, err := h.bookingService.AddCity(r.Context(), actorFrom(r), req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, city)
}

// RenameCity handles PATCH /api/cities/{id}.
func (h *Handler) RenameCity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid city ID")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.bookingService.RenameCity(r.Context(), actorFrom(r), id, req.Name); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "City renamed"})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
