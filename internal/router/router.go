package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avitran/flightledger/internal/handlers"
	"github.com/avitran/flightledger/internal/websocket"
)

// SetupRouter creates and configures the HTTP router.
func SetupRouter(h *handlers.Handler, hub *websocket.Hub) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware
	r.Use(corsMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Flights
	api.HandleFunc("/flights", h.GetFlights).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.UpdateFlight).Methods(http.MethodPatch, http.MethodOptions)
	api.HandleFunc("/flights/{id}", h.DeleteFlight).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/flights/{id}/publish", h.PublishFlight).Methods(http.MethodPost, http.MethodOptions)

	// Flight daemons
	api.HandleFunc("/daemons", h.GetDaemons).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/daemons", h.CreateDaemon).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/daemons/{id}", h.UpdateDaemon).Methods(http.MethodPatch, http.MethodOptions)
	api.HandleFunc("/daemons/{id}", h.DeleteDaemon).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/daemons/{id}/generate", h.GenerateNext).Methods(http.MethodPost, http.MethodOptions)

	// Orders
	api.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/orders/{id}", h.RemoveOrder).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/orders/{id}/pay", h.PayOrder).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/orders/{id}/cancel", h.CancelOrder).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/orders/{id}/receipt", h.GetOrderReceipt).Methods(http.MethodGet, http.MethodOptions)

	// Passengers and cities
	api.HandleFunc("/passengers", h.RegisterPassenger).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/passengers/{id}/orders", h.GetPassengerOrders).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/cities", h.GetCities).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/cities", h.AddCity).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/cities/{id}", h.RenameCity).Methods(http.MethodPatch, http.MethodOptions)

	// WebSocket for real-time seat updates
	if hub != nil {
		api.HandleFunc("/flights/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
			flightID, err := uuid.Parse(mux.Vars(r)["id"])
			if err != nil {
				http.Error(w, "invalid flight ID", http.StatusBadRequest)
				return
			}
			hub.ServeWS(w, r, flightID)
		})
	}

	// Health check and metrics
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Actor, X-Actor-Admin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
