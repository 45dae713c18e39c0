package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/qrkiosk/internal/api/handler"
	"github.com/mcoot/qrkiosk/internal/api/middleware"
	"github.com/mcoot/qrkiosk/internal/api/response"
	"github.com/mcoot/qrkiosk/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Registry *registry.Service
	// AdminKeyHash guards room updates and deletes when set
	AdminKeyHash []byte
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	registrationHandler := handler.NewRegistrationHandler(cfg.Registry)
	roomsHandler := handler.NewRoomsHandler(cfg.Registry)

	// Create middleware
	adminMiddleware := middleware.AdminKey(cfg.AdminKeyHash, cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	admin := api.PathPrefix("/adminui").Subrouter()

	// Kiosk registration
	admin.HandleFunc("/regChallenge/auto", registrationHandler.Register).Methods(http.MethodPost)

	// Rooms table (listing is open, edits need the admin key)
	admin.HandleFunc("/rooms/list", roomsHandler.List).Methods(http.MethodGet)
	edits := admin.PathPrefix("/rooms").Subrouter()
	edits.Use(adminMiddleware)
	edits.HandleFunc("/update/{challengeId}", roomsHandler.Update).Methods(http.MethodPut)
	edits.HandleFunc("/delete/{challengeId}", roomsHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
