// Package rest wires the HTTP routes for the history engine.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/BeadW/vyb-web-sub000/application/services"
	"github.com/BeadW/vyb-web-sub000/infrastructure/config"
	"github.com/BeadW/vyb-web-sub000/interfaces/http/rest/handlers"
	"github.com/BeadW/vyb-web-sub000/interfaces/http/rest/middleware"
	"github.com/BeadW/vyb-web-sub000/pkg/auth"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg     *config.Config
	service *services.HistoryService
	logger  *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, service *services.HistoryService, logger *zap.Logger) *Router {
	return &Router{
		cfg:     cfg,
		service: service,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())
	historyHandler := handlers.NewHistoryHandler(rt.service, errorHandler, rt.logger)
	branchHandler := handlers.NewBranchHandler(rt.service, errorHandler, rt.logger)

	// API v1 routes
	router.Route("/api/v1/history", func(r chi.Router) {
		if rt.cfg.EnableAuth {
			validator, err := auth.NewJWTValidator(auth.JWTConfig{
				SecretKey: rt.cfg.JWTSecret,
				Issuer:    rt.cfg.JWTIssuer,
			})
			if err != nil {
				rt.logger.Error("Failed to create JWT validator, rejecting all requests", zap.Error(err))
				r.Use(func(next http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
						http.Error(w, "authentication unavailable", http.StatusServiceUnavailable)
					})
				})
			} else {
				r.Use(middleware.Authenticate(validator, rt.logger))
			}
		}

		// State and navigation
		r.Get("/state", historyHandler.GetState)
		r.Post("/snapshots", historyHandler.CaptureSnapshot)
		r.Post("/undo", historyHandler.Undo)
		r.Post("/redo", historyHandler.Redo)

		// Node endpoints
		r.Route("/nodes/{nodeID}", func(r chi.Router) {
			r.Get("/", historyHandler.GetNode)
			r.Post("/navigate", historyHandler.Navigate)
			r.Put("/bookmark", historyHandler.SetBookmark)
			r.Post("/tags", historyHandler.AddTag)
			r.Delete("/tags/{tag}", historyHandler.RemoveTag)
			r.Put("/description", historyHandler.SetDescription)
		})

		// Diffing and path lookup
		r.Get("/compare", historyHandler.Compare)
		r.Get("/path", historyHandler.FindPath)

		// Branch endpoints
		r.Route("/branches", func(r chi.Router) {
			r.Get("/", branchHandler.ListBranches)
			r.Post("/", branchHandler.CreateBranch)
			r.Post("/{branchID}/switch", branchHandler.SwitchBranch)
			r.Delete("/{branchID}", branchHandler.DeleteBranch)
		})

		// Serialization
		r.Get("/export", historyHandler.Export)
		r.Post("/import", historyHandler.Import)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
