package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wastenot/apiserver/config"
	"github.com/wastenot/apiserver/internal/db"
	"github.com/wastenot/apiserver/internal/events"
	"github.com/wastenot/apiserver/internal/handlers"
	"github.com/wastenot/apiserver/internal/mq"
	"github.com/wastenot/apiserver/internal/services"
	"github.com/wastenot/apiserver/internal/storage"
	"github.com/wastenot/apiserver/internal/store"
)

// repositories groups one implementation of every persistence interface.
type repositories struct {
	profiles      services.ProfileRepository
	inventory     services.InventoryRepository
	wasteLogs     services.WasteLogRepository
	listings      services.ListingRepository
	notifications services.NotificationRepository
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     mq.Backend
}

// New constructs a Server: data backend, optional object storage and
// broker, services, and the routed chi handler.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	var (
		repos  repositories
		dbConn *sql.DB
	)
	switch cfg.DataBackend {
	case config.DataBackendPostgres:
		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dbConn = conn
		repos = repositories{
			profiles:      store.NewProfileRepository(conn),
			inventory:     store.NewInventoryRepository(conn),
			wasteLogs:     store.NewWasteLogRepository(conn),
			listings:      store.NewListingRepository(conn),
			notifications: store.NewNotificationRepository(conn),
		}
	case config.DataBackendMemory:
		mem := store.NewMemoryStore()
		repos = repositories{
			profiles:      mem.Profiles,
			inventory:     mem.Inventory,
			wasteLogs:     mem.WasteLogs,
			listings:      mem.Listings,
			notifications: mem.Notifications,
		}
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		if dbConn != nil {
			_ = dbConn.Close()
		}
		return nil, errors.New("JWT_SECRET is required")
	}

	var objects storage.ObjectStorage
	if cfg.Storage.Backend != "" && cfg.Storage.Backend != config.StorageBackendNone {
		backend, err := storage.NewFromConfig(ctx, cfg)
		if err != nil {
			if dbConn != nil {
				_ = dbConn.Close()
			}
			return nil, err
		}
		objects = backend
	}

	var (
		broker    mq.Backend
		publisher events.Publisher = events.NopPublisher{}
	)
	backend, err := mq.NewFromConfig(ctx, cfg)
	switch {
	case err == nil:
		broker = backend
		publisher = events.NewMQPublisher(backend)
	case errors.Is(err, mq.ErrNoBackend):
		log.Println("server: no mq backend configured, events disabled")
	default:
		if dbConn != nil {
			_ = dbConn.Close()
		}
		return nil, err
	}

	profileService := services.NewProfileService(repos.profiles)
	inventoryService := services.NewInventoryService(repos.inventory)
	wasteService := services.NewWasteLogService(repos.wasteLogs, publisher)
	listingService := services.NewListingService(repos.listings, objects, publisher)
	notificationService := services.NewNotificationService(repos.notifications)
	analyticsService := services.NewAnalyticsService(repos.listings, repos.wasteLogs)

	session := handlers.RequireSession(jwtSecret, profileService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, profileService, jwtSecret)
	})
	router.Group(func(r chi.Router) {
		r.Use(session)
		handlers.ProfileRouter(r, profileService)
		r.Route("/inventory", func(r chi.Router) {
			handlers.InventoryRouter(r, inventoryService)
		})
		r.Route("/waste-logs", func(r chi.Router) {
			handlers.WasteLogRouter(r, wasteService)
		})
		r.Route("/listings", func(r chi.Router) {
			handlers.ListingRouter(r, listingService)
		})
		r.Route("/notifications", func(r chi.Router) {
			handlers.NotificationRouter(r, notificationService)
		})
		r.Route("/analytics", func(r chi.Router) {
			handlers.AnalyticsRouter(r, analyticsService)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}
