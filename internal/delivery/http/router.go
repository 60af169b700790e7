package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hytech-racing/cars-webserver/internal/database"
	"github.com/hytech-racing/cars-webserver/internal/logging"
	hytech_middleware "github.com/hytech-racing/cars-webserver/internal/middleware"
)

type RouterOptions struct {
	MaxBodyBytes int64
	// SnapshotStore is optional, /exportrecords is only mounted when it is set
	SnapshotStore SnapshotStore
}

// NewRouter builds the middleware stack and mounts every handler.
func NewRouter(dbClient *database.DatabaseClient, logger *logging.Logger, opts RouterOptions) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(hytech_middleware.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/ping"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	if opts.MaxBodyBytes > 0 {
		bodyLimit := &hytech_middleware.BodySizeLimitMiddleware{MaxBodyBytes: opts.MaxBodyBytes}
		router.Use(bodyLimit.BodySizeLimit)
	}

	NewHomeHandler(router)
	NewCarRecordsHandler(router, dbClient, logger)

	if opts.SnapshotStore != nil {
		NewExportHandler(router, dbClient, opts.SnapshotStore, logger)
	}

	return router
}
