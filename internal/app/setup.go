// Package app contains the application setup for the storefront service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khalidsaid/storefront/internal/cache"
	"github.com/khalidsaid/storefront/internal/config"
	"github.com/khalidsaid/storefront/internal/media"
	"github.com/khalidsaid/storefront/internal/service"
	"github.com/khalidsaid/storefront/internal/store"
	"github.com/khalidsaid/storefront/internal/transport/rest"
	"github.com/khalidsaid/storefront/pkg/server"
)

type Dependencies struct {
	ProductService service.ProductService
	Pages          *cache.PageCache
	MaxUploadSize  int64
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, mediaStore media.Store, cfg *config.Config, logger *slog.Logger) *Dependencies {
	pages := cache.NewPageCache()
	pService := service.NewService(store.NewPgStore(dbPool), mediaStore, pages, logger)

	return &Dependencies{
		ProductService: pService,
		Pages:          pages,
		MaxUploadSize:  cfg.Media.MaxUploadSize,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the storefront application.
// Used by tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Pages, deps.MaxUploadSize, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the storefront application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
