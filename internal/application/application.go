package application

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/VxVxN/stockinsight/internal/catalog"
	"github.com/VxVxN/stockinsight/internal/config"
	"github.com/VxVxN/stockinsight/internal/database"
	"github.com/VxVxN/stockinsight/internal/gemini"
	"github.com/VxVxN/stockinsight/internal/handlers"
	"github.com/VxVxN/stockinsight/internal/metrics"
	"github.com/VxVxN/stockinsight/internal/parser"
	"github.com/VxVxN/stockinsight/internal/upstream"
	"github.com/VxVxN/stockinsight/internal/yahoo"
)

type Application struct {
	db  *sql.DB
	cfg *config.Config

	Metrics    *metrics.Metrics
	Provider   handlers.FinancialsProvider
	Summarizer handlers.Summarizer
	Watchlist  handlers.Watchlist
	Catalog    *catalog.Catalog
	Logger     *slog.Logger
}

func Init(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	app := &Application{
		cfg:     cfg,
		Metrics: metrics.New(),
		Catalog: catalog.New(),
		Logger:  logger,
	}

	if cfg.CatalogPath != "" {
		if err := app.Catalog.Load(cfg.CatalogPath); err != nil {
			return nil, err
		}
	}

	app.Provider = app.newProvider()
	app.Summarizer = gemini.NewClient(gemini.Config{
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
	}, app.newUpstream("gemini"), logger)

	if cfg.DatabaseEnabled() {
		db, err := database.NewConnection(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.db = db
		app.Watchlist = database.NewRepository(db)
	} else {
		logger.Info("DB_HOST not set, keeping watchlist in memory")
		app.Watchlist = database.NewMemoryRepository()
	}

	return app, nil
}

func (app *Application) newProvider() handlers.FinancialsProvider {
	if app.cfg.CSVPath != "" {
		app.Logger.Info("Serving financials from CSV exports", "path", app.cfg.CSVPath)
		return parser.NewCSVSource(app.cfg.CSVPath, app.cfg.QuarterLimit, app.Logger)
	}
	return yahoo.NewClient(yahoo.Config{
		BaseURL:      app.cfg.YahooBaseURL,
		QuarterLimit: app.cfg.QuarterLimit,
	}, app.newUpstream("yahoo"), app.Logger)
}

func (app *Application) newUpstream(service string) *upstream.Client {
	return upstream.New(service,
		upstream.WithHTTPClient(&http.Client{Timeout: app.cfg.UpstreamTimeout}),
		upstream.WithMaxTries(uint(app.cfg.UpstreamTries)),
		upstream.WithMetrics(app.Metrics),
		upstream.WithLogger(app.Logger.With("service", service)),
	)
}

// Controller wires the HTTP handlers to the application's services.
func (app *Application) Controller() *handlers.Controller {
	return handlers.NewController(handlers.Dependencies{
		Provider:       app.Provider,
		Summarizer:     app.Summarizer,
		Watchlist:      app.Watchlist,
		Catalog:        app.Catalog,
		GeminiAPIKey:   app.cfg.GeminiAPIKey,
		ExchangeSuffix: app.cfg.ExchangeSuffix,
		Logger:         app.Logger,
	})
}

// WatchCatalog reloads the catalog file on change until ctx is done. It is a
// no-op when no catalog file is configured.
func (app *Application) WatchCatalog(ctx context.Context) {
	if app.cfg.CatalogPath == "" {
		return
	}
	if err := app.Catalog.Watch(ctx, app.cfg.CatalogPath, app.Logger); err != nil {
		app.Logger.Error("Catalog watcher stopped", "error", err)
	}
}

func (app *Application) Close() {
	if app.db != nil {
		app.db.Close()
	}
}
