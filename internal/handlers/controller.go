package handlers

import (
	"context"
	"embed"
	"html/template"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/VxVxN/stockinsight/internal/catalog"
	"github.com/VxVxN/stockinsight/internal/database"
	"github.com/VxVxN/stockinsight/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

type FinancialsProvider interface {
	FetchQuarterly(ctx context.Context, symbol string) (*models.CompanyFinancials, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, apiKey string, fin *models.CompanyFinancials) (string, error)
}

type Watchlist interface {
	Touch(ctx context.Context, symbol, companyName string) error
	List(ctx context.Context) ([]database.WatchlistEntry, error)
	Delete(ctx context.Context, symbol string) error
	GetNote(ctx context.Context, symbol string) (string, error)
	SaveNote(ctx context.Context, symbol, note string) error
	DeleteNote(ctx context.Context, symbol string) error
}

type Dependencies struct {
	Provider       FinancialsProvider
	Summarizer     Summarizer
	Watchlist      Watchlist
	Catalog        *catalog.Catalog
	GeminiAPIKey   string
	ExchangeSuffix string
	Logger         *slog.Logger
}

type Controller struct {
	provider       FinancialsProvider
	summarizer     Summarizer
	watchlist      Watchlist
	catalog        *catalog.Catalog
	apiKey         string
	exchangeSuffix string
	logger         *slog.Logger
	templates      *template.Template
}

func NewController(deps Dependencies) *Controller {
	if deps.Catalog == nil {
		deps.Catalog = catalog.New()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Controller{
		provider:       deps.Provider,
		summarizer:     deps.Summarizer,
		watchlist:      deps.Watchlist,
		catalog:        deps.Catalog,
		apiKey:         deps.GeminiAPIKey,
		exchangeSuffix: deps.ExchangeSuffix,
		logger:         deps.Logger,
		templates:      template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html")),
	}
}

// Register mounts every dashboard and API route on r.
func (controller *Controller) Register(r chi.Router) {
	r.Get("/", controller.IndexHandler)
	r.Get("/stock", controller.DashboardHandler)
	r.Post("/stock/analysis", controller.AnalysisHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", controller.GetCatalog)
		r.Get("/watchlist", controller.GetWatchlist)
		r.Delete("/watchlist", controller.DeleteWatchlistEntry)

		r.Get("/notes", controller.GetSymbolNote)
		r.Post("/notes", controller.SaveSymbolNote)
		r.Delete("/notes", controller.DeleteSymbolNote)

		r.Get("/stocks/{symbol}", controller.GetFinancials)
		r.Post("/stocks/{symbol}/analysis", controller.GetAnalysis)
		r.Get("/stocks/{symbol}/chart/{metric}", controller.ChartPNGHandler)
	})
}
