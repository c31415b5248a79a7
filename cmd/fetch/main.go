package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/VxVxN/stockinsight/internal/application"
	"github.com/VxVxN/stockinsight/internal/config"
	"github.com/VxVxN/stockinsight/internal/growth"
	"github.com/VxVxN/stockinsight/internal/models"
	"github.com/VxVxN/stockinsight/internal/yahoo"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	positiveStyle = cellStyle.Foreground(lipgloss.Color("2"))
	negativeStyle = cellStyle.Foreground(lipgloss.Color("1"))
	mutedStyle    = cellStyle.Foreground(lipgloss.Color("8"))
)

type options struct {
	analyze     bool
	apiKey      string
	concurrency int
	symbols     []string
}

type result struct {
	symbol  string
	fin     *models.CompanyFinancials
	summary string
	err     error
}

func main() {
	var opts options
	flag.BoolVar(&opts.analyze, "analyze", false, "generate an AI summary for each symbol")
	flag.StringVar(&opts.apiKey, "key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	flag.IntVar(&opts.concurrency, "concurrency", 4, "number of symbols fetched in parallel")
	flag.Parse()
	opts.symbols = flag.Args()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("Fetch failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	app, err := application.Init(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if len(opts.symbols) == 0 {
		for _, s := range app.Catalog.Symbols() {
			opts.symbols = append(opts.symbols, s.Symbol)
		}
	}
	if opts.apiKey == "" {
		opts.apiKey = cfg.GeminiAPIKey
	}

	results := make([]result, len(opts.symbols))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	for i, raw := range opts.symbols {
		g.Go(func() error {
			results[i] = fetch(gCtx, app, cfg, opts, raw)
			return gCtx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			logger.Warn("Failed to fetch symbol", "symbol", res.symbol, "error", res.err)
			fmt.Printf("%s: %v\n\n", res.symbol, res.err)
			continue
		}
		printResult(res)
	}

	logger.Info("Fetch completed", "symbols", len(results), "failed", failed)
	if failed == len(results) && failed > 0 {
		return fmt.Errorf("all %d symbols failed", failed)
	}
	return nil
}

func fetch(ctx context.Context, app *application.Application, cfg *config.Config, opts options, raw string) result {
	symbol, err := yahoo.NormalizeSymbol(raw, cfg.ExchangeSuffix)
	if err != nil {
		return result{symbol: raw, err: err}
	}

	fin, err := app.Provider.FetchQuarterly(ctx, symbol)
	if err != nil {
		return result{symbol: symbol, err: err}
	}

	fin.DropNonFinite()

	res := result{symbol: symbol, fin: fin}
	if opts.analyze {
		summary, err := app.Summarizer.Summarize(ctx, opts.apiKey, fin)
		if err != nil {
			res.summary = fmt.Sprintf("analysis unavailable: %v", err)
		} else {
			res.summary = summary
		}
	}
	return res
}

func printResult(res result) {
	fmt.Println(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s (%s)", res.fin.CompanyName, res.fin.Symbol)))
	fmt.Println(recordsTable(res.fin.Records))
	fmt.Println(growthTable(growth.Calculate(res.fin.Records)))
	if res.summary != "" {
		fmt.Println(res.summary)
	}
	fmt.Println()
}

func recordsTable(records []models.QuarterlyRecord) *table.Table {
	headers := []string{"Quarter"}
	for _, m := range models.Metrics {
		headers = append(headers, m.Title())
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{r.Period}
		for _, m := range models.Metrics {
			row = append(row, format(m.Value(r), ""))
		}
		rows = append(rows, row)
	}

	return newTable(headers, rows, false)
}

func growthTable(records []models.GrowthRecord) *table.Table {
	headers := []string{"Quarter"}
	for _, m := range models.Metrics {
		headers = append(headers, m.Title()+" %")
	}
	headers = append(headers, "OPM pp")

	rows := make([][]string, 0, len(records))
	for _, g := range records {
		row := []string{g.Period}
		for _, m := range models.Metrics {
			row = append(row, format(g.Value(m), "%"))
		}
		row = append(row, format(g.OPMChange, ""))
		rows = append(rows, row)
	}

	return newTable(headers, rows, true)
}

// newTable renders rows with a header line. Missing values are muted and, when
// signed is set, growth figures are colored by direction.
func newTable(headers []string, rows [][]string, signed bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return cellStyle
			}
			v := rows[row][col]
			switch {
			case v == "-":
				return mutedStyle
			case !signed:
				return cellStyle
			case strings.HasPrefix(v, "-"):
				return negativeStyle
			case strings.TrimRight(v, "0.%") != "":
				return positiveStyle
			}
			return cellStyle
		})
}

func format(v null.Float, unit string) string {
	if !models.Finite(v) {
		return "-"
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(2) + unit
}
