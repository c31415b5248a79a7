// Package yahoo fetches quarterly income statements from Yahoo Finance.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/VxVxN/stockinsight/internal/models"
	"github.com/VxVxN/stockinsight/internal/upstream"
)

const (
	DefaultBaseURL        = "https://query1.finance.yahoo.com"
	DefaultQuarterLimit   = 10
	DefaultExchangeSuffix = ".NS"
)

var (
	ErrInvalidSymbol    = errors.New("invalid stock symbol")
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrNoQuarterlyData  = errors.New("no quarterly financial data available for this stock")
	ErrSalesUnavailable = errors.New("sales data not available for this stock")
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9&^._-]{1,24}$`)

var summaryModules = []string{
	"price",
	"incomeStatementHistoryQuarterly",
	"earningsHistory",
	"defaultKeyStatistics",
}

type Config struct {
	BaseURL      string
	QuarterLimit int
}

type Client struct {
	baseURL      string
	quarterLimit int
	http         *upstream.Client
	logger       *slog.Logger
}

func NewClient(cfg Config, httpClient *upstream.Client, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.QuarterLimit <= 0 {
		cfg.QuarterLimit = DefaultQuarterLimit
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		quarterLimit: cfg.QuarterLimit,
		http:         httpClient,
		logger:       logger,
	}
}

// NormalizeSymbol upper-cases and validates a ticker, appending suffix when
// the ticker carries no exchange suffix of its own. Index tickers (^NSEI) are
// left alone.
func NormalizeSymbol(symbol, suffix string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(symbol) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	if suffix != "" && !strings.Contains(symbol, ".") && !strings.HasPrefix(symbol, "^") {
		symbol += strings.ToUpper(suffix)
	}
	return symbol, nil
}

// FetchQuarterly returns the latest quarters for symbol, oldest first, with
// amounts converted to crores.
func (c *Client) FetchQuarterly(ctx context.Context, symbol string) (*models.CompanyFinancials, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol), strings.Join(summaryModules, ","))

	body, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		if upstream.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("failed to fetch quote summary for %s: %w", symbol, err)
	}

	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode quote summary for %s: %w", symbol, err)
	}

	if resp.QuoteSummary.Error != nil {
		if resp.QuoteSummary.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("quote summary error for %s: %s", symbol, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	fin, err := c.buildFinancials(symbol, &resp.QuoteSummary.Result[0])
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched quarterly financials",
		"symbol", symbol,
		"company", fin.CompanyName,
		"quarters", len(fin.Records))

	return fin, nil
}

func (c *Client) buildFinancials(symbol string, result *summaryResult) (*models.CompanyFinancials, error) {
	fin := &models.CompanyFinancials{Symbol: symbol, CompanyName: symbol}
	if result.Price != nil {
		switch {
		case result.Price.LongName != "":
			fin.CompanyName = result.Price.LongName
		case result.Price.ShortName != "":
			fin.CompanyName = result.Price.ShortName
		}
		fin.Currency = result.Price.Currency
	}

	if result.IncomeStatementHistoryQuarterly == nil || len(result.IncomeStatementHistoryQuarterly.Statements) == 0 {
		return nil, ErrNoQuarterlyData
	}

	statements := make([]incomeStatement, 0, len(result.IncomeStatementHistoryQuarterly.Statements))
	for _, st := range result.IncomeStatementHistoryQuarterly.Statements {
		if st.EndDate == nil || st.EndDate.Raw == 0 {
			continue
		}
		statements = append(statements, st)
	}
	if len(statements) == 0 {
		return nil, ErrNoQuarterlyData
	}

	// newest first, keep the latest quarterLimit
	sort.Slice(statements, func(i, j int) bool {
		return statements[i].EndDate.Raw > statements[j].EndDate.Raw
	})
	if len(statements) > c.quarterLimit {
		statements = statements[:c.quarterLimit]
	}

	hasSales := false
	for _, st := range statements {
		if _, ok := st.TotalRevenue.value(); ok {
			hasSales = true
			break
		}
	}
	if !hasSales {
		return nil, ErrSalesUnavailable
	}

	epsByDate := make(map[string]float64)
	if result.EarningsHistory != nil {
		for _, h := range result.EarningsHistory.History {
			if h.Quarter == nil {
				continue
			}
			if eps, ok := h.EPSActual.value(); ok {
				epsByDate[quarterKey(h.Quarter.Raw)] = eps
			}
		}
	}

	var shares float64
	if result.DefaultKeyStatistics != nil {
		shares, _ = result.DefaultKeyStatistics.SharesOutstanding.value()
	}

	fin.Records = make([]models.QuarterlyRecord, len(statements))
	for i, st := range statements {
		fin.Records[len(statements)-1-i] = toRecord(st, epsByDate, shares)
	}

	return fin, nil
}

func toRecord(st incomeStatement, epsByDate map[string]float64, shares float64) models.QuarterlyRecord {
	end := time.Unix(st.EndDate.Raw, 0).UTC()
	record := models.QuarterlyRecord{
		Period:  models.PeriodLabel(end),
		EndDate: end,
	}

	revenue, hasRevenue := st.TotalRevenue.value()
	if hasRevenue {
		record.Sales = null.FloatFrom(revenue / models.CroreDivisor)
	}

	if op, ok := st.OperatingIncome.value(); ok {
		record.OperatingProfit = null.FloatFrom(op / models.CroreDivisor)
	} else if opex, ok := st.TotalOperatingExpenses.value(); ok && hasRevenue {
		record.OperatingProfit = null.FloatFrom((revenue - opex) / models.CroreDivisor)
	}

	netIncome, hasNetIncome := st.NetIncome.value()
	if hasNetIncome {
		record.NetProfit = null.FloatFrom(netIncome / models.CroreDivisor)
	}

	if eps, ok := epsByDate[quarterKey(st.EndDate.Raw)]; ok {
		record.EPS = null.FloatFrom(eps)
	} else if hasNetIncome && shares > 0 {
		record.EPS = null.FloatFrom(netIncome / shares)
	}

	record.DeriveOPM()
	return record
}

// quarterKey matches income statement end dates with earnings history
// quarters, which Yahoo reports with slightly different timestamps.
func quarterKey(unix int64) string {
	return models.PeriodLabel(time.Unix(unix, 0).UTC())
}
