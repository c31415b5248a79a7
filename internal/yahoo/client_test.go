package yahoo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VxVxN/stockinsight/internal/upstream"
)

type m = map[string]any

func raw(v float64) m { return m{"raw": v} }

func endDate(year int, month time.Month, day int) m {
	return m{"raw": time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix()}
}

func statement(year int, month time.Month, day int, revenue, opIncome, netIncome float64) m {
	return m{
		"endDate":         endDate(year, month, day),
		"totalRevenue":    raw(revenue),
		"operatingIncome": raw(opIncome),
		"netIncome":       raw(netIncome),
	}
}

func summary(result m) m {
	return m{"quoteSummary": m{"result": []m{result}, "error": nil}}
}

func newTestClient(t *testing.T, payload any, status int) (*Client, *string) {
	t.Helper()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpClient := upstream.New("yahoo", upstream.WithInitialDelay(time.Millisecond), upstream.WithMaxTries(1))
	return NewClient(Config{BaseURL: srv.URL, QuarterLimit: 3}, httpClient, logger), &path
}

func TestFetchQuarterly(t *testing.T) {
	payload := summary(m{
		"price": m{"longName": "Reliance Industries Limited", "currency": "INR"},
		"incomeStatementHistoryQuarterly": m{"incomeStatementHistory": []m{
			statement(2024, time.September, 30, 2_500_000_000_000, 400_000_000_000, 200_000_000_000),
			statement(2024, time.June, 30, 2_000_000_000_000, 300_000_000_000, 150_000_000_000),
			statement(2024, time.March, 31, 1_000_000_000_000, 100_000_000_000, 50_000_000_000),
			statement(2023, time.December, 31, 900_000_000_000, 90_000_000_000, 40_000_000_000),
		}},
		"earningsHistory": m{"history": []m{
			{"quarter": endDate(2024, time.September, 30), "epsActual": raw(14.5)},
		}},
		"defaultKeyStatistics": m{"sharesOutstanding": raw(10_000_000_000)},
	})
	client, path := newTestClient(t, payload, http.StatusOK)

	fin, err := client.FetchQuarterly(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)

	assert.Contains(t, *path, "/v10/finance/quoteSummary/RELIANCE.NS")
	assert.Contains(t, *path, "incomeStatementHistoryQuarterly")
	assert.Equal(t, "Reliance Industries Limited", fin.CompanyName)
	assert.Equal(t, "INR", fin.Currency)

	require.Len(t, fin.Records, 3)
	assert.Equal(t, "2024-Q1", fin.Records[0].Period)
	assert.Equal(t, "2024-Q2", fin.Records[1].Period)
	assert.Equal(t, "2024-Q3", fin.Records[2].Period)

	q1 := fin.Records[0]
	assert.InDelta(t, 100_000.0, q1.Sales.Float64, 1e-6)
	assert.InDelta(t, 10_000.0, q1.OperatingProfit.Float64, 1e-6)
	assert.InDelta(t, 10.0, q1.OPMPercent.Float64, 1e-9)
	assert.InDelta(t, 5_000.0, q1.NetProfit.Float64, 1e-6)
	// derived from net income and shares outstanding
	assert.InDelta(t, 5.0, q1.EPS.Float64, 1e-9)

	assert.InDelta(t, 14.5, fin.Records[2].EPS.Float64, 1e-9)
}

func TestFetchQuarterly_OperatingProfitFallback(t *testing.T) {
	payload := summary(m{
		"incomeStatementHistoryQuarterly": m{"incomeStatementHistory": []m{{
			"endDate":                endDate(2024, time.June, 30),
			"totalRevenue":           raw(1_000_000_000),
			"totalOperatingExpenses": raw(800_000_000),
		}}},
	})
	client, _ := newTestClient(t, payload, http.StatusOK)

	fin, err := client.FetchQuarterly(context.Background(), "TCS.NS")
	require.NoError(t, err)

	require.Len(t, fin.Records, 1)
	r := fin.Records[0]
	assert.Equal(t, "TCS.NS", fin.CompanyName)
	assert.InDelta(t, 20.0, r.OperatingProfit.Float64, 1e-9)
	assert.InDelta(t, 20.0, r.OPMPercent.Float64, 1e-9)
	assert.False(t, r.NetProfit.Valid)
	assert.False(t, r.EPS.Valid)
}

func TestFetchQuarterly_NoStatements(t *testing.T) {
	client, _ := newTestClient(t, summary(m{"price": m{"longName": "X"}}), http.StatusOK)

	_, err := client.FetchQuarterly(context.Background(), "X.NS")
	assert.ErrorIs(t, err, ErrNoQuarterlyData)
}

func TestFetchQuarterly_NoSales(t *testing.T) {
	payload := summary(m{
		"incomeStatementHistoryQuarterly": m{"incomeStatementHistory": []m{{
			"endDate":   endDate(2024, time.June, 30),
			"netIncome": raw(10),
		}}},
	})
	client, _ := newTestClient(t, payload, http.StatusOK)

	_, err := client.FetchQuarterly(context.Background(), "X.NS")
	assert.ErrorIs(t, err, ErrSalesUnavailable)
}

func TestFetchQuarterly_NotFound(t *testing.T) {
	payload := m{"quoteSummary": m{"result": nil, "error": m{"code": "Not Found", "description": "Quote not found"}}}
	client, _ := newTestClient(t, payload, http.StatusNotFound)

	_, err := client.FetchQuarterly(context.Background(), "NOPE.NS")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestFetchQuarterly_UpstreamFailure(t *testing.T) {
	client, _ := newTestClient(t, m{}, http.StatusBadGateway)

	_, err := client.FetchQuarterly(context.Background(), "INFY.NS")
	require.Error(t, err)
	assert.True(t, upstream.IsStatus(err, http.StatusBadGateway))
}

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"reliance", "RELIANCE.NS"},
		{" tcs.ns ", "TCS.NS"},
		{"500325.BO", "500325.BO"},
		{"M&M", "M&M.NS"},
		{"^NSEI", "^NSEI"},
	}
	for _, tc := range cases {
		got, err := NormalizeSymbol(tc.in, DefaultExchangeSuffix)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	got, err := NormalizeSymbol("infy", "")
	require.NoError(t, err)
	assert.Equal(t, "INFY", got)

	for _, bad := range []string{"", "  ", "RELIANCE NS", "<script>", "AVERYVERYLONGSYMBOLNAMEXXX"} {
		_, err := NormalizeSymbol(bad, DefaultExchangeSuffix)
		assert.ErrorIs(t, err, ErrInvalidSymbol, bad)
	}
}
