package application

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VxVxN/stockinsight/internal/config"
	"github.com/VxVxN/stockinsight/internal/database"
	"github.com/VxVxN/stockinsight/internal/parser"
	"github.com/VxVxN/stockinsight/internal/yahoo"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            8080,
		QuarterLimit:    10,
		UpstreamTries:   1,
		UpstreamTimeout: time.Second,
		ExchangeSuffix:  ".NS",
	}
}

func TestInit_DefaultsToYahooAndMemory(t *testing.T) {
	app, err := Init(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &yahoo.Client{}, app.Provider)
	assert.IsType(t, &database.MemoryRepository{}, app.Watchlist)
	assert.NotNil(t, app.Controller())
}

func TestInit_CSVProviderAndCatalogFile(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "symbols.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("symbols:\n  - symbol: ITC.NS\n"), 0o600))

	cfg := testConfig()
	cfg.CSVPath = dir
	cfg.CatalogPath = catalogPath

	app, err := Init(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &parser.CSVSource{}, app.Provider)
	assert.Len(t, app.Catalog.Symbols(), 1)
}

func TestInit_BadCatalogFile(t *testing.T) {
	cfg := testConfig()
	cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Init(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
