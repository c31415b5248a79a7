package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNew_EmbeddedSymbols(t *testing.T) {
	symbols := New().Symbols()

	require.Len(t, symbols, 8)
	assert.Equal(t, "RELIANCE.NS", symbols[0].Symbol)
	assert.Equal(t, "Reliance Industries", symbols[0].Name)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	writeCatalog(t, path, "symbols:\n  - symbol: itc.ns\n")

	c := New()
	require.NoError(t, c.Load(path))

	symbols := c.Symbols()
	require.Len(t, symbols, 1)
	assert.Equal(t, Symbol{Symbol: "ITC.NS", Name: "ITC.NS"}, symbols[0])
}

func TestLoad_InvalidKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	writeCatalog(t, path, "symbols:\n  - name: missing symbol\n")

	c := New()
	assert.Error(t, c.Load(path))
	assert.Len(t, c.Symbols(), 8)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	writeCatalog(t, path, "symbols:\n  - symbol: TCS.NS\n")

	c := New()
	require.NoError(t, c.Load(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	writeCatalog(t, path, "symbols:\n  - symbol: TCS.NS\n  - symbol: WIPRO.NS\n")

	assert.Eventually(t, func() bool { return len(c.Symbols()) == 2 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatch_ReloadsOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbols.yaml")
	writeCatalog(t, path, "symbols:\n  - symbol: TCS.NS\n")

	c := New()
	require.NoError(t, c.Load(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.Watch(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	time.Sleep(100 * time.Millisecond)

	for i, symbols := range []string{"  - symbol: INFY.NS\n", "  - symbol: INFY.NS\n  - symbol: SBIN.NS\n"} {
		tmp := filepath.Join(dir, fmt.Sprintf("symbols.yaml.tmp%d", i))
		writeCatalog(t, tmp, "symbols:\n"+symbols)
		require.NoError(t, os.Rename(tmp, path))

		want := i + 1
		assert.Eventually(t, func() bool { return len(c.Symbols()) == want }, 3*time.Second, 20*time.Millisecond)
	}
	assert.Equal(t, "SBIN.NS", c.Symbols()[1].Symbol)

	cancel()
	assert.NoError(t, <-done)
}
