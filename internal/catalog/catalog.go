// Package catalog holds the list of popular symbols offered on the index page.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

//go:embed symbols.yaml
var defaultSymbols []byte

type Symbol struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

type file struct {
	Symbols []Symbol `yaml:"symbols"`
}

type Catalog struct {
	mu      sync.RWMutex
	symbols []Symbol
}

// New returns the built-in catalog.
func New() *Catalog {
	symbols, err := parse(defaultSymbols)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded symbols: %v", err))
	}
	return &Catalog{symbols: symbols}
}

// Load replaces the catalog content with the file at path.
func (c *Catalog) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: read %q: %w", path, err)
	}
	symbols, err := parse(data)
	if err != nil {
		return fmt.Errorf("catalog: %q: %w", path, err)
	}

	c.mu.Lock()
	c.symbols = symbols
	c.mu.Unlock()
	return nil
}

func (c *Catalog) Symbols() []Symbol {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Symbol, len(c.symbols))
	copy(out, c.symbols)
	return out
}

func parse(data []byte) ([]Symbol, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make([]Symbol, 0, len(f.Symbols))
	for i, s := range f.Symbols {
		s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
		if s.Symbol == "" {
			return nil, fmt.Errorf("symbols[%d]: symbol is required", i)
		}
		if s.Name == "" {
			s.Name = s.Symbol
		}
		out = append(out, s)
	}
	return out, nil
}

// Watch reloads the catalog from path whenever the file is written or replaced.
// The parent directory is watched so saves that rename a temporary file over
// path are seen too. A file that fails to parse, or is removed, leaves the
// previous catalog in place. It runs until ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	name := filepath.Base(path)

	logger.Info("Watching symbol catalog", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := c.Load(path); err != nil {
				logger.Error("Catalog reload failed, keeping previous symbols", "path", path, "err", err)
				continue
			}
			logger.Info("Catalog reloaded", "path", path, "symbols", len(c.Symbols()))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Catalog watcher error", "err", err)
		}
	}
}
