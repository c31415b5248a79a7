package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps the watchlist in process memory. It is used when no
// database is configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*WatchlistEntry
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[string]*WatchlistEntry),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Touch(_ context.Context, symbol, companyName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[symbol]
	if !ok {
		e = &WatchlistEntry{Symbol: symbol}
		r.entries[symbol] = e
	}
	if companyName != "" {
		e.CompanyName = companyName
	}
	e.ViewCount++
	e.LastViewedAt = r.now()
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]WatchlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]WatchlistEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastViewedAt.Equal(out[j].LastViewedAt) {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].LastViewedAt.After(out[j].LastViewedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[symbol]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	delete(r.entries, symbol)
	return nil
}

func (r *MemoryRepository) GetNote(_ context.Context, symbol string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[symbol]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return e.Note, nil
}

func (r *MemoryRepository) SaveNote(_ context.Context, symbol, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[symbol]
	if !ok {
		e = &WatchlistEntry{Symbol: symbol, LastViewedAt: r.now()}
		r.entries[symbol] = e
	}
	e.Note = note
	return nil
}

func (r *MemoryRepository) DeleteNote(_ context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	e.Note = ""
	return nil
}
