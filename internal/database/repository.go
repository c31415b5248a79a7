package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("symbol not found in watchlist")

// WatchlistEntry is a symbol a user has looked at. Financial records are
// never stored, only what is needed to list and annotate the symbol.
type WatchlistEntry struct {
	Symbol       string    `json:"symbol"`
	CompanyName  string    `json:"company_name"`
	Note         string    `json:"note,omitempty"`
	ViewCount    int       `json:"view_count"`
	LastViewedAt time.Time `json:"last_viewed_at"`
}

// Repository is the postgres-backed watchlist.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Touch(ctx context.Context, symbol, companyName string) error {
	query := `
    INSERT INTO watchlist (symbol, company_name, view_count, last_viewed_at)
    VALUES ($1, $2, 1, NOW())
    ON CONFLICT (symbol)
    DO UPDATE SET
        company_name = COALESCE(NULLIF(EXCLUDED.company_name, ''), watchlist.company_name),
        view_count = watchlist.view_count + 1,
        last_viewed_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, symbol, companyName); err != nil {
		return fmt.Errorf("failed to touch %s: %w", symbol, err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, company_name, note, view_count, last_viewed_at
		FROM watchlist
		ORDER BY last_viewed_at DESC, symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var result []WatchlistEntry
	for rows.Next() {
		var item WatchlistEntry
		if err := rows.Scan(&item.Symbol, &item.CompanyName, &item.Note, &item.ViewCount, &item.LastViewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *Repository) Delete(ctx context.Context, symbol string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlist WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", symbol, err)
	}
	return expectOneRow(res, symbol)
}

func (r *Repository) GetNote(ctx context.Context, symbol string) (string, error) {
	var note string
	err := r.db.QueryRowContext(ctx, `SELECT note FROM watchlist WHERE symbol = $1`, symbol).Scan(&note)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get note for %s: %w", symbol, err)
	}
	return note, nil
}

func (r *Repository) SaveNote(ctx context.Context, symbol, note string) error {
	query := `
    INSERT INTO watchlist (symbol, note)
    VALUES ($1, $2)
    ON CONFLICT (symbol)
    DO UPDATE SET note = EXCLUDED.note`

	if _, err := r.db.ExecContext(ctx, query, symbol, note); err != nil {
		return fmt.Errorf("failed to save note for %s: %w", symbol, err)
	}
	return nil
}

func (r *Repository) DeleteNote(ctx context.Context, symbol string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE watchlist SET note = '' WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete note for %s: %w", symbol, err)
	}
	return expectOneRow(res, symbol)
}

func expectOneRow(res sql.Result, symbol string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return nil
}
