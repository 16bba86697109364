// Package favorites keeps the user's list of favorite stations, by name, in
// display order.
package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyName   = errors.New("favorite station name is empty")
	ErrNotFavorite = errors.New("station is not a favorite")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS favorite_stations (
			name TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("creating favorite_stations table: %w", err)
	}
	return &Store{db: db}, nil
}

// Add appends name to the end of the list. Adding an existing favorite is a
// no-op and keeps its position.
func (s *Store) Add(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorite_stations (name, position)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM favorite_stations))
		ON CONFLICT(name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("adding favorite %q: %w", name, err)
	}

	log.Debug().Str("station", name).Msg("Added favorite station")
	return nil
}

// Remove deletes name from the list.
func (s *Store) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM favorite_stations WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("removing favorite %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing favorite %q: %w", name, err)
	}
	if n == 0 {
		return ErrNotFavorite
	}

	log.Debug().Str("station", name).Msg("Removed favorite station")
	return nil
}

// List returns favorite names in the order they were added.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM favorite_stations ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
