package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/shralptide/tidestations/internal/models"
	_ "modernc.org/sqlite"
)

const stationsSchema = `
	CREATE TABLE IF NOT EXISTS tide_stations (
		name TEXT PRIMARY KEY,
		units TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		distance REAL,
		latitude REAL,
		longitude REAL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_tide_stations_state ON tide_stations(state);
	CREATE INDEX IF NOT EXISTS idx_tide_stations_coords ON tide_stations(latitude, longitude);
`

// OpenSQLite opens (creating if needed) the database at path. ":memory:" is
// accepted and pinned to a single connection so every query sees the same
// database.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		_, _ = db.Exec("PRAGMA journal_mode=WAL")
		_, _ = db.Exec("PRAGMA synchronous=NORMAL")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// SQLiteStore keeps stations in the tide_stations table. Absent numeric
// fields are stored as NULL.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(stationsSchema); err != nil {
		return nil, fmt.Errorf("creating tide_stations table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveStations upserts the records by name in a single transaction. A batch
// that repeats a name is rejected before anything is written.
func (s *SQLiteStore) SaveStations(ctx context.Context, stations []models.StationRecord) error {
	if err := checkUniqueNames(stations); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tide_stations (name, units, state, distance, latitude, longitude, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			units = excluded.units,
			state = excluded.state,
			distance = excluded.distance,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range stations {
		if _, err := stmt.ExecContext(ctx,
			r.Name(), r.Units(), r.State(),
			nullable(r.Distance()), nullable(r.Latitude()), nullable(r.Longitude()),
		); err != nil {
			return fmt.Errorf("saving station %q: %w", r.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stations: %w", err)
	}

	log.Debug().Int("station_count", len(stations)).Msg("Saved stations to SQLite")
	return nil
}

// Fetch returns every stored station ordered by name.
func (s *SQLiteStore) Fetch(ctx context.Context) ([]models.StationTuple, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, units, state, distance, latitude, longitude
		FROM tide_stations
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var tuples []models.StationTuple
	for rows.Next() {
		var t models.StationTuple
		var distance, lat, lon sql.NullFloat64
		if err := rows.Scan(&t.Name, &t.Units, &t.State, &distance, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		t.Distance = nullFloatPtr(distance)
		t.Latitude = nullFloatPtr(lat)
		t.Longitude = nullFloatPtr(lon)
		tuples = append(tuples, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stations: %w", err)
	}

	return tuples, nil
}

// nullable maps an absent value to SQL NULL.
func nullable(o models.OptionalFloat) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
