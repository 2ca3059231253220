package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/chriskorol/nyctaxi/internal/model"
	"github.com/chriskorol/nyctaxi/internal/report"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS trip_sample (
	id            TEXT PRIMARY KEY,
	pickup_time   DATETIME NOT NULL,
	dropoff_time  DATETIME NOT NULL,
	pickup_lat    REAL NOT NULL,
	pickup_lon    REAL NOT NULL,
	trip_distance REAL NOT NULL,
	fare_amount   REAL NOT NULL,
	neighborhood  TEXT,
	matched       INTEGER NOT NULL,
	exported_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS neighborhood_fares (
	neighborhood TEXT PRIMARY KEY,
	mean_fare    REAL NOT NULL,
	trips        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS model_scores (
	model  TEXT PRIMARY KEY,
	r2     REAL NOT NULL,
	rmse   REAL NOT NULL,
	lambda REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trip_sample_neighborhood ON trip_sample(neighborhood);
CREATE INDEX IF NOT EXISTS idx_trip_sample_pickup_time ON trip_sample(pickup_time);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveTrips replaces the exported trip sample. Each export is a full
// snapshot, so the previous sample is cleared first.
func (s *SQLiteStore) SaveTrips(ctx context.Context, trips []model.EnrichedTrip) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_sample`); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear trip sample")
	}

	now := time.Now().UTC()
	for _, t := range trips {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trip_sample
			 (id, pickup_time, dropoff_time, pickup_lat, pickup_lon, trip_distance, fare_amount, neighborhood, matched, exported_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), t.PickupTime.UTC(), t.DropoffTime.UTC(),
			t.PickupLat, t.PickupLon, t.Distance, t.Fare,
			t.Neighborhood, t.Matched, now,
		)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: insert trip")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit trip sample")
	}
	return len(trips), nil
}

func (s *SQLiteStore) SaveNeighborhoodFares(ctx context.Context, fares []report.NeighborhoodFare) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, nf := range fares {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO neighborhood_fares (neighborhood, mean_fare, trips) VALUES (?, ?, ?)
			 ON CONFLICT (neighborhood) DO UPDATE SET mean_fare = excluded.mean_fare, trips = excluded.trips`,
			nf.Name, nf.MeanFare, nf.Trips,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert fare for %s", nf.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit fares")
}

func (s *SQLiteStore) SaveScores(ctx context.Context, scores []model.Score) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, sc := range scores {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO model_scores (model, r2, rmse, lambda) VALUES (?, ?, ?, ?)
			 ON CONFLICT (model) DO UPDATE SET r2 = excluded.r2, rmse = excluded.rmse, lambda = excluded.lambda`,
			sc.Model, sc.R2, sc.RMSE, sc.Lambda,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert score for %s", sc.Model)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit scores")
}

// CountTrips reports how many trips the sample currently holds.
func (s *SQLiteStore) CountTrips(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trip_sample`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count trips")
}
