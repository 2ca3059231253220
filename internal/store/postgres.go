package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/chriskorol/nyctaxi/internal/model"
	"github.com/chriskorol/nyctaxi/internal/report"
)

// PostgresStore implements Store using pgxpool. Pickup points are stored as
// PostGIS geometry so the exported sample can be queried spatially.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS trip_sample (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	pickup_time   TIMESTAMPTZ NOT NULL,
	dropoff_time  TIMESTAMPTZ NOT NULL,
	pickup_point  GEOMETRY(Point, 4326) NOT NULL,
	trip_distance DOUBLE PRECISION NOT NULL,
	fare_amount   DOUBLE PRECISION NOT NULL,
	neighborhood  TEXT,
	matched       BOOLEAN NOT NULL,
	exported_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS neighborhood_fares (
	neighborhood TEXT PRIMARY KEY,
	mean_fare    DOUBLE PRECISION NOT NULL,
	trips        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS model_scores (
	model  TEXT PRIMARY KEY,
	r2     DOUBLE PRECISION NOT NULL,
	rmse   DOUBLE PRECISION NOT NULL,
	lambda DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trip_sample_neighborhood ON trip_sample(neighborhood);
CREATE INDEX IF NOT EXISTS idx_trip_sample_pickup_point ON trip_sample USING GIST(pickup_point);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveTrips(ctx context.Context, trips []model.EnrichedTrip) (int, error) {
	if _, err := s.pool.Exec(ctx, `DELETE FROM trip_sample`); err != nil {
		return 0, eris.Wrap(err, "postgres: clear trip sample")
	}

	now := time.Now().UTC()
	for _, t := range trips {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO trip_sample
			 (id, pickup_time, dropoff_time, pickup_point, trip_distance, fare_amount, neighborhood, matched, exported_at)
			 VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6, $7, $8, $9, $10)`,
			uuid.New().String(), t.PickupTime.UTC(), t.DropoffTime.UTC(),
			t.PickupLon, t.PickupLat, t.Distance, t.Fare,
			t.Neighborhood, t.Matched, now,
		)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: insert trip")
		}
	}
	return len(trips), nil
}

func (s *PostgresStore) SaveNeighborhoodFares(ctx context.Context, fares []report.NeighborhoodFare) error {
	for _, nf := range fares {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO neighborhood_fares (neighborhood, mean_fare, trips) VALUES ($1, $2, $3)
			 ON CONFLICT (neighborhood) DO UPDATE SET mean_fare = $2, trips = $3`,
			nf.Name, nf.MeanFare, nf.Trips,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert fare for %s", nf.Name)
		}
	}
	return nil
}

func (s *PostgresStore) SaveScores(ctx context.Context, scores []model.Score) error {
	for _, sc := range scores {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO model_scores (model, r2, rmse, lambda) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (model) DO UPDATE SET r2 = $2, rmse = $3, lambda = $4`,
			sc.Model, sc.R2, sc.RMSE, sc.Lambda,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert score for %s", sc.Model)
		}
	}
	return nil
}

// CountTrips reports how many trips the sample currently holds.
func (s *PostgresStore) CountTrips(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trip_sample`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count trips")
}
