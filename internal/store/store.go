package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/chriskorol/nyctaxi/internal/model"
	"github.com/chriskorol/nyctaxi/internal/report"
)

// Pool is the subset of pgxpool.Pool the postgres store needs. Tests satisfy
// it with pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store persists export artifacts: a sample of enriched trips, the
// per-neighborhood fare aggregate, and held-out model scores.
type Store interface {
	Migrate(ctx context.Context) error
	SaveTrips(ctx context.Context, trips []model.EnrichedTrip) (int, error)
	SaveNeighborhoodFares(ctx context.Context, fares []report.NeighborhoodFare) error
	SaveScores(ctx context.Context, scores []model.Score) error
	Close() error
}

// New opens a Store for the configured driver.
func New(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// SampleTrips returns the first n trips, or all of them when n is zero or
// exceeds the input. Trips are already in file order so the sample is stable
// across runs.
func SampleTrips(trips []model.EnrichedTrip, n int) []model.EnrichedTrip {
	if n <= 0 || n >= len(trips) {
		return trips
	}
	return trips[:n]
}
