package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/config"
	"github.com/chriskorol/nyctaxi/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const tripHeader = "VendorID,tpep_pickup_datetime,tpep_dropoff_datetime,passenger_count,trip_distance,pickup_longitude,pickup_latitude,RatecodeID,store_and_fwd_flag,dropoff_longitude,dropoff_latitude,payment_type,fare_amount,extra,mta_tax,tip_amount,tolls_amount,improvement_surcharge,total_amount"

// ntaFixture holds two adjacent rectangles: "Alpha" west of -73.95 and
// "Beta" east of it, both spanning lat 40.70 to 40.80.
const ntaFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"ntaname": "Alpha"},
      "geometry": {"type": "Polygon", "coordinates": [[
        [-74.00, 40.70], [-73.95, 40.70], [-73.95, 40.80], [-74.00, 40.80], [-74.00, 40.70]
      ]]}
    },
    {
      "type": "Feature",
      "properties": {"ntaname": "Beta"},
      "geometry": {"type": "Polygon", "coordinates": [[
        [-73.95, 40.70], [-73.90, 40.70], [-73.90, 40.80], [-73.95, 40.80], [-73.95, 40.70]
      ]]}
    }
  ]
}`

// writeFixtures produces a synthetic month of trips. Every third trip falls
// outside both polygons; fares track distance so the regressions have signal.
func writeFixtures(t *testing.T, dir string, n int) *config.Config {
	t.Helper()

	var b strings.Builder
	b.WriteString(tripHeader + "\n")
	for i := 0; i < n; i++ {
		var lon float64
		switch i % 3 {
		case 0:
			lon = -73.98 // Alpha
		case 1:
			lon = -73.93 // Beta
		default:
			lon = -73.50 // unmatched
		}

		month := 1 + i%2
		day := 1 + i%27
		hour := i % 24
		pickup := time.Date(2016, time.Month(month), day, hour, 0, 0, 0, time.UTC)
		dropoff := pickup.Add(10 * time.Minute)

		dist := 1.0 + float64(i%7)
		fare := 3.0 + 2.5*dist + 0.1*float64(i%5)
		tip := 0.5 * float64(i%4)
		tolls := 0.0
		if i%5 == 0 {
			tolls = 5.0
		}
		extra := 0.5 * float64(i%2)

		fmt.Fprintf(&b, "2,%s,%s,%d,%.2f,%.4f,40.7500,1,N,%.4f,40.7600,1,%.2f,%.2f,0.5,%.2f,%.2f,0.3,%.2f\n",
			pickup.Format("2006-01-02 15:04:05"), dropoff.Format("2006-01-02 15:04:05"),
			1+i%4, dist, lon, lon, fare, extra, tip, tolls, fare+extra+tip+tolls)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yellow_tripdata_2016-01.csv"), []byte(b.String()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nta.geojson"), []byte(ntaFixture), 0o644))

	return &config.Config{
		Data: config.DataConfig{
			TripGlobs:         []string{filepath.Join(dir, "yellow_tripdata_*.csv")},
			BoundaryPath:      filepath.Join(dir, "nta.geojson"),
			BoundaryNameField: "ntaname",
		},
		Output: config.OutputConfig{Dir: filepath.Join(dir, "out")},
		Model: config.ModelConfig{
			TestFraction: 0.25,
			Seed:         42,
			Folds:        5,
			LambdaMin:    0.01,
			LambdaMax:    10,
			LambdaCount:  4,
			LassoMaxIter: 1000,
			LassoTol:     1e-6,
		},
		Export: config.ExportConfig{
			Driver:     "sqlite",
			DSN:        filepath.Join(dir, "trips.db"),
			SampleSize: 10,
		},
	}
}

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFixtures(t, dir, 60)

	res, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 60, res.Stats.Loaded)
	assert.Equal(t, 0, res.Stats.Dropped)
	require.Len(t, res.Trips, 60)

	var matched int
	for _, trip := range res.Trips {
		if trip.Matched {
			matched++
		}
	}
	assert.Equal(t, 40, matched)

	// Unmatched trips never reach the aggregate.
	require.Len(t, res.Fares, 2)
	assert.Equal(t, "Alpha", res.Fares[0].Name)
	assert.Equal(t, "Beta", res.Fares[1].Name)
	assert.Equal(t, 20, res.Fares[0].Trips)

	// Distance dominates the fare, so every fitted model should explain most
	// of the held-out variance.
	require.NotEmpty(t, res.Scores)
	scored := make([]string, 0, len(res.Scores))
	for _, s := range res.Scores {
		assert.Greater(t, s.R2, 0.9, s.Model)
		scored = append(scored, s.Model)
	}
	// Held-out scores cover the penalized models only; OLS is reported
	// through its significance table.
	assert.ElementsMatch(t, []string{"ridge", "lasso"}, scored)
	require.NotNil(t, res.Ridge)
	require.NotNil(t, res.Lasso)
	require.NotNil(t, res.OLS)
	assert.Contains(t, res.RidgeCV.Lambdas, res.RidgeCV.BestLambda)

	for _, name := range []string{
		"trips_enriched.csv", "neighborhood_fares.csv", "model_scores.csv",
		"trips_by_hour.png", "trips_by_weekday.png", "fare_histogram.png",
		"fare_map.html", "summary.md",
	} {
		info, statErr := os.Stat(filepath.Join(cfg.Output.Dir, name))
		require.NoError(t, statErr, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	// All fixture pickups land in Jan/Feb, so the season breakdown is pure
	// winter.
	summary, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Trips by season")
	assert.Contains(t, string(summary), "winter: 60")
}

func TestPipelineExport(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFixtures(t, dir, 30)

	p := New(cfg)
	res, err := p.Enrich(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Export(context.Background(), res))

	st, err := store.NewSQLite(cfg.Export.DSN)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	n, err := st.CountTrips(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.Export.SampleSize, n)
}

func TestPipelineLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFixtures(t, dir, 10)
	cfg.Data.BoundaryPath = filepath.Join(dir, "missing.geojson")

	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
}
