package loader

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// timeLayout matches the timestamp format of the published trip files.
const timeLayout = "2006-01-02 15:04:05"

// Stats counts what happened during a load.
type Stats struct {
	Files   int
	Rows    int
	Loaded  int
	Dropped int
}

// LoadTrips reads every file matched by the globs, validates and cleans each
// row, and derives calendar fields. Malformed rows are dropped and counted,
// never fatal. The returned slice is in file order and immutable by contract.
func LoadTrips(ctx context.Context, globs []string, cal *Calendar) ([]model.Trip, Stats, error) {
	log := zap.L().With(zap.String("component", "loader"))

	var paths []string
	for _, g := range globs {
		matches, err := filepath.Glob(g)
		if err != nil {
			return nil, Stats{}, eris.Wrapf(err, "loader: bad glob %q", g)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, Stats{}, eris.Errorf("loader: no trip files matched %v", globs)
	}

	var trips []model.Trip
	stats := Stats{Files: len(paths)}

	for _, path := range paths {
		n, dropped, err := loadFile(ctx, path, cal, &trips)
		if err != nil {
			return nil, stats, err
		}
		stats.Rows += n
		stats.Dropped += dropped
		log.Info("trip file loaded",
			zap.String("path", path),
			zap.Int("rows", n),
			zap.Int("dropped", dropped),
		)
	}

	stats.Loaded = len(trips)
	log.Info("trips loaded",
		zap.Int("files", stats.Files),
		zap.Int("loaded", stats.Loaded),
		zap.Int("dropped", stats.Dropped),
	)
	return trips, stats, nil
}

func loadFile(ctx context.Context, path string, cal *Calendar, trips *[]model.Trip) (rows, dropped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "loader: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, f, CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var sch schema
	select {
	case header, ok := <-headerCh:
		if !ok {
			return 0, 0, eris.Errorf("loader: %s is empty", path)
		}
		sch = resolveSchema(header)
	case <-ctx.Done():
		return 0, 0, eris.Wrap(ctx.Err(), "loader: cancelled reading header")
	}
	if !sch.valid() {
		return 0, 0, eris.Errorf("loader: %s is missing required trip columns", path)
	}

	for row := range rowCh {
		rows++
		trip, ok := parseTrip(sch, row, cal)
		if !ok {
			dropped++
			continue
		}
		*trips = append(*trips, trip)
	}
	if err := <-errCh; err != nil {
		return rows, dropped, eris.Wrapf(err, "loader: read %s", path)
	}
	return rows, dropped, nil
}

// parseTrip converts one raw row into a cleaned Trip. It enforces the trip
// invariants: parseable timestamps with pickup before dropoff, non-zero
// coordinates, positive fare and distance.
func parseTrip(sch schema, row []string, cal *Calendar) (model.Trip, bool) {
	var t model.Trip

	pickup, err := time.Parse(timeLayout, sch.field(row, "pickup_time"))
	if err != nil {
		return t, false
	}
	dropoff, err := time.Parse(timeLayout, sch.field(row, "dropoff_time"))
	if err != nil {
		return t, false
	}
	if !pickup.Before(dropoff) {
		return t, false
	}

	lat, err1 := strconv.ParseFloat(sch.field(row, "pickup_lat"), 64)
	lon, err2 := strconv.ParseFloat(sch.field(row, "pickup_lon"), 64)
	if err1 != nil || err2 != nil || lat == 0 || lon == 0 {
		return t, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return t, false
	}

	dist, err := strconv.ParseFloat(sch.field(row, "trip_distance"), 64)
	if err != nil || dist <= 0 {
		return t, false
	}
	fare, err := strconv.ParseFloat(sch.field(row, "fare_amount"), 64)
	if err != nil || fare <= 0 {
		return t, false
	}

	t = model.Trip{
		PickupTime:  pickup,
		DropoffTime: dropoff,
		PickupLat:   lat,
		PickupLon:   lon,
		Distance:    dist,
		Fare:        fare,
		Passengers:  parseIntField(sch, row, "passenger_count"),
		Tip:         parseFloatField(sch, row, "tip_amount"),
		Tolls:       parseFloatField(sch, row, "tolls_amount"),
		Extras:      parseFloatField(sch, row, "extra"),
	}
	t.DeriveCalendar(cal.IsHoliday)
	return t, true
}

// parseFloatField reads an optional money column; absent or malformed
// values become 0 rather than dropping the row.
func parseFloatField(sch schema, row []string, logical string) float64 {
	v, err := strconv.ParseFloat(sch.field(row, logical), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseIntField(sch schema, row []string, logical string) int {
	v, err := strconv.Atoi(sch.field(row, logical))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
