package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const tripHeader = "VendorID,tpep_pickup_datetime,tpep_dropoff_datetime,passenger_count,trip_distance,pickup_longitude,pickup_latitude,RatecodeID,store_and_fwd_flag,dropoff_longitude,dropoff_latitude,payment_type,fare_amount,extra,mta_tax,tip_amount,tolls_amount,improvement_surcharge,total_amount"

func writeTripFile(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	content := tripHeader + "\n"
	for _, r := range rows {
		content += r + "\n"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTrips(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeTripFile(t, dir, "yellow_tripdata_2016-01.csv",
		// valid trip
		"2,2016-01-01 00:12:22,2016-01-01 00:29:14,1,4.90,-73.9813,40.7379,1,N,-73.9377,40.7575,2,17.0,0.5,0.5,0,0,0.3,18.3",
		// negative fare: dropped
		"2,2016-01-01 00:12:22,2016-01-01 00:29:14,1,4.90,-73.9813,40.7379,1,N,-73.9377,40.7575,2,-5.0,0,0,0,0,0.3,-4.7",
		// zero coordinates: dropped
		"2,2016-01-01 00:12:22,2016-01-01 00:29:14,1,4.90,0,0,1,N,-73.9377,40.7575,2,17.0,0,0,0,0,0.3,17.3",
		// unparseable timestamp: dropped
		"2,not-a-time,2016-01-01 00:29:14,1,4.90,-73.9813,40.7379,1,N,-73.9377,40.7575,2,17.0,0,0,0,0,0.3,17.3",
		// pickup after dropoff: dropped
		"2,2016-01-01 00:40:00,2016-01-01 00:29:14,1,4.90,-73.9813,40.7379,1,N,-73.9377,40.7575,2,17.0,0,0,0,0,0.3,17.3",
		// zero distance: dropped
		"2,2016-01-01 00:12:22,2016-01-01 00:29:14,1,0,-73.9813,40.7379,1,N,-73.9377,40.7575,2,17.0,0,0,0,0,0.3,17.3",
	)

	trips, stats, err := LoadTrips(context.Background(), []string{filepath.Join(dir, "*.csv")}, DefaultCalendar())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 6, stats.Rows)
	assert.Equal(t, 5, stats.Dropped)
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.InDelta(t, 17.0, trip.Fare, 1e-9)
	assert.InDelta(t, 4.90, trip.Distance, 1e-9)
	assert.InDelta(t, 40.7379, trip.PickupLat, 1e-9)
	assert.InDelta(t, -73.9813, trip.PickupLon, 1e-9)
	assert.Equal(t, 1, trip.Passengers)

	// Calendar derivation: 2016-01-01 is a Friday and New Year's Day.
	assert.Equal(t, 0, trip.Hour)
	assert.Equal(t, 2016, trip.Year)
	assert.Equal(t, 1, trip.Month)
	assert.Equal(t, time.Friday, trip.Weekday)
	assert.False(t, trip.IsWeekend)
	assert.True(t, trip.IsHoliday)
}

func TestLoadTripsInvariants(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeTripFile(t, dir, "trips.csv",
		"2,2015-01-15 08:00:00,2015-01-15 08:20:00,2,2.1,-73.99,40.75,1,N,-73.98,40.76,1,10.5,0.5,0.5,2.0,0,0.3,13.8",
		"1,2015-01-17 23:10:00,2015-01-17 23:45:00,1,8.4,-73.87,40.77,1,N,-73.99,40.75,1,26.0,0.5,0.5,5.0,5.54,0.3,37.84",
	)

	trips, _, err := LoadTrips(context.Background(), []string{filepath.Join(dir, "trips.csv")}, DefaultCalendar())
	require.NoError(t, err)

	for _, trip := range trips {
		assert.GreaterOrEqual(t, trip.Fare, 0.0)
		assert.GreaterOrEqual(t, trip.Distance, 0.0)
		assert.True(t, trip.PickupTime.Before(trip.DropoffTime))
	}
	// Saturday trip flagged as weekend.
	assert.True(t, trips[1].IsWeekend)
}

func TestLoadTripsNoMatch(t *testing.T) {
	t.Parallel()

	_, _, err := LoadTrips(context.Background(), []string{filepath.Join(t.TempDir(), "*.csv")}, nil)
	assert.Error(t, err)
}

func TestLoadTripsMissingColumns(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))

	_, _, err := LoadTrips(context.Background(), []string{path}, nil)
	assert.Error(t, err)
}

func TestLoadTripsEmptyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	// A zero-byte file must fail promptly, not block waiting for a header.
	done := make(chan error, 1)
	go func() {
		_, _, err := LoadTrips(context.Background(), []string{path}, nil)
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	case <-time.After(5 * time.Second):
		t.Fatal("LoadTrips did not return on an empty CSV file")
	}
}

func TestResolveSchemaAliases(t *testing.T) {
	t.Parallel()

	// Bare pickup_datetime layout also resolves.
	sch := resolveSchema([]string{
		"pickup_datetime", "dropoff_datetime", "pickup_latitude", "pickup_longitude",
		"trip_distance", "fare_amount",
	})
	assert.True(t, sch.valid())
	assert.Equal(t, 0, sch["pickup_time"])
	assert.Equal(t, -1, sch["tip_amount"])
}

func TestDefaultCalendar(t *testing.T) {
	t.Parallel()

	cal := DefaultCalendar()
	assert.True(t, cal.IsHoliday(time.Date(2015, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, cal.IsHoliday(time.Date(2016, 1, 18, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsHoliday(time.Date(2016, 1, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "New Year's Day", cal.Name(time.Date(2016, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestLoadCalendar(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- date: "2016-03-17"
  name: St. Patrick's Day
- date: "2016-01-01"
  name: New Year's Day
`), 0o644))

	cal, err := LoadCalendar(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cal.Len())
	assert.True(t, cal.IsHoliday(time.Date(2016, 3, 17, 17, 0, 0, 0, time.UTC)))

	_, err = LoadCalendar(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadCalendarBadDate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- date: \"17-03-2016\"\n  name: bad\n"), 0o644))

	_, err := LoadCalendar(path)
	assert.Error(t, err)
}
