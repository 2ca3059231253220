package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// square returns a unit-square polygon with the given lower-left corner.
func square(x, y float64) *geom.Polygon {
	poly := geom.NewPolygon(geom.XY)
	ring := geom.NewLinearRingFlat(geom.XY, []float64{
		x, y,
		x + 1, y,
		x + 1, y + 1,
		x, y + 1,
		x, y,
	})
	if err := poly.Push(ring); err != nil {
		panic(err)
	}
	return poly
}

func testIndex() *Index {
	return NewIndex([]Boundary{
		{Name: "A", Geom: square(0, 0)},
		{Name: "B", Geom: square(2, 0)},
	})
}

func TestLocate(t *testing.T) {
	t.Parallel()

	idx := testIndex()

	tests := []struct {
		name     string
		lon, lat float64
		want     string
		matched  bool
	}{
		{"inside A", 0.5, 0.5, "A", true},
		{"inside B", 2.5, 0.5, "B", true},
		{"outside all", 10, 10, "", false},
		{"between polygons", 1.5, 0.5, "", false},
		{"on A boundary", 0, 0.5, "A", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, ok := idx.Locate(tt.lon, tt.lat)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestLocateTieBreakDeterministic(t *testing.T) {
	t.Parallel()

	// Two squares sharing the edge x=1: the point on the shared edge always
	// resolves to the first polygon in load order.
	idx := NewIndex([]Boundary{
		{Name: "left", Geom: square(0, 0)},
		{Name: "right", Geom: square(1, 0)},
	})

	for i := 0; i < 10; i++ {
		name, ok := idx.Locate(1, 0.5)
		require.True(t, ok)
		assert.Equal(t, "left", name)
	}
}

func TestLocateHole(t *testing.T) {
	t.Parallel()

	// 4x4 square with a 1x1 hole in the middle.
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		0, 0, 4, 0, 4, 4, 0, 4, 0, 0,
	})))
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		1.5, 1.5, 2.5, 1.5, 2.5, 2.5, 1.5, 2.5, 1.5, 1.5,
	})))
	idx := NewIndex([]Boundary{{Name: "donut", Geom: poly}})

	_, ok := idx.Locate(2, 2) // in the hole
	assert.False(t, ok)

	name, ok := idx.Locate(0.5, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "donut", name)
}

func TestLocateMultiPolygon(t *testing.T) {
	t.Parallel()

	mp := geom.NewMultiPolygon(geom.XY)
	require.NoError(t, mp.Push(square(0, 0)))
	require.NoError(t, mp.Push(square(5, 5)))
	idx := NewIndex([]Boundary{{Name: "twin", Geom: mp}})

	name, ok := idx.Locate(5.5, 5.5)
	assert.True(t, ok)
	assert.Equal(t, "twin", name)

	_, ok = idx.Locate(3, 3)
	assert.False(t, ok)
}

func TestEnrich(t *testing.T) {
	t.Parallel()

	idx := testIndex()
	base := model.Trip{
		PickupTime:  time.Date(2016, 1, 4, 8, 0, 0, 0, time.UTC),
		DropoffTime: time.Date(2016, 1, 4, 8, 15, 0, 0, time.UTC),
		Distance:    1, Fare: 10,
	}

	mk := func(lon, lat float64) model.Trip {
		trip := base
		trip.PickupLon, trip.PickupLat = lon, lat
		return trip
	}

	enriched := idx.Enrich([]model.Trip{
		mk(0.2, 0.2), mk(0.8, 0.8), mk(2.5, 0.5), mk(9, 9),
	})

	require.Len(t, enriched, 4)
	assert.Equal(t, "A", enriched[0].Neighborhood)
	assert.Equal(t, "A", enriched[1].Neighborhood)
	assert.Equal(t, "B", enriched[2].Neighborhood)

	// Unmatched trips are retained, never assigned a name.
	assert.False(t, enriched[3].Matched)
	assert.Empty(t, enriched[3].Neighborhood)
}
