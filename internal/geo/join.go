package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// Index performs point-in-polygon lookups against a fixed boundary set.
// Polygons are tested in load order and the first containing polygon wins,
// so results are deterministic for a fixed boundary file even when a point
// sits on a shared edge. Points on a ring boundary count as contained.
type Index struct {
	boundaries []Boundary
}

// NewIndex builds an index over the boundary set. The slice is not copied;
// callers must not mutate it afterwards.
func NewIndex(boundaries []Boundary) *Index {
	return &Index{boundaries: boundaries}
}

// Locate returns the name of the first polygon containing the point, or
// ("", false) when no polygon contains it.
func (idx *Index) Locate(lon, lat float64) (string, bool) {
	c := geom.Coord{lon, lat}
	for _, b := range idx.boundaries {
		if contains(b.Geom, c) {
			return b.Name, true
		}
	}
	return "", false
}

// Enrich assigns each trip to its containing neighborhood. Unmatched trips
// are retained with Matched false, never dropped.
func (idx *Index) Enrich(trips []model.Trip) []model.EnrichedTrip {
	log := zap.L().With(zap.String("component", "geo.join"))

	enriched := make([]model.EnrichedTrip, len(trips))
	var matched int
	for i, t := range trips {
		name, ok := idx.Locate(t.PickupLon, t.PickupLat)
		enriched[i] = model.EnrichedTrip{Trip: t, Neighborhood: name, Matched: ok}
		if ok {
			matched++
		}
	}

	log.Info("spatial join complete",
		zap.Int("trips", len(trips)),
		zap.Int("matched", matched),
		zap.Int("unmatched", len(trips)-matched),
	)
	return enriched
}

func contains(g geom.T, c geom.Coord) bool {
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonContains(t, c)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonContains(t.Polygon(i), c) {
				return true
			}
		}
	}
	return false
}

// polygonContains reports whether the point is inside the shell and outside
// every hole. The ray-crossing test treats ring boundaries as inside.
func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), c, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), c, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
