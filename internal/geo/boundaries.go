// Package geo loads neighborhood boundary polygons and assigns trips to them.
package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Boundary is one named NTA polygon in EPSG:4326. The set is loaded once and
// read-only for the lifetime of the run.
type Boundary struct {
	Name string
	Geom geom.T // *geom.Polygon or *geom.MultiPolygon
}

// LoadBoundaries reads named polygons from a GeoJSON or ESRI shapefile,
// dispatching on the file extension. nameField is the property or attribute
// carrying the neighborhood name (e.g. "ntaname" / "NTAName").
func LoadBoundaries(path, nameField string) ([]Boundary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return loadGeoJSON(path, nameField)
	case ".shp":
		return loadShapefile(path, nameField)
	default:
		return nil, eris.Errorf("geo: unsupported boundary format %q", filepath.Ext(path))
	}
}

func loadGeoJSON(path, nameField string) ([]Boundary, error) {
	log := zap.L().With(zap.String("component", "geo.loader"))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "geo: parse GeoJSON %s", path)
	}

	var boundaries []Boundary
	var skipped int
	for _, f := range fc.Features {
		name := featureName(f.Properties, nameField)
		if name == "" || f.Geometry == nil {
			skipped++
			continue
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
			boundaries = append(boundaries, Boundary{Name: name, Geom: f.Geometry})
		default:
			skipped++
		}
	}

	if skipped > 0 {
		log.Debug("geo: skipped unnamed or non-polygon features", zap.Int("skipped", skipped))
	}
	if len(boundaries) == 0 {
		return nil, eris.Errorf("geo: no named polygons in %s", path)
	}

	log.Info("boundaries loaded", zap.String("path", path), zap.Int("polygons", len(boundaries)))
	return boundaries, nil
}

// featureName pulls the name property, trying the configured key first and
// falling back to common NTA spellings.
func featureName(props map[string]interface{}, nameField string) string {
	for _, key := range []string{nameField, "ntaname", "NTAName", "name"} {
		if key == "" {
			continue
		}
		if v, ok := props[key]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

func loadShapefile(path, nameField string) ([]Boundary, error) {
	log := zap.L().With(zap.String("component", "geo.loader"))

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, eris.Errorf("geo: shapefile field %q not found", nameField)
	}

	var boundaries []Boundary
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			skipped++
			continue
		}

		g := polygonToMultiPolygon(poly)
		if g == nil {
			skipped++
			continue
		}
		boundaries = append(boundaries, Boundary{Name: name, Geom: g})
	}

	if skipped > 0 {
		log.Debug("geo: skipped shapefile records", zap.Int("skipped", skipped))
	}
	if len(boundaries) == 0 {
		return nil, eris.Errorf("geo: no named polygons in %s", path)
	}

	log.Info("boundaries loaded", zap.String("path", path), zap.Int("polygons", len(boundaries)))
	return boundaries, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geo: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}

		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geo: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
