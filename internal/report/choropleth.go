package report

import (
	"encoding/json"
	"html/template"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/chriskorol/nyctaxi/internal/geo"
)

// choroplethTemplate is a self-contained Leaflet page: boundary polygons and
// their mean fares are embedded in the document, only basemap tiles are
// fetched remotely.
const choroplethTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .legend { background: white; padding: 8px 12px; font: 13px sans-serif; border-radius: 4px; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var data = {{.Data}};
var minFare = {{.MinFare}}, maxFare = {{.MaxFare}};

var map = L.map('map').setView([40.73, -73.95], 11);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

function color(f) {
  if (maxFare <= minFare) { return '#3182bd'; }
  var t = (f - minFare) / (maxFare - minFare);
  var r = Math.round(255 * t), b = Math.round(255 * (1 - t));
  return 'rgb(' + r + ',64,' + b + ')';
}

L.geoJSON(data, {
  style: function (feature) {
    return { color: '#333', weight: 1, fillColor: color(feature.properties.mean_fare), fillOpacity: 0.65 };
  },
  onEachFeature: function (feature, layer) {
    layer.bindPopup(feature.properties.name +
      '<br>Mean fare: $' + feature.properties.mean_fare.toFixed(2) +
      '<br>Trips: ' + feature.properties.trips);
  }
}).addTo(map);

var legend = L.control({position: 'bottomright'});
legend.onAdd = function () {
  var div = L.DomUtil.create('div', 'legend');
  div.innerHTML = 'Mean fare: $' + minFare.toFixed(2) + ' &ndash; $' + maxFare.toFixed(2);
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`

type choroplethFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type choroplethCollection struct {
	Type     string              `json:"type"`
	Features []choroplethFeature `json:"features"`
}

// WriteChoropleth renders the interactive per-neighborhood mean-fare map.
// Neighborhoods with no matched trips are omitted.
func WriteChoropleth(path string, boundaries []geo.Boundary, fares []NeighborhoodFare) error {
	byName := make(map[string]NeighborhoodFare, len(fares))
	for _, nf := range fares {
		byName[nf.Name] = nf
	}

	fc := choroplethCollection{Type: "FeatureCollection"}
	minFare, maxFare := 0.0, 0.0
	for _, b := range boundaries {
		nf, ok := byName[b.Name]
		if !ok {
			continue
		}

		raw, err := geojson.Marshal(b.Geom)
		if err != nil {
			return eris.Wrapf(err, "report: encode geometry for %s", b.Name)
		}
		fc.Features = append(fc.Features, choroplethFeature{
			Type:     "Feature",
			Geometry: raw,
			Properties: map[string]any{
				"name":      b.Name,
				"mean_fare": nf.MeanFare,
				"trips":     nf.Trips,
			},
		})

		if len(fc.Features) == 1 || nf.MeanFare < minFare {
			minFare = nf.MeanFare
		}
		if len(fc.Features) == 1 || nf.MeanFare > maxFare {
			maxFare = nf.MeanFare
		}
	}
	if len(fc.Features) == 0 {
		return eris.New("report: no neighborhoods with trips to map")
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "report: marshal feature collection")
	}

	tmpl, err := template.New("choropleth").Parse(choroplethTemplate)
	if err != nil {
		return eris.Wrap(err, "report: parse map template")
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	err = tmpl.Execute(f, map[string]any{
		"Title":   "Mean Fare by Neighborhood",
		"Data":    template.JS(data), //nolint:gosec // JSON built from our own structs
		"MinFare": minFare,
		"MaxFare": maxFare,
	})
	return eris.Wrapf(err, "report: render %s", path)
}
