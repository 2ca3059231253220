// Package report aggregates pipeline outputs and exports tables, charts,
// and the interactive neighborhood map.
package report

import (
	"sort"
	"time"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// NeighborhoodFare is the per-neighborhood fare aggregate used by the
// choropleth and the merged table.
type NeighborhoodFare struct {
	Name     string  `json:"name"`
	MeanFare float64 `json:"mean_fare"`
	Trips    int     `json:"trips"`
}

// AggregateByNeighborhood computes mean fare and trip count per matched
// neighborhood, sorted by name. Unmatched trips are excluded here but remain
// in the trip-level output.
func AggregateByNeighborhood(trips []model.EnrichedTrip) []NeighborhoodFare {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range trips {
		if !t.Matched {
			continue
		}
		sums[t.Neighborhood] += t.Fare
		counts[t.Neighborhood]++
	}

	out := make([]NeighborhoodFare, 0, len(sums))
	for name, sum := range sums {
		out = append(out, NeighborhoodFare{
			Name:     name,
			MeanFare: sum / float64(counts[name]),
			Trips:    counts[name],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CountByHour returns trip counts per pickup hour, indexed 0-23.
func CountByHour(trips []model.EnrichedTrip) [24]int {
	var counts [24]int
	for _, t := range trips {
		if t.Hour >= 0 && t.Hour < 24 {
			counts[t.Hour]++
		}
	}
	return counts
}

// CountByWeekday returns trip counts per weekday, indexed Sunday..Saturday.
func CountByWeekday(trips []model.EnrichedTrip) [7]int {
	var counts [7]int
	for _, t := range trips {
		counts[int(t.Weekday)]++
	}
	return counts
}

// CountBySeason returns trip counts per season in calendar order.
func CountBySeason(trips []model.EnrichedTrip) map[model.Season]int {
	counts := make(map[model.Season]int, 4)
	for _, t := range trips {
		counts[t.Season]++
	}
	return counts
}

// weekdayLabels returns Sunday..Saturday short labels for charts.
func weekdayLabels() []string {
	labels := make([]string, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		labels[int(d)] = d.String()[:3]
	}
	return labels
}
