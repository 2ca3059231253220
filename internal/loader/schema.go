package loader

import "strings"

// columnAliases maps each logical column to the header names it may carry in
// the published trip files. The 2015 files use tpep_-prefixed timestamps,
// older extracts use bare pickup_datetime.
var columnAliases = map[string][]string{
	"pickup_time":     {"tpep_pickup_datetime", "pickup_datetime", "lpep_pickup_datetime"},
	"dropoff_time":    {"tpep_dropoff_datetime", "dropoff_datetime", "lpep_dropoff_datetime"},
	"pickup_lat":      {"pickup_latitude", "start_lat"},
	"pickup_lon":      {"pickup_longitude", "start_lon"},
	"trip_distance":   {"trip_distance"},
	"passenger_count": {"passenger_count"},
	"fare_amount":     {"fare_amount"},
	"tip_amount":      {"tip_amount"},
	"tolls_amount":    {"tolls_amount"},
	"extra":           {"extra", "surcharge"},
}

// schema maps logical column names to indices in a concrete file's rows.
type schema map[string]int

// resolveSchema matches a header row against the known column aliases.
// Missing optional columns (tip, tolls, extra) resolve to -1; missing
// required columns produce an incomplete schema detected by valid().
func resolveSchema(header []string) schema {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(h))] = i
	}

	s := make(schema, len(columnAliases))
	for logical, aliases := range columnAliases {
		s[logical] = -1
		for _, alias := range aliases {
			if idx, ok := byName[alias]; ok {
				s[logical] = idx
				break
			}
		}
	}
	return s
}

// required lists the columns a file must carry to be loadable at all.
var required = []string{
	"pickup_time", "dropoff_time", "pickup_lat", "pickup_lon",
	"trip_distance", "fare_amount",
}

func (s schema) valid() bool {
	for _, col := range required {
		if s[col] < 0 {
			return false
		}
	}
	return true
}

// field returns the raw value for a logical column, or "" when the column is
// absent from the file or the row is short.
func (s schema) field(row []string, logical string) string {
	idx, ok := s[logical]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
