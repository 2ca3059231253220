// Package model defines the value types shared across the analysis pipeline.
package model

import "time"

// Season buckets a month into a meteorological season.
type Season string

// Meteorological seasons derived from the pickup month.
const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// SeasonOf returns the meteorological season for a month.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// Trip is one cleaned taxi trip. Immutable once produced by the loader.
// Invariants: Fare >= 0, Distance >= 0, PickupTime before DropoffTime.
type Trip struct {
	PickupTime  time.Time `json:"pickup_time"`
	DropoffTime time.Time `json:"dropoff_time"`
	PickupLat   float64   `json:"pickup_lat"`
	PickupLon   float64   `json:"pickup_lon"`
	Distance    float64   `json:"trip_distance"`
	Passengers  int       `json:"passenger_count"`
	Fare        float64   `json:"fare_amount"`
	Tip         float64   `json:"tip_amount"`
	Tolls       float64   `json:"tolls_amount"`
	Extras      float64   `json:"extra"`

	// Calendar fields derived from PickupTime.
	Hour      int          `json:"pickup_hour"`
	Day       int          `json:"day"`
	Month     int          `json:"month"`
	Year      int          `json:"year"`
	Weekday   time.Weekday `json:"weekday"`
	IsWeekend bool         `json:"is_weekend"`
	Season    Season       `json:"season"`
	IsHoliday bool         `json:"is_holiday"`
}

// DeriveCalendar fills the calendar fields from PickupTime. The holiday flag
// is resolved against the supplied predicate so the loader can swap calendars.
func (t *Trip) DeriveCalendar(isHoliday func(time.Time) bool) {
	pt := t.PickupTime
	t.Hour = pt.Hour()
	t.Day = pt.Day()
	t.Month = int(pt.Month())
	t.Year = pt.Year()
	t.Weekday = pt.Weekday()
	t.IsWeekend = pt.Weekday() == time.Saturday || pt.Weekday() == time.Sunday
	t.Season = SeasonOf(pt.Month())
	if isHoliday != nil {
		t.IsHoliday = isHoliday(pt)
	}
}

// EnrichedTrip is a trip with its spatial-join result attached. Matched is
// false and Neighborhood empty when no polygon contains the pickup point.
type EnrichedTrip struct {
	Trip
	Neighborhood string `json:"neighborhood"`
	Matched      bool   `json:"matched"`
}
