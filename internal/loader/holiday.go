package loader

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Calendar flags dates as recognized holidays. Lookup is by calendar date in
// the trip's own location; time of day is ignored.
type Calendar struct {
	dates map[string]string // "2006-01-02" -> holiday name
}

// IsHoliday reports whether the date of ts is a recognized holiday.
func (c *Calendar) IsHoliday(ts time.Time) bool {
	if c == nil || c.dates == nil {
		return false
	}
	_, ok := c.dates[ts.Format("2006-01-02")]
	return ok
}

// Name returns the holiday name for a date, or "".
func (c *Calendar) Name(ts time.Time) string {
	if c == nil || c.dates == nil {
		return ""
	}
	return c.dates[ts.Format("2006-01-02")]
}

// Len returns the number of dates in the calendar.
func (c *Calendar) Len() int { return len(c.dates) }

// DefaultCalendar covers US federal holidays for 2015 and 2016, the years
// spanned by the published trip files.
func DefaultCalendar() *Calendar {
	return &Calendar{dates: map[string]string{
		"2015-01-01": "New Year's Day",
		"2015-01-19": "Martin Luther King Jr. Day",
		"2015-02-16": "Washington's Birthday",
		"2015-05-25": "Memorial Day",
		"2015-07-03": "Independence Day (observed)",
		"2015-07-04": "Independence Day",
		"2015-09-07": "Labor Day",
		"2015-10-12": "Columbus Day",
		"2015-11-11": "Veterans Day",
		"2015-11-26": "Thanksgiving Day",
		"2015-12-25": "Christmas Day",
		"2016-01-01": "New Year's Day",
		"2016-01-18": "Martin Luther King Jr. Day",
		"2016-02-15": "Washington's Birthday",
		"2016-05-30": "Memorial Day",
		"2016-07-04": "Independence Day",
		"2016-09-05": "Labor Day",
		"2016-10-10": "Columbus Day",
		"2016-11-11": "Veterans Day",
		"2016-11-24": "Thanksgiving Day",
		"2016-12-25": "Christmas Day",
		"2016-12-26": "Christmas Day (observed)",
	}}
}

// holidayEntry is one row of a holiday calendar file.
type holidayEntry struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// LoadCalendar reads a YAML holiday file: a list of {date: YYYY-MM-DD, name}.
func LoadCalendar(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read holiday file %s", path)
	}

	var entries []holidayEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "loader: parse holiday file %s", path)
	}

	dates := make(map[string]string, len(entries))
	for _, e := range entries {
		if _, err := time.Parse("2006-01-02", e.Date); err != nil {
			return nil, eris.Wrapf(err, "loader: holiday date %q", e.Date)
		}
		dates[e.Date] = e.Name
	}
	return &Calendar{dates: dates}, nil
}
