package report

import (
	"fmt"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// HourlyChart renders the trips-per-pickup-hour bar chart.
func HourlyChart(path string, counts [24]int) error {
	p := plot.New()
	p.Title.Text = "Trips by Pickup Hour"
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Trips"

	values := make(plotter.Values, 24)
	labels := make([]string, 24)
	for h := 0; h < 24; h++ {
		values[h] = float64(counts[h])
		labels[h] = fmt.Sprintf("%02d", h)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(10))
	if err != nil {
		return eris.Wrap(err, "report: hourly bar chart")
	}
	p.Add(bars)
	p.NominalX(labels...)

	return eris.Wrapf(p.Save(10*vg.Inch, 4*vg.Inch, path), "report: save %s", path)
}

// WeekdayChart renders the trips-per-weekday bar chart, Sunday first.
func WeekdayChart(path string, counts [7]int) error {
	p := plot.New()
	p.Title.Text = "Trips by Weekday"
	p.Y.Label.Text = "Trips"

	values := make(plotter.Values, 7)
	for d := 0; d < 7; d++ {
		values[d] = float64(counts[d])
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return eris.Wrap(err, "report: weekday bar chart")
	}
	p.Add(bars)
	p.NominalX(weekdayLabels()...)

	return eris.Wrapf(p.Save(8*vg.Inch, 4*vg.Inch, path), "report: save %s", path)
}

// FareHistogram renders the fare-amount distribution.
func FareHistogram(path string, trips []model.EnrichedTrip, bins int) error {
	if len(trips) == 0 {
		return eris.New("report: histogram of empty trip set")
	}
	if bins <= 0 {
		bins = 40
	}

	p := plot.New()
	p.Title.Text = "Fare Distribution"
	p.X.Label.Text = "Fare ($)"
	p.Y.Label.Text = "Trips"

	values := make(plotter.Values, len(trips))
	for i, t := range trips {
		values[i] = t.Fare
	}

	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return eris.Wrap(err, "report: fare histogram")
	}
	p.Add(hist)

	return eris.Wrapf(p.Save(8*vg.Inch, 4*vg.Inch, path), "report: save %s", path)
}
