package report

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/chriskorol/nyctaxi/internal/model"
	"github.com/chriskorol/nyctaxi/internal/regress"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteEnrichedCSV writes the merged trip-with-neighborhood table. Unmatched
// trips keep an empty neighborhood column.
func WriteEnrichedCSV(path string, trips []model.EnrichedTrip) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	header := []string{
		"pickup_time", "dropoff_time", "pickup_lat", "pickup_lon",
		"trip_distance", "passenger_count", "fare_amount", "tip_amount",
		"tolls_amount", "extra", "pickup_hour", "weekday", "is_weekend",
		"season", "is_holiday", "neighborhood", "matched",
	}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "report: write header")
	}

	for _, t := range trips {
		row := []string{
			t.PickupTime.Format(timeLayout),
			t.DropoffTime.Format(timeLayout),
			formatFloat(t.PickupLat),
			formatFloat(t.PickupLon),
			formatFloat(t.Distance),
			strconv.Itoa(t.Passengers),
			formatFloat(t.Fare),
			formatFloat(t.Tip),
			formatFloat(t.Tolls),
			formatFloat(t.Extras),
			strconv.Itoa(t.Hour),
			t.Weekday.String(),
			strconv.FormatBool(t.IsWeekend),
			string(t.Season),
			strconv.FormatBool(t.IsHoliday),
			t.Neighborhood,
			strconv.FormatBool(t.Matched),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write trip row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "report: flush enriched trips")
}

// WriteNeighborhoodCSV writes the per-neighborhood fare aggregate.
func WriteNeighborhoodCSV(path string, fares []NeighborhoodFare) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"neighborhood", "mean_fare", "trips"}); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, nf := range fares {
		row := []string{nf.Name, formatFloat(nf.MeanFare), strconv.Itoa(nf.Trips)}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write aggregate row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "report: flush neighborhood aggregate")
}

// WriteCoefficientsCSV writes the OLS coefficient-and-significance table.
func WriteCoefficientsCSV(path string, sum *regress.OLSSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"column", "coefficient", "std_err", "t_stat", "p_value"}); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, c := range sum.Coefficients {
		row := []string{
			c.Column,
			formatFloat(c.Value),
			formatFloat(c.StdErr),
			formatFloat(c.TStat),
			formatFloat(c.PValue),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write coefficient row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "report: flush coefficients")
}

// WriteCoefficientsXLSX writes the same significance table as a workbook for
// spreadsheet consumers.
func WriteCoefficientsXLSX(path string, sum *regress.OLSSummary) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("ols_coefficients")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"column", "coefficient", "std_err", "t_stat", "p_value"} {
		header.AddCell().SetString(h)
	}
	for _, c := range sum.Coefficients {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Column)
		row.AddCell().SetFloat(c.Value)
		row.AddCell().SetFloat(c.StdErr)
		row.AddCell().SetFloat(c.TStat)
		row.AddCell().SetFloat(c.PValue)
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

// WriteScoresCSV writes held-out metrics per model.
func WriteScoresCSV(path string, scores []model.Score) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"model", "r2", "rmse", "lambda"}); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, s := range scores {
		row := []string{s.Model, formatFloat(s.R2), formatFloat(s.RMSE), formatFloat(s.Lambda)}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write score row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "report: flush scores")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
