package feature

import (
	"math/rand"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// numericColumns lists the standardized predictors, in matrix order.
var numericColumns = []string{
	"trip_distance",
	"passenger_count",
	"tip_amount",
	"tolls_amount",
	"extra",
	"pickup_hour",
	"month",
	"is_weekend",
	"is_holiday",
}

// Builder turns enriched trips into a design matrix: standardized numerics
// followed by one-hot neighborhood indicators. Fit on the training split
// only; Transform produces identical column ordering for any split.
type Builder struct {
	Scaler  *Scaler
	Encoder *OneHot
}

// Fit learns the scaler statistics and neighborhood vocabulary from the
// training trips.
func Fit(trips []model.EnrichedTrip) (*Builder, error) {
	if len(trips) == 0 {
		return nil, eris.New("feature: fit on empty trip set")
	}

	scaler, err := FitScaler(numericMatrix(trips))
	if err != nil {
		return nil, err
	}

	names := make([]string, len(trips))
	for i, t := range trips {
		names[i] = t.Neighborhood
	}
	encoder, err := FitOneHot(names)
	if err != nil {
		return nil, err
	}

	return &Builder{Scaler: scaler, Encoder: encoder}, nil
}

// Transform builds the design matrix and fare target for any trip set using
// the fitted parameters. Unseen neighborhoods map to the all-zero block.
func (b *Builder) Transform(trips []model.EnrichedTrip) (*mat.Dense, []float64, error) {
	if len(trips) == 0 {
		return nil, nil, eris.New("feature: transform on empty trip set")
	}

	scaled, err := b.Scaler.Transform(numericMatrix(trips))
	if err != nil {
		return nil, nil, err
	}

	nNum := len(numericColumns)
	width := nNum + b.Encoder.Width()
	x := mat.NewDense(len(trips), width, nil)
	y := make([]float64, len(trips))

	for i, t := range trips {
		for j := 0; j < nNum; j++ {
			x.Set(i, j, scaled.At(i, j))
		}
		for j, v := range b.Encoder.Encode(t.Neighborhood) {
			x.Set(i, nNum+j, v)
		}
		y[i] = t.Fare
	}
	return x, y, nil
}

// Columns returns the design-matrix column names in order.
func (b *Builder) Columns() []string {
	cols := make([]string, 0, len(numericColumns)+b.Encoder.Width())
	cols = append(cols, numericColumns...)
	for _, c := range b.Encoder.Categories {
		cols = append(cols, "nta_"+c)
	}
	return cols
}

// numericMatrix extracts the raw numeric predictors, row per trip.
func numericMatrix(trips []model.EnrichedTrip) *mat.Dense {
	x := mat.NewDense(len(trips), len(numericColumns), nil)
	for i, t := range trips {
		x.Set(i, 0, t.Distance)
		x.Set(i, 1, float64(t.Passengers))
		x.Set(i, 2, t.Tip)
		x.Set(i, 3, t.Tolls)
		x.Set(i, 4, t.Extras)
		x.Set(i, 5, float64(t.Hour))
		x.Set(i, 6, float64(t.Month))
		x.Set(i, 7, boolToFloat(t.IsWeekend))
		x.Set(i, 8, boolToFloat(t.IsHoliday))
	}
	return x
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Split partitions row indices into train and test sets with a seeded
// shuffle, so a fixed seed reproduces the same split.
func Split(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, eris.Errorf("feature: cannot split %d rows", n)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, eris.Errorf("feature: test fraction %v out of (0,1)", testFraction)
	}

	nTest := int(float64(n) * testFraction)
	if nTest == 0 {
		nTest = 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = append(test, perm[:nTest]...)
	train = append(train, perm[nTest:]...)
	return train, test, nil
}

// Subset selects the given rows of a design matrix and target vector.
func Subset(x *mat.Dense, y []float64, rows []int) (*mat.Dense, []float64) {
	_, cols := x.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	target := make([]float64, len(rows))
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			out.Set(i, j, x.At(r, j))
		}
		target[i] = y[r]
	}
	return out, target
}
