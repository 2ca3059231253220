// Package feature assembles the numeric design matrix consumed by the
// regression engine: standardized numerics plus one-hot neighborhoods.
package feature

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes columns to zero mean and unit variance. Fit once on the
// training split, applied unchanged everywhere else.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column mean and standard deviation. Columns with
// zero variance get Std 1 so Transform is a no-op shift for them.
func FitScaler(x *mat.Dense) (*Scaler, error) {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, eris.New("feature: fit scaler on empty matrix")
	}

	s := &Scaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		s.Mean[j] = stat.Mean(col, nil)
		sd := stat.StdDev(col, nil)
		if sd == 0 || rows < 2 {
			sd = 1
		}
		s.Std[j] = sd
	}
	return s, nil
}

// Transform returns a standardized copy of x using the fitted parameters.
func (s *Scaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return nil, eris.Errorf("feature: transform expects %d columns, got %d", len(s.Mean), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, (x.At(i, j)-s.Mean[j])/s.Std[j])
		}
	}
	return out, nil
}

// InverseTransform maps standardized values back to the original scale.
func (s *Scaler) InverseTransform(x *mat.Dense) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return nil, eris.Errorf("feature: inverse transform expects %d columns, got %d", len(s.Mean), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, x.At(i, j)*s.Std[j]+s.Mean[j])
		}
	}
	return out, nil
}
