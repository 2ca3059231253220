// Package regress fits ridge, lasso, and OLS fare models over the design
// matrix, with cross-validated regularization selection.
package regress

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// Predict applies a fitted artifact to a design matrix.
func Predict(m *model.ModelArtifact, x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := m.Intercept
		for j := 0; j < cols && j < len(m.Coef); j++ {
			v += m.Coef[j] * x.At(i, j)
		}
		out[i] = v
	}
	return out
}

// RMSE returns the root mean squared error of predictions against targets.
func RMSE(y, yhat []float64) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	var ss float64
	for i := range y {
		d := y[i] - yhat[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(y)))
}

// R2 returns the coefficient of determination, 1 - SSres/SStot.
func R2(y, yhat []float64) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	mean := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i := range y {
		d := y[i] - yhat[i]
		ssRes += d * d
		m := y[i] - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// Evaluate scores a fitted model on a held-out split.
func Evaluate(m *model.ModelArtifact, x *mat.Dense, y []float64) model.Score {
	yhat := Predict(m, x)
	return model.Score{
		Model:  m.Name,
		R2:     R2(y, yhat),
		RMSE:   RMSE(y, yhat),
		Lambda: m.Lambda,
	}
}
