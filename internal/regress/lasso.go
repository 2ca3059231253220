package regress

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// FitLasso minimizes (1/2n)||y - Xβ||² + λ||β||₁ by cyclic coordinate
// descent with soft thresholding, on centered data with an unpenalized
// intercept. The L1 penalty drives small coefficients to exactly zero.
func FitLasso(x *mat.Dense, y []float64, lambda float64, maxIter int, tol float64) (*model.ModelArtifact, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, eris.Errorf("regress: lasso: %d rows vs %d targets", rows, len(y))
	}
	if lambda < 0 {
		return nil, eris.Errorf("regress: lasso: negative lambda %v", lambda)
	}
	if maxIter <= 0 {
		maxIter = 1000
	}
	if tol <= 0 {
		tol = 1e-6
	}

	xc, yc, xMean, yMean := centerData(x, y)
	n := float64(rows)

	// Per-column squared norms; degenerate (constant) columns keep a zero
	// coefficient instead of dividing by zero.
	norms := make([]float64, cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			v := xc.At(i, j)
			norms[j] += v * v
		}
	}

	coef := make([]float64, cols)
	resid := make([]float64, rows)
	copy(resid, yc)

	for iter := 0; iter < maxIter; iter++ {
		var maxDelta float64
		for j := 0; j < cols; j++ {
			if norms[j] == 0 {
				continue
			}

			// Partial residual correlation with column j.
			var rho float64
			for i := 0; i < rows; i++ {
				rho += xc.At(i, j) * (resid[i] + xc.At(i, j)*coef[j])
			}

			updated := softThreshold(rho/n, lambda) / (norms[j] / n)
			if delta := updated - coef[j]; delta != 0 {
				for i := 0; i < rows; i++ {
					resid[i] -= xc.At(i, j) * delta
				}
				if ad := math.Abs(delta); ad > maxDelta {
					maxDelta = ad
				}
				coef[j] = updated
			}
		}
		if maxDelta < tol {
			break
		}
	}

	return &model.ModelArtifact{
		Name:      "lasso",
		Intercept: intercept(coef, xMean, yMean),
		Coef:      coef,
		Lambda:    lambda,
	}, nil
}

func softThreshold(v, gamma float64) float64 {
	switch {
	case v > gamma:
		return v - gamma
	case v < -gamma:
		return v + gamma
	default:
		return 0
	}
}
