package regress

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// centerData returns column-centered copies of x and y along with the means,
// so the intercept can stay unpenalized in the regularized fits.
func centerData(x *mat.Dense, y []float64) (xc *mat.Dense, yc []float64, xMean []float64, yMean float64) {
	rows, cols := x.Dims()

	xMean = make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		xMean[j] = stat.Mean(col, nil)
	}
	yMean = stat.Mean(y, nil)

	xc = mat.NewDense(rows, cols, nil)
	yc = make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			xc.Set(i, j, x.At(i, j)-xMean[j])
		}
		yc[i] = y[i] - yMean
	}
	return xc, yc, xMean, yMean
}

func intercept(coef, xMean []float64, yMean float64) float64 {
	b0 := yMean
	for j := range coef {
		b0 -= coef[j] * xMean[j]
	}
	return b0
}

// FitRidge solves the L2-penalized least squares problem in closed form:
// (XᵀX + λI)β = Xᵀy on centered data, intercept unpenalized.
func FitRidge(x *mat.Dense, y []float64, lambda float64) (*model.ModelArtifact, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, eris.Errorf("regress: ridge: %d rows vs %d targets", rows, len(y))
	}
	if lambda < 0 {
		return nil, eris.Errorf("regress: ridge: negative lambda %v", lambda)
	}

	xc, yc, xMean, yMean := centerData(x, y)

	var xtx mat.Dense
	xtx.Mul(xc.T(), xc)
	for j := 0; j < cols; j++ {
		xtx.Set(j, j, xtx.At(j, j)+lambda)
	}

	var xty mat.VecDense
	xty.MulVec(xc.T(), mat.NewVecDense(rows, yc))

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, eris.Wrap(err, "regress: ridge: singular system")
	}

	coef := make([]float64, cols)
	copy(coef, beta.RawVector().Data)

	return &model.ModelArtifact{
		Name:      "ridge",
		Intercept: intercept(coef, xMean, yMean),
		Coef:      coef,
		Lambda:    lambda,
	}, nil
}
