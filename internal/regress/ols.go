package regress

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/chriskorol/nyctaxi/internal/model"
)

// OLSSummary is the interpretability output of the unregularized fit:
// per-coefficient standard errors and two-sided p-values plus training R².
type OLSSummary struct {
	Artifact     model.ModelArtifact
	Coefficients []model.Coefficient
	R2           float64
	N            int
	DF           int
}

// FitOLS fits ordinary least squares with an intercept and computes the
// significance table. A singular design matrix fails this model only.
func FitOLS(x *mat.Dense, y []float64, columns []string) (*OLSSummary, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, eris.Errorf("regress: ols: %d rows vs %d targets", rows, len(y))
	}
	if len(columns) != cols {
		return nil, eris.Errorf("regress: ols: %d columns vs %d names", cols, len(columns))
	}
	df := rows - cols - 1
	if df < 1 {
		return nil, eris.Errorf("regress: ols: %d rows too few for %d predictors", rows, cols)
	}

	// Design matrix with a leading intercept column.
	x1 := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		x1.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			x1.Set(i, j+1, x.At(i, j))
		}
	}

	var xtx mat.Dense
	xtx.Mul(x1.T(), x1)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, eris.Wrap(err, "regress: ols: singular design matrix")
	}

	var xty mat.VecDense
	xty.MulVec(x1.T(), mat.NewVecDense(rows, y))

	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	coef := make([]float64, cols)
	for j := 0; j < cols; j++ {
		coef[j] = beta.AtVec(j + 1)
	}
	artifact := model.ModelArtifact{
		Name:      "ols",
		Intercept: beta.AtVec(0),
		Coef:      coef,
		Columns:   columns,
	}

	// Residual variance and coefficient covariance diag.
	yhat := Predict(&artifact, x)
	var rss float64
	for i := range y {
		d := y[i] - yhat[i]
		rss += d * d
	}
	sigma2 := rss / float64(df)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	coefficients := make([]model.Coefficient, 0, cols+1)
	for j := 0; j <= cols; j++ {
		se := math.Sqrt(sigma2 * inv.At(j, j))
		var tStat, pValue float64
		if se > 0 {
			tStat = beta.AtVec(j) / se
			pValue = 2 * (1 - tDist.CDF(math.Abs(tStat)))
		} else {
			pValue = math.NaN()
		}

		name := "intercept"
		if j > 0 {
			name = columns[j-1]
		}
		coefficients = append(coefficients, model.Coefficient{
			Column: name,
			Value:  beta.AtVec(j),
			StdErr: se,
			TStat:  tStat,
			PValue: pValue,
		})
	}

	return &OLSSummary{
		Artifact:     artifact,
		Coefficients: coefficients,
		R2:           R2(y, yhat),
		N:            rows,
		DF:           df,
	}, nil
}
