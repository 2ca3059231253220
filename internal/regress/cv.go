package regress

import (
	"math"
	"math/rand"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/chriskorol/nyctaxi/internal/feature"
	"github.com/chriskorol/nyctaxi/internal/model"
)

// FitFunc fits one candidate model at a given penalty strength.
type FitFunc func(x *mat.Dense, y []float64, lambda float64) (*model.ModelArtifact, error)

// LambdaGrid returns count log-spaced penalty strengths in [min, max].
func LambdaGrid(min, max float64, count int) []float64 {
	if count < 2 || min <= 0 || max <= min {
		return []float64{min}
	}
	grid := make([]float64, count)
	logMin, logMax := math.Log10(min), math.Log10(max)
	step := (logMax - logMin) / float64(count-1)
	for i := range grid {
		grid[i] = math.Pow(10, logMin+float64(i)*step)
	}
	return grid
}

// KFold partitions row indices into k shuffled folds. A fixed seed yields a
// fixed fold assignment.
func KFold(n, k int, seed int64) ([][]int, error) {
	if k < 2 || k > n {
		return nil, eris.Errorf("regress: cannot make %d folds from %d rows", k, n)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds, nil
}

// CVResult records the cross-validation sweep over the lambda grid.
type CVResult struct {
	Lambdas    []float64
	MeanRMSE   []float64
	BestLambda float64
	BestRMSE   float64
}

// CrossValidate scores every candidate lambda by k-fold cross-validated
// RMSE and returns the sweep with the minimizer. A candidate whose fit fails
// on any fold scores +Inf rather than aborting the sweep.
func CrossValidate(x *mat.Dense, y []float64, lambdas []float64, folds [][]int, fit FitFunc) (*CVResult, error) {
	if len(lambdas) == 0 {
		return nil, eris.New("regress: empty lambda grid")
	}
	if len(folds) < 2 {
		return nil, eris.New("regress: need at least 2 folds")
	}

	log := zap.L().With(zap.String("component", "regress.cv"))

	res := &CVResult{
		Lambdas:  lambdas,
		MeanRMSE: make([]float64, len(lambdas)),
		BestRMSE: math.Inf(1),
	}

	for li, lambda := range lambdas {
		var total float64
		failed := false

		for fi, holdout := range folds {
			var trainIdx []int
			for fj, f := range folds {
				if fj != fi {
					trainIdx = append(trainIdx, f...)
				}
			}

			trainX, trainY := feature.Subset(x, y, trainIdx)
			testX, testY := feature.Subset(x, y, holdout)

			m, err := fit(trainX, trainY, lambda)
			if err != nil {
				log.Warn("cv fold fit failed",
					zap.Float64("lambda", lambda),
					zap.Int("fold", fi),
					zap.Error(err),
				)
				failed = true
				break
			}
			total += RMSE(testY, Predict(m, testX))
		}

		if failed {
			res.MeanRMSE[li] = math.Inf(1)
			continue
		}

		mean := total / float64(len(folds))
		res.MeanRMSE[li] = mean
		if mean < res.BestRMSE {
			res.BestRMSE = mean
			res.BestLambda = lambda
		}
	}

	if math.IsInf(res.BestRMSE, 1) {
		return nil, eris.New("regress: every lambda candidate failed cross-validation")
	}

	log.Info("cross-validation complete",
		zap.Float64("best_lambda", res.BestLambda),
		zap.Float64("best_rmse", res.BestRMSE),
	)
	return res, nil
}
