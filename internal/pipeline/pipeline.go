// Package pipeline orchestrates the fare analysis workflow: load, enrich,
// featurize, fit, report, export.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/chriskorol/nyctaxi/internal/config"
	"github.com/chriskorol/nyctaxi/internal/feature"
	"github.com/chriskorol/nyctaxi/internal/geo"
	"github.com/chriskorol/nyctaxi/internal/loader"
	"github.com/chriskorol/nyctaxi/internal/model"
	"github.com/chriskorol/nyctaxi/internal/regress"
	"github.com/chriskorol/nyctaxi/internal/report"
	"github.com/chriskorol/nyctaxi/internal/store"
)

// Pipeline wires the analysis stages together.
type Pipeline struct {
	cfg *config.Config
}

// New creates a Pipeline.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Result carries everything a full run produces.
type Result struct {
	Stats      loader.Stats
	Trips      []model.EnrichedTrip
	Boundaries []geo.Boundary
	Fares      []report.NeighborhoodFare

	Builder *feature.Builder
	Ridge   *model.ModelArtifact
	Lasso   *model.ModelArtifact
	RidgeCV *regress.CVResult
	LassoCV *regress.CVResult
	OLS     *regress.OLSSummary
	Scores  []model.Score
}

// stage runs one named step with timing and logging.
func stage(name string, fn func() error) error {
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("stage", name))
	start := time.Now()
	if err := fn(); err != nil {
		log.Error("stage failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return err
	}
	log.Info("stage complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Run executes the full workflow and writes all report artifacts.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.Enrich(ctx)
	if err != nil {
		return nil, err
	}

	if err := stage("fit", func() error {
		return p.FitModels(res)
	}); err != nil {
		return nil, err
	}

	if err := stage("report", func() error {
		return p.WriteReports(res)
	}); err != nil {
		return nil, err
	}

	return res, nil
}

// Enrich runs the data half of the workflow: load trips, derive the
// calendar, and join pickups to neighborhood polygons.
func (p *Pipeline) Enrich(ctx context.Context) (*Result, error) {
	res := &Result{}

	if err := stage("load", func() error {
		cal, err := p.calendar()
		if err != nil {
			return err
		}
		trips, stats, err := loader.LoadTrips(ctx, p.cfg.Data.TripGlobs, cal)
		if err != nil {
			return err
		}
		res.Stats = stats

		boundaries, err := geo.LoadBoundaries(p.cfg.Data.BoundaryPath, p.cfg.Data.BoundaryNameField)
		if err != nil {
			return err
		}
		res.Boundaries = boundaries
		res.Trips = geo.NewIndex(boundaries).Enrich(trips)
		return nil
	}); err != nil {
		return nil, err
	}

	res.Fares = report.AggregateByNeighborhood(res.Trips)
	return res, nil
}

func (p *Pipeline) calendar() (*loader.Calendar, error) {
	if p.cfg.Data.HolidayPath == "" {
		return loader.DefaultCalendar(), nil
	}
	return loader.LoadCalendar(p.cfg.Data.HolidayPath)
}

// FitModels trains ridge, lasso, and OLS on a train split. Ridge and lasso
// are scored on the held-out split; OLS yields the significance table. A
// model whose fit fails (for example a singular OLS system) is skipped with
// a warning; the run fails only when no model fits.
func (p *Pipeline) FitModels(res *Result) error {
	mc := p.cfg.Model
	log := zap.L().With(zap.String("component", "pipeline"))

	trainIdx, testIdx, err := feature.Split(len(res.Trips), mc.TestFraction, mc.Seed)
	if err != nil {
		return err
	}

	trainTrips := make([]model.EnrichedTrip, len(trainIdx))
	for i, r := range trainIdx {
		trainTrips[i] = res.Trips[r]
	}

	builder, err := feature.Fit(trainTrips)
	if err != nil {
		return err
	}
	res.Builder = builder

	x, y, err := builder.Transform(res.Trips)
	if err != nil {
		return err
	}
	trainX, trainY := feature.Subset(x, y, trainIdx)
	testX, testY := feature.Subset(x, y, testIdx)

	lambdas := regress.LambdaGrid(mc.LambdaMin, mc.LambdaMax, mc.LambdaCount)
	folds, err := regress.KFold(len(trainY), mc.Folds, mc.Seed)
	if err != nil {
		return err
	}

	columns := builder.Columns()

	fitPenalized := func(name string, fit regress.FitFunc) (*model.ModelArtifact, *regress.CVResult) {
		cv, err := regress.CrossValidate(trainX, trainY, lambdas, folds, fit)
		if err != nil {
			log.Warn("model skipped", zap.String("model", name), zap.Error(err))
			return nil, nil
		}
		m, err := fit(trainX, trainY, cv.BestLambda)
		if err != nil {
			log.Warn("model skipped", zap.String("model", name), zap.Error(err))
			return nil, nil
		}
		m.Name = name
		m.Columns = columns
		res.Scores = append(res.Scores, regress.Evaluate(m, testX, testY))
		return m, cv
	}

	res.Ridge, res.RidgeCV = fitPenalized("ridge", regress.FitRidge)
	res.Lasso, res.LassoCV = fitPenalized("lasso", func(fx *mat.Dense, fy []float64, lambda float64) (*model.ModelArtifact, error) {
		return regress.FitLasso(fx, fy, lambda, mc.LassoMaxIter, mc.LassoTol)
	})

	// OLS is reported through its significance table only; held-out scores
	// cover the penalized models.
	ols, err := regress.FitOLS(trainX, trainY, columns)
	if err != nil {
		log.Warn("model skipped", zap.String("model", "ols"), zap.Error(err))
	} else {
		res.OLS = ols
	}

	if res.Ridge == nil && res.Lasso == nil && res.OLS == nil {
		return eris.New("pipeline: every model failed to fit")
	}
	return nil
}

// WriteReports writes tables, charts, the map, and the summary into the
// output directory.
func (p *Pipeline) WriteReports(res *Result) error {
	dir := p.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create output dir %s", dir)
	}

	if err := report.WriteEnrichedCSV(filepath.Join(dir, "trips_enriched.csv"), res.Trips); err != nil {
		return err
	}
	if err := report.WriteNeighborhoodCSV(filepath.Join(dir, "neighborhood_fares.csv"), res.Fares); err != nil {
		return err
	}
	if len(res.Scores) > 0 {
		if err := report.WriteScoresCSV(filepath.Join(dir, "model_scores.csv"), res.Scores); err != nil {
			return err
		}
	}
	if res.OLS != nil {
		if err := report.WriteCoefficientsCSV(filepath.Join(dir, "ols_coefficients.csv"), res.OLS); err != nil {
			return err
		}
		if err := report.WriteCoefficientsXLSX(filepath.Join(dir, "ols_coefficients.xlsx"), res.OLS); err != nil {
			return err
		}
	}

	if err := report.HourlyChart(filepath.Join(dir, "trips_by_hour.png"), report.CountByHour(res.Trips)); err != nil {
		return err
	}
	if err := report.WeekdayChart(filepath.Join(dir, "trips_by_weekday.png"), report.CountByWeekday(res.Trips)); err != nil {
		return err
	}
	if err := report.FareHistogram(filepath.Join(dir, "fare_histogram.png"), res.Trips, 40); err != nil {
		return err
	}

	if err := report.WriteChoropleth(filepath.Join(dir, "fare_map.html"), res.Boundaries, res.Fares); err != nil {
		return err
	}

	summary := report.FormatSummary(res.Trips, res.Scores, res.OLS)
	if err := os.WriteFile(filepath.Join(dir, "summary.md"), []byte(summary), 0o644); err != nil {
		return eris.Wrap(err, "pipeline: write summary")
	}
	return nil
}

// Export pushes a trip sample, the fare aggregate, and model scores into the
// configured relational sink.
func (p *Pipeline) Export(ctx context.Context, res *Result) error {
	return p.ExportTo(ctx, nil, res)
}

// ExportTo is Export with an injectable store. A nil store opens one from
// config.
func (p *Pipeline) ExportTo(ctx context.Context, st store.Store, res *Result) error {
	return stage("export", func() error {
		if st == nil {
			opened, err := store.New(ctx, p.cfg.Export.Driver, p.cfg.Export.DSN)
			if err != nil {
				return err
			}
			defer opened.Close() //nolint:errcheck
			st = opened
		}

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sample := store.SampleTrips(res.Trips, p.cfg.Export.SampleSize)
		n, err := st.SaveTrips(ctx, sample)
		if err != nil {
			return err
		}
		if err := st.SaveNeighborhoodFares(ctx, res.Fares); err != nil {
			return err
		}
		if err := st.SaveScores(ctx, res.Scores); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("component", "pipeline"),
			zap.String("driver", p.cfg.Export.Driver),
			zap.Int("trips", n),
			zap.Int("neighborhoods", len(res.Fares)),
		)
		return nil
	})
}
