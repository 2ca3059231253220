package report

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/chriskorol/nyctaxi/internal/model"
	"github.com/chriskorol/nyctaxi/internal/regress"
)

// FormatSummary renders the human-readable run summary printed at the end of
// a pipeline run.
func FormatSummary(trips []model.EnrichedTrip, scores []model.Score, ols *regress.OLSSummary) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("# NYC Taxi Fare Analysis\n\n")

	var matched int
	for _, t := range trips {
		if t.Matched {
			matched++
		}
	}
	b.WriteString("## Trips\n")
	p.Fprintf(&b, "- Total: %d\n", len(trips))
	p.Fprintf(&b, "- Matched to a neighborhood: %d\n", matched)
	p.Fprintf(&b, "- Unmatched: %d\n\n", len(trips)-matched)

	seasons := CountBySeason(trips)
	b.WriteString("## Trips by season\n")
	for _, s := range []model.Season{model.SeasonWinter, model.SeasonSpring, model.SeasonSummer, model.SeasonFall} {
		p.Fprintf(&b, "- %s: %d\n", string(s), seasons[s])
	}
	b.WriteString("\n")

	if len(scores) > 0 {
		b.WriteString("## Held-out scores\n")
		for _, s := range scores {
			if s.Lambda > 0 {
				fmt.Fprintf(&b, "- %s: R²=%.4f RMSE=%.3f (lambda=%.4g)\n", s.Model, s.R2, s.RMSE, s.Lambda)
			} else {
				fmt.Fprintf(&b, "- %s: R²=%.4f RMSE=%.3f\n", s.Model, s.R2, s.RMSE)
			}
		}
		b.WriteString("\n")
	}

	if ols != nil {
		b.WriteString("## OLS significance (top coefficients)\n")
		coefs := make([]model.Coefficient, len(ols.Coefficients))
		copy(coefs, ols.Coefficients)
		sort.Slice(coefs, func(i, j int) bool { return coefs[i].PValue < coefs[j].PValue })

		limit := 10
		if len(coefs) < limit {
			limit = len(coefs)
		}
		for _, c := range coefs[:limit] {
			fmt.Fprintf(&b, "- %s: %.4f (se=%.4f, p=%.4g)\n", c.Column, c.Value, c.StdErr, c.PValue)
		}
		fmt.Fprintf(&b, "\nTraining R²: %.4f on %s observations\n", ols.R2, p.Sprintf("%d", ols.N))
	}

	return b.String()
}
