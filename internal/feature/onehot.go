package feature

import (
	"sort"

	"github.com/rotisserie/eris"
)

// OneHot encodes a categorical column as indicator vectors over a fixed
// vocabulary. Column order is stable (sorted) so train and inference
// matrices line up. Unseen or empty categories encode to the all-zero row.
type OneHot struct {
	Categories []string
	index      map[string]int
}

// FitOneHot builds the vocabulary from observed values. Empty strings (the
// unmatched-neighborhood marker) are excluded from the vocabulary.
func FitOneHot(values []string) (*OneHot, error) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			seen[v] = true
		}
	}
	if len(seen) == 0 {
		return nil, eris.New("feature: one-hot fit saw no categories")
	}

	cats := make([]string, 0, len(seen))
	for v := range seen {
		cats = append(cats, v)
	}
	sort.Strings(cats)

	index := make(map[string]int, len(cats))
	for i, c := range cats {
		index[c] = i
	}
	return &OneHot{Categories: cats, index: index}, nil
}

// Encode returns the indicator vector for one value. Encoding the same value
// twice with the same fitted vocabulary yields identical vectors.
func (o *OneHot) Encode(value string) []float64 {
	row := make([]float64, len(o.Categories))
	if i, ok := o.index[value]; ok {
		row[i] = 1
	}
	return row
}

// Width returns the number of indicator columns.
func (o *OneHot) Width() int { return len(o.Categories) }
