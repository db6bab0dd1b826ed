// Package stats computes token statistics over a listing corpus.
package stats

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/parallel"
	"github.com/listinglens/backend/internal/shingle"
)

// TokenProbabilities counts every token occurrence across all listing titles
// and divides by the number of listings. A token repeated inside one title is
// counted each time, so values above 1 are possible.
func TokenProbabilities(ctx context.Context, listings []domain.Listing) (map[string]float64, error) {
	counts, err := parallel.MapReduce(ctx, listings,
		func() map[string]int { return make(map[string]int) },
		func(acc map[string]int, l domain.Listing) map[string]int {
			for _, tok := range shingle.Tokenize(l.Title) {
				acc[tok]++
			}
			return acc
		},
		parallel.SumMerge[string, int],
	)
	if err != nil {
		return nil, err
	}

	probs := make(map[string]float64, len(counts))
	n := float64(len(listings))
	for tok, c := range counts {
		probs[tok] = float64(c) / n
	}
	return probs, nil
}

// CommonTokens returns the tokens whose probability is strictly above the
// given percentile of all probabilities.
func CommonTokens(probabilities map[string]float64, percentile float64) map[string]struct{} {
	common := make(map[string]struct{})
	if len(probabilities) == 0 {
		return common
	}

	values := make([]float64, 0, len(probabilities))
	for _, p := range probabilities {
		values = append(values, p)
	}
	cutoff := Percentile(values, percentile)

	for tok, p := range probabilities {
		if p > cutoff {
			common[tok] = struct{}{}
		}
	}
	return common
}

// Percentile sorts a copy of values and interpolates linearly at position (n-1)*p.
// It returns 0 for no values.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo >= hi {
		return sorted[min(lo, len(sorted)-1)]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// NearestRank returns sorted[floor(n*p)], clamped to the last element.
// sorted must be non-empty and ascending.
func NearestRank[T any](sorted []T, p float64) T {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// Entropy returns the base-2 entropy of counts relative to total.
// Counts greater than total are ignored.
func Entropy(counts []int, total int) float64 {
	if total <= 0 {
		return 0
	}
	ps := make([]float64, 0, len(counts))
	for _, c := range counts {
		if c > total || c <= 0 {
			continue
		}
		ps = append(ps, float64(c)/float64(total))
	}
	return stat.Entropy(ps) / math.Ln2
}
