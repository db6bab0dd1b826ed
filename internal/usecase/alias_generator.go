package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/parallel"
	"github.com/listinglens/backend/internal/shingle"
	"github.com/listinglens/backend/internal/stats"
)

// Alias generator defaults
const (
	DefaultManufacturerNameCutoff  = 33 // low enough to pair "fuji" with "fujifilm"
	DefaultPossibleAliasPercentile = 0.50
	DefaultCommonWordPercentile    = 0.90
)

const epsilon = 1e-9

// AliasConfig holds the alias generator thresholds
type AliasConfig struct {
	ManufacturerNameCutoff  int
	PossibleAliasPercentile float64
	CommonWordPercentile    float64
}

// AliasGenerator discovers listing manufacturer spellings that stand for a
// catalog manufacturer, using name similarity and model co-occurrence.
type AliasGenerator struct {
	config AliasConfig
}

// NewAliasGenerator creates an alias generator with the given thresholds
func NewAliasGenerator(config AliasConfig) *AliasGenerator {
	return &AliasGenerator{config: config}
}

type aliasProduct struct {
	manufacturer string
	nameGrams    []string
	modelGrams   []string
}

// Generate returns the surviving aliases sorted by alias then canonical name.
func (g *AliasGenerator) Generate(
	ctx context.Context,
	products []domain.Product,
	listings []domain.Listing,
	probabilities map[string]float64,
) ([]domain.ManufacturerAlias, error) {
	candidates := g.prepare(products, probabilities)

	sums, err := parallel.MapReduce(ctx, listings,
		func() map[domain.ManufacturerAlias]float64 { return make(map[domain.ManufacturerAlias]float64) },
		func(acc map[domain.ManufacturerAlias]float64, l domain.Listing) map[domain.ManufacturerAlias]float64 {
			if best, score, ok := g.bestCandidate(candidates, l, probabilities); ok {
				acc[best] += score
			}
			return acc
		},
		parallel.SumMerge[domain.ManufacturerAlias, float64],
	)
	if err != nil {
		return nil, err
	}

	return selectAliases(sums, g.config.PossibleAliasPercentile), nil
}

func (g *AliasGenerator) prepare(products []domain.Product, probabilities map[string]float64) []aliasProduct {
	common := stats.CommonTokens(probabilities, g.config.CommonWordPercentile)
	nameGrams := make(map[string][]string)

	candidates := make([]aliasProduct, 0, len(products))
	for _, p := range products {
		grams, ok := nameGrams[p.Manufacturer]
		if !ok {
			grams = shingle.CharNGrams(p.Manufacturer, 2, 4)
			nameGrams[p.Manufacturer] = grams
		}

		var model []string
		for _, s := range shingle.WordShingles(shingle.Tokenize(p.Model), 1, 2) {
			// a model made only of common words ("zoom") says nothing
			if _, isCommon := common[s]; !isCommon {
				model = append(model, s)
			}
		}

		candidates = append(candidates, aliasProduct{
			manufacturer: p.Manufacturer,
			nameGrams:    grams,
			modelGrams:   model,
		})
	}
	return candidates
}

// bestCandidate scans products in order and keeps the lowest positive model score.
func (g *AliasGenerator) bestCandidate(
	candidates []aliasProduct,
	l domain.Listing,
	probabilities map[string]float64,
) (domain.ManufacturerAlias, float64, bool) {
	var (
		best      domain.ManufacturerAlias
		bestScore float64
		found     bool
	)
	if l.Manufacturer == "" {
		return best, 0, false
	}

	titleTokens := shingle.Set(shingle.Tokenize(l.Title))
	for _, c := range candidates {
		if c.manufacturer == l.Manufacturer {
			continue
		}
		if manufacturerSimilarity(c.nameGrams, l.Manufacturer) < g.config.ManufacturerNameCutoff {
			continue
		}

		score := modelCooccurrence(c.modelGrams, titleTokens, probabilities)
		if score <= epsilon {
			continue
		}
		if !found || score < bestScore {
			best = domain.ManufacturerAlias{Canonical: c.manufacturer, Alias: l.Manufacturer}
			bestScore = score
			found = true
		}
	}
	return best, bestScore, found
}

// manufacturerSimilarity is the percentage of canonical n-grams found in the listing name.
func manufacturerSimilarity(grams []string, listingManufacturer string) int {
	if len(grams) == 0 {
		return 0
	}
	hits := 0
	for _, g := range grams {
		if strings.Contains(listingManufacturer, g) {
			hits++
		}
	}
	return 100 * hits / len(grams)
}

// modelCooccurrence sums the inverse probability of each model shingle present in the title.
func modelCooccurrence(modelGrams []string, titleTokens map[string]struct{}, probabilities map[string]float64) float64 {
	score := 0.0
	for _, s := range modelGrams {
		if _, ok := titleTokens[s]; !ok {
			continue
		}
		if p := probabilities[s]; p > 0 {
			score += 1 / p
		}
	}
	return score
}

func selectAliases(sums map[domain.ManufacturerAlias]float64, percentile float64) []domain.ManufacturerAlias {
	cutoff := 0.0
	if len(sums) > 1 {
		values := make([]float64, 0, len(sums))
		for _, v := range sums {
			values = append(values, v)
		}
		cutoff = stats.Percentile(values, percentile)
	}

	// one canonical per alias: the largest accumulated score, then the smaller name
	type scored struct {
		canonical string
		score     float64
	}
	byAlias := make(map[string]scored)
	for pair, score := range sums {
		if score <= cutoff {
			continue
		}
		cur, ok := byAlias[pair.Alias]
		if !ok || score > cur.score || (score == cur.score && pair.Canonical < cur.canonical) {
			byAlias[pair.Alias] = scored{canonical: pair.Canonical, score: score}
		}
	}

	aliases := make([]domain.ManufacturerAlias, 0, len(byAlias))
	for alias, s := range byAlias {
		aliases = append(aliases, domain.ManufacturerAlias{Canonical: s.canonical, Alias: alias})
	}
	sort.Slice(aliases, func(i, j int) bool {
		if aliases[i].Alias != aliases[j].Alias {
			return aliases[i].Alias < aliases[j].Alias
		}
		return aliases[i].Canonical < aliases[j].Canonical
	})
	return aliases
}
