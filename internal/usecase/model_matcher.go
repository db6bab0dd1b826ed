package usecase

import (
	"strings"
	"unicode"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/shingle"
	"github.com/listinglens/backend/internal/stats"
)

// ModelMatcher assigns each listing of a block to the product whose model
// (and family) fragments it carries with the highest entropy score.
type ModelMatcher struct{}

// NewModelMatcher creates a model matcher
func NewModelMatcher() *ModelMatcher {
	return &ModelMatcher{}
}

type matchProduct struct {
	product     domain.Product
	modelGrams  map[string]struct{}
	familyGrams map[string]struct{} // family shingles that are not model shingles
}

type matchListing struct {
	listing domain.Listing
	grams   []string
}

// Match pairs a listing block with the product block of the same manufacturer.
// Products that receive at least one listing get a match, returned in
// product block order.
// Unplaced listings keep their input order.
func (m *ModelMatcher) Match(listingBlock domain.ListingBlock, productBlock domain.ProductBlock) ([]*domain.ProductMatch, []domain.Listing) {
	products := make([]matchProduct, len(productBlock.Products))
	for i, p := range productBlock.Products {
		modelTokens := shingle.Tokenize(p.Model)
		model := shingle.Set(shingle.WordShingles(modelTokens, 1, max(len(modelTokens), 3)))

		familyTokens := shingle.Tokenize(p.Family)
		family := make(map[string]struct{})
		for _, s := range shingle.WordShingles(familyTokens, 1, max(len(familyTokens), 3)) {
			if _, inModel := model[s]; !inModel {
				family[s] = struct{}{}
			}
		}
		products[i] = matchProduct{product: p, modelGrams: model, familyGrams: family}
	}

	counts := make(map[string]int)
	listings := make([]matchListing, len(listingBlock.Listings))
	for i, l := range listingBlock.Listings {
		tokens := shingle.Tokenize(l.Title)
		grams := shingle.WordShingles(tokens, 1, min(len(tokens), 3))
		for _, g := range grams {
			counts[g]++
		}
		listings[i] = matchListing{listing: l, grams: grams}
	}
	total := len(listingBlock.Listings)

	assigned := make([][]domain.Listing, len(products))
	var unmatched []domain.Listing
	for _, l := range listings {
		best := bestProduct(products, l.grams, counts, total)
		if best < 0 {
			unmatched = append(unmatched, l.listing)
			continue
		}
		assigned[best] = append(assigned[best], l.listing)
	}

	var matches []*domain.ProductMatch
	for i, ls := range assigned {
		if len(ls) == 0 {
			continue
		}
		matches = append(matches, domain.NewProductMatch(products[i].product, ls))
	}
	return matches, unmatched
}

// bestProduct returns the index of the winning product, or -1.
func bestProduct(products []matchProduct, titleGrams []string, counts map[string]int, total int) int {
	best := -1
	bestScore := 0.0
	for i, p := range products {
		modelMatches := filterGrams(titleGrams, p.modelGrams)
		if len(modelMatches) == 0 {
			continue
		}
		familyMatches := filterGrams(titleGrams, p.familyGrams)

		score := stats.Entropy(gramCounts(modelMatches, counts), total) +
			stats.Entropy(gramCounts(familyMatches, counts), total)
		if score <= epsilon || (best >= 0 && score <= bestScore) {
			continue
		}

		fragments := append(append([]string(nil), modelMatches...), familyMatches...)
		if !covers(p.product.Model, fragments) {
			continue
		}
		if len(familyMatches) > 0 && !covers(p.product.Family, fragments) {
			continue
		}

		best = i
		bestScore = score
	}
	return best
}

func filterGrams(grams []string, keep map[string]struct{}) []string {
	var out []string
	for _, g := range grams {
		if _, ok := keep[g]; ok {
			out = append(out, g)
		}
	}
	return out
}

func gramCounts(grams []string, counts map[string]int) []int {
	out := make([]int, len(grams))
	for i, g := range grams {
		out[i] = counts[g]
	}
	return out
}

// covers reports whether the fragments, each placed at its first occurrence,
// cover every non-whitespace character of target.
func covers(target string, fragments []string) bool {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, target)
	if compact == "" {
		return true
	}

	covered := make([]bool, len(compact))
	for _, f := range fragments {
		if f == "" {
			continue
		}
		idx := strings.Index(compact, f)
		if idx < 0 {
			continue
		}
		for i := idx; i < idx+len(f); i++ {
			covered[i] = true
		}
	}
	for _, c := range covered {
		if !c {
			return false
		}
	}
	return true
}
