package usecase

import "github.com/listinglens/backend/internal/domain"

// Classifier stage names, as they appear in pruning diagnostics
const (
	StageNaiveBayes   = "Naive Bayes"
	StageHeuristic    = "heuristic"
	StagePriceOutlier = "price outlier"
)

// ListingClassifier decides which listings of a match advertise the product itself.
// Keep returns one flag per listing of the match, in order.
type ListingClassifier interface {
	Name() string
	Keep(match *domain.ProductMatch) []bool
}

// perListing adapts a single-listing predicate to a ListingClassifier.
type perListing struct {
	name     string
	isCamera func(domain.Listing) bool
}

func (c perListing) Name() string { return c.name }

func (c perListing) Keep(match *domain.ProductMatch) []bool {
	keep := make([]bool, len(match.Listings))
	for i, l := range match.Listings {
		keep[i] = c.isCamera(l)
	}
	return keep
}
