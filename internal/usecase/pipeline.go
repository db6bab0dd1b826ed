package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/parallel"
	"github.com/listinglens/backend/internal/stats"
)

// PipelineConfig holds the orchestration options
type PipelineConfig struct {
	Alias     AliasConfig
	DropEmpty bool            // drop matches the classifiers emptied
	Converter *PriceConverter // reports matched listings without an exchange rate
}

// Batch is one resolution run's input
type Batch struct {
	RunID    string // generated when empty
	Products []domain.Product
	Listings []domain.Listing
	Sink     domain.Sink // overrides the pipeline sink when set
}

// ResolutionPipeline resolves listings against products: alias discovery,
// manufacturer blocking, model matching and classifier pruning.
type ResolutionPipeline struct {
	aliases     *AliasGenerator
	matcher     *ModelMatcher
	classifiers []ListingClassifier
	converter   *PriceConverter
	sink        domain.Sink
	dropEmpty   bool
}

// NewResolutionPipeline creates a pipeline applying classifiers in the given order
func NewResolutionPipeline(config PipelineConfig, classifiers []ListingClassifier, sink domain.Sink) *ResolutionPipeline {
	if sink == nil {
		sink = domain.Discard
	}
	return &ResolutionPipeline{
		aliases:     NewAliasGenerator(config.Alias),
		matcher:     NewModelMatcher(),
		classifiers: classifiers,
		converter:   config.Converter,
		sink:        sink,
		dropEmpty:   config.DropEmpty,
	}
}

type blockResult struct {
	matches   []*domain.ProductMatch
	unmatched []domain.Listing
}

// Resolve runs one batch. Errors only come from context cancellation.
func (p *ResolutionPipeline) Resolve(ctx context.Context, batch Batch) (*domain.Resolution, error) {
	sink := batch.Sink
	if sink == nil {
		sink = p.sink
	}
	res := &domain.Resolution{
		RunID:  batch.RunID,
		Pruned: make(map[string]int, len(p.classifiers)),
	}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}

	var (
		productBlocks  map[string]domain.ProductBlock
		listingBlocks  map[string]domain.ListingBlock
		noManufacturer []domain.Listing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		productBlocks = BlockProducts(batch.Products)
		return nil
	})
	g.Go(func() error {
		sink("Calculating token probabilities")
		probs, err := stats.TokenProbabilities(gctx, batch.Listings)
		if err != nil {
			return err
		}

		sink("Generating manufacturer name aliases")
		aliases, err := p.aliases.Generate(gctx, batch.Products, batch.Listings, probs)
		if err != nil {
			return err
		}
		res.Aliases = aliases

		sink("Blocking listings by manufacturer name")
		blocker := NewBlocker(manufacturerNames(batch.Products), aliases)
		listingBlocks, noManufacturer = blocker.BlockListings(batch.Listings)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, l := range noManufacturer {
		sink(fmt.Sprintf("Failed to match listing manufacturer: %s, %s", l.Manufacturer, l.Title))
		res.Unmatched = append(res.Unmatched, domain.UnmatchedListing{Listing: l, Reason: domain.UnmatchedManufacturer})
	}

	var names []string
	for _, name := range CanonicalNames(productBlocks) {
		if _, ok := listingBlocks[name]; ok {
			names = append(names, name)
		}
	}
	sink(fmt.Sprintf("Matching listings to products in %d manufacturer blocks", len(names)))
	results, err := parallel.Map(ctx, names, func(_ context.Context, name string) (blockResult, error) {
		matches, unmatched := p.matcher.Match(listingBlocks[name], productBlocks[name])
		return blockResult{matches: matches, unmatched: unmatched}, nil
	})
	if err != nil {
		return nil, err
	}

	var matches []*domain.ProductMatch
	for i := range names {
		for _, l := range results[i].unmatched {
			sink(fmt.Sprintf("Failed to match listings to product: %s, %s", l.Manufacturer, l.Title))
			res.Unmatched = append(res.Unmatched, domain.UnmatchedListing{Listing: l, Reason: domain.UnmatchedProduct})
		}
		matches = append(matches, results[i].matches...)
	}

	if p.converter != nil {
		for _, currency := range p.converter.MissingRates(matches) {
			sink(fmt.Sprintf("No exchange rate from %q to %q, using price as is", currency, p.converter.Reference()))
		}
	}

	sink(fmt.Sprintf("Pruning %d matches", len(matches)))
	pruned, err := parallel.Map(ctx, matches, func(_ context.Context, m *domain.ProductMatch) (map[string]int, error) {
		return p.prune(m, sink), nil
	})
	if err != nil {
		return nil, err
	}
	for _, counts := range pruned {
		parallel.SumMerge(res.Pruned, counts)
	}

	for _, m := range matches {
		if p.dropEmpty && len(m.Listings) == 0 {
			continue
		}
		res.Matches = append(res.Matches, m)
	}
	sort.SliceStable(res.Matches, func(i, j int) bool {
		return res.Matches[i].Product.Name < res.Matches[j].Product.Name
	})

	sink(fmt.Sprintf("Resolved %d products, %d listings unmatched", len(res.Matches), len(res.Unmatched)))
	return res, nil
}

// prune runs the classifier chain over one match and returns removals per stage.
func (p *ResolutionPipeline) prune(m *domain.ProductMatch, sink domain.Sink) map[string]int {
	counts := make(map[string]int)
	for _, c := range p.classifiers {
		if len(m.Listings) == 0 {
			break
		}
		removed := m.Retain(c.Keep(m))
		for _, l := range removed {
			sink(fmt.Sprintf("Pruned by %s: [%s, %s, %s] => %s, %s %s",
				c.Name(), m.Product.Manufacturer, m.Product.Family, m.Product.Model,
				l.Title, l.Price.String(), l.CurrencyCode))
		}
		counts[c.Name()] += len(removed)
	}
	return counts
}

func manufacturerNames(products []domain.Product) []string {
	seen := make(map[string]bool)
	var names []string
	for _, prod := range products {
		if !seen[prod.Manufacturer] {
			seen[prod.Manufacturer] = true
			names = append(names, prod.Manufacturer)
		}
	}
	sort.Strings(names)
	return names
}
