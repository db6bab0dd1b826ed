package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/stats"
)

// Price outlier defaults
const (
	DefaultLowerRangeMultiplier = 0.5
	DefaultUpperRangeMultiplier = 5.0
	minListingsForOutliers      = 5
)

// strong outlier fence, in interquartile ranges
var outerFence = decimal.NewFromInt(3)

// PriceOutlierConfig holds the acceptance band multipliers
type PriceOutlierConfig struct {
	LowerRangeMultiplier float64
	UpperRangeMultiplier float64
}

// PriceOutlierClassifier removes listings priced far from the rest of their match
type PriceOutlierClassifier struct {
	converter *PriceConverter
	lowMult   decimal.Decimal
	highMult  decimal.Decimal
}

// NewPriceOutlierClassifier creates a price outlier classifier
func NewPriceOutlierClassifier(config PriceOutlierConfig, converter *PriceConverter) *PriceOutlierClassifier {
	return &PriceOutlierClassifier{
		converter: converter,
		lowMult:   decimal.NewFromFloat(config.LowerRangeMultiplier),
		highMult:  decimal.NewFromFloat(config.UpperRangeMultiplier),
	}
}

// Name returns the stage name
func (c *PriceOutlierClassifier) Name() string { return StagePriceOutlier }

// Keep flags the listings whose converted price falls inside the acceptance band.
// Matches with fewer than five listings are kept whole.
func (c *PriceOutlierClassifier) Keep(match *domain.ProductMatch) []bool {
	keep := make([]bool, len(match.Listings))
	if len(match.Listings) < minListingsForOutliers {
		for i := range keep {
			keep[i] = true
		}
		return keep
	}

	prices := make([]decimal.Decimal, len(match.Listings))
	for i, l := range match.Listings {
		prices[i] = c.converter.Convert(l)
	}

	lo, hi := c.Band(prices)
	for i, p := range prices {
		keep[i] = p.GreaterThanOrEqual(lo) && p.LessThanOrEqual(hi)
	}
	return keep
}

// Band returns the accepted [lo, hi] price range: the strong outlier fences
// around the nearest-rank quartiles, scaled by the multipliers.
func (c *PriceOutlierClassifier) Band(prices []decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	sorted := append([]decimal.Decimal(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	q1 := stats.NearestRank(sorted, 0.25)
	q3 := stats.NearestRank(sorted, 0.75)
	iqr := q3.Sub(q1)

	lo := decimal.Max(q1.Sub(iqr.Mul(outerFence)), decimal.Zero).Mul(c.lowMult)
	hi := q3.Add(iqr.Mul(outerFence)).Mul(c.highMult)
	return lo, hi
}
