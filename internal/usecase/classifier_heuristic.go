package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/shingle"
)

// Heuristic defaults
const (
	DefaultLowPriceCutoff  = 60.0
	DefaultHighPriceCutoff = 700.0
	DefaultHeuristicScore  = 50.0
)

// Default heuristic word lists
var (
	DefaultAccessoryWords = []string{"bag", "body", "battery", "only", "capacity"}
	DefaultCameraWords    = []string{
		"mp", "megapixel", "mega", "pixel", "mpix", "compact", "zoom", "optical",
		"stabilized", "digitalkamera", "digital", "camera",
	}
	DefaultForWords = []string{"for", "für", "pour"}
)

// signal weights, summing to 1
const (
	weightPrice     = 0.25
	weightAccessory = 0.20
	weightCamera    = 0.25
	weightWith      = 0.10
	weightFor       = 0.20
)

const neutral = 50.0

// HeuristicConfig holds the heuristic thresholds and word lists
type HeuristicConfig struct {
	LowPriceCutoff  float64
	HighPriceCutoff float64
	Threshold       float64
	AccessoryWords  []string
	CameraWords     []string
	ForWords        []string
}

// HeuristicClassifier scores titles and prices with hand-tuned signals
type HeuristicClassifier struct {
	config    HeuristicConfig
	converter *PriceConverter
	low, high decimal.Decimal
	accessory map[string]struct{}
	camera    map[string]struct{}
	forWords  map[string]struct{}
}

// NewHeuristicClassifier creates a heuristic classifier converting prices with converter
func NewHeuristicClassifier(config HeuristicConfig, converter *PriceConverter) *HeuristicClassifier {
	return &HeuristicClassifier{
		config:    config,
		converter: converter,
		low:       decimal.NewFromFloat(config.LowPriceCutoff),
		high:      decimal.NewFromFloat(config.HighPriceCutoff),
		accessory: shingle.Set(config.AccessoryWords),
		camera:    shingle.Set(config.CameraWords),
		forWords:  shingle.Set(config.ForWords),
	}
}

// Name returns the stage name
func (c *HeuristicClassifier) Name() string { return StageHeuristic }

// Keep flags the listings classified as cameras
func (c *HeuristicClassifier) Keep(match *domain.ProductMatch) []bool {
	return perListing{name: StageHeuristic, isCamera: c.IsCamera}.Keep(match)
}

// IsCamera reports whether the weighted score reaches the threshold.
func (c *HeuristicClassifier) IsCamera(l domain.Listing) bool {
	return c.Score(l)+epsilon >= c.config.Threshold
}

// Score combines the five signals into [0,100].
func (c *HeuristicClassifier) Score(l domain.Listing) float64 {
	tokens := shingle.Tokenize(l.Title)

	return weightPrice*c.priceScore(c.converter.Convert(l)) +
		weightAccessory*max(0, neutral-25*float64(countPresent(c.accessory, tokens))) +
		weightCamera*min(100, neutral+25*float64(countPresent(c.camera, tokens))) +
		weightWith*cameraWithScore(tokens) +
		weightFor*c.forScore(tokens)
}

func (c *HeuristicClassifier) priceScore(price decimal.Decimal) float64 {
	switch {
	case price.LessThan(c.low):
		r := price.Div(c.low).InexactFloat64()
		return neutral * r * r
	case price.GreaterThan(c.high):
		return 100
	default:
		return neutral
	}
}

func (c *HeuristicClassifier) forScore(tokens []string) float64 {
	for _, tok := range tokens {
		if _, ok := c.forWords[tok]; ok {
			return 0
		}
	}
	return neutral
}

// cameraWithScore rewards the phrase "camera with".
func cameraWithScore(tokens []string) float64 {
	for i := 1; i < len(tokens); i++ {
		if tokens[i] == "with" && tokens[i-1] == "camera" {
			return 100
		}
	}
	return neutral
}

// countPresent counts the words of set that occur in tokens.
func countPresent(set map[string]struct{}, tokens []string) int {
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			seen[tok] = struct{}{}
		}
	}
	return len(seen)
}
