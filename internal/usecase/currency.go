package usecase

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/listinglens/backend/internal/domain"
)

// DefaultReferenceCurrency is the currency every price is compared in.
const DefaultReferenceCurrency = "cad"

// PriceConverter converts listing prices into the reference currency
type PriceConverter struct {
	reference string
	rates     map[string]decimal.Decimal
}

// NewPriceConverter keeps the rates whose destination is the reference currency.
func NewPriceConverter(reference string, rates []domain.ExchangeRate) *PriceConverter {
	if reference == "" {
		reference = DefaultReferenceCurrency
	}

	byCurrency := make(map[string]decimal.Decimal, len(rates))
	for _, r := range rates {
		if r.Destination == reference {
			byCurrency[r.Source] = r.Rate
		}
	}

	return &PriceConverter{
		reference: reference,
		rates:     byCurrency,
	}
}

// Convert returns the listing price in the reference currency.
// An unknown currency is returned unconverted.
func (c *PriceConverter) Convert(l domain.Listing) decimal.Decimal {
	if rate, ok := c.rate(l.CurrencyCode); ok {
		return l.Price.Mul(rate)
	}
	return l.Price
}

// MissingRates returns the sorted currencies of matched listings that
// Convert would leave unconverted.
func (c *PriceConverter) MissingRates(matches []*domain.ProductMatch) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, m := range matches {
		for _, l := range m.Listings {
			if _, ok := c.rate(l.CurrencyCode); ok || seen[l.CurrencyCode] {
				continue
			}
			seen[l.CurrencyCode] = true
			missing = append(missing, l.CurrencyCode)
		}
	}
	sort.Strings(missing)
	return missing
}

// Reference returns the reference currency code.
func (c *PriceConverter) Reference() string {
	return c.reference
}

func (c *PriceConverter) rate(currency string) (decimal.Decimal, bool) {
	if currency == c.reference {
		return decimal.NewFromInt(1), true
	}
	rate, ok := c.rates[currency]
	return rate, ok
}
