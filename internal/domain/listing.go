package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Listing is a scraped e-commerce offer. Text fields are normalized at ingestion.
type Listing struct {
	Manufacturer string          `json:"manufacturer"`
	Title        string          `json:"title"`
	CurrencyCode string          `json:"currency"`
	Price        decimal.Decimal `json:"price"`
	Source       json.RawMessage `json:"-"` // original record as read
}

// ListingBlock holds the listings attributed to one canonical manufacturer.
type ListingBlock struct {
	ManufacturerName string
	Listings         []Listing
}

// ExchangeRate converts an amount in Source currency to Destination currency.
type ExchangeRate struct {
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Rate        decimal.Decimal `json:"rate"`
}
