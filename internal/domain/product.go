package domain

import "encoding/json"

// Product is a canonical catalog entry. Text fields are normalized at ingestion.
type Product struct {
	Name         string          `json:"product_name"`
	Manufacturer string          `json:"manufacturer"`
	Model        string          `json:"model"`
	Family       string          `json:"family,omitempty"` // optional grouping, may be empty
	Source       json.RawMessage `json:"-"`                // original record as read
}

// ProductBlock holds the products of one manufacturer.
type ProductBlock struct {
	ManufacturerName string
	Products         []Product
}

// ManufacturerAlias maps a non-canonical manufacturer spelling seen in listings
// onto a canonical catalog manufacturer.
type ManufacturerAlias struct {
	Canonical string `json:"canonical"`
	Alias     string `json:"alias"`
}
