package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/listinglens/backend/internal/domain"
)

type productRecord struct {
	Name         string `json:"product_name"`
	Manufacturer string `json:"manufacturer"`
	Family       string `json:"family"`
	Model        string `json:"model"`
}

type listingRecord struct {
	Title        string          `json:"title"`
	Manufacturer string          `json:"manufacturer"`
	Currency     string          `json:"currency"`
	Price        json.RawMessage `json:"price"`
}

type rateRecord struct {
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Rate        json.RawMessage `json:"rate"`
}

// ParseProduct decodes one product object.
func ParseProduct(line []byte) (domain.Product, error) {
	var rec productRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	p := domain.Product{
		Name:         rec.Name,
		Manufacturer: Normalize(rec.Manufacturer),
		Model:        Normalize(rec.Model),
		Family:       Normalize(rec.Family),
		Source:       append(json.RawMessage(nil), line...),
	}
	switch {
	case p.Name == "":
		return domain.Product{}, fmt.Errorf("%w: product_name is required", domain.ErrMalformedRecord)
	case p.Manufacturer == "":
		return domain.Product{}, fmt.Errorf("%w: manufacturer is required", domain.ErrMalformedRecord)
	case p.Model == "":
		return domain.Product{}, fmt.Errorf("%w: model is required", domain.ErrMalformedRecord)
	}
	return p, nil
}

// ParseListing decodes one listing object. The price may be a JSON string or number.
func ParseListing(line []byte) (domain.Listing, error) {
	var rec listingRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return domain.Listing{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	price, err := parseAmount("price", rec.Price)
	if err != nil {
		return domain.Listing{}, err
	}

	l := domain.Listing{
		Title:        Normalize(rec.Title),
		Manufacturer: Normalize(rec.Manufacturer),
		CurrencyCode: Normalize(rec.Currency),
		Price:        price,
		Source:       append(json.RawMessage(nil), line...),
	}
	switch {
	case l.Title == "":
		return domain.Listing{}, fmt.Errorf("%w: title is required", domain.ErrMalformedRecord)
	case l.CurrencyCode == "":
		return domain.Listing{}, fmt.Errorf("%w: currency is required", domain.ErrMalformedRecord)
	}
	return l, nil
}

// ParseExchangeRate decodes one exchange rate object.
func ParseExchangeRate(line []byte) (domain.ExchangeRate, error) {
	var rec rateRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	rate, err := parseAmount("rate", rec.Rate)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	r := domain.ExchangeRate{
		Source:      Normalize(rec.Source),
		Destination: Normalize(rec.Destination),
		Rate:        rate,
	}
	if r.Source == "" || r.Destination == "" {
		return domain.ExchangeRate{}, fmt.Errorf("%w: source and destination are required", domain.ErrMalformedRecord)
	}
	return r, nil
}

func parseAmount(field string, raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is required", domain.ErrMalformedRecord, field)
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", domain.ErrMalformedRecord, field, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %s must not be negative, got %s", domain.ErrMalformedRecord, field, d)
	}
	return d, nil
}
