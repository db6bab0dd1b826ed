// Package output serializes resolution results.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/listinglens/backend/internal/domain"
)

// Result is one product with the listings that advertise it.
type Result struct {
	ProductName string            `json:"product_name"`
	Listings    []json.RawMessage `json:"listings"`
}

// Results converts matches into their serialized form. Listings are emitted
// as the records they were read from.
func Results(matches []*domain.ProductMatch) ([]Result, error) {
	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		r := Result{ProductName: m.Product.Name, Listings: make([]json.RawMessage, 0, len(m.Listings))}
		for _, l := range m.Listings {
			raw, err := listingJSON(l)
			if err != nil {
				return nil, err
			}
			r.Listings = append(r.Listings, raw)
		}
		out = append(out, r)
	}
	return out, nil
}

func listingJSON(l domain.Listing) (json.RawMessage, error) {
	if len(l.Source) > 0 {
		return l.Source, nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode listing %q: %w", l.Title, err)
	}
	return raw, nil
}

// WriteJSONLines writes one result object per line.
func WriteJSONLines(w io.Writer, matches []*domain.ProductMatch) error {
	results, err := Results(matches)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode result %q: %w", r.ProductName, err)
		}
	}
	return bw.Flush()
}
