package domain

// ProductMatch is a product and the listings currently believed to advertise it.
// Classifier stages shrink Listings through Retain; nothing ever appends to it.
type ProductMatch struct {
	Product  Product
	Listings []Listing
}

// NewProductMatch creates a match owning a copy of listings.
func NewProductMatch(product Product, listings []Listing) *ProductMatch {
	owned := make([]Listing, len(listings))
	copy(owned, listings)
	return &ProductMatch{Product: product, Listings: owned}
}

// Retain keeps the listings whose keep flag is set and returns the removed ones.
// keep must have one entry per listing; a shorter slice removes the tail.
func (m *ProductMatch) Retain(keep []bool) []Listing {
	kept := m.Listings[:0:0]
	var removed []Listing
	for i, l := range m.Listings {
		if i < len(keep) && keep[i] {
			kept = append(kept, l)
		} else {
			removed = append(removed, l)
		}
	}
	m.Listings = kept
	return removed
}

// UnmatchedReason says which stage failed to place a listing.
type UnmatchedReason string

const (
	UnmatchedManufacturer UnmatchedReason = "manufacturer"
	UnmatchedProduct      UnmatchedReason = "product"
)

// UnmatchedListing is a listing that never reached a product match.
type UnmatchedListing struct {
	Listing Listing
	Reason  UnmatchedReason
}

// Resolution is the outcome of one pipeline run.
type Resolution struct {
	RunID     string
	Matches   []*ProductMatch
	Aliases   []ManufacturerAlias
	Unmatched []UnmatchedListing
	Pruned    map[string]int // stage name -> listings removed
}

// CountUnmatched returns how many listings failed for the given reason.
func (r *Resolution) CountUnmatched(reason UnmatchedReason) int {
	n := 0
	for _, u := range r.Unmatched {
		if u.Reason == reason {
			n++
		}
	}
	return n
}
