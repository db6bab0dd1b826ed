package usecase

import (
	"sort"
	"strings"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/shingle"
)

// BlockProducts groups products by their exact manufacturer name, keeping input order.
func BlockProducts(products []domain.Product) map[string]domain.ProductBlock {
	blocks := make(map[string]domain.ProductBlock)
	for _, p := range products {
		b := blocks[p.Manufacturer]
		b.ManufacturerName = p.Manufacturer
		b.Products = append(b.Products, p)
		blocks[p.Manufacturer] = b
	}
	return blocks
}

// Blocker assigns listings to canonical manufacturer names
type Blocker struct {
	canonical map[string]bool
	multiWord []string // sorted
	aliases   map[string]string
}

// NewBlocker builds a blocker over the given canonical names and aliases
func NewBlocker(canonicalNames []string, aliases []domain.ManufacturerAlias) *Blocker {
	b := &Blocker{
		canonical: make(map[string]bool, len(canonicalNames)),
		aliases:   make(map[string]string, len(aliases)),
	}
	for _, name := range canonicalNames {
		if name == "" || b.canonical[name] {
			continue
		}
		b.canonical[name] = true
		if len(shingle.Tokenize(name)) > 1 {
			b.multiWord = append(b.multiWord, name)
		}
	}
	sort.Strings(b.multiWord)

	for _, a := range aliases {
		b.aliases[a.Alias] = a.Canonical
	}
	return b
}

// Resolve returns the canonical manufacturer for a listing manufacturer name.
func (b *Blocker) Resolve(manufacturer string) (string, bool) {
	tokens := shingle.Tokenize(manufacturer)

	for _, tok := range tokens {
		if b.canonical[tok] {
			return tok, true
		}
	}

	for _, name := range b.multiWord {
		for _, nameTok := range strings.Fields(name) {
			for _, tok := range tokens {
				if tok == nameTok {
					return name, true
				}
			}
		}
	}

	if canonical, ok := b.aliases[manufacturer]; ok {
		return canonical, true
	}
	return "", false
}

// BlockListings groups listings by canonical manufacturer and returns the
// listings no rule could place, both in input order.
func (b *Blocker) BlockListings(listings []domain.Listing) (map[string]domain.ListingBlock, []domain.Listing) {
	blocks := make(map[string]domain.ListingBlock)
	var unmatched []domain.Listing
	for _, l := range listings {
		name, ok := b.Resolve(l.Manufacturer)
		if !ok {
			unmatched = append(unmatched, l)
			continue
		}
		blk := blocks[name]
		blk.ManufacturerName = name
		blk.Listings = append(blk.Listings, l)
		blocks[name] = blk
	}
	return blocks, unmatched
}

// CanonicalNames returns the sorted manufacturer names of the product blocks.
func CanonicalNames(blocks map[string]domain.ProductBlock) []string {
	names := make([]string, 0, len(blocks))
	for name := range blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
