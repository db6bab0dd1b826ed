// Package ingest reads product, listing, exchange rate and training files.
// Every file holds one record per line.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/listinglens/backend/internal/domain"
)

const maxLineSize = 1 << 20

// eachLine calls fn with every non-blank line and its 1-based number.
func eachLine(r io.Reader, fn func(n int, line []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadProducts parses products, reporting unparseable lines to sink and skipping them.
func ReadProducts(r io.Reader, sink domain.Sink) ([]domain.Product, error) {
	var products []domain.Product
	err := eachLine(r, func(n int, line []byte) error {
		p, err := ParseProduct(line)
		if err != nil {
			sink(fmt.Sprintf("Skipping product line %d: %v", n, err))
			return nil
		}
		products = append(products, p)
		return nil
	})
	return products, err
}

// ReadListings parses listings, reporting unparseable lines to sink and skipping them.
func ReadListings(r io.Reader, sink domain.Sink) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := eachLine(r, func(n int, line []byte) error {
		l, err := ParseListing(line)
		if err != nil {
			sink(fmt.Sprintf("Skipping listing line %d: %v", n, err))
			return nil
		}
		listings = append(listings, l)
		return nil
	})
	return listings, err
}

// ReadExchangeRates parses an exchange rate table. Any bad line fails the read.
func ReadExchangeRates(r io.Reader) ([]domain.ExchangeRate, error) {
	var rates []domain.ExchangeRate
	err := eachLine(r, func(n int, line []byte) error {
		rate, err := ParseExchangeRate(line)
		if err != nil {
			return fmt.Errorf("%w: exchange rate line %d: %w", domain.ErrInvalidConfig, n, err)
		}
		rates = append(rates, rate)
		return nil
	})
	return rates, err
}

// ReadCorpus reads a training corpus of one document per line. A line is
// either plain text or a listing object whose title is used. A line that
// starts like an object but does not decode fails the read.
func ReadCorpus(r io.Reader) ([]string, error) {
	var docs []string
	err := eachLine(r, func(n int, line []byte) error {
		text := string(line)
		if line[0] == '{' {
			var rec struct {
				Title string `json:"title"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("%w: training line %d: %v", domain.ErrInvalidConfig, n, err)
			}
			text = rec.Title
		}
		if doc := Normalize(text); doc != "" {
			docs = append(docs, doc)
		}
		return nil
	})
	return docs, err
}

// ReadFile opens path and hands the UTF-8 content to read.
func ReadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	rc, err := Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer rc.Close()

	v, err := read(rc)
	if err != nil {
		return v, fmt.Errorf("read %s: %w", path, err)
	}
	return v, nil
}
