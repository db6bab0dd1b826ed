// Package shingle splits normalized text into tokens, character n-grams and
// word shingles.
package shingle

import "strings"

// Tokenize splits text on Unicode whitespace.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// CharNGrams returns every overlapping rune window of length n for n in
// [nMin, nMax], shorter windows first. Duplicates are kept.
func CharNGrams(text string, nMin, nMax int) []string {
	if nMin < 1 {
		nMin = 1
	}
	runes := []rune(text)
	var grams []string
	for n := nMin; n <= nMax; n++ {
		for i := 0; i+n <= len(runes); i++ {
			grams = append(grams, string(runes[i:i+n]))
		}
	}
	return grams
}

// WordShingles joins every run of n consecutive tokens, without a separator,
// for n in [nMin, nMax], shorter runs first. Lengths beyond len(tokens) yield nothing.
func WordShingles(tokens []string, nMin, nMax int) []string {
	if nMin < 1 {
		nMin = 1
	}
	var shingles []string
	for n := nMin; n <= nMax && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			shingles = append(shingles, strings.Join(tokens[i:i+n], ""))
		}
	}
	return shingles
}

// Set returns the distinct values of items.
func Set(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}
