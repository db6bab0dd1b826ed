package usecase

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/shingle"
	"github.com/listinglens/backend/internal/stats"
)

func defaultAliasConfig() AliasConfig {
	return AliasConfig{
		ManufacturerNameCutoff:  DefaultManufacturerNameCutoff,
		PossibleAliasPercentile: DefaultPossibleAliasPercentile,
		CommonWordPercentile:    DefaultCommonWordPercentile,
	}
}

func generate(t *testing.T, config AliasConfig, products []domain.Product, listings []domain.Listing) []domain.ManufacturerAlias {
	t.Helper()
	probs, err := stats.TokenProbabilities(context.Background(), listings)
	require.NoError(t, err)
	aliases, err := NewAliasGenerator(config).Generate(context.Background(), products, listings, probs)
	require.NoError(t, err)
	return aliases
}

func TestAliasGenerator_Generate(t *testing.T) {
	products := []domain.Product{
		{Manufacturer: "fujifilm", Model: "finepix s2500hd"},
		{Manufacturer: "canon", Model: "sx130 is"},
	}
	listings := []domain.Listing{
		{Manufacturer: "fuji", Title: "fuji finepix s2500hd camera"},
		{Manufacturer: "fuji", Title: "finepix s2500hd black"},
		{Manufacturer: "fujifilm", Title: "fujifilm finepix s2500hd"},
		{Manufacturer: "canon", Title: "canon sx130 is"},
	}

	aliases := generate(t, defaultAliasConfig(), products, listings)

	assert.Equal(t, []domain.ManufacturerAlias{{Canonical: "fujifilm", Alias: "fuji"}}, aliases)
}

func TestAliasGenerator_AcmeFixtures(t *testing.T) {
	products := []domain.Product{{Manufacturer: "acme", Model: "model5"}}

	tests := []struct {
		name     string
		listings []domain.Listing
		want     []domain.ManufacturerAlias
	}{
		{
			name:     "single listing",
			listings: []domain.Listing{{Manufacturer: "acme corp", Title: "camera zoom model5"}},
			want:     []domain.ManufacturerAlias{{Canonical: "acme", Alias: "acme corp"}},
		},
		{
			name: "only the model carrying listing is aliased",
			listings: []domain.Listing{
				{Manufacturer: "acme corp", Title: "camera zoom model5"},
				{Manufacturer: "acme inc", Title: "camera zoom dxc 5"},
				{Manufacturer: "acme ltd", Title: "camera zoom model3"},
			},
			want: []domain.ManufacturerAlias{{Canonical: "acme", Alias: "acme corp"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generate(t, defaultAliasConfig(), products, tt.listings)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Generate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAliasGenerator_PercentileCutoff(t *testing.T) {
	products := []domain.Product{{Manufacturer: "fujifilm", Model: "finepix s2500hd"}}
	listings := []domain.Listing{
		{Manufacturer: "fuji", Title: "fuji finepix s2500hd camera"},
		{Manufacturer: "fuji", Title: "finepix s2500hd black"},
		{Manufacturer: "fujifilm", Title: "fujifilm finepix s2500hd"},
		{Manufacturer: "canon", Title: "canon sx130 is"},
		{Manufacturer: "fujix", Title: "finepix"},
	}
	config := defaultAliasConfig()
	config.CommonWordPercentile = 1

	aliases := generate(t, config, products, listings)

	assert.Equal(t, []domain.ManufacturerAlias{{Canonical: "fujifilm", Alias: "fuji"}}, aliases)
}

func TestAliasGenerator_CommonModelIgnored(t *testing.T) {
	products := []domain.Product{{Manufacturer: "acme", Model: "zoom"}}
	listings := []domain.Listing{
		{Manufacturer: "acme corp", Title: "zoom lens"},
		{Manufacturer: "acme", Title: "zoom zoom camera"},
		{Manufacturer: "other", Title: "zoom"},
		{Manufacturer: "other", Title: "bag"},
	}

	assert.Empty(t, generate(t, defaultAliasConfig(), products, listings))
}

func TestAliasGenerator_Empty(t *testing.T) {
	tests := []struct {
		name     string
		products []domain.Product
		listings []domain.Listing
	}{
		{"no input", nil, nil},
		{"no listings", []domain.Product{{Manufacturer: "canon", Model: "x"}}, nil},
		{"empty fields", []domain.Product{{Manufacturer: "canon"}}, []domain.Listing{{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, generate(t, defaultAliasConfig(), tt.products, tt.listings))
		})
	}
}

func TestAliasGenerator_LowestModelScoreWins(t *testing.T) {
	g := NewAliasGenerator(defaultAliasConfig())
	candidates := []aliasProduct{
		{manufacturer: "fujica", nameGrams: shingle.CharNGrams("fujica", 2, 4), modelGrams: []string{"st801"}},
		{manufacturer: "fujifilm", nameGrams: shingle.CharNGrams("fujifilm", 2, 4), modelGrams: []string{"x100"}},
	}
	probs := map[string]float64{"x100": 0.5, "st801": 0.25}
	listing := domain.Listing{Manufacturer: "fuji", Title: "x100 st801"}

	best, score, ok := g.bestCandidate(candidates, listing, probs)

	require.True(t, ok)
	assert.Equal(t, domain.ManufacturerAlias{Canonical: "fujifilm", Alias: "fuji"}, best)
	assert.InDelta(t, 2.0, score, 1e-9)

	t.Run("first candidate wins ties", func(t *testing.T) {
		probs := map[string]float64{"x100": 0.5, "st801": 0.5}
		best, _, ok := g.bestCandidate(candidates, listing, probs)
		require.True(t, ok)
		assert.Equal(t, "fujica", best.Canonical)
	})
}

func TestManufacturerSimilarity(t *testing.T) {
	tests := []struct {
		canonical string
		listing   string
		want      int
	}{
		{"fujifilm", "fuji", 33},
		{"fujifilm", "fujifilm", 100},
		{"canon", "nikon", 11},
		{"canon", "sony", 11},
		{"canon", "fuji", 0},
		{"", "sony", 0},
	}

	for _, tt := range tests {
		got := manufacturerSimilarity(shingle.CharNGrams(tt.canonical, 2, 4), tt.listing)
		if got != tt.want {
			t.Errorf("manufacturerSimilarity(%q, %q) = %d, want %d", tt.canonical, tt.listing, got, tt.want)
		}
	}
}

func TestSelectAliases(t *testing.T) {
	t.Run("highest score keeps alias", func(t *testing.T) {
		sums := map[domain.ManufacturerAlias]float64{
			{Canonical: "fujifilm", Alias: "fuji"}: 5,
			{Canonical: "fujica", Alias: "fuji"}:   4,
			{Canonical: "canon", Alias: "cannon"}:  1,
		}
		got := selectAliases(sums, 0)
		want := []domain.ManufacturerAlias{{Canonical: "fujifilm", Alias: "fuji"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("selectAliases() = %v, want %v", got, want)
		}
	})

	t.Run("tie goes to smaller canonical", func(t *testing.T) {
		sums := map[domain.ManufacturerAlias]float64{
			{Canonical: "b", Alias: "x"}: 4,
			{Canonical: "a", Alias: "x"}: 4,
			{Canonical: "c", Alias: "y"}: 1,
		}
		got := selectAliases(sums, 0)
		want := []domain.ManufacturerAlias{{Canonical: "a", Alias: "x"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("selectAliases() = %v, want %v", got, want)
		}
	})

	t.Run("single pair has zero cutoff", func(t *testing.T) {
		sums := map[domain.ManufacturerAlias]float64{{Canonical: "a", Alias: "x"}: 0.1}
		if got := selectAliases(sums, 0.99); len(got) != 1 {
			t.Errorf("len(selectAliases()) = %d, want 1", len(got))
		}
	})

	t.Run("sorted output", func(t *testing.T) {
		sums := map[domain.ManufacturerAlias]float64{
			{Canonical: "a", Alias: "z"}: 3,
			{Canonical: "b", Alias: "m"}: 3,
			{Canonical: "c", Alias: "k"}: 3,
		}
		got := selectAliases(sums, 0)
		if len(got) != 0 {
			t.Errorf("selectAliases() = %v, want none above an equal cutoff", got)
		}

		sums[domain.ManufacturerAlias{Canonical: "d", Alias: "q"}] = 1
		got = selectAliases(sums, 0)
		want := []domain.ManufacturerAlias{
			{Canonical: "c", Alias: "k"},
			{Canonical: "b", Alias: "m"},
			{Canonical: "a", Alias: "z"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("selectAliases() = %v, want %v", got, want)
		}
	})
}
