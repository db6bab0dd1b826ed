package output

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"

	"github.com/listinglens/backend/internal/domain"
)

func sampleResolution() *domain.Resolution {
	withSource := domain.Listing{
		Manufacturer: "canon",
		Title:        "canon powershot sx130",
		CurrencyCode: "cad",
		Price:        decimal.RequireFromString("199.99"),
		Source:       json.RawMessage(`{"title":"Canon PowerShot SX130 IS","manufacturer":"Canon","currency":"CAD","price":"199.99"}`),
	}
	withoutSource := domain.Listing{
		Manufacturer: "canon",
		Title:        "canon sx130 kit",
		CurrencyCode: "usd",
		Price:        decimal.RequireFromString("250"),
	}
	return &domain.Resolution{
		RunID: "run-1",
		Matches: []*domain.ProductMatch{
			{Product: domain.Product{Name: "Canon_PowerShot_SX130_IS", Manufacturer: "canon", Family: "powershot", Model: "sx130 is"},
				Listings: []domain.Listing{withSource, withoutSource}},
			{Product: domain.Product{Name: "Canon_IXUS_300_HS", Manufacturer: "canon", Family: "ixus", Model: "300 hs"}},
		},
		Aliases: []domain.ManufacturerAlias{{Canonical: "fujifilm", Alias: "fuji"}},
		Unmatched: []domain.UnmatchedListing{
			{Listing: domain.Listing{Manufacturer: "acme", Title: "mystery box", CurrencyCode: "cad", Price: decimal.NewFromInt(10)}, Reason: domain.UnmatchedManufacturer},
		},
		Pruned: map[string]int{"price outlier": 2, "Naive Bayes": 1},
	}
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONLines(&buf, sampleResolution().Matches))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var first struct {
		ProductName string                   `json:"product_name"`
		Listings    []map[string]interface{} `json:"listings"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Canon_PowerShot_SX130_IS", first.ProductName)
	require.Len(t, first.Listings, 2)
	assert.Equal(t, "Canon PowerShot SX130 IS", first.Listings[0]["title"], "source record is emitted as read")
	assert.Equal(t, "canon sx130 kit", first.Listings[1]["title"])

	assert.Equal(t, `{"product_name":"Canon_IXUS_300_HS","listings":[]}`, lines[1])
}

func TestWriteJSONLines_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONLines(&buf, nil))
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty", buf.String())
	}
}

func TestSaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, SaveReport(path, sampleResolution()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetMatches, SheetAliases, SheetUnmatched, SheetPruned}, f.GetSheetList())

	tests := []struct {
		sheet string
		rows  int
		row   int
		want  []string
	}{
		{SheetMatches, 4, 1, []string{"Canon_PowerShot_SX130_IS", "canon", "powershot", "sx130 is", "canon powershot sx130", "199.99", "cad"}},
		{SheetMatches, 4, 3, []string{"Canon_IXUS_300_HS", "canon", "ixus", "300 hs"}},
		{SheetAliases, 2, 1, []string{"fujifilm", "fuji"}},
		{SheetUnmatched, 2, 1, []string{"manufacturer", "acme", "mystery box", "10", "cad"}},
		{SheetPruned, 3, 1, []string{"Naive Bayes", "1"}},
		{SheetPruned, 3, 2, []string{"price outlier", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			rows, err := f.GetRows(tt.sheet)
			require.NoError(t, err)
			require.Len(t, rows, tt.rows)
			assert.Equal(t, tt.want, rows[tt.row])
		})
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, &domain.Resolution{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetMatches)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Product", "Manufacturer", "Family", "Model", "Listing", "Price", "Currency"}}, rows)
}
