package output

import (
	"fmt"
	"io"
	"sort"

	excelize "github.com/xuri/excelize/v2"

	"github.com/listinglens/backend/internal/domain"
)

// Report sheet names
const (
	SheetMatches   = "Matches"
	SheetAliases   = "Aliases"
	SheetUnmatched = "Unmatched"
	SheetPruned    = "Pruned"
)

// WriteReport writes an XLSX workbook describing res.
func WriteReport(w io.Writer, res *domain.Resolution) error {
	f, err := buildReport(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// SaveReport writes the XLSX workbook to path.
func SaveReport(path string, res *domain.Resolution) error {
	f, err := buildReport(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func buildReport(res *domain.Resolution) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetMatches); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetAliases, SheetUnmatched, SheetPruned} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	sheets := map[string][][]interface{}{
		SheetMatches:   matchRows(res.Matches),
		SheetAliases:   aliasRows(res.Aliases),
		SheetUnmatched: unmatchedRows(res.Unmatched),
		SheetPruned:    prunedRows(res.Pruned),
	}
	for sheet, rows := range sheets {
		if err := writeRows(f, sheet, rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func matchRows(matches []*domain.ProductMatch) [][]interface{} {
	rows := [][]interface{}{{"Product", "Manufacturer", "Family", "Model", "Listing", "Price", "Currency"}}
	for _, m := range matches {
		p := m.Product
		if len(m.Listings) == 0 {
			rows = append(rows, []interface{}{p.Name, p.Manufacturer, p.Family, p.Model})
			continue
		}
		for _, l := range m.Listings {
			rows = append(rows, []interface{}{p.Name, p.Manufacturer, p.Family, p.Model, l.Title, l.Price.InexactFloat64(), l.CurrencyCode})
		}
	}
	return rows
}

func aliasRows(aliases []domain.ManufacturerAlias) [][]interface{} {
	rows := [][]interface{}{{"Canonical", "Alias"}}
	for _, a := range aliases {
		rows = append(rows, []interface{}{a.Canonical, a.Alias})
	}
	return rows
}

func unmatchedRows(unmatched []domain.UnmatchedListing) [][]interface{} {
	rows := [][]interface{}{{"Reason", "Manufacturer", "Listing", "Price", "Currency"}}
	for _, u := range unmatched {
		l := u.Listing
		rows = append(rows, []interface{}{string(u.Reason), l.Manufacturer, l.Title, l.Price.InexactFloat64(), l.CurrencyCode})
	}
	return rows
}

func prunedRows(pruned map[string]int) [][]interface{} {
	stages := make([]string, 0, len(pruned))
	for stage := range pruned {
		stages = append(stages, stage)
	}
	sort.Strings(stages)

	rows := [][]interface{}{{"Stage", "Removed"}}
	for _, s := range stages {
		rows = append(rows, []interface{}{s, pruned[s]})
	}
	return rows
}
