// Package dealsheet parses bulk deal submissions from XLSX workbooks.
// Columns are matched by header name, not position, so sales teams can
// rearrange their sheets freely.
package dealsheet

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/deal-desk/internal/finance"
	"github.com/sells-group/deal-desk/internal/model"
)

// Options configures which sheet of the workbook to read.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// Recognized column headers, lowercased. "name" and "customer" are
// required; every other column is optional.
const (
	colName         = "name"
	colCustomer     = "customer"
	colDealType     = "deal type"
	colSalesChannel = "sales channel"
	colTotalValue   = "total value"
	colDiscount     = "discount %"
	colTermMonths   = "term (months)"
	colRevenue      = "annual revenue"
	colMargin       = "gross margin %"
	colIncentives   = "incentive value"
)

// ReadFile reads deals from an XLSX workbook on disk.
func ReadFile(path string, opts Options) ([]model.Deal, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dealsheet: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	return Parse(sheet)
}

// Parse reads deals from a sheet whose first row carries column headers.
func Parse(sheet *xlsx.Sheet) ([]model.Deal, error) {
	if len(sheet.Rows) == 0 {
		return nil, eris.New("dealsheet: sheet is empty")
	}

	cols := make(map[string]int)
	for i, cell := range sheet.Rows[0].Cells {
		header := strings.ToLower(strings.TrimSpace(cell.Value))
		if header != "" {
			cols[header] = i
		}
	}
	for _, required := range []string{colName, colCustomer} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("dealsheet: missing required column %q", required)
		}
	}

	var deals []model.Deal
	for i, row := range sheet.Rows[1:] {
		deal, empty, err := parseRow(row, cols)
		if err != nil {
			return nil, eris.Wrapf(err, "dealsheet: row %d", i+2)
		}
		if empty {
			continue
		}
		deals = append(deals, deal)
	}
	return deals, nil
}

func parseRow(row *xlsx.Row, cols map[string]int) (deal model.Deal, empty bool, err error) {
	get := func(col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(row.Cells) {
			return ""
		}
		return strings.TrimSpace(row.Cells[idx].Value)
	}

	deal.Name = get(colName)
	deal.Customer = get(colCustomer)
	if deal.Name == "" && deal.Customer == "" {
		return model.Deal{}, true, nil
	}
	if deal.Name == "" || deal.Customer == "" {
		return model.Deal{}, false, eris.New("name and customer are both required")
	}

	deal.DealType = strings.ToLower(get(colDealType))
	deal.SalesChannel = strings.ToLower(get(colSalesChannel))

	if deal.TotalValue, err = parseNumber(get(colTotalValue), colTotalValue); err != nil {
		return model.Deal{}, false, err
	}
	if deal.DiscountPercentage, err = parseNumber(get(colDiscount), colDiscount); err != nil {
		return model.Deal{}, false, err
	}
	term, err := parseNumber(get(colTermMonths), colTermMonths)
	if err != nil {
		return model.Deal{}, false, err
	}
	deal.ContractTermMonths = int(term)

	revenue, err := parseNumber(get(colRevenue), colRevenue)
	if err != nil {
		return model.Deal{}, false, err
	}
	margin, err := parseNumber(get(colMargin), colMargin)
	if err != nil {
		return model.Deal{}, false, err
	}
	incentives, err := parseNumber(get(colIncentives), colIncentives)
	if err != nil {
		return model.Deal{}, false, err
	}
	if revenue > 0 {
		deal.Tiers = model.NormalizeTiers([]model.DealTier{{
			AnnualRevenue:     revenue,
			AnnualGrossMargin: finance.NormalizeMargin(margin),
			IncentiveValue:    incentives,
		}})
	}

	return deal, false, nil
}

func parseNumber(s, col string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	// Sheets exported from finance tools often carry separators.
	s = strings.NewReplacer(",", "", "$", "", "%", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse %q", col)
	}
	return v, nil
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("dealsheet: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("dealsheet: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}
