package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Labels used in the pivot's leading label column.
const (
	PriceRowLabel     = "Price: $"
	CaseSizeRowLabel  = "Case Size"
	HeaderRowLabel    = "Warehouse"
	TotalRowLabel     = "Total Inventory"
	MessageRowLabel   = "Message"
	msgNoSizeData     = "No size data available"
	msgNoInventoryRow = "No inventory data available"
)

// DefaultWarehouseOrder is the preferred presentation order for known
// warehouses. Warehouses not listed here are appended after the known ones
// in lexicographic order. Static configuration; never mutated at runtime.
var DefaultWarehouseOrder = []string{
	"Dallas, TX",
	"Cincinnati, OH",
	"Richmond, VA",
	"Jacksonville, FL",
	"Phoenix, AZ",
	"Reno, NV",
	"Minneapolis, MN",
	"Robbinsville, NJ",
	"Seattle, WA",
}

// DefaultPriceTable maps upper-cased sizes to the fallback unit price used
// when no explicit pricing is supplied for a size. The values mirror the
// system this replaces; confirm with the catalog owner before relying on
// them for quoting.
var DefaultPriceTable = map[string]decimal.Decimal{
	"S":    decimal.RequireFromString("37.26"),
	"M":    decimal.RequireFromString("37.26"),
	"L":    decimal.RequireFromString("37.26"),
	"XL":   decimal.RequireFromString("37.26"),
	"LT":   decimal.RequireFromString("37.26"),
	"XLT":  decimal.RequireFromString("37.26"),
	"2XLT": decimal.RequireFromString("38.26"),
	"3XLT": decimal.RequireFromString("40.26"),
	"4XLT": decimal.RequireFromString("41.26"),
}

// DefaultPrice is the global fallback when a size is in neither the
// explicit pricing nor the price table.
var DefaultPrice = decimal.RequireFromString("37.26")

// DefaultCaseSize is the per-size case size emitted when the caller does
// not override it. Placeholder business data, same caveat as the price
// table.
const DefaultCaseSize = 12

// MatrixOptions tunes BuildMatrix. The zero value uses the package
// defaults throughout.
type MatrixOptions struct {
	// Pricing supplies explicit per-size unit prices (keys upper-cased).
	// Sizes missing here fall back to PriceTable, then DefaultPrice.
	Pricing map[string]decimal.Decimal
	// PriceTable overrides DefaultPriceTable when non-nil.
	PriceTable map[string]decimal.Decimal
	// DefaultPrice overrides the global fallback when non-nil.
	DefaultPrice *decimal.Decimal
	// CaseSize overrides DefaultCaseSize when positive.
	CaseSize int
	// WarehouseOrder overrides DefaultWarehouseOrder when non-nil.
	WarehouseOrder []string
}

// TableRow is one row of the pivot: a label plus one cell per size column.
type TableRow struct {
	Label string
	Cells []string
}

// Table is the warehouse-by-size pivot for a single style. Sizes holds the
// data column headers; the leading label column is implicit and must never
// be treated as a size column by writers.
type Table struct {
	Style string
	Sizes []string
	Rows  []TableRow
}

// Informational reports whether the table is a single-cell message rather
// than a grid.
func (t *Table) Informational() bool {
	return len(t.Sizes) == 0
}

// PricingFromRows collects the first resolved unit price seen for each
// size (upper-cased), for feeding MatrixOptions.Pricing from rows that
// carry prices (the web JSON backend does).
func PricingFromRows(rows []Row) map[string]decimal.Decimal {
	pricing := make(map[string]decimal.Decimal)
	for _, r := range rows {
		if r.Price == nil || r.Size == "" {
			continue
		}
		size := strings.ToUpper(strings.TrimSpace(r.Size))
		if _, ok := pricing[size]; !ok {
			pricing[size] = *r.Price
		}
	}
	return pricing
}

// BuildMatrix pivots one style's rows into a warehouse-by-size grid with a
// price row, a case-size row, a size header row, one row per warehouse,
// and a total row. Rows must belong to a single style; multi-style input
// is rejected so callers pre-split with SplitByStyle instead of silently
// losing data.
//
// A style with no usable sizes yields a single-cell informational table,
// never an empty grid. A warehouse whose quantities are all zero is still
// emitted: "no stock" and "not tracked" are different facts.
func BuildMatrix(rows []Row, opts MatrixOptions) (*Table, error) {
	style := ""
	for _, r := range rows {
		if style == "" {
			style = r.Style
			continue
		}
		if r.Style != style {
			return nil, fmt.Errorf("rows span multiple styles (%q and %q); split by style before pivoting", style, r.Style)
		}
	}

	if len(rows) == 0 {
		return messageTable(style, msgNoInventoryRow), nil
	}

	sizeSet := make(map[string]bool)
	// warehouse label -> size -> summed qty
	byWarehouse := make(map[string]map[string]int)
	for _, r := range rows {
		size := strings.ToUpper(strings.TrimSpace(r.Size))
		if size != "" {
			sizeSet[size] = true
		}
		label := WarehouseLabel(r.Warehouse, r.WarehouseID)
		if byWarehouse[label] == nil {
			byWarehouse[label] = make(map[string]int)
		}
		byWarehouse[label][size] += r.Qty
	}

	if len(sizeSet) == 0 {
		return messageTable(style, msgNoSizeData), nil
	}

	sizes := make([]string, 0, len(sizeSet))
	for s := range sizeSet {
		sizes = append(sizes, s)
	}
	SortSizes(sizes)

	warehouses := orderWarehouses(byWarehouse, opts.WarehouseOrder)

	table := &Table{Style: style, Sizes: sizes}

	priceRow := TableRow{Label: PriceRowLabel}
	for _, size := range sizes {
		priceRow.Cells = append(priceRow.Cells, sizePrice(size, opts).StringFixed(2))
	}
	table.Rows = append(table.Rows, priceRow)

	caseSize := opts.CaseSize
	if caseSize <= 0 {
		caseSize = DefaultCaseSize
	}
	caseRow := TableRow{Label: CaseSizeRowLabel}
	for range sizes {
		caseRow.Cells = append(caseRow.Cells, strconv.Itoa(caseSize))
	}
	table.Rows = append(table.Rows, caseRow)

	headerRow := TableRow{Label: HeaderRowLabel, Cells: append([]string(nil), sizes...)}
	table.Rows = append(table.Rows, headerRow)

	totals := make(map[string]int, len(sizes))
	for _, warehouse := range warehouses {
		row := TableRow{Label: warehouse}
		for _, size := range sizes {
			qty := byWarehouse[warehouse][size]
			totals[size] += qty
			row.Cells = append(row.Cells, strconv.Itoa(qty))
		}
		table.Rows = append(table.Rows, row)
	}

	totalRow := TableRow{Label: TotalRowLabel}
	for _, size := range sizes {
		totalRow.Cells = append(totalRow.Cells, strconv.Itoa(totals[size]))
	}
	table.Rows = append(table.Rows, totalRow)

	return table, nil
}

func messageTable(style, message string) *Table {
	return &Table{
		Style: style,
		Rows:  []TableRow{{Label: MessageRowLabel, Cells: []string{message}}},
	}
}

// orderWarehouses places warehouses from the known-order table first, then
// appends the rest alphabetically.
func orderWarehouses(byWarehouse map[string]map[string]int, order []string) []string {
	if order == nil {
		order = DefaultWarehouseOrder
	}
	known := make(map[string]bool, len(order))
	var out []string
	for _, name := range order {
		known[name] = true
		if _, present := byWarehouse[name]; present {
			out = append(out, name)
		}
	}
	var rest []string
	for name := range byWarehouse {
		if !known[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func sizePrice(size string, opts MatrixOptions) decimal.Decimal {
	if p, ok := opts.Pricing[size]; ok {
		return p
	}
	table := opts.PriceTable
	if table == nil {
		table = DefaultPriceTable
	}
	if p, ok := table[size]; ok {
		return p
	}
	if opts.DefaultPrice != nil {
		return *opts.DefaultPrice
	}
	return DefaultPrice
}
