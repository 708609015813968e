package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one normalized (style, warehouse, size) inventory fact. Every
// backend emits this shape regardless of what the upstream returns, so the
// pivot and the exporters only ever see one schema.
//
// Rows are flat facts: no row carries derived totals; all aggregation
// happens in the matrix builder.
type Row struct {
	// Style is the caller-supplied product identifier (root style code or
	// color-suffixed slug), never the upstream product code.
	Style string `json:"style"`
	// PartID is an optional fine-grained SKU identifier.
	PartID string `json:"partId"`
	// Color is the color name/code when derivable, else empty.
	Color string `json:"color"`
	// Size is the size token as returned upstream, arbitrary case. Rows
	// with an empty size are kept but excluded from the pivot.
	Size string `json:"size"`
	// Description is the product display name when the source provides one.
	Description string `json:"description"`
	// WarehouseID is the upstream warehouse code. Required; it is the
	// aggregation key for the pivot.
	WarehouseID string `json:"warehouseId"`
	// Warehouse is the human-readable warehouse label. When the source
	// omits a name this holds "Warehouse {WarehouseID}".
	Warehouse string `json:"warehouse"`
	// Qty is the non-negative quantity at that warehouse for that size.
	// Upstream entries whose quantity does not coerce to an integer never
	// produce a Row at all.
	Qty int `json:"qty"`
	// TotalAvailable is the upstream aggregate across warehouses, when the
	// source reports one.
	TotalAvailable *int `json:"totalAvailable"`
	// Price is the unit price when a price entry resolved, else nil.
	Price *decimal.Decimal `json:"price"`
}

// WarehouseLabel returns the display label for an upstream warehouse,
// falling back to "Warehouse {id}" when the source supplied no name.
func WarehouseLabel(name, warehouseID string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "Warehouse " + warehouseID
}

// SplitByStyle partitions rows into per-style groups, preserving both the
// order styles first appear in and the order of rows within each group.
// BuildMatrix accepts exactly one style, so batch callers split first.
func SplitByStyle(rows []Row) [][]Row {
	index := make(map[string]int)
	var groups [][]Row
	for _, r := range rows {
		i, ok := index[r.Style]
		if !ok {
			i = len(groups)
			index[r.Style] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}
