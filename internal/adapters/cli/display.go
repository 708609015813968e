package cli

import (
	"fmt"
	"io"
	"strings"

	"sanmar-inventory/internal/core"
)

// PrintTable renders one style's matrix as a fixed-width console table.
func PrintTable(w io.Writer, table *core.Table) {
	labelWidth := 0
	cellWidths := make([]int, 0)
	for _, row := range table.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		for i, cell := range row.Cells {
			for len(cellWidths) <= i {
				cellWidths = append(cellWidths, 0)
			}
			if len(cell) > cellWidths[i] {
				cellWidths[i] = len(cell)
			}
		}
	}

	total := labelWidth + 2
	for _, cw := range cellWidths {
		total += cw + 2
	}
	if total < 30 {
		total = 30
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", total))
	fmt.Fprintf(w, "  %s\n", table.Style)
	fmt.Fprintln(w, strings.Repeat("=", total))
	for _, row := range table.Rows {
		var b strings.Builder
		fmt.Fprintf(&b, "  %-*s", labelWidth, row.Label)
		for i, cell := range row.Cells {
			fmt.Fprintf(&b, "  %*s", cellWidths[i], cell)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		if row.Label == core.HeaderRowLabel {
			fmt.Fprintln(w, strings.Repeat("-", total))
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", total))
}
