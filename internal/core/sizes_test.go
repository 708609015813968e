package core_test

import (
	"testing"

	"sanmar-inventory/internal/core"
)

func TestSortSizes_CanonicalOrder(t *testing.T) {
	sizes := []string{"3XLT", "M", "XL", "XS", "2XLT", "LT", "L", "S", "4XLT", "XLT"}
	core.SortSizes(sizes)

	want := []string{"XS", "S", "M", "L", "XL", "LT", "XLT", "2XLT", "3XLT", "4XLT"}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s (full order: %v)", i, sizes[i], want[i], sizes)
		}
	}
}

func TestSizeLess(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"XS before S", "XS", "S", true},
		{"XL before LT", "XL", "LT", true},
		{"digit size after letter size", "2XL", "XLT", false},
		{"2XL before 3XL", "2XL", "3XL", true},
		{"2XL before 2XLT", "2XL", "2XLT", true},
		{"case insensitive", "m", "L", true},
		{"whitespace trimmed", " S ", "M", true},
		{"unknown sorts last", "OSFA", "4XLT", false},
		{"unknowns by name", "AAA", "BBB", true},
		{"equal not less", "M", "M", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.SizeLess(tt.a, tt.b); got != tt.want {
				t.Errorf("SizeLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSizeLess_TotalOrderOnDigitGroups(t *testing.T) {
	// Every digit-prefixed size must sort after every letter-only size.
	letters := []string{"XS", "S", "M", "L", "XL", "LT", "XLT"}
	digits := []string{"2XL", "3XL", "4XL", "2XLT", "5XLT"}
	for _, l := range letters {
		for _, d := range digits {
			if !core.SizeLess(l, d) {
				t.Errorf("expected %s < %s", l, d)
			}
			if core.SizeLess(d, l) {
				t.Errorf("did not expect %s < %s", d, l)
			}
		}
	}
}
