package core

import (
	"sort"
	"strings"
)

// sizeRank holds the presentation order for letter sizes. Sizes starting
// with a digit (2XL, 3XLT, ...) rank after every letter size, grouped by
// their leading digit; anything else sorts last by name.
var sizeRank = map[string]int{
	"XS":   1,
	"S":    2,
	"M":    3,
	"L":    4,
	"XL":  5,
	"LT":  6,
	"XLT": 7,
}

const unknownSizeRank = 99

// sizeKey returns the (rank, tiebreak) pair implementing the size total
// order. Exported behavior lives in SizeLess and SortSizes.
func sizeKey(size string) (int, string) {
	s := strings.ToUpper(strings.TrimSpace(size))
	if s == "" {
		return unknownSizeRank, s
	}
	if s[0] >= '0' && s[0] <= '9' {
		return int(s[0]-'0') + 10, s[1:]
	}
	if rank, ok := sizeRank[s]; ok {
		return rank, s
	}
	return unknownSizeRank, s
}

// SizeLess reports whether size a sorts before size b:
// XS < S < M < L < XL < LT < XLT < 2XLT < 3XLT < 4XLT, digit-prefixed
// sizes after all letter sizes grouped by leading digit, unknowns last.
func SizeLess(a, b string) bool {
	ra, ta := sizeKey(a)
	rb, tb := sizeKey(b)
	if ra != rb {
		return ra < rb
	}
	return ta < tb
}

// SortSizes sorts the slice in place by the size order.
func SortSizes(sizes []string) {
	sort.Slice(sizes, func(i, j int) bool { return SizeLess(sizes[i], sizes[j]) })
}
