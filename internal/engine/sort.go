package engine

import (
	"sort"

	"campusql/internal/query"
)

// sortRows orders rows lexicographically across the order keys in listed
// order. All keys share one direction. Comparison is numeric for numeric
// columns and lexical for string columns. The sort is stable so that rows
// equal on every key keep their pre-sort order.
func sortRows(rows []Row, order *query.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range order.Keys {
			switch compareValues(rows[i][key], rows[j][key]) {
			case -1:
				return !order.Descending
			case 1:
				return order.Descending
			}
		}
		return false
	})
}

// compareValues returns -1, 0, or 1. Values within one column share a type;
// a mixed comparison falls back to equal rather than panicking.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	default:
		return 0
	}
}
