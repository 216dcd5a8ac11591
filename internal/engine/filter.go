package engine

import (
	"strings"

	"campusql/internal/dataset"
	"campusql/internal/query"
)

// matches evaluates one filter node against one record. The validator has
// already checked field categories, so a failed field lookup or type
// assertion simply fails the node.
func matches(f query.Filter, rec dataset.Record) bool {
	switch filter := f.(type) {
	case query.All:
		return true

	case query.And:
		for _, child := range filter.Filters {
			if !matches(child, rec) {
				return false
			}
		}
		return true

	case query.Or:
		for _, child := range filter.Filters {
			if matches(child, rec) {
				return true
			}
		}
		return false

	case query.Not:
		return !matches(filter.Filter, rec)

	case query.Compare:
		raw, ok := rec.Field(filter.Key.Field)
		if !ok {
			return false
		}
		value, ok := raw.(float64)
		if !ok {
			return false
		}
		switch filter.Op {
		case query.OpGT:
			return value > filter.Value
		case query.OpLT:
			return value < filter.Value
		case query.OpEQ:
			return value == filter.Value
		}
		return false

	case query.Match:
		raw, ok := rec.Field(filter.Key.Field)
		if !ok {
			return false
		}
		value, ok := raw.(string)
		if !ok {
			return false
		}
		return wildcardMatch(filter.Pattern, value)

	default:
		return false
	}
}

// wildcardMatch applies the IS semantics: exact match without wildcards,
// prefix/suffix/substring matching depending on which end(s) carry '*'.
// Case-sensitive throughout.
func wildcardMatch(pattern, value string) bool {
	leading := strings.HasPrefix(pattern, "*")
	trailing := len(pattern) > 1 && strings.HasSuffix(pattern, "*")
	if pattern == "*" {
		return true
	}

	body := pattern
	if leading {
		body = body[1:]
	}
	if trailing {
		body = body[:len(body)-1]
	}

	switch {
	case leading && trailing:
		return strings.Contains(value, body)
	case leading:
		return strings.HasSuffix(value, body)
	case trailing:
		return strings.HasPrefix(value, body)
	default:
		return value == body
	}
}
