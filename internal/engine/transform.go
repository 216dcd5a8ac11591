package engine

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"campusql/internal/dataset"
	"campusql/internal/query"
)

// group is one partition of the matched records, keyed by the tuple of
// group-key values.
type group struct {
	keyValues map[string]any // qualified group key → value
	records   []dataset.Record
}

// transform partitions records by the tuple of group-key values and
// computes every apply rule per group. Each group yields exactly one row
// holding its group-key values and its apply outputs. Groups appear in
// first-occurrence order for deterministic output.
func transform(t *query.Transform, records []dataset.Record) ([]Row, error) {
	groups := make(map[string]*group)
	var order []string

	for _, rec := range records {
		var sb strings.Builder
		keyValues := make(map[string]any, len(t.GroupKeys))
		for _, groupKey := range t.GroupKeys {
			key, err := dataset.ParseKey(groupKey)
			if err != nil {
				return nil, err
			}
			v, _ := rec.Field(key.Field)
			keyValues[groupKey] = v
			fmt.Fprintf(&sb, "%v\x00", v)
		}
		tupleKey := sb.String()
		g, ok := groups[tupleKey]
		if !ok {
			g = &group{keyValues: keyValues}
			groups[tupleKey] = g
			order = append(order, tupleKey)
		}
		g.records = append(g.records, rec)
	}

	rows := make([]Row, 0, len(order))
	for _, tupleKey := range order {
		g := groups[tupleKey]
		row := make(Row, len(g.keyValues)+len(t.Apply))
		for k, v := range g.keyValues {
			row[k] = v
		}
		for _, rule := range t.Apply {
			v, err := apply(rule, g.records)
			if err != nil {
				return nil, err
			}
			row[rule.Key] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// apply computes one aggregation over a group.
func apply(rule query.ApplyRule, records []dataset.Record) (any, error) {
	switch rule.Op {
	case query.ApplyCount:
		distinct := make(map[any]struct{}, len(records))
		for _, rec := range records {
			v, _ := rec.Field(rule.Source.Field)
			distinct[v] = struct{}{}
		}
		return float64(len(distinct)), nil

	case query.ApplyMax:
		return reduce(rule, records, func(best, v float64) bool { return v > best })

	case query.ApplyMin:
		return reduce(rule, records, func(best, v float64) bool { return v < best })

	case query.ApplySum:
		sum, err := decimalSum(rule, records)
		if err != nil {
			return nil, err
		}
		return roundTwoPlaces(sum)

	case query.ApplyAvg:
		sum, err := decimalSum(rule, records)
		if err != nil {
			return nil, err
		}
		total, err := sum.Float64()
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", rule.Key, err)
		}
		var avg apd.Decimal
		if _, err := avg.SetFloat64(total / float64(len(records))); err != nil {
			return nil, fmt.Errorf("apply %s: %w", rule.Key, err)
		}
		return roundTwoPlaces(&avg)

	default:
		return nil, dataset.NewRequestError(fmt.Sprintf("unknown apply operator %q", rule.Op))
	}
}

func reduce(rule query.ApplyRule, records []dataset.Record, better func(best, v float64) bool) (any, error) {
	if len(records) == 0 {
		return nil, dataset.NewRequestError(fmt.Sprintf("apply %s over an empty group", rule.Key))
	}
	best, err := numericField(records[0], rule.Source.Field)
	if err != nil {
		return nil, err
	}
	for _, rec := range records[1:] {
		v, err := numericField(rec, rule.Source.Field)
		if err != nil {
			return nil, err
		}
		if better(best, v) {
			best = v
		}
	}
	return best, nil
}

// decimalSum accumulates the source field as decimals so that repeated
// float addition cannot drift the total.
func decimalSum(rule query.ApplyRule, records []dataset.Record) (*apd.Decimal, error) {
	ctx := apd.BaseContext.WithPrecision(30)
	sum := new(apd.Decimal)
	for _, rec := range records {
		v, err := numericField(rec, rule.Source.Field)
		if err != nil {
			return nil, err
		}
		var d apd.Decimal
		if _, err := d.SetFloat64(v); err != nil {
			return nil, fmt.Errorf("apply %s: %w", rule.Key, err)
		}
		if _, err := ctx.Add(sum, sum, &d); err != nil {
			return nil, fmt.Errorf("apply %s: %w", rule.Key, err)
		}
	}
	return sum, nil
}

// roundTwoPlaces rounds half away from zero to two decimal places.
func roundTwoPlaces(d *apd.Decimal) (float64, error) {
	ctx := apd.BaseContext.WithPrecision(30)
	ctx.Rounding = apd.RoundHalfUp
	var q apd.Decimal
	if _, err := ctx.Quantize(&q, d, -2); err != nil {
		return 0, fmt.Errorf("round to two places: %w", err)
	}
	f, err := q.Float64()
	if err != nil {
		return 0, fmt.Errorf("round to two places: %w", err)
	}
	return f, nil
}

func numericField(rec dataset.Record, field string) (float64, error) {
	raw, ok := rec.Field(field)
	if !ok {
		return 0, dataset.NewRequestError(fmt.Sprintf("record has no field %q", field))
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, dataset.NewRequestError(fmt.Sprintf("field %q is not numeric", field))
	}
	return v, nil
}
