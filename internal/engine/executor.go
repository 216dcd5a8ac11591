// Package engine evaluates a validated query against one dataset's
// records.
//
// Evaluation is a pure computation over already-loaded records: filter,
// optional group/apply transform, projection, multi-key sort, and a final
// result-size check. Any phase can terminate the pipeline with an error
// that short-circuits the remaining phases.
package engine

import (
	"campusql/internal/dataset"
	"campusql/internal/query"
)

// MaxResults is the fixed ceiling on result rows. The check runs after the
// transform phase, so grouping that collapses many records into few groups
// can rescue a query that would exceed the ceiling pre-grouping.
const MaxResults = 5000

// Row is one result row: requested output keys mapped to string or float64
// values.
type Row map[string]any

// Evaluate runs the query pipeline over records and returns result rows.
func Evaluate(q *query.Query, records []dataset.Record) ([]Row, error) {
	matched := make([]dataset.Record, 0, len(records))
	for _, rec := range records {
		if matches(q.Where, rec) {
			matched = append(matched, rec)
		}
	}

	var rows []Row
	if q.Transform != nil {
		grouped, err := transform(q.Transform, matched)
		if err != nil {
			return nil, err
		}
		rows = projectRows(q.Columns, grouped)
	} else {
		rows = projectRecords(q.Columns, matched)
	}

	if q.Order != nil {
		sortRows(rows, q.Order)
	}

	if len(rows) > MaxResults {
		return nil, dataset.NewResultTooLargeError(len(rows), MaxResults)
	}
	return rows, nil
}

// projectRecords builds one row per raw record, retaining only the
// requested columns in the order requested. Columns are qualified field
// keys; validation guarantees they resolve on the record's kind.
func projectRecords(columns []string, records []dataset.Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, len(columns))
		for _, column := range columns {
			key, err := dataset.ParseKey(column)
			if err != nil {
				continue
			}
			if v, ok := rec.Field(key.Field); ok {
				row[column] = v
			}
		}
		rows[i] = row
	}
	return rows
}

// projectRows narrows transformed rows, which are already keyed by group
// keys and apply keys, down to the requested columns.
func projectRows(columns []string, rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		projected := make(Row, len(columns))
		for _, column := range columns {
			if v, ok := row[column]; ok {
				projected[column] = v
			}
		}
		out[i] = projected
	}
	return out
}
