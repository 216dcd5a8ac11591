package query

import (
	"fmt"
	"strings"

	"campusql/internal/dataset"
)

// Parse validates an untyped query document against the grammar and the
// catalog's known datasets, producing a typed Query or a request error with
// a precise reason. kinds maps every known dataset id to its record kind.
func Parse(doc map[string]any, kinds map[string]dataset.Kind) (*Query, error) {
	if doc == nil {
		return nil, dataset.NewRequestError("query must be a JSON object")
	}
	for key := range doc {
		switch key {
		case "WHERE", "OPTIONS", "TRANSFORMATIONS":
		default:
			return nil, dataset.NewRequestError(fmt.Sprintf("unexpected top-level key %q", key))
		}
	}

	p := &parser{kinds: kinds}

	rawWhere, ok := doc["WHERE"]
	if !ok {
		return nil, dataset.NewRequestError("query is missing WHERE")
	}
	where, err := p.parseWhere(rawWhere)
	if err != nil {
		return nil, err
	}

	var transform *Transform
	if rawTrans, ok := doc["TRANSFORMATIONS"]; ok {
		transform, err = p.parseTransformations(rawTrans)
		if err != nil {
			return nil, err
		}
	}

	rawOptions, ok := doc["OPTIONS"]
	if !ok {
		return nil, dataset.NewRequestError("query is missing OPTIONS")
	}
	columns, order, err := p.parseOptions(rawOptions, transform)
	if err != nil {
		return nil, err
	}

	if p.id == "" {
		return nil, dataset.NewRequestError("query references no dataset")
	}

	return &Query{
		Dataset:   p.id,
		Where:     where,
		Columns:   columns,
		Order:     order,
		Transform: transform,
	}, nil
}

// parser accumulates the single dataset id referenced by the document and
// resolves its kind against the catalog.
type parser struct {
	kinds map[string]dataset.Kind
	id    string
	kind  dataset.Kind
}

// resolveKey parses a qualified key, enforces the single-dataset rule, and
// checks the id against the catalog.
func (p *parser) resolveKey(raw string) (dataset.Key, error) {
	key, err := dataset.ParseKey(raw)
	if err != nil {
		return dataset.Key{}, err
	}
	if p.id == "" {
		kind, known := p.kinds[key.Dataset]
		if !known {
			return dataset.Key{}, dataset.NewRequestError(fmt.Sprintf("key %q references unknown dataset %q", raw, key.Dataset))
		}
		p.id = key.Dataset
		p.kind = kind
	} else if key.Dataset != p.id {
		return dataset.Key{}, dataset.NewRequestError(
			fmt.Sprintf("query references more than one dataset: %q and %q", p.id, key.Dataset))
	}
	if !dataset.IsField(p.kind, key.Field) {
		return dataset.Key{}, dataset.NewRequestError(
			fmt.Sprintf("dataset %q (%s) has no field %q", p.id, p.kind, key.Field))
	}
	return key, nil
}

// parseWhere validates the filter clause. An empty object matches all
// records; any other object must be a single well-formed filter node.
func (p *parser) parseWhere(raw any) (Filter, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, dataset.NewRequestError("WHERE must be an object")
	}
	if len(node) == 0 {
		return All{}, nil
	}
	return p.parseFilter(node)
}

// parseFilter validates one filter node: exactly one key, which must be a
// logic connective or a comparator.
func (p *parser) parseFilter(node map[string]any) (Filter, error) {
	if len(node) != 1 {
		return nil, dataset.NewRequestError(fmt.Sprintf("filter must have exactly one key, got %d", len(node)))
	}
	var op string
	var body any
	for k, v := range node {
		op, body = k, v
	}

	switch op {
	case "AND", "OR":
		children, err := p.parseFilterList(op, body)
		if err != nil {
			return nil, err
		}
		if op == "AND" {
			return And{Filters: children}, nil
		}
		return Or{Filters: children}, nil

	case "NOT":
		child, ok := body.(map[string]any)
		if !ok {
			return nil, dataset.NewRequestError("NOT must contain a filter object")
		}
		inner, err := p.parseFilter(child)
		if err != nil {
			return nil, err
		}
		return Not{Filter: inner}, nil

	case "GT", "LT", "EQ":
		return p.parseCompare(CompareOp(op), body)

	case "IS":
		return p.parseMatch(body)

	default:
		return nil, dataset.NewRequestError(fmt.Sprintf("invalid filter key %q", op))
	}
}

func (p *parser) parseFilterList(op string, body any) ([]Filter, error) {
	list, ok := body.([]any)
	if !ok {
		return nil, dataset.NewRequestError(fmt.Sprintf("%s must contain an array of filters", op))
	}
	if len(list) == 0 {
		return nil, dataset.NewRequestError(fmt.Sprintf("%s must not be empty", op))
	}
	children := make([]Filter, 0, len(list))
	for i, el := range list {
		node, ok := el.(map[string]any)
		if !ok {
			return nil, dataset.NewRequestError(fmt.Sprintf("%s element %d must be a filter object", op, i))
		}
		child, err := p.parseFilter(node)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func (p *parser) parseCompare(op CompareOp, body any) (Filter, error) {
	rawKey, value, err := singlePair(string(op), body)
	if err != nil {
		return nil, err
	}
	number, ok := value.(float64)
	if !ok {
		return nil, dataset.NewRequestError(fmt.Sprintf("%s value for %q must be a number", op, rawKey))
	}
	key, err := p.resolveKey(rawKey)
	if err != nil {
		return nil, err
	}
	if !dataset.IsNumericField(p.kind, key.Field) {
		return nil, dataset.NewRequestError(fmt.Sprintf("%s requires a numeric field, %q is not", op, rawKey))
	}
	return Compare{Op: op, Key: key, Value: number}, nil
}

func (p *parser) parseMatch(body any) (Filter, error) {
	rawKey, value, err := singlePair("IS", body)
	if err != nil {
		return nil, err
	}
	pattern, ok := value.(string)
	if !ok {
		return nil, dataset.NewRequestError(fmt.Sprintf("IS value for %q must be a string", rawKey))
	}
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	key, err := p.resolveKey(rawKey)
	if err != nil {
		return nil, err
	}
	if !dataset.IsStringField(p.kind, key.Field) {
		return nil, dataset.NewRequestError(fmt.Sprintf("IS requires a string field, %q is not", rawKey))
	}
	return Match{Key: key, Pattern: pattern}, nil
}

// validatePattern rejects interior wildcards: '*' may only appear as the
// first and/or last character.
func validatePattern(pattern string) error {
	interior := pattern
	interior = strings.TrimPrefix(interior, "*")
	interior = strings.TrimSuffix(interior, "*")
	if strings.Contains(interior, "*") {
		return dataset.NewRequestError(fmt.Sprintf("pattern %q has an interior wildcard", pattern))
	}
	return nil
}

// singlePair unpacks a comparator body: an object with exactly one
// key/value pair.
func singlePair(op string, body any) (string, any, error) {
	pair, ok := body.(map[string]any)
	if !ok {
		return "", nil, dataset.NewRequestError(fmt.Sprintf("%s must contain an object", op))
	}
	if len(pair) != 1 {
		return "", nil, dataset.NewRequestError(fmt.Sprintf("%s must contain exactly one key, got %d", op, len(pair)))
	}
	for k, v := range pair {
		return k, v, nil
	}
	return "", nil, nil // unreachable
}

// parseOptions validates COLUMNS and ORDER. With a transformation present,
// columns may only reference group keys or apply output keys; otherwise
// every column must be a field key of the referenced dataset.
func (p *parser) parseOptions(raw any, transform *Transform) ([]string, *Order, error) {
	options, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, dataset.NewRequestError("OPTIONS must be an object")
	}
	for key := range options {
		switch key {
		case "COLUMNS", "ORDER":
		default:
			return nil, nil, dataset.NewRequestError(fmt.Sprintf("unexpected OPTIONS key %q", key))
		}
	}

	rawColumns, ok := options["COLUMNS"]
	if !ok {
		return nil, nil, dataset.NewRequestError("OPTIONS is missing COLUMNS")
	}
	list, ok := rawColumns.([]any)
	if !ok || len(list) == 0 {
		return nil, nil, dataset.NewRequestError("COLUMNS must be a non-empty array")
	}

	columns := make([]string, 0, len(list))
	for i, el := range list {
		column, ok := el.(string)
		if !ok {
			return nil, nil, dataset.NewRequestError(fmt.Sprintf("COLUMNS element %d must be a string", i))
		}
		if err := p.checkColumn(column, transform); err != nil {
			return nil, nil, err
		}
		columns = append(columns, column)
	}

	var order *Order
	if rawOrder, ok := options["ORDER"]; ok {
		var err error
		order, err = p.parseOrder(rawOrder, columns)
		if err != nil {
			return nil, nil, err
		}
	}
	return columns, order, nil
}

// checkColumn validates one COLUMNS entry against the transform (when
// present) or the dataset's field schema.
func (p *parser) checkColumn(column string, transform *Transform) error {
	if transform == nil {
		_, err := p.resolveKey(column)
		return err
	}
	for _, groupKey := range transform.GroupKeys {
		if column == groupKey {
			return nil
		}
	}
	for _, rule := range transform.Apply {
		if column == rule.Key {
			return nil
		}
	}
	return dataset.NewRequestError(
		fmt.Sprintf("column %q must be a GROUP key or an APPLY key when TRANSFORMATIONS is present", column))
}

// parseOrder accepts either a bare column key (ascending) or an object
// naming a direction and a non-empty key list. Every order key must appear
// in COLUMNS.
func (p *parser) parseOrder(raw any, columns []string) (*Order, error) {
	switch order := raw.(type) {
	case string:
		if !contains(columns, order) {
			return nil, dataset.NewRequestError(fmt.Sprintf("ORDER key %q is not in COLUMNS", order))
		}
		return &Order{Keys: []string{order}}, nil

	case map[string]any:
		for key := range order {
			switch key {
			case "dir", "keys":
			default:
				return nil, dataset.NewRequestError(fmt.Sprintf("unexpected ORDER key %q", key))
			}
		}
		dir, ok := order["dir"].(string)
		if !ok {
			return nil, dataset.NewRequestError("ORDER dir must be a string")
		}
		if dir != "UP" && dir != "DOWN" {
			return nil, dataset.NewRequestError(fmt.Sprintf("ORDER dir must be UP or DOWN, got %q", dir))
		}
		rawKeys, ok := order["keys"].([]any)
		if !ok || len(rawKeys) == 0 {
			return nil, dataset.NewRequestError("ORDER keys must be a non-empty array")
		}
		keys := make([]string, 0, len(rawKeys))
		for i, el := range rawKeys {
			key, ok := el.(string)
			if !ok {
				return nil, dataset.NewRequestError(fmt.Sprintf("ORDER keys element %d must be a string", i))
			}
			if !contains(columns, key) {
				return nil, dataset.NewRequestError(fmt.Sprintf("ORDER key %q is not in COLUMNS", key))
			}
			keys = append(keys, key)
		}
		return &Order{Descending: dir == "DOWN", Keys: keys}, nil

	default:
		return nil, dataset.NewRequestError("ORDER must be a string or an object")
	}
}

// parseTransformations validates the GROUP/APPLY clause.
func (p *parser) parseTransformations(raw any) (*Transform, error) {
	trans, ok := raw.(map[string]any)
	if !ok {
		return nil, dataset.NewRequestError("TRANSFORMATIONS must be an object")
	}
	for key := range trans {
		switch key {
		case "GROUP", "APPLY":
		default:
			return nil, dataset.NewRequestError(fmt.Sprintf("unexpected TRANSFORMATIONS key %q", key))
		}
	}

	rawGroup, ok := trans["GROUP"]
	if !ok {
		return nil, dataset.NewRequestError("TRANSFORMATIONS is missing GROUP")
	}
	groupList, ok := rawGroup.([]any)
	if !ok || len(groupList) == 0 {
		return nil, dataset.NewRequestError("GROUP must be a non-empty array")
	}
	groupKeys := make([]string, 0, len(groupList))
	for i, el := range groupList {
		raw, ok := el.(string)
		if !ok {
			return nil, dataset.NewRequestError(fmt.Sprintf("GROUP element %d must be a string", i))
		}
		if _, err := p.resolveKey(raw); err != nil {
			return nil, err
		}
		groupKeys = append(groupKeys, raw)
	}

	rawApply, ok := trans["APPLY"]
	if !ok {
		return nil, dataset.NewRequestError("TRANSFORMATIONS is missing APPLY")
	}
	applyList, ok := rawApply.([]any)
	if !ok {
		return nil, dataset.NewRequestError("APPLY must be an array")
	}
	rules := make([]ApplyRule, 0, len(applyList))
	seen := make(map[string]bool)
	for i, el := range applyList {
		rule, err := p.parseApplyRule(i, el)
		if err != nil {
			return nil, err
		}
		if seen[rule.Key] {
			return nil, dataset.NewRequestError(fmt.Sprintf("duplicate APPLY key %q", rule.Key))
		}
		seen[rule.Key] = true
		rules = append(rules, rule)
	}
	return &Transform{GroupKeys: groupKeys, Apply: rules}, nil
}

// parseApplyRule validates one APPLY entry: {applykey: {OP: sourcekey}}.
func (p *parser) parseApplyRule(i int, el any) (ApplyRule, error) {
	body, ok := el.(map[string]any)
	if !ok || len(body) != 1 {
		return ApplyRule{}, dataset.NewRequestError(
			fmt.Sprintf("APPLY element %d must be an object with exactly one key", i))
	}
	var applyKey string
	var rawRule any
	for k, v := range body {
		applyKey, rawRule = k, v
	}
	if applyKey == "" {
		return ApplyRule{}, dataset.NewRequestError(fmt.Sprintf("APPLY element %d has an empty key", i))
	}
	if strings.Contains(applyKey, dataset.IDSeparator) {
		return ApplyRule{}, dataset.NewRequestError(
			fmt.Sprintf("APPLY key %q must not contain %q", applyKey, dataset.IDSeparator))
	}

	ruleBody, ok := rawRule.(map[string]any)
	if !ok || len(ruleBody) != 1 {
		return ApplyRule{}, dataset.NewRequestError(
			fmt.Sprintf("APPLY rule %q must be an object with exactly one operator", applyKey))
	}
	var opToken string
	var rawSource any
	for k, v := range ruleBody {
		opToken, rawSource = k, v
	}

	var op ApplyOp
	switch ApplyOp(opToken) {
	case ApplyMax, ApplyMin, ApplyAvg, ApplyCount, ApplySum:
		op = ApplyOp(opToken)
	default:
		return ApplyRule{}, dataset.NewRequestError(fmt.Sprintf("invalid APPLY operator %q", opToken))
	}

	rawKey, ok := rawSource.(string)
	if !ok {
		return ApplyRule{}, dataset.NewRequestError(fmt.Sprintf("APPLY rule %q must name a field key", applyKey))
	}
	source, err := p.resolveKey(rawKey)
	if err != nil {
		return ApplyRule{}, err
	}
	if op != ApplyCount && !dataset.IsNumericField(p.kind, source.Field) {
		return ApplyRule{}, dataset.NewRequestError(
			fmt.Sprintf("%s requires a numeric field, %q is not", op, rawKey))
	}
	if dataset.IsField(p.kind, applyKey) {
		return ApplyRule{}, dataset.NewRequestError(
			fmt.Sprintf("APPLY key %q collides with a %s field name", applyKey, p.kind))
	}
	return ApplyRule{Key: applyKey, Op: op, Source: source}, nil
}

func contains(list []string, want string) bool {
	for _, el := range list {
		if el == want {
			return true
		}
	}
	return false
}
