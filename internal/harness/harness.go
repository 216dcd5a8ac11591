// Package harness runs end-to-end query scenarios described in YAML
// files: a small record set, a query document, and an expected outcome.
// Scenario results are compared against golden files, which serve as the
// source of truth for expected query output.
package harness

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"campusql/internal/dataset"
	"campusql/internal/engine"
	"campusql/internal/query"
)

// Scenario defines one end-to-end query test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// DatasetID and Kind describe the single dataset the query targets.
	DatasetID string `yaml:"dataset_id"`
	Kind      string `yaml:"kind"`

	// Records holds the dataset content as bare field→value maps.
	Records []map[string]any `yaml:"records"`

	// Query is the untyped query document, exactly as a client would
	// submit it.
	Query map[string]any `yaml:"query"`

	// WantError expects the scenario to fail: "request" for a
	// validation/processing error, "too-large" for the result ceiling.
	WantError string `yaml:"want_error,omitempty"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &s, nil
}

// Run validates and evaluates the scenario's query against its records.
func (s *Scenario) Run() ([]engine.Row, error) {
	kind, err := dataset.ParseKind(s.Kind)
	if err != nil {
		return nil, err
	}
	records, err := s.buildRecords(kind)
	if err != nil {
		return nil, err
	}

	doc, ok := normalize(s.Query).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("scenario %s: query is not an object", s.Name)
	}
	q, err := query.Parse(doc, map[string]dataset.Kind{s.DatasetID: kind})
	if err != nil {
		return nil, err
	}
	return engine.Evaluate(q, records)
}

// buildRecords converts the YAML field maps into typed records by way of
// the dataset codec.
func (s *Scenario) buildRecords(kind dataset.Kind) ([]dataset.Record, error) {
	raw, err := json.Marshal(s.Records)
	if err != nil {
		return nil, fmt.Errorf("encode scenario records: %w", err)
	}
	stored := dataset.Stored{Kind: kind, Records: raw}
	records, err := stored.Decode()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return records, nil
}

// normalize rewrites YAML-decoded values into the shapes the validator
// expects from JSON input: integers become float64.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalize(child)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return v
	}
}
