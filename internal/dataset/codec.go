package dataset

import (
	"encoding/json"
	"fmt"
)

// Stored is the durable representation of one dataset: a single unit
// holding the kind tag and the record array. The record array stays raw
// until the kind is known.
type Stored struct {
	Kind    Kind            `json:"kind"`
	Records json.RawMessage `json:"records"`
}

// Encode serializes records into a Stored unit.
func Encode(kind Kind, records []Record) (Stored, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return Stored{}, fmt.Errorf("marshal records: %w", err)
	}
	return Stored{Kind: kind, Records: raw}, nil
}

// Decode deserializes a Stored unit back into typed records.
func (s Stored) Decode() ([]Record, error) {
	switch s.Kind {
	case KindSections:
		var sections []Section
		if err := json.Unmarshal(s.Records, &sections); err != nil {
			return nil, fmt.Errorf("unmarshal section records: %w", err)
		}
		records := make([]Record, len(sections))
		for i, sec := range sections {
			records[i] = sec
		}
		return records, nil
	case KindRooms:
		var rooms []Room
		if err := json.Unmarshal(s.Records, &rooms); err != nil {
			return nil, fmt.Errorf("unmarshal room records: %w", err)
		}
		records := make([]Record, len(rooms))
		for i, room := range rooms {
			records[i] = room
		}
		return records, nil
	default:
		return nil, fmt.Errorf("stored dataset has unknown kind %q", s.Kind)
	}
}
