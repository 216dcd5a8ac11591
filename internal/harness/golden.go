package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"campusql/internal/dataset"
)

// RunWithGolden executes a scenario and compares its result rows against
// the golden file testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Scenarios expecting an error assert on the error kind instead of a
// golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	rows, err := scenario.Run()
	switch scenario.WantError {
	case "request":
		if !dataset.IsRequestError(err) {
			t.Fatalf("scenario %s: want request error, got %v", scenario.Name, err)
		}
		return
	case "too-large":
		if !dataset.IsResultTooLarge(err) {
			t.Fatalf("scenario %s: want result-too-large, got %v", scenario.Name, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		t.Fatalf("scenario %s: encode rows: %v", scenario.Name, err)
	}
	data = append(data, '\n')

	g := goldie.New(t)
	g.Assert(t, scenario.Name, data)
}
