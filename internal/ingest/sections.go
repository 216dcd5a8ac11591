package ingest

import (
	"archive/zip"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"campusql/internal/dataset"
)

const coursesDir = "courses/"

// rawSection mirrors one element of a course file's "result" array. Field
// values arrive in mixed types (numbers as strings, course numbers as
// numbers), so everything stays untyped until validation.
type rawSection struct {
	Avg       any `json:"Avg"`
	Pass      any `json:"Pass"`
	Fail      any `json:"Fail"`
	Audit     any `json:"Audit"`
	Year      any `json:"Year"`
	Subject   any `json:"Subject"`
	Course    any `json:"Course"`
	Professor any `json:"Professor"`
	Title     any `json:"Title"`
	ID        any `json:"id"`
}

type courseFile struct {
	Result []rawSection `json:"result"`
}

// Sections parses every non-directory file inside the courses/ container
// concurrently. A file that is not JSON, or an element missing a required
// field or carrying a non-numeric value in a numeric field, is skipped
// rather than failing the dataset.
func Sections(ctx context.Context, zr *zip.Reader) ([]dataset.Record, error) {
	var files []*zip.File
	hasContainer := false
	for _, f := range zr.File {
		if f.Name == coursesDir {
			hasContainer = true
		}
		if !strings.HasPrefix(f.Name, coursesDir) || f.FileInfo().IsDir() {
			continue
		}
		if strings.Contains(f.Name, "__MACOSX/") || strings.HasSuffix(f.Name, ".DS_Store") {
			continue
		}
		files = append(files, f)
	}
	if !hasContainer {
		return nil, dataset.NewRequestError("archive has no top-level courses/ container")
	}

	results := make([][]dataset.Record, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(unitLimit)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			sections, err := parseCourseFile(f)
			if err != nil {
				slog.Debug("skipping course file", "name", f.Name, "err", err)
				return nil
			}
			results[i] = sections
			return nil
		})
	}
	// Unit failures are recorded per-slot, never returned.
	_ = g.Wait()

	var records []dataset.Record
	for _, sections := range results {
		records = append(records, sections...)
	}
	return records, nil
}

func parseCourseFile(f *zip.File) ([]dataset.Record, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var course courseFile
	if err := json.NewDecoder(rc).Decode(&course); err != nil {
		return nil, err
	}

	var records []dataset.Record
	for _, raw := range course.Result {
		if sec, ok := buildSection(raw); ok {
			records = append(records, sec)
		}
	}
	return records, nil
}

// buildSection validates one raw element: every field present, every
// numeric field parseable as a number. Invalid elements are dropped.
func buildSection(raw rawSection) (dataset.Section, bool) {
	avg, ok := toNumber(raw.Avg)
	if !ok {
		return dataset.Section{}, false
	}
	pass, ok := toNumber(raw.Pass)
	if !ok {
		return dataset.Section{}, false
	}
	fail, ok := toNumber(raw.Fail)
	if !ok {
		return dataset.Section{}, false
	}
	audit, ok := toNumber(raw.Audit)
	if !ok {
		return dataset.Section{}, false
	}
	year, ok := toNumber(raw.Year)
	if !ok {
		return dataset.Section{}, false
	}
	dept, ok := toString(raw.Subject)
	if !ok {
		return dataset.Section{}, false
	}
	course, ok := toString(raw.Course)
	if !ok {
		return dataset.Section{}, false
	}
	instructor, ok := toString(raw.Professor)
	if !ok {
		return dataset.Section{}, false
	}
	title, ok := toString(raw.Title)
	if !ok {
		return dataset.Section{}, false
	}
	uuid, ok := toString(raw.ID)
	if !ok {
		return dataset.Section{}, false
	}
	return dataset.Section{
		Avg: avg, Pass: pass, Fail: fail, Audit: audit, Year: year,
		Dept: dept, ID: course, Instructor: instructor, Title: title, UUID: uuid,
	}, true
}

// toNumber accepts JSON numbers and numeric strings.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toString accepts strings and renders JSON numbers the way the raw data
// stores course numbers and section ids.
func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return "", false
	}
}
