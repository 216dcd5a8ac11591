package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"campusql/internal/dataset"
)

// Disk persists one <id>.json file per dataset under a single directory.
type Disk struct {
	dir string
}

// OpenDisk creates the storage directory if needed and returns a Disk store.
func OpenDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

// ReadAll implements Store. Files without a .json suffix are ignored.
func (d *Disk) ReadAll() (map[string]dataset.Stored, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("read storage directory %s: %w", d.dir, err)
	}

	units := make(map[string]dataset.Stored)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(d.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read dataset file %s: %w", entry.Name(), err)
		}
		var unit dataset.Stored
		if err := json.Unmarshal(raw, &unit); err != nil {
			return nil, fmt.Errorf("decode dataset file %s: %w", entry.Name(), err)
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		units[id] = unit
	}
	return units, nil
}

// Write implements Store. The file is replaced as a whole; no write-ahead or
// rename dance is attempted.
func (d *Disk) Write(id string, unit dataset.Stored) error {
	raw, err := json.Marshal(unit)
	if err != nil {
		return fmt.Errorf("encode dataset %s: %w", id, err)
	}
	if err := os.WriteFile(d.path(id), raw, 0o644); err != nil {
		return fmt.Errorf("write dataset file for %s: %w", id, err)
	}
	return nil
}

// Delete implements Store. A missing file is reported as not-found, not as
// a storage failure.
func (d *Disk) Delete(id string) error {
	if err := os.Remove(d.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dataset.NewNotFoundError(id)
		}
		return fmt.Errorf("delete dataset file for %s: %w", id, err)
	}
	return nil
}

// Close implements Store. Disk holds no open resources.
func (d *Disk) Close() error {
	return nil
}

func (d *Disk) path(id string) string {
	return filepath.Join(d.dir, id+".json")
}
