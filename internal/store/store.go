// Package store provides durable storage backends for the dataset catalog.
//
// A Store holds one durable unit per dataset id, containing the kind tag and
// the record array. The set of units a Store holds is the ground truth the
// catalog resyncs from; no atomicity is guaranteed beyond whole-unit
// replace-or-fail.
//
// Two backends are provided: Disk (one JSON file per dataset, the default)
// and SQLite (one row per dataset).
package store

import "campusql/internal/dataset"

// Store is the durable backend behind the catalog.
//
// Implementations must make Delete return a dataset.NotFoundError when the
// unit is absent, so the catalog can distinguish "never existed" from an
// actual storage failure.
type Store interface {
	// ReadAll returns every persisted unit keyed by dataset id.
	ReadAll() (map[string]dataset.Stored, error)

	// Write replaces the unit for id as a whole, creating it if absent.
	Write(id string, unit dataset.Stored) error

	// Delete removes the unit for id.
	Delete(id string) error

	// Close releases any resources held by the backend.
	Close() error
}
