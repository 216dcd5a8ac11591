// Package catalog owns the set of currently known datasets and reconciles
// it with durable storage.
//
// The catalog is an explicit object with an injectable storage backend
// rather than a process-wide singleton; call sites receive the instance.
// Add and Remove resync from storage before mutating, so a dataset written
// by another process instance is detected. A single-writer mutex makes the
// validate-then-mutate sequence safe under concurrent callers sharing one
// catalog.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"campusql/internal/dataset"
	"campusql/internal/store"
)

// Info describes one known dataset for listing.
type Info struct {
	ID       string       `json:"id"`
	Kind     dataset.Kind `json:"kind"`
	RowCount int          `json:"numRows"`
}

// Catalog is the single source of truth for which datasets exist and what
// they contain.
type Catalog struct {
	mu      sync.Mutex
	store   store.Store
	records map[string][]dataset.Record
	kinds   map[string]dataset.Kind
	loaded  bool
}

// Open returns a catalog backed by the given store. Nothing is read until
// the first operation that needs durable state.
func Open(s store.Store) *Catalog {
	return &Catalog{
		store:   s,
		records: make(map[string][]dataset.Record),
		kinds:   make(map[string]dataset.Kind),
	}
}

// Reload rebuilds the in-memory maps from durable storage, replacing any
// prior in-memory state. Safe to call repeatedly.
func (c *Catalog) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloadLocked()
}

func (c *Catalog) reloadLocked() error {
	units, err := c.store.ReadAll()
	if err != nil {
		return dataset.WrapRequestError("reload datasets from storage", err)
	}

	records := make(map[string][]dataset.Record, len(units))
	kinds := make(map[string]dataset.Kind, len(units))
	for id, unit := range units {
		recs, err := unit.Decode()
		if err != nil {
			return dataset.WrapRequestError(fmt.Sprintf("decode stored dataset %q", id), err)
		}
		records[id] = recs
		kinds[id] = unit.Kind
	}
	c.records = records
	c.kinds = kinds
	c.loaded = true
	return nil
}

// ensureLoadedLocked performs the lazy first load.
func (c *Catalog) ensureLoadedLocked() error {
	if c.loaded {
		return nil
	}
	return c.reloadLocked()
}

// Add validates the id, resyncs from storage to catch datasets written by
// other process instances, then stores records in memory and durably as one
// unit. A durable-write failure fails the add even though memory was
// already updated; callers must not assume Add is atomic.
func (c *Catalog) Add(id string, kind dataset.Kind, records []dataset.Record) ([]string, error) {
	if err := dataset.ValidateID(id); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reloadLocked(); err != nil {
		return nil, err
	}
	if _, exists := c.kinds[id]; exists {
		return nil, dataset.NewRequestError(fmt.Sprintf("dataset %q already exists", id))
	}

	c.records[id] = records
	c.kinds[id] = kind

	unit, err := dataset.Encode(kind, records)
	if err != nil {
		return nil, dataset.WrapRequestError(fmt.Sprintf("encode dataset %q", id), err)
	}
	if err := c.store.Write(id, unit); err != nil {
		return nil, dataset.WrapRequestError(fmt.Sprintf("persist dataset %q", id), err)
	}
	return c.idsLocked(), nil
}

// Remove resyncs from storage, then deletes both the in-memory and durable
// copies. An id absent from both is a not-found error, as is a unit that
// vanished from storage between the resync and the delete.
func (c *Catalog) Remove(id string) error {
	if err := dataset.ValidateID(id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reloadLocked(); err != nil {
		return err
	}
	if _, exists := c.kinds[id]; !exists {
		return dataset.NewNotFoundError(id)
	}
	if err := c.store.Delete(id); err != nil {
		if dataset.IsNotFound(err) {
			return err
		}
		return dataset.WrapRequestError(fmt.Sprintf("delete dataset %q from storage", id), err)
	}
	delete(c.records, id)
	delete(c.kinds, id)
	return nil
}

// List returns id, kind, and row count for every known dataset, sorted by
// id for stable output.
func (c *Catalog) List() ([]Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(c.kinds))
	for id, kind := range c.kinds {
		infos = append(infos, Info{ID: id, Kind: kind, RowCount: len(c.records[id])})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Kinds returns the id→kind mapping of every known dataset. The validator
// uses this to resolve query key prefixes.
func (c *Catalog) Kinds() (map[string]dataset.Kind, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	kinds := make(map[string]dataset.Kind, len(c.kinds))
	for id, kind := range c.kinds {
		kinds[id] = kind
	}
	return kinds, nil
}

// Records returns the records and kind of one dataset.
func (c *Catalog) Records(id string) ([]dataset.Record, dataset.Kind, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoadedLocked(); err != nil {
		return nil, "", err
	}
	kind, exists := c.kinds[id]
	if !exists {
		return nil, "", dataset.NewNotFoundError(id)
	}
	return c.records[id], kind, nil
}

func (c *Catalog) idsLocked() []string {
	ids := make([]string, 0, len(c.kinds))
	for id := range c.kinds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
