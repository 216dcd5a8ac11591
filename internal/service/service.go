// Package service ties the catalog, ingestion pipeline, validator, and
// executor into the boundary the REST façade and CLI call.
package service

import (
	"context"
	"log/slog"
	"time"

	"campusql/internal/catalog"
	"campusql/internal/dataset"
	"campusql/internal/engine"
	"campusql/internal/ingest"
	"campusql/internal/query"
)

// Service exposes the dataset and query operations of the core.
type Service struct {
	catalog  *catalog.Catalog
	geocoder ingest.Geocoder
}

// New creates a Service around an opened catalog.
func New(cat *catalog.Catalog, geo ingest.Geocoder) *Service {
	return &Service{catalog: cat, geocoder: geo}
}

// AddDataset ingests base64 archive content under id and returns the ids
// of every known dataset, including the new one.
func (s *Service) AddDataset(ctx context.Context, id, kindToken, content string) ([]string, error) {
	if err := dataset.ValidateID(id); err != nil {
		return nil, err
	}
	kind, err := dataset.ParseKind(kindToken)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := ingest.Dataset(ctx, kind, content, s.geocoder)
	if err != nil {
		return nil, err
	}
	slog.Info("ingested dataset", "id", id, "kind", kind, "rows", len(records), "took", time.Since(start))

	return s.catalog.Add(id, kind, records)
}

// RemoveDataset deletes the dataset and returns the removed id.
func (s *Service) RemoveDataset(id string) (string, error) {
	if err := s.catalog.Remove(id); err != nil {
		return "", err
	}
	return id, nil
}

// ListDatasets returns id, kind, and row count for every known dataset.
func (s *Service) ListDatasets() ([]catalog.Info, error) {
	return s.catalog.List()
}

// PerformQuery validates an untyped query document and evaluates it
// against the referenced dataset's records.
func (s *Service) PerformQuery(doc map[string]any) ([]engine.Row, error) {
	kinds, err := s.catalog.Kinds()
	if err != nil {
		return nil, err
	}
	q, err := query.Parse(doc, kinds)
	if err != nil {
		return nil, err
	}
	records, _, err := s.catalog.Records(q.Dataset)
	if err != nil {
		return nil, err
	}
	return engine.Evaluate(q, records)
}
