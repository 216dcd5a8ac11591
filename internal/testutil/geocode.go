package testutil

import (
	"context"
	"sync"
)

// FakeGeocoder resolves every address to a fixed coordinate, or fails
// addresses listed in Fail. It records the addresses it was asked about.
type FakeGeocoder struct {
	Lat  float64
	Lon  float64
	Fail map[string]error

	mu        sync.Mutex
	addresses []string
}

// Geocode implements the ingestion pipeline's Geocoder contract.
func (g *FakeGeocoder) Geocode(_ context.Context, address string) (float64, float64, error) {
	g.mu.Lock()
	g.addresses = append(g.addresses, address)
	g.mu.Unlock()

	if err, ok := g.Fail[address]; ok {
		return 0, 0, err
	}
	return g.Lat, g.Lon, nil
}

// Addresses returns every address geocoded so far.
func (g *FakeGeocoder) Addresses() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.addresses))
	copy(out, g.addresses)
	return out
}
