package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Geocoder resolves a postal address to coordinates. A returned error
// means the address could not be resolved; callers treat that as "this
// building yields no rooms", never as a fatal ingestion error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// HTTPGeocoder queries an external lookup service:
// GET <base>/<url-escaped address> returning {"lat": n, "lon": n} or
// {"error": "..."}.
type HTTPGeocoder struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPGeocoder returns a geocoder with a modest request timeout.
func NewHTTPGeocoder(baseURL string) *HTTPGeocoder {
	return &HTTPGeocoder{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type geoResponse struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Error string   `json:"error"`
}

// Geocode implements Geocoder.
func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (float64, float64, error) {
	endpoint := g.BaseURL + "/" + url.PathEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("build geocode request: %w", err)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode %q: HTTP %d", address, resp.StatusCode)
	}
	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("geocode %q: decode response: %w", address, err)
	}
	if body.Error != "" {
		return 0, 0, fmt.Errorf("geocode %q: %s", address, body.Error)
	}
	if body.Lat == nil || body.Lon == nil {
		return 0, 0, fmt.Errorf("geocode %q: response has no coordinates", address)
	}
	return *body.Lat, *body.Lon, nil
}
