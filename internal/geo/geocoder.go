package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/belovebe/taskmatch/internal/config"
	"github.com/belovebe/taskmatch/internal/logger"
)

// Point is a geographic coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Address is a free-form postal address used for forward geocoding.
type Address struct {
	Country string
	City    string
	Street  string
	House   string
}

// Geocoder resolves addresses to coordinates. Implementations must
// degrade gracefully: a nil result with nil error means "no match".
type Geocoder interface {
	Forward(ctx context.Context, addr Address) (*Point, error)
}

// NominatimGeocoder queries the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatimGeocoder(cfg *config.Config) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(cfg.Geocode.BaseURL, "/"),
		userAgent: cfg.Geocode.UserAgent,
		client:    &http.Client{Timeout: cfg.Geocode.Timeout},
	}
}

// Forward geocodes an address to a best-match coordinate pair.
// Returns (nil, nil) when the address is empty or nothing matched.
func (g *NominatimGeocoder) Forward(ctx context.Context, addr Address) (*Point, error) {
	query := buildQuery(addr)
	if query == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", g.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		logger.Warn("geocoder returned unparseable coordinates", "lat", results[0].Lat, "lon", results[0].Lon)
		return nil, nil
	}

	return &Point{Latitude: lat, Longitude: lon}, nil
}

// buildQuery joins the populated address parts in "street house, city,
// country" order, matching what the search API expects.
func buildQuery(addr Address) string {
	var parts []string
	switch {
	case addr.Street != "" && addr.House != "":
		parts = append(parts, addr.Street+" "+addr.House)
	case addr.Street != "":
		parts = append(parts, addr.Street)
	case addr.House != "":
		parts = append(parts, addr.House)
	}
	if addr.City != "" {
		parts = append(parts, addr.City)
	}
	if addr.Country != "" {
		parts = append(parts, addr.Country)
	}
	return strings.Join(parts, ", ")
}
