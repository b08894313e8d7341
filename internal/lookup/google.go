package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/models"
	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// StreetViewMetadataURL is the Street View Static API metadata endpoint.
// Metadata requests are free of charge and report whether imagery exists
// at a location without fetching the image itself.
const StreetViewMetadataURL = "https://maps.googleapis.com/maps/api/streetview/metadata"

// GoogleAPIClient is the subset of the Google Maps client used for hints.
type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleProvider implements Provider on top of the Google Maps Platform:
// Street View metadata for panorama probes and the Geocoding API for
// addresses. Metadata calls are paced by a token-bucket limiter; geocoding
// calls are paced by the maps client itself.
type GoogleProvider struct {
	maps    GoogleAPIClient // maps is the Google Maps API client
	client  HTTPClient      // client performs Street View metadata requests
	baseURL string          // baseURL of the metadata endpoint
	apiKey  string          // apiKey authorizes metadata requests
	limiter *rate.Limiter   // limiter paces metadata requests
	log     *slog.Logger    // log is the logger for lookup operations
}

// ErrGoogleBadStatus is returned when the metadata endpoint reports a status
// that signals neither presence nor absence of imagery.
var ErrGoogleBadStatus = errors.New("street view metadata returned unexpected status")

// metadataResponse is the JSON reply of the Street View metadata endpoint.
type metadataResponse struct {
	Status string `json:"status"`
	PanoID string `json:"pano_id"`
}

// NewGoogleProvider creates a Google-backed lookup provider.
func NewGoogleProvider(mapsClient GoogleAPIClient, apiKey string, rateLimit int, log *slog.Logger) *GoogleProvider {
	const timeout = 10
	if rateLimit <= 0 {
		rateLimit = 5
		log.Warn("Rate limit for Street View metadata not set, using default", "value", rateLimit)
	}
	return &GoogleProvider{
		maps:    mapsClient,
		client:  &http.Client{Timeout: timeout * time.Second},
		baseURL: StreetViewMetadataURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log:     log,
	}
}

// NewGoogleProviderWithClient allows injecting a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewGoogleProviderWithClient(
	mapsClient GoogleAPIClient,
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *GoogleProvider {
	return &GoogleProvider{
		maps:    mapsClient,
		client:  client,
		baseURL: StreetViewMetadataURL,
		apiKey:  apiKey,
		limiter: limiter,
		log:     log,
	}
}

// LookupPanorama checks whether street-level imagery exists near the given
// coordinate using the Street View metadata endpoint.
func (gp *GoogleProvider) LookupPanorama(ctx context.Context, coord models.Coordinate) (Panorama, error) {
	if err := gp.limiter.Wait(ctx); err != nil {
		return Panorama{}, fmt.Errorf("rate limit exceeded: %w", err)
	}

	gp.log.DebugContext(ctx, "Checking street-level imagery", "lat", coord.Lat, "lng", coord.Lng)

	reqURL, err := url.Parse(gp.baseURL)
	if err != nil {
		return Panorama{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("location", fmt.Sprintf("%f,%f", coord.Lat, coord.Lng))
	query.Set("radius", "50") // meters around the sampled point
	query.Set("source", "outdoor")
	query.Set("key", gp.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return Panorama{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := gp.client.Do(req)
	if err != nil {
		return Panorama{}, fmt.Errorf("failed to execute metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		gp.log.ErrorContext(ctx, "Street View metadata API error", "status", resp.StatusCode, "body", string(body))
		return Panorama{}, fmt.Errorf("street view metadata returned status %d: %s", resp.StatusCode, string(body))
	}

	var meta metadataResponse
	if err = json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return Panorama{}, fmt.Errorf("failed to decode metadata response: %w", err)
	}

	switch meta.Status {
	case "OK":
		return Panorama{Found: true, PanoID: meta.PanoID}, nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return Panorama{Found: false}, nil
	default:
		return Panorama{}, fmt.Errorf("%w: %s", ErrGoogleBadStatus, meta.Status)
	}
}

// ReverseGeocode resolves a coordinate into a formatted address using the
// Google Maps Geocoding API.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "lat", coord.Lat, "lng", coord.Lng)

	req := &maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: coord.Lat, Lng: coord.Lng}}
	results, err := gp.maps.ReverseGeocode(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to reverse geocode: %w", err)
	}

	if len(results) == 0 {
		return "", ErrNoAddress
	}

	return results[0].FormattedAddress, nil
}
