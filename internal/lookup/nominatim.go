package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is OpenStreetMap's reverse geocoding endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/reverse"

// NominatimProvider implements Provider using OpenStreetMap's Nominatim API.
// It is free and needs no API key, so it is the default for local play.
// Nominatim has no street-level imagery, so panorama probes always report
// the sampled point as usable.
type NominatimProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Nominatim API
	limiter *rate.Limiter // Rate limiter (1 req/s per usage policy)
	log     *slog.Logger  // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// nominatimReverseResponse represents the JSON response from the reverse endpoint.
type nominatimReverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// NewNominatimProvider creates a new Nominatim lookup provider.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return &NominatimProvider{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: NominatimBaseURL,
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		log:     log,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: "Wayfarer-Geo-Game/1.0 (https://github.com/UnknownOlympus/wayfarer)",
	}
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom
// HTTP client. Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		limiter:   limiter,
		log:       log,
		userAgent: "Wayfarer-Geo-Game/1.0 (https://github.com/UnknownOlympus/wayfarer)",
	}
}

// LookupPanorama reports every sampled point as usable: without an imagery
// provider there is nothing to validate against.
func (np *NominatimProvider) LookupPanorama(ctx context.Context, coord models.Coordinate) (Panorama, error) {
	np.log.DebugContext(ctx, "No imagery source configured, accepting sampled point",
		"lat", coord.Lat, "lng", coord.Lng)
	return Panorama{Found: true}, nil
}

// ReverseGeocode resolves a coordinate into a display address using the
// Nominatim reverse endpoint.
func (np *NominatimProvider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim", "lat", coord.Lat, "lng", coord.Lng)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coord.Lng, 'f', -1, 64))
	query.Set("format", "jsonv2")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute reverse geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result nominatimReverseResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	// Nominatim reports "Unable to geocode" as a 200 with an error field.
	if result.Error != "" || result.DisplayName == "" {
		return "", ErrNoAddress
	}

	return result.DisplayName, nil
}
