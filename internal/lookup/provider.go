package lookup

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// Panorama describes the result of a street-level imagery probe.
type Panorama struct {
	Found  bool   // Found reports whether imagery exists near the point.
	PanoID string // PanoID identifies the panorama when found.
}

// Provider is the external lookup collaborator of the round state machine:
// it probes for street-level imagery at a coordinate and reverse-geocodes
// coordinates into addresses for hints.
type Provider interface {
	LookupPanorama(ctx context.Context, coord models.Coordinate) (Panorama, error)
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrNoAddress is returned when reverse geocoding yields no usable address.
var ErrNoAddress = errors.New("no address found for coordinate")
