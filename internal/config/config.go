package config

import (
	"os"
	"strconv"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the game service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP surface and monitoring endpoints.
// - ProviderType: The type of lookup provider to use (google, nominatim).
// - APIKey: The API key for accessing external services (required for Google).
// - ProviderRateLimit: Requests per second allowed against the provider.
// - City: The display name of the city the bounding box covers.
// - Box: The geographic bounding box locations are sampled from.
// - ViewDuration: How long the panorama stays visible before guessing opens.
// - AdvanceDelay: The pause on the score screen before the next round.
// - RateWindow/RateMaxCalls/RateLockout: The sliding-window lookup guard.
type Config struct {
	Env               string
	Port              int
	ProviderType      string
	APIKey            string
	ProviderRateLimit int
	City              string
	Box               models.BoundingBox
	ViewDuration      time.Duration
	AdvanceDelay      time.Duration
	RateWindow        time.Duration
	RateMaxCalls      int
	RateLockout       time.Duration
}

// Defaults cover Calgary, whose street grid is quadrant-addressed; the hint
// engine leans on that.
const (
	defaultCity  = "Calgary"
	defaultNorth = "51.17"
	defaultSouth = "50.90"
	defaultEast  = "-113.90"
	defaultWest  = "-114.27"
)

// MustLoad loads the configuration from the environment (a .env file is
// honored when present) and panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:               setDefaultEnv("WAYFARER_ENV", "production"),
		Port:              mustInt("WAYFARER_PORT", "8080"),
		ProviderType:      setDefaultEnv("WAYFARER_PROVIDER_TYPE", "nominatim"),
		APIKey:            os.Getenv("WAYFARER_PROVIDER_KEY"),
		ProviderRateLimit: mustInt("WAYFARER_PROVIDER_RATE_LIMIT", "5"),
		City:              setDefaultEnv("WAYFARER_CITY", defaultCity),
		Box: models.BoundingBox{
			North: mustFloat("WAYFARER_BOX_NORTH", defaultNorth),
			South: mustFloat("WAYFARER_BOX_SOUTH", defaultSouth),
			East:  mustFloat("WAYFARER_BOX_EAST", defaultEast),
			West:  mustFloat("WAYFARER_BOX_WEST", defaultWest),
		},
		ViewDuration: mustDuration("WAYFARER_VIEW_DURATION", "10s"),
		AdvanceDelay: mustDuration("WAYFARER_ADVANCE_DELAY", "5s"),
		RateWindow:   mustDuration("WAYFARER_RATE_WINDOW", "60s"),
		RateMaxCalls: mustInt("WAYFARER_RATE_MAX_CALLS", "10"),
		RateLockout:  mustDuration("WAYFARER_RATE_LOCKOUT", "300s"),
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

func mustInt(key, override string) int {
	value, err := strconv.Atoi(setDefaultEnv(key, override))
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be an integer")
	}
	return value
}

func mustFloat(key, override string) float64 {
	value, err := strconv.ParseFloat(setDefaultEnv(key, override), 64)
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be a number")
	}
	return value
}

func mustDuration(key, override string) time.Duration {
	value, err := time.ParseDuration(setDefaultEnv(key, override))
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be a duration")
	}
	return value
}
