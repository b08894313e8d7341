package geo

import (
	"math/rand"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// Sampler draws uniformly distributed coordinates from a bounding box.
// It is safe to call Sample any number of times.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler backed by the given source. A nil source falls
// back to a time-seeded one.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // game randomness, not crypto
	}
	return &Sampler{rng: rng}
}

// Sample returns a uniformly random coordinate inside box.
func (s *Sampler) Sample(box models.BoundingBox) models.Coordinate {
	return models.Coordinate{
		Lat: box.South + s.rng.Float64()*(box.North-box.South),
		Lng: box.West + s.rng.Float64()*(box.East-box.West),
	}
}
