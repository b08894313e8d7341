// Package geo holds the pure geographic computations of the game: location
// sampling, great-circle distance, scoring, and quadrant-based hints.
package geo

import (
	"math"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// MaxPoints is the score awarded for a perfect guess.
const MaxPoints = 5000

// earthRadiusMeters is the WGS84 mean earth radius.
const earthRadiusMeters = 6371008.8

// Distance returns the great-circle distance in meters between two points
// using the haversine formula.
func Distance(a, b models.Coordinate) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// PointsFor converts a guess distance to points: MaxPoints at zero distance,
// dropping by one point per meter and saturating at zero.
func PointsFor(distanceMeters float64) int {
	points := MaxPoints - int(math.Floor(distanceMeters))
	if points < 0 {
		return 0
	}
	return points
}

// Quadrant names one of the four regions of a bounding box.
type Quadrant string

const (
	Northeast Quadrant = "Northeast"
	Northwest Quadrant = "Northwest"
	Southeast Quadrant = "Southeast"
	Southwest Quadrant = "Southwest"
)

// QuadrantOf classifies a point relative to the geometric center of box.
// Points exactly on a center line resolve south and west, so the center
// itself is Southwest.
func QuadrantOf(p models.Coordinate, box models.BoundingBox) Quadrant {
	center := box.Center()
	north := p.Lat > center.Lat
	east := p.Lng > center.Lng

	switch {
	case north && east:
		return Northeast
	case north:
		return Northwest
	case east:
		return Southeast
	default:
		return Southwest
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
