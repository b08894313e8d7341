package models

import (
	"errors"
	"fmt"
)

// Coordinate represents a geographical point in WGS84 degrees.
type Coordinate struct {
	Lat float64 `json:"lat"` // Latitude of the point.
	Lng float64 `json:"lng"` // Longitude of the point.
}

// BoundingBox describes the rectangular play area in degrees.
// North must be greater than South and East greater than West.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ErrInvalidBox is returned when a bounding box violates its corner ordering.
var ErrInvalidBox = errors.New("bounding box corners are inverted")

// Validate checks the corner ordering invariant.
func (b BoundingBox) Validate() error {
	if b.North <= b.South || b.East <= b.West {
		return fmt.Errorf("%w: north=%f south=%f east=%f west=%f", ErrInvalidBox, b.North, b.South, b.East, b.West)
	}
	return nil
}

// Center returns the geometric center of the box.
func (b BoundingBox) Center() Coordinate {
	const half = 2
	return Coordinate{
		Lat: (b.North + b.South) / half,
		Lng: (b.East + b.West) / half,
	}
}

// Contains reports whether the coordinate lies inside the box, borders included.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.South && c.Lat <= b.North && c.Lng >= b.West && c.Lng <= b.East
}
