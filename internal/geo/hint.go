package geo

import (
	"fmt"
	"strings"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// quadrantAbbrevs are the directional tokens street addresses carry in
// quadrant-addressed cities (e.g. "1234 10 Ave NE, Calgary").
var quadrantAbbrevs = map[string]bool{
	"NE": true,
	"NW": true,
	"SE": true,
	"SW": true,
}

// HintText formats the per-round hint. With an address that carries a
// quadrant indicator the location is reported as in-quadrant; with an
// address lacking one it is reported as a suburb; without any address
// (rate limited or lookup failure) only the quadrant and city remain.
func HintText(p models.Coordinate, box models.BoundingBox, city, address string) string {
	quadrant := QuadrantOf(p, box)

	if address == "" {
		return fmt.Sprintf("Location is in a suburb of %s %s", quadrant, city)
	}
	if hasQuadrantIndicator(address) {
		return fmt.Sprintf("Location is in %s %s, near %s", quadrant, city, address)
	}
	return fmt.Sprintf("Location is in a suburb of %s %s, near %s", quadrant, city, address)
}

// hasQuadrantIndicator reports whether the address textually mentions any
// quadrant, either by full name or by abbreviation token.
func hasQuadrantIndicator(address string) bool {
	lower := strings.ToLower(address)
	for _, name := range []Quadrant{Northeast, Northwest, Southeast, Southwest} {
		if strings.Contains(lower, strings.ToLower(string(name))) {
			return true
		}
	}

	tokens := strings.FieldsFunc(address, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';'
	})
	for _, token := range tokens {
		if quadrantAbbrevs[strings.ToUpper(token)] {
			return true
		}
	}
	return false
}
