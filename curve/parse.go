package curve

import (
	"strings"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ParseCoordinate converts user typed text to a coordinate. Parsing is lenient: anything that is
// not a number becomes 0.
func ParseCoordinate(s string) float64 {
	return cast.ToFloat64(strings.TrimSpace(s))
}

// ParsePoint parses "x,y" leniently. Missing components are 0.
func ParsePoint(s string) r2.Point {
	xs, ys, _ := strings.Cut(s, ",")
	return r2.Point{X: ParseCoordinate(xs), Y: ParseCoordinate(ys)}
}

// ParseColor parses a "#rrggbb" hex color.
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return colorful.Color{}, errors.Wrapf(err, "invalid color %q", s)
	}
	return c, nil
}
