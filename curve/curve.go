// Package curve defines quadratic Bézier path segments and the ordered collections a path is built
// from.
//
// A segment is described by three points:
//
//	P0 = start point
//	P1 = control point
//	P2 = end point
//
// and is evaluated for t in [0, 1] as B(t) = (1-t)²P0 + 2(1-t)tP1 + t²P2. Coordinates are in feet.
package curve

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
)

// NamePrefix is the prefix of every auto generated curve name.
const NamePrefix = "Curve"

// DefaultColor is the color assigned to new curves.
var DefaultColor = colorful.Color{R: 1, G: 0, B: 0}

// Curve is one quadratic Bézier segment. Its name is fixed at construction; the points and color
// may be edited concurrently with readers.
type Curve struct {
	name string

	mu      sync.RWMutex
	start   r2.Point
	control r2.Point
	end     r2.Point
	color   colorful.Color
}

// New returns a curve with the given name, all points at the origin and the default color.
// Point values are not validated; degenerate curves are allowed.
func New(name string) *Curve {
	return &Curve{name: name, color: DefaultColor}
}

// NewWithPoints returns a named curve with the given points.
func NewWithPoints(name string, start, control, end r2.Point) *Curve {
	c := New(name)
	c.start, c.control, c.end = start, control, end
	return c
}

// Name returns the curve's stable identifier.
func (c *Curve) Name() string {
	return c.name
}

// Start returns P0.
func (c *Curve) Start() r2.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.start
}

// Control returns P1.
func (c *Curve) Control() r2.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.control
}

// End returns P2.
func (c *Curve) End() r2.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.end
}

// Color returns the display color.
func (c *Curve) Color() colorful.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.color
}

// Points returns P0, P1 and P2 read together.
func (c *Curve) Points() (r2.Point, r2.Point, r2.Point) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.start, c.control, c.end
}

// SetStart sets P0.
func (c *Curve) SetStart(p r2.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = p
}

// SetControl sets P1.
func (c *Curve) SetControl(p r2.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.control = p
}

// SetEnd sets P2.
func (c *Curve) SetEnd(p r2.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end = p
}

// SetColor sets the display color.
func (c *Curve) SetColor(color colorful.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = color
}

// Copy returns a value identical clone that keeps the same name.
func (c *Curve) Copy() *Curve {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Curve{
		name:    c.name,
		start:   c.start,
		control: c.control,
		end:     c.end,
		color:   c.color,
	}
}

func (c *Curve) String() string {
	p0, p1, p2 := c.Points()
	return fmt.Sprintf("%s{%v %v %v}", c.name, p0, p1, p2)
}

// SegmentName returns the name the n-th segment of a path is expected to carry, e.g. "Curve3".
func SegmentName(n int) string {
	return NamePrefix + strconv.Itoa(n)
}

// segmentNumber parses the N out of "CurveN".
func segmentNumber(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, NamePrefix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NameAllocator hands out sequential curve names. Each project or session owns one; Reset makes
// the next name "Curve1" again.
type NameAllocator struct {
	mu    sync.Mutex
	count int
}

// Next returns the next unused name.
func (na *NameAllocator) Next() string {
	na.mu.Lock()
	defer na.mu.Unlock()
	na.count++
	return SegmentName(na.count)
}

// NewCurve returns a curve carrying the next name.
func (na *NameAllocator) NewCurve() *Curve {
	return New(na.Next())
}

// Reset restarts numbering so that the next name is "Curve1".
func (na *NameAllocator) Reset() {
	na.mu.Lock()
	defer na.mu.Unlock()
	na.count = 0
}

// Observe moves the counter past name if it follows the "CurveN" pattern, so that later names do
// not collide with curves loaded from disk.
func (na *NameAllocator) Observe(name string) {
	n, ok := segmentNumber(name)
	if !ok {
		return
	}
	na.mu.Lock()
	defer na.mu.Unlock()
	if n > na.count {
		na.count = n
	}
}
