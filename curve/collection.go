package curve

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// NewCurveNotFoundError is used when no curve in a collection carries the given name.
func NewCurveNotFoundError(name string) error {
	return errors.Errorf("curve %q not found", name)
}

// NewDuplicateNameError is used when a curve name is already taken in a collection.
func NewDuplicateNameError(name string) error {
	return errors.Errorf("curve named %q already exists", name)
}

// Collection is the ordered list of curves making up a project. It owns its curves; simulations
// and codecs only borrow it for the duration of a call.
type Collection struct {
	mu     sync.RWMutex
	curves []*Curve
}

// NewCollection returns a collection holding curves in the given order.
func NewCollection(curves ...*Curve) *Collection {
	return &Collection{curves: append([]*Curve(nil), curves...)}
}

// Add appends a curve. Names must be unique within the collection.
func (coll *Collection) Add(c *Curve) error {
	coll.mu.Lock()
	defer coll.mu.Unlock()
	if _, ok := coll.findLocked(c.Name()); ok {
		return NewDuplicateNameError(c.Name())
	}
	coll.curves = append(coll.curves, c)
	return nil
}

// Insert places a curve at index i, shifting later curves back.
func (coll *Collection) Insert(i int, c *Curve) error {
	coll.mu.Lock()
	defer coll.mu.Unlock()
	if i < 0 || i > len(coll.curves) {
		return errors.Errorf("insert index %d out of range [0, %d]", i, len(coll.curves))
	}
	if _, ok := coll.findLocked(c.Name()); ok {
		return NewDuplicateNameError(c.Name())
	}
	coll.curves = append(coll.curves, nil)
	copy(coll.curves[i+1:], coll.curves[i:])
	coll.curves[i] = c
	return nil
}

// Remove deletes the curve with the given name and returns it.
func (coll *Collection) Remove(name string) (*Curve, error) {
	coll.mu.Lock()
	defer coll.mu.Unlock()
	_, idx, ok := lo.FindIndexOf(coll.curves, func(c *Curve) bool { return c.Name() == name })
	if !ok {
		return nil, NewCurveNotFoundError(name)
	}
	removed := coll.curves[idx]
	coll.curves = append(coll.curves[:idx], coll.curves[idx+1:]...)
	return removed, nil
}

// Len returns the number of curves.
func (coll *Collection) Len() int {
	coll.mu.RLock()
	defer coll.mu.RUnlock()
	return len(coll.curves)
}

// At returns the curve at position i.
func (coll *Collection) At(i int) (*Curve, bool) {
	coll.mu.RLock()
	defer coll.mu.RUnlock()
	if i < 0 || i >= len(coll.curves) {
		return nil, false
	}
	return coll.curves[i], true
}

// All returns the curves in order. The slice is a copy, the curves are shared.
func (coll *Collection) All() []*Curve {
	coll.mu.RLock()
	defer coll.mu.RUnlock()
	return append([]*Curve(nil), coll.curves...)
}

// Find returns the curve with the given name.
func (coll *Collection) Find(name string) (*Curve, bool) {
	coll.mu.RLock()
	defer coll.mu.RUnlock()
	return coll.findLocked(name)
}

func (coll *Collection) findLocked(name string) (*Curve, bool) {
	return lo.Find(coll.curves, func(c *Curve) bool { return c.Name() == name })
}

// Snapshot returns deep copies of every curve, taken under the read lock. Persistence hands the
// snapshot to a background writer instead of the live curves.
func (coll *Collection) Snapshot() []*Curve {
	coll.mu.RLock()
	defer coll.mu.RUnlock()
	return lo.Map(coll.curves, func(c *Curve, _ int) *Curve { return c.Copy() })
}

// SetAll replaces the whole contents of the collection.
func (coll *Collection) SetAll(curves []*Curve) error {
	if dup := lo.FindDuplicatesBy(curves, func(c *Curve) string { return c.Name() }); len(dup) > 0 {
		return NewDuplicateNameError(dup[0].Name())
	}
	coll.mu.Lock()
	defer coll.mu.Unlock()
	coll.curves = append([]*Curve(nil), curves...)
	return nil
}

// SegmentSource resolves the 1-based segment index of a path to a curve. A false result ends the
// path.
type SegmentSource interface {
	Segment(index int) (*Curve, bool)
}

type byName struct {
	coll *Collection
}

// ByName resolves segment i to the curve named "Curve<i>", wherever it sits in the collection.
// This is the historic lookup contract: renaming curves or leaving a gap in the numbering ends the
// path early, and reordering the collection has no effect on the route.
func ByName(coll *Collection) SegmentSource {
	return byName{coll}
}

func (src byName) Segment(index int) (*Curve, bool) {
	return src.coll.Find(SegmentName(index))
}

type byPosition struct {
	coll *Collection
}

// ByPosition resolves segment i to the i-th curve of the collection (1-based) regardless of name.
func ByPosition(coll *Collection) SegmentSource {
	return byPosition{coll}
}

func (src byPosition) Segment(index int) (*Curve, bool) {
	return src.coll.At(index - 1)
}
