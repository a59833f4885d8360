package curveio

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"go.viam.com/test"

	"go.viam.com/bezierplanner/curve"
)

func sampleCurves() []*curve.Curve {
	c1 := curve.NewWithPoints("Curve1", r2.Point{X: 0, Y: 0}, r2.Point{X: 5, Y: 0}, r2.Point{X: 10, Y: 0})
	c2 := curve.NewWithPoints("Curve2", r2.Point{X: 10, Y: 0}, r2.Point{X: 12.5, Y: -3.25}, r2.Point{X: 20, Y: 7})
	c2.SetColor(colorful.Color{R: 0.2, G: 0.4, B: 0.6})
	c3 := curve.NewWithPoints("Spur", r2.Point{X: -1e6, Y: 1e-6}, r2.Point{X: 3, Y: 3}, r2.Point{X: 0.1, Y: 0.7})
	c3.SetColor(colorful.Color{R: 0, G: 1, B: 1.0 / 3})
	return []*curve.Curve{c1, c2, c3}
}

func TestRoundTrip(t *testing.T) {
	all := sampleCurves()
	for _, tc := range []struct {
		name   string
		curves []*curve.Curve
	}{
		{"empty", nil},
		{"one", all[:1]},
		{"many", all},
	} {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Marshal(tc.curves)
			test.That(t, err, test.ShouldBeNil)

			decoded, err := Unmarshal(data)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, decoded, test.ShouldHaveLength, len(tc.curves))
			for i, want := range tc.curves {
				got := decoded[i]
				test.That(t, got.Name(), test.ShouldEqual, want.Name())
				test.That(t, got.Quad(), test.ShouldResemble, want.Quad())
				test.That(t, got.Color().R, test.ShouldAlmostEqual, want.Color().R, 1e-12)
				test.That(t, got.Color().G, test.ShouldAlmostEqual, want.Color().G, 1e-12)
				test.That(t, got.Color().B, test.ShouldAlmostEqual, want.Color().B, 1e-12)
			}
		})
	}
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, "[]\n")
}

func TestUnmarshalBlank(t *testing.T) {
	for _, doc := range []string{"", "   \n\t"} {
		curves, err := Unmarshal([]byte(doc))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, curves, test.ShouldBeEmpty)
	}
}

const validRecord = `"p0x": 0, "p0y": 0, "p1x": 1, "p1y": 1, "p2x": 2, "p2y": 0, "r": 1, "g": 0, "b": 0`

func TestUnmarshalErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		doc    string
		record int
		field  string
	}{
		{"truncated", `[{"name": "Curve1", `, -1, ""},
		{"object at top level", `{"name": "Curve1"}`, -1, ""},
		{"record is not an object", `[{"name": "Curve1", ` + validRecord + `}, 7]`, 1, ""},
		{"missing coordinate", `[{"name": "Curve1", "p0y": 0, "p1x": 1, "p1y": 1, "p2x": 2, "p2y": 0, "r": 1, "g": 0, "b": 0}]`, 0, "p0x"},
		{"missing name", `[{` + validRecord + `}]`, 0, "name"},
		{"empty name", `[{"name": "", ` + validRecord + `}]`, 0, "name"},
		{"wrong type", `[{"name": "Curve1", "p0x": "zero", "p0y": 0, "p1x": 1, "p1y": 1, "p2x": 2, "p2y": 0, "r": 1, "g": 0, "b": 0}]`, 0, "p0x"},
		{"color out of range", `[{"name": "Curve1", "p0x": 0, "p0y": 0, "p1x": 1, "p1y": 1, "p2x": 2, "p2y": 0, "r": 255, "g": 0, "b": 0}]`, 0, "r"},
		{"several problems", `[{"name": "Curve1", "r": -1}]`, 0, ""},
		{"duplicate name", `[{"name": "Curve1", ` + validRecord + `}, {"name": "Curve1", ` + validRecord + `}]`, 1, "name"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			curves, err := Unmarshal([]byte(tc.doc))
			test.That(t, curves, test.ShouldBeNil)
			var parseErr *ParseError
			test.That(t, errors.As(err, &parseErr), test.ShouldBeTrue)
			test.That(t, parseErr.Record, test.ShouldEqual, tc.record)
			test.That(t, parseErr.Field, test.ShouldEqual, tc.field)
		})
	}
}

func TestUnmarshalCombinesFieldErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`[{"name": "Curve1", "p0x": 0, "p0y": 0, "p1x": 1, "p1y": 1, "p2x": 2, "r": 2, "g": 0}]`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `missing field "p2y"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `missing field "b"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `color channel "r"`)
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	curves, err := Unmarshal([]byte(`[{"name": "Curve1", "width": 3, ` + validRecord + `}]`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, curves, test.ShouldHaveLength, 1)
	test.That(t, curves[0].Control(), test.ShouldResemble, r2.Point{X: 1, Y: 1})
}
