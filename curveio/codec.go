// Package curveio reads and writes curve series.
//
// A series is stored as a JSON array with one object per curve, in path order:
//
//	[
//	  {"name": "Curve1", "p0x": 0, "p0y": 0, "p1x": 5, "p1y": 0, "p2x": 10, "p2y": 0,
//	   "r": 1, "g": 0, "b": 0}
//	]
//
// Coordinates are feet. Color channels are floats in [0, 1].
package curveio

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/bezierplanner/curve"
)

// ParseError describes why a series could not be decoded. Record is the 0-based position of the
// offending object, or -1 when the document as a whole is malformed.
type ParseError struct {
	Record int
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Record < 0:
		return fmt.Sprintf("malformed curve series: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("curve record %d: %v", e.Record, e.Err)
	default:
		return fmt.Sprintf("curve record %d, field %q: %v", e.Record, e.Field, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Record is the stored form of one curve.
type Record struct {
	Name string  `json:"name" jsonschema:"minLength=1,description=unique curve name"`
	P0X  float64 `json:"p0x"`
	P0Y  float64 `json:"p0y"`
	P1X  float64 `json:"p1x"`
	P1Y  float64 `json:"p1y"`
	P2X  float64 `json:"p2x"`
	P2Y  float64 `json:"p2y"`
	R    float64 `json:"r" jsonschema:"minimum=0,maximum=1"`
	G    float64 `json:"g" jsonschema:"minimum=0,maximum=1"`
	B    float64 `json:"b" jsonschema:"minimum=0,maximum=1"`
}

// partialRecord tells a missing field apart from a zero one.
type partialRecord struct {
	Name *string  `json:"name"`
	P0X  *float64 `json:"p0x"`
	P0Y  *float64 `json:"p0y"`
	P1X  *float64 `json:"p1x"`
	P1Y  *float64 `json:"p1y"`
	P2X  *float64 `json:"p2x"`
	P2Y  *float64 `json:"p2y"`
	R    *float64 `json:"r"`
	G    *float64 `json:"g"`
	B    *float64 `json:"b"`
}

// Marshal encodes curves in order. An empty list encodes as [].
func Marshal(curves []*curve.Curve) ([]byte, error) {
	records := make([]Record, 0, len(curves))
	for _, c := range curves {
		p0, p1, p2 := c.Points()
		color := c.Color()
		records = append(records, Record{
			Name: c.Name(),
			P0X:  p0.X, P0Y: p0.Y,
			P1X: p1.X, P1Y: p1.Y,
			P2X: p2.X, P2Y: p2.Y,
			R: color.R, G: color.G, B: color.B,
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode curve series")
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a series. A document that is empty or only whitespace is an empty series. Any
// problem is reported as a *ParseError and no curves are returned.
func Unmarshal(data []byte) ([]*curve.Curve, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*curve.Curve{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Record: -1, Err: err}
	}

	curves := make([]*curve.Curve, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for i, msg := range raw {
		c, err := decodeRecord(i, msg)
		if err != nil {
			return nil, err
		}
		if first, ok := seen[c.Name()]; ok {
			return nil, &ParseError{
				Record: i,
				Field:  "name",
				Err:    errors.Errorf("duplicate name %q, first used by record %d", c.Name(), first),
			}
		}
		seen[c.Name()] = i
		curves = append(curves, c)
	}
	return curves, nil
}

func decodeRecord(i int, msg json.RawMessage) (*curve.Curve, error) {
	var rec partialRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ParseError{Record: i, Field: typeErr.Field, Err: err}
		}
		return nil, &ParseError{Record: i, Err: err}
	}

	var (
		errs      error
		badFields []string
	)
	fail := func(field string, err error) {
		badFields = append(badFields, field)
		errs = multierr.Append(errs, err)
	}

	if rec.Name == nil {
		fail("name", errors.New(`missing field "name"`))
	} else if *rec.Name == "" {
		fail("name", errors.New("name must not be empty"))
	}
	coords := []struct {
		field string
		value *float64
	}{
		{"p0x", rec.P0X}, {"p0y", rec.P0Y},
		{"p1x", rec.P1X}, {"p1y", rec.P1Y},
		{"p2x", rec.P2X}, {"p2y", rec.P2Y},
	}
	for _, coord := range coords {
		if coord.value == nil {
			fail(coord.field, errors.Errorf("missing field %q", coord.field))
		}
	}
	channels := []struct {
		field string
		value *float64
	}{
		{"r", rec.R}, {"g", rec.G}, {"b", rec.B},
	}
	for _, channel := range channels {
		switch {
		case channel.value == nil:
			fail(channel.field, errors.Errorf("missing field %q", channel.field))
		case *channel.value < 0 || *channel.value > 1:
			fail(channel.field, errors.Errorf("color channel %q is %v, must be in [0, 1]", channel.field, *channel.value))
		}
	}

	if errs != nil {
		return nil, &ParseError{Record: i, Field: lo.Ternary(len(badFields) == 1, badFields[0], ""), Err: errs}
	}

	c := curve.NewWithPoints(*rec.Name,
		r2.Point{X: *rec.P0X, Y: *rec.P0Y},
		r2.Point{X: *rec.P1X, Y: *rec.P1Y},
		r2.Point{X: *rec.P2X, Y: *rec.P2Y},
	)
	c.SetColor(colorful.Color{R: *rec.R, G: *rec.G, B: *rec.B})
	return c, nil
}
