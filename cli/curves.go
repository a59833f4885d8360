package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/curveio"
)

// NewAction writes an empty curve file, so the next added curve is Curve1.
func NewAction(c *cli.Context, e *env) error {
	if err := maxArgs(c, 1); err != nil {
		return err
	}
	path, err := arg(c, 0, "file")
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !c.Bool(flagForce) {
		return errors.Errorf("%q already exists; use --%s to replace it", path, flagForce)
	}
	if err := <-curveio.NewStore(path, e.logger).Save(nil); err != nil {
		return err
	}
	printf(c.App.Writer, "created %s", path)
	return nil
}

// AddAction appends a new auto named curve. Unparseable coordinates are read as 0.
func AddAction(c *cli.Context, e *env) error {
	if err := maxArgs(c, 1); err != nil {
		return err
	}
	store, coll, names, err := openCollection(c, e)
	if err != nil {
		return err
	}

	added := names.NewCurve()
	added.SetStart(curve.ParsePoint(c.String(flagStart)))
	added.SetControl(curve.ParsePoint(c.String(flagControl)))
	added.SetEnd(curve.ParsePoint(c.String(flagEnd)))
	if c.IsSet(flagColor) {
		col, err := curve.ParseColor(c.String(flagColor))
		if err != nil {
			return err
		}
		added.SetColor(col)
	}

	if at := c.Int(flagAt); at >= 0 {
		err = coll.Insert(at, added)
	} else {
		err = coll.Add(added)
	}
	if err != nil {
		return err
	}
	if err := <-store.SaveCollection(coll); err != nil {
		return err
	}
	printf(c.App.Writer, "added %s", added.Name())
	return nil
}

// RemoveAction deletes the named curve.
func RemoveAction(c *cli.Context, e *env) error {
	if err := maxArgs(c, 2); err != nil {
		return err
	}
	name, err := arg(c, 1, "name")
	if err != nil {
		return err
	}
	store, coll, _, err := openCollection(c, e)
	if err != nil {
		return err
	}
	if _, err := coll.Remove(name); err != nil {
		return err
	}
	if err := <-store.SaveCollection(coll); err != nil {
		return err
	}
	printf(c.App.Writer, "removed %s", name)
	return nil
}

// ListAction prints the curves in path order with the length each solver computes for them.
func ListAction(c *cli.Context, e *env) error {
	if err := maxArgs(c, 1); err != nil {
		return err
	}
	store, coll, _, err := openCollection(c, e)
	if err != nil {
		return err
	}
	if coll.Len() == 0 {
		printf(c.App.Writer, "%s has no curves", store.Path())
		return nil
	}

	solvers := e.cfg.Benchmark.Solvers()
	header := table.Row{"#", "Name", "Start", "Control", "End", "Color"}
	for _, solver := range solvers {
		header = append(header, solver.Name())
	}

	t := table.NewWriter()
	t.SetTitle(store.Path())
	t.AppendHeader(header)
	// solver names are shown as they are reported elsewhere
	t.Style().Format.Header = text.FormatDefault
	for i, crv := range coll.All() {
		p0, p1, p2 := crv.Points()
		row := table.Row{i + 1, crv.Name(), formatPoint(p0.X, p0.Y), formatPoint(p1.X, p1.Y), formatPoint(p2.X, p2.Y), crv.Color().Hex()}
		for _, solver := range solvers {
			row = append(row, fmt.Sprintf("%.4f", solver.Solve(crv)))
		}
		t.AppendRow(row)
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

func formatPoint(x, y float64) string {
	return fmt.Sprintf("(%g, %g)", x, y)
}

// SchemaAction prints the JSON schema of one stored curve.
func SchemaAction(c *cli.Context, e *env) error {
	schema, err := curveio.Schema()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(schema)
	return err
}
