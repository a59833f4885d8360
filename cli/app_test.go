package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pterm/pterm"
	"go.viam.com/test"

	"go.viam.com/bezierplanner/logging"
)

// syncBuffer is written by background goroutines while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// run executes the app with args and returns what it printed to its writer and error writer.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut syncBuffer
	err := NewApp(&out, &errOut).RunContext(context.Background(), append([]string{"bezierplan"}, args...))
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, _, err := run(t, args...)
	test.That(t, err, test.ShouldBeNil)
	return out
}

// straightPath creates a file with two 10 ft segments along the x axis.
func straightPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "path.json")
	mustRun(t, "new", path)
	mustRun(t, "add", "--start", "0,0", "--control", "5,0", "--end", "10,0", path)
	mustRun(t, "add", "--start", "10,0", "--control", "15,0", "--end", "20,0", "--color", "#00ff00", path)
	return path
}

func TestCurveCommands(t *testing.T) {
	path := straightPath(t)

	out := mustRun(t, "list", path)
	test.That(t, out, test.ShouldContainSubstring, "Curve1")
	test.That(t, out, test.ShouldContainSubstring, "Curve2")
	test.That(t, out, test.ShouldContainSubstring, "#00ff00")
	test.That(t, out, test.ShouldContainSubstring, "10.0000")
	test.That(t, out, test.ShouldContainSubstring, "Integration Solver")

	test.That(t, mustRun(t, "remove", path, "Curve1"), test.ShouldContainSubstring, "removed Curve1")
	out = mustRun(t, "list", path)
	test.That(t, out, test.ShouldNotContainSubstring, "Curve1")

	// numbering continues past the highest loaded name
	test.That(t, mustRun(t, "add", "--end", "oops,4", "--at", "0", path), test.ShouldContainSubstring, "added Curve3")
	out = mustRun(t, "list", path)
	test.That(t, strings.Index(out, "Curve3"), test.ShouldBeLessThan, strings.Index(out, "Curve2"))
	test.That(t, out, test.ShouldContainSubstring, "(0, 4)")

	_, _, err := run(t, "remove", path, "Curve9")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not found")

	_, _, err = run(t, "add", "--color", "green", path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFlagsAfterFileAreRejected(t *testing.T) {
	path := straightPath(t)

	_, _, err := run(t, "add", path, "--start", "1,2", "--control", "3,4", "--end", "5,6")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unexpected argument "--start"`)
	test.That(t, err.Error(), test.ShouldContainSubstring, "flags must come before")

	for _, args := range [][]string{
		{"new", path, "--force"},
		{"list", path, "extra"},
		{"simulate", path, "--speed", "1000"},
		{"plot", path, filepath.Join(t.TempDir(), "out.svg"), "--trajectory"},
		{"benchmark", path, "Curve1", "--compare"},
	} {
		_, _, err := run(t, args...)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unexpected argument")
	}

	// the rejected add saved nothing
	out := mustRun(t, "list", path)
	test.That(t, out, test.ShouldNotContainSubstring, "Curve3")

	mustRun(t, "add", "--start", "1,2", "--control", "3,4", "--end", "5,6", "--color", "#0000ff", path)
	out = mustRun(t, "list", path)
	test.That(t, out, test.ShouldContainSubstring, "(1, 2)")
	test.That(t, out, test.ShouldContainSubstring, "(3, 4)")
	test.That(t, out, test.ShouldContainSubstring, "(5, 6)")
	test.That(t, out, test.ShouldContainSubstring, "#0000ff")
}

func TestNewRefusesOverwrite(t *testing.T) {
	path := straightPath(t)
	_, _, err := run(t, "new", path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--force")

	mustRun(t, "new", "--force", path)
	test.That(t, mustRun(t, "list", path), test.ShouldContainSubstring, "has no curves")
}

func TestMissingArguments(t *testing.T) {
	_, _, err := run(t, "list")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing argument <file>")

	_, _, err = run(t, "list", filepath.Join(t.TempDir(), "absent.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSimulate(t *testing.T) {
	path := straightPath(t)
	out := mustRun(t, "simulate", "--speed", "1000", "--frame-ms", "1", path)
	test.That(t, out, test.ShouldContainSubstring, "segment 1")
	test.That(t, out, test.ShouldContainSubstring, "finished after")
	test.That(t, out, test.ShouldContainSubstring, "over 2 segment(s)")

	_, _, err := run(t, "simulate", "--speed", "-3", path)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "speed_feet_per_sec")
}

func TestSimulateWarnsAboutUnreachableCurves(t *testing.T) {
	path := straightPath(t)
	mustRun(t, "remove", path, "Curve1")

	out, errOut, err := run(t, "simulate", "--speed", "1000", "--frame-ms", "1", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "Warning: 1 curve(s) are not on the path because Curve1 is missing")
	test.That(t, out, test.ShouldContainSubstring, "over 0 segment(s)")

	out, errOut, err = run(t, "simulate", "--speed", "1000", "--frame-ms", "1", "--by-position", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldNotContainSubstring, "Warning")
	test.That(t, out, test.ShouldContainSubstring, "over 1 segment(s)")
}

func TestSimulateInterrupted(t *testing.T) {
	path := straightPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut syncBuffer
	err := NewApp(&out, &errOut).RunContext(ctx, []string{"bezierplan", "simulate", "--speed", "0.001", path})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "interrupted on segment 1")
}

func TestBenchmark(t *testing.T) {
	path := straightPath(t)

	out, errOut, err := run(t, "benchmark", "--solver", "polygon", "--iterations", "200", "--histogram", path, "Curve2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Control Polygon")
	test.That(t, out, test.ShouldContainSubstring, "200 iterations")
	test.That(t, errOut, test.ShouldContainSubstring, "Control Polygon: 100%")

	out = mustRun(t, "benchmark", "--compare", "--iterations", "50", path, "Curve1")
	test.That(t, out, test.ShouldContainSubstring, "Brute Force (dt=0.001)")
	test.That(t, out, test.ShouldContainSubstring, "Gauss-Legendre (n=8)")

	_, _, err = run(t, "benchmark", path, "Curve7")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not found")

	_, _, err = run(t, "benchmark", "--solver", "guess", path, "Curve1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown arc length method")

	_, _, err = run(t, "benchmark", "--iterations", "-1", path, "Curve1")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlot(t *testing.T) {
	path := straightPath(t)
	image := filepath.Join(t.TempDir(), "path.svg")

	out := mustRun(t, "plot", "--trajectory", "--control-polygon", path, image)
	test.That(t, out, test.ShouldContainSubstring, "wrote")
	data, err := os.ReadFile(image)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "<svg")

	_, _, err = run(t, "plot", path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchemaCommand(t *testing.T) {
	out := mustRun(t, "schema")
	test.That(t, out, test.ShouldContainSubstring, `"p0x"`)
}

func TestConfigFlags(t *testing.T) {
	path := straightPath(t)
	dir := t.TempDir()
	logFile := filepath.Join(dir, "planner.log")
	cfgFile := filepath.Join(dir, "config.json")
	test.That(t, os.WriteFile(cfgFile, []byte(`{
		// polygon lengths only need a coarse step elsewhere
		benchmark: {brute_force_step: 0.01},
		simulation: {segment_lookup: "position"},
	}`), 0o600), test.ShouldBeNil)

	out := mustRun(t, "--config", cfgFile, "--debug", "--log-file", logFile, "list", path)
	test.That(t, out, test.ShouldContainSubstring, "Brute Force (dt=0.01)")

	contents, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "opened curves")

	_, _, err = run(t, "--config", filepath.Join(dir, "missing.json"), "list", path)
	test.That(t, err, test.ShouldNotBeNil)
}

type fakeBar struct {
	added int
	stops int
}

func (b *fakeBar) factory(string, io.Writer) (progressBar, error) {
	return b, nil
}

func (b *fakeBar) Add(count int) *pterm.ProgressbarPrinter {
	b.added += count
	return nil
}

func (b *fakeBar) Stop() (*pterm.ProgressbarPrinter, error) {
	b.stops++
	return nil, nil
}

func TestProgressLogs(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	p := NewProgress("job", logger)
	for _, f := range []float64{0.05, 0.12, 0.15, 0.5, 1} {
		p.Set(f)
	}
	p.Stop()
	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	test.That(t, messages, test.ShouldResemble, []string{"job: 12%", "job: 50%", "job: 100%"})
}

func TestProgress(t *testing.T) {
	var bar fakeBar
	p := NewProgress("job", logging.NewTestLogger(t), WithProgressBar(&bytes.Buffer{}), withProgressBarFactory(bar.factory))
	p.Set(0.25)
	p.Set(0.1)
	p.Set(2)
	test.That(t, p.Percent(), test.ShouldEqual, 100)
	test.That(t, bar.added, test.ShouldEqual, 100)
	p.Stop()
	p.Stop()
	p.Set(0.5)
	test.That(t, bar.stops, test.ShouldEqual, 1)
}
