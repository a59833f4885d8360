package logging

import (
	"bytes"
	"testing"

	"go.viam.com/test"
)

func TestValidatePattern(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		pattern string
		isValid bool
	}{
		{"bezierplan.benchmark", true},
		{"bezierplan.benchmark.*", true},
		{"bezierplan.*.store", true},
		{"bezierplan.*.*", true},
		{"*.simulation", true},
		{"*", true},
		{"bezierplan.run-1a2b", true},
		{"bezierplan.bench*", true},

		{"bezierplan..benchmark", false},
		{"bezierplan.benchmark.", false},
		{".bezierplan.benchmark", false},
		{"bezierplan.benchmark.**", false},
		{"_.bezierplan", false},
		{"bezierplan.-", false},
		{"bezierplan/benchmark", false},
	} {
		test.That(t, validatePattern(tc.pattern), test.ShouldEqual, tc.isValid)
	}
}

func TestPatternMatcher(t *testing.T) {
	t.Parallel()

	test.That(t, patternMatcher("a.*.b").String(), test.ShouldEqual, `^a\..*\.b$`)
	test.That(t, patternMatcher("*").String(), test.ShouldEqual, `^.*$`)
	test.That(t, patternMatcher("a.b*").MatchString("a.bench.1"), test.ShouldBeTrue)
	test.That(t, patternMatcher("a.b").MatchString("axb"), test.ShouldBeFalse)
}

func TestLoggerPatternConfigValidate(t *testing.T) {
	t.Parallel()

	test.That(t, LoggerPatternConfig{Pattern: "a.*", Level: "debug"}.Validate(), test.ShouldBeNil)
	test.That(t, LoggerPatternConfig{Pattern: "a..b", Level: "debug"}.Validate(), test.ShouldNotBeNil)
	test.That(t, LoggerPatternConfig{Pattern: "a", Level: "loud"}.Validate(), test.ShouldNotBeNil)
}

func TestSetLevelPatterns(t *testing.T) {
	out := &bytes.Buffer{}
	root := NewBlankLogger("bezierplan")
	root.SetLevel(INFO)
	root.AddAppender(NewWriterAppender(out))

	err := SetLevelPatterns(root, []LoggerPatternConfig{
		{Pattern: "bezierplan.*", Level: "warn"},
		{Pattern: "bezierplan.benchmark*", Level: "debug"},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, root.GetLevel(), test.ShouldEqual, INFO)

	// later patterns win over earlier ones
	bench := root.Sublogger("benchmark").Sublogger("1a2b3c4d")
	test.That(t, bench.GetLevel(), test.ShouldEqual, DEBUG)
	store := root.Sublogger("store")
	test.That(t, store.GetLevel(), test.ShouldEqual, WARN)

	store.Info("hidden")
	bench.Debug("shown")
	test.That(t, out.String(), test.ShouldNotContainSubstring, "hidden")
	test.That(t, out.String(), test.ShouldContainSubstring, "shown")

	err = SetLevelPatterns(root, []LoggerPatternConfig{{Pattern: "x..y", Level: "debug"}, {Pattern: "y", Level: "nope"}})
	test.That(t, err, test.ShouldNotBeNil)
	// the previous patterns are still in force
	test.That(t, root.Sublogger("store").GetLevel(), test.ShouldEqual, WARN)

	test.That(t, SetLevelPatterns(root, []LoggerPatternConfig{{Pattern: "bezierplan", Level: "error"}}), test.ShouldBeNil)
	test.That(t, root.GetLevel(), test.ShouldEqual, ERROR)
}
