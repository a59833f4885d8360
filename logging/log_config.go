package logging

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// LoggerPatternConfig sets the level of every logger whose dotted name matches Pattern. A section
// of the pattern may be "*" or end in "*", e.g. "bezierplan.*" or "bezierplan.bench*". A star
// also matches across dots.
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

var loggerPatternRegexp = regexp.MustCompile(
	`^(\*|[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*\*?)(\.(\*|[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*\*?))*$`)

func validatePattern(pattern string) bool {
	return loggerPatternRegexp.MatchString(pattern)
}

// Validate reports a malformed pattern or an unknown level.
func (lpc LoggerPatternConfig) Validate() error {
	_, err := lpc.rule()
	return err
}

func (lpc LoggerPatternConfig) rule() (levelRule, error) {
	if !validatePattern(lpc.Pattern) {
		return levelRule{}, errors.Errorf("invalid logger pattern %q", lpc.Pattern)
	}
	level, err := LevelFromString(lpc.Level)
	if err != nil {
		return levelRule{}, err
	}
	return levelRule{matcher: patternMatcher(lpc.Pattern), level: level}, nil
}

// patternMatcher anchors the pattern and turns each star into ".*". The remaining text of a valid
// pattern only needs its dots escaped.
func patternMatcher(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}
