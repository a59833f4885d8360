package logging

import (
	"regexp"
	"sync"

	"go.uber.org/multierr"
)

type levelRule struct {
	matcher *regexp.Regexp
	level   Level
}

// levelRules is shared by a root logger and every sublogger made from it. A sublogger takes the
// level of the last rule matching its name, or its parent's level when none does.
type levelRules struct {
	mu    sync.RWMutex
	rules []levelRule
}

// set replaces the rules. Invalid patterns are reported together and leave the old rules in place.
func (lr *levelRules) set(patterns []LoggerPatternConfig) error {
	rules := make([]levelRule, 0, len(patterns))
	var errs error
	for _, lpc := range patterns {
		rule, err := lpc.rule()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	if errs != nil {
		return errs
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.rules = rules
	return nil
}

func (lr *levelRules) levelFor(name string) (Level, bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	for i := len(lr.rules) - 1; i >= 0; i-- {
		if lr.rules[i].matcher.MatchString(name) {
			return lr.rules[i].level, true
		}
	}
	return 0, false
}

// SetLevelPatterns sets levels by logger name for logger and every sublogger created from it
// afterwards. Loggers that were already created keep their level.
func SetLevelPatterns(logger Logger, patterns []LoggerPatternConfig) error {
	imp, ok := logger.(*impl)
	if !ok {
		return nil
	}
	if err := imp.rules.set(patterns); err != nil {
		return err
	}
	if level, ok := imp.rules.levelFor(imp.name); ok {
		imp.SetLevel(level)
	}
	return nil
}
