// Package config defines the structures to configure the planner's simulation, benchmarks and
// logging.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/bezierplanner/arclength"
	"go.viam.com/bezierplanner/benchmark"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/logging"
	"go.viam.com/bezierplanner/simulation"
)

// Segment lookup modes.
const (
	LookupByName     = "name"
	LookupByPosition = "position"
)

const (
	defaultFrameIntervalMs = 16
	defaultLogMaxSizeMB    = 10
	defaultLogMaxBackups   = 3
)

// Config is the top level configuration.
type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Benchmark  BenchmarkConfig  `json:"benchmark"`
	Log        LogConfig        `json:"log"`

	// ConfigFilePath is where the config was read from, if anywhere.
	ConfigFilePath string `json:"-"`
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.Simulation.applyDefaults()
	c.Benchmark.applyDefaults()
	c.Log.applyDefaults()
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate("simulation"); err != nil {
		return err
	}
	if err := c.Benchmark.Validate("benchmark"); err != nil {
		return err
	}
	return c.Log.Validate("log")
}

// SimulationConfig configures simulation.Simulation.
type SimulationConfig struct {
	SpeedFeetPerSec float64 `json:"speed_feet_per_sec"`
	InversionStep   float64 `json:"inversion_step"`
	FrameIntervalMs int     `json:"frame_interval_ms"`
	// SegmentLookup is "name" (segment i is the curve named Curve<i>) or "position".
	SegmentLookup string `json:"segment_lookup"`
}

func (sc *SimulationConfig) applyDefaults() {
	if sc.SpeedFeetPerSec == 0 {
		sc.SpeedFeetPerSec = simulation.DefaultSpeed
	}
	if sc.InversionStep == 0 {
		sc.InversionStep = arclength.DefaultStep
	}
	if sc.FrameIntervalMs == 0 {
		sc.FrameIntervalMs = defaultFrameIntervalMs
	}
	if sc.SegmentLookup == "" {
		sc.SegmentLookup = LookupByName
	}
}

// Validate ensures all parts of the config are valid.
func (sc *SimulationConfig) Validate(path string) error {
	if sc.SpeedFeetPerSec <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("speed_feet_per_sec must be positive, got %v", sc.SpeedFeetPerSec))
	}
	if sc.InversionStep <= 0 || sc.InversionStep > 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("inversion_step must be in (0, 1], got %v", sc.InversionStep))
	}
	if sc.FrameIntervalMs < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("frame_interval_ms must be positive, got %d", sc.FrameIntervalMs))
	}
	switch sc.SegmentLookup {
	case LookupByName, LookupByPosition:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("segment_lookup must be %q or %q, got %q", LookupByName, LookupByPosition, sc.SegmentLookup))
	}
	return nil
}

// FrameInterval returns the tick cadence.
func (sc *SimulationConfig) FrameInterval() time.Duration {
	return time.Duration(sc.FrameIntervalMs) * time.Millisecond
}

// Source returns the segment source selected by SegmentLookup.
func (sc *SimulationConfig) Source(coll *curve.Collection) curve.SegmentSource {
	if sc.SegmentLookup == LookupByPosition {
		return curve.ByPosition(coll)
	}
	return curve.ByName(coll)
}

// Options converts the config to simulation options.
func (sc *SimulationConfig) Options(logger logging.Logger) []simulation.Option {
	return []simulation.Option{
		simulation.WithSpeed(sc.SpeedFeetPerSec),
		simulation.WithInversionStep(sc.InversionStep),
		simulation.WithLogger(logger),
	}
}

// BenchmarkConfig configures benchmark runs.
type BenchmarkConfig struct {
	Iterations          int     `json:"iterations"`
	ProgressInterval    int     `json:"progress_interval"`
	BruteForceStep      float64 `json:"brute_force_step"`
	GaussLegendrePoints int     `json:"gauss_legendre_points"`
}

func (bc *BenchmarkConfig) applyDefaults() {
	if bc.Iterations == 0 {
		bc.Iterations = benchmark.DefaultIterations
	}
	if bc.ProgressInterval == 0 {
		bc.ProgressInterval = benchmark.DefaultProgressInterval
	}
	if bc.BruteForceStep == 0 {
		bc.BruteForceStep = arclength.DefaultStep
	}
	if bc.GaussLegendrePoints == 0 {
		bc.GaussLegendrePoints = arclength.DefaultLegendrePoints
	}
}

// Validate ensures all parts of the config are valid.
func (bc *BenchmarkConfig) Validate(path string) error {
	if bc.Iterations < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("iterations must be positive, got %d", bc.Iterations))
	}
	if bc.ProgressInterval < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("progress_interval must be positive, got %d", bc.ProgressInterval))
	}
	for _, solver := range bc.Solvers() {
		if err := solver.Validate(); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// Solvers returns one configured solver of every kind.
func (bc *BenchmarkConfig) Solvers() []arclength.Solver {
	return arclength.All(bc.BruteForceStep, bc.GaussLegendrePoints)
}

// Options converts the config to benchmark options.
func (bc *BenchmarkConfig) Options(logger logging.Logger) []benchmark.Option {
	return []benchmark.Option{
		benchmark.WithIterations(bc.Iterations),
		benchmark.WithProgressInterval(bc.ProgressInterval),
		benchmark.WithLogger(logger),
	}
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level string `json:"level"`
	// File, if set, receives a copy of every log line and is rotated at MaxSizeMB.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	// Levels overrides Level for loggers whose names match, e.g. "bezierplan.benchmark*".
	Levels []logging.LoggerPatternConfig `json:"levels"`
}

func (lc *LogConfig) applyDefaults() {
	if lc.Level == "" {
		lc.Level = logging.INFO.String()
	}
	if lc.File == "" {
		return
	}
	if lc.MaxSizeMB == 0 {
		lc.MaxSizeMB = defaultLogMaxSizeMB
	}
	if lc.MaxBackups == 0 {
		lc.MaxBackups = defaultLogMaxBackups
	}
}

// Validate ensures all parts of the config are valid.
func (lc *LogConfig) Validate(path string) error {
	if _, err := logging.LevelFromString(lc.Level); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if lc.File == "" && (lc.MaxSizeMB != 0 || lc.MaxBackups != 0) {
		return utils.NewConfigValidationFieldRequiredError(path, "file")
	}
	if lc.MaxSizeMB < 0 || lc.MaxBackups < 0 {
		return utils.NewConfigValidationError(path, errors.New("rotation limits must not be negative"))
	}
	for i, lpc := range lc.Levels {
		if err := lpc.Validate(); err != nil {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.levels.%d", path, i), err)
		}
	}
	return nil
}

// SetFile directs logs to path and fills in the rotation defaults.
func (lc *LogConfig) SetFile(path string) {
	lc.File = path
	lc.applyDefaults()
}

// NewLogger builds a logger at the configured level, writing to console (if not nil) and, when File
// is set, to a rotating log file. The returned closer releases the file.
func (lc *LogConfig) NewLogger(name string, console io.Writer) (logging.Logger, func() error, error) {
	level, err := logging.LevelFromString(lc.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewBlankLogger(name)
	logger.SetLevel(level)
	if err := logging.SetLevelPatterns(logger, lc.Levels); err != nil {
		return nil, nil, err
	}
	if console != nil {
		logger.AddAppender(logging.NewWriterAppender(console))
	}
	if lc.File == "" {
		return logger, func() error { return nil }, nil
	}
	fileAppender := logging.NewFileAppender(lc.File, lc.MaxSizeMB, lc.MaxBackups)
	logger.AddAppender(fileAppender)
	return logger, fileAppender.Close, nil
}
