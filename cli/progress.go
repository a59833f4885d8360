package cli

import (
	"io"
	"math"
	"sync"

	"github.com/pterm/pterm"

	"go.viam.com/bezierplanner/logging"
	"go.viam.com/bezierplanner/utils"
)

// progressPercentStep is how often a progress display without a terminal reports.
const progressPercentStep = 10

type progressBar interface {
	Add(count int) *pterm.ProgressbarPrinter
	Stop() (*pterm.ProgressbarPrinter, error)
}

type progressBarFactory func(title string, w io.Writer) (progressBar, error)

var defaultProgressBarFactory progressBarFactory = func(title string, w io.Writer) (progressBar, error) {
	return pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle(title).
		WithWriter(w).
		WithRemoveWhenDone(false).
		Start()
}

// Progress shows how far a long running task has got, as a bar on a terminal and as periodic log
// lines otherwise.
type Progress struct {
	title   string
	logger  logging.Logger
	factory progressBarFactory
	writer  io.Writer

	mu       sync.Mutex
	bar      progressBar
	percent  int
	reported int
	stopped  bool
}

// ProgressOption allows customizing Progress behavior at creation time.
type ProgressOption func(*Progress)

// WithProgressBar draws a bar on w instead of logging.
func WithProgressBar(w io.Writer) ProgressOption {
	return func(p *Progress) {
		p.writer = w
	}
}

func withProgressBarFactory(factory progressBarFactory) ProgressOption {
	return func(p *Progress) {
		p.factory = factory
	}
}

// NewProgress returns a progress display at 0%.
func NewProgress(title string, logger logging.Logger, opts ...ProgressOption) *Progress {
	p := &Progress{title: title, logger: logger, factory: defaultProgressBarFactory}
	for _, opt := range opts {
		opt(p)
	}
	if p.writer != nil {
		bar, err := p.factory(title, p.writer)
		if err != nil {
			logger.Debugw("progress bar unavailable, logging progress instead", "error", err)
		} else {
			p.bar = bar
		}
	}
	return p
}

// Set moves the display to fraction, a value in [0, 1]. Progress never goes backwards.
func (p *Progress) Set(fraction float64) {
	percent := int(math.Floor(utils.Clamp(fraction, 0, 1) * 100))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || percent <= p.percent {
		return
	}
	delta := percent - p.percent
	p.percent = percent

	if p.bar != nil {
		p.bar.Add(delta)
		return
	}
	if percent/progressPercentStep > p.reported/progressPercentStep || percent == 100 && p.reported < 100 {
		p.reported = percent
		p.logger.Infof("%s: %d%%", p.title, percent)
	}
}

// Percent returns the last whole percentage shown.
func (p *Progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

// Stop ends the display. Later calls to Set are ignored.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	if p.bar == nil {
		return
	}
	if _, err := p.bar.Stop(); err != nil {
		p.logger.Debugw("failed to stop progress bar", "error", err)
	}
}
