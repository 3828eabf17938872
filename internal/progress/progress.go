// Package progress shows an indeterminate loading indicator on stderr while
// a listing is being fetched. Nothing is drawn when stderr is not a terminal,
// so piped command output stays clean.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/rescale/rescale-browse/internal/constants"
)

// Reporter reports the lifetime of one pending load.
type Reporter interface {
	Start(description string)
	SetDescription(desc string)
	Finish()
	Error(err error)
}

// CLIProgress draws a spinner for the duration of a load. A ticker
// goroutine advances the frame until Finish or Error.
type CLIProgress struct {
	w        io.Writer
	enabled  bool
	interval time.Duration
	bar      *progressbar.ProgressBar
	stop     chan struct{}
	done     chan struct{}
}

// NewCLIProgress creates a spinner on stderr, enabled only when stderr is a
// terminal.
func NewCLIProgress() *CLIProgress {
	return NewCLIProgressTo(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewCLIProgressTo creates a spinner writing to w.
func NewCLIProgressTo(w io.Writer, enabled bool) *CLIProgress {
	return &CLIProgress{w: w, enabled: enabled, interval: constants.SpinnerTickInterval}
}

// Start begins spinning with the given description.
func (p *CLIProgress) Start(description string) {
	if !p.enabled {
		return
	}
	p.Finish()
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	bar := p.bar
	go spin(p.interval, p.stop, p.done, func() { _ = bar.Add(1) })
}

// spin calls step every interval until stop is closed, then closes done.
func spin(interval time.Duration, stop <-chan struct{}, done chan<- struct{}, step func()) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			step()
		}
	}
}

// SetDescription updates the text next to the spinner.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// Finish stops and clears the spinner.
func (p *CLIProgress) Finish() {
	if p.bar == nil {
		return
	}
	close(p.stop)
	<-p.done
	_ = p.bar.Finish()
	p.bar, p.stop, p.done = nil, nil, nil
}

// Error stops the spinner and prints err on its own line.
func (p *CLIProgress) Error(err error) {
	p.Finish()
	if err != nil {
		fmt.Fprintln(p.w, err)
	}
}

// NoOpProgress is a Reporter that does nothing.
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

func (p *NoOpProgress) Start(description string)   {}
func (p *NoOpProgress) SetDescription(desc string) {}
func (p *NoOpProgress) Finish()                    {}
func (p *NoOpProgress) Error(err error)            {}
