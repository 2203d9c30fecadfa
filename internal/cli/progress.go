package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter shows the analysis steps as a progress bar.
type CLIProgressReporter struct {
	quiet bool
	out   io.Writer
	bar   *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnPipelineStart(totalSteps int) {
	if c.quiet {
		return
	}
	// Finish any bar left over by a failed run
	if c.bar != nil {
		c.bar.Finish()
	}
	c.bar = progressbar.NewOptions(totalSteps,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnStepStart(name string) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Describe(name)
}

func (c *CLIProgressReporter) OnStepComplete(name string, duration time.Duration) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Add(1)
}

func (c *CLIProgressReporter) OnPipelineComplete(duration time.Duration) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Finish()
	c.bar = nil
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
