package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-flightpath/internal/engine"
	"github.com/litescript/ls-flightpath/internal/logging"
	"github.com/litescript/ls-flightpath/internal/scene"
)

const (
	defaultStep      = 50 * time.Millisecond
	defaultMaxFrames = 20000
)

// headlessOptions controls a flight without the TUI.
type headlessOptions struct {
	MaxFrames    int
	Step         time.Duration
	Realtime     bool
	SnapshotPath string // "-" writes JSON to out instead of the summary
	Timeline     bool
	Progress     io.Writer // live progress line; nil disables it
}

// runHeadless ticks e at a fixed step until arrival or the frame cap, then
// writes the final frame.
func runHeadless(ctx context.Context, e *engine.Engine, opts headlessOptions, out io.Writer, logger *logging.Logger) error {
	if opts.Step <= 0 {
		opts.Step = defaultStep
	}
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = defaultMaxFrames
	}
	if opts.Progress == nil && opts.Realtime && term.IsTerminal(int(os.Stderr.Fd())) {
		opts.Progress = os.Stderr
	}

	var limiter *rate.Limiter
	if opts.Realtime {
		limiter = rate.NewLimiter(rate.Every(opts.Step), 1)
	}

	var (
		f   scene.Frame
		now time.Duration
	)
	for i := 0; i < opts.MaxFrames; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("pace frames: %w", err)
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		f = e.Tick(now)
		if opts.Progress != nil {
			fmt.Fprintf(opts.Progress, "\r%5.1f%%  %-24s", f.Progress*100, f.Phase)
		}
		if f.Arrived {
			break
		}
		now += opts.Step
	}
	if opts.Progress != nil {
		fmt.Fprintln(opts.Progress)
	}

	if !f.Arrived {
		logger.Warn("Frame cap %d reached at %.1f%%", opts.MaxFrames, f.Progress*100)
	}
	logger.Debug("Stepped %d frames to T+%s", e.Frames(), now)

	return writeResults(e, f, opts, out)
}

func writeResults(e *engine.Engine, f scene.Frame, opts headlessOptions, out io.Writer) error {
	if opts.SnapshotPath != "" {
		export := scene.ExportFrame(f)
		if opts.SnapshotPath == "-" {
			if err := export.WriteJSON(out); err != nil {
				return fmt.Errorf("write JSON to stdout: %w", err)
			}
			return nil
		}

		file, err := os.Create(opts.SnapshotPath)
		if err != nil {
			return fmt.Errorf("create snapshot file: %w", err)
		}
		defer file.Close()
		if err := export.WriteJSON(file); err != nil {
			return fmt.Errorf("write JSON to file: %w", err)
		}
	}

	scene.WriteSummary(out, f)
	if opts.Timeline {
		fmt.Fprintln(out)
		scene.WriteTimeline(out, e.Journal().Events())
	}
	return nil
}
