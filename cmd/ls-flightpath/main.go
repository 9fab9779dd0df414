// Command ls-flightpath flies a spacecraft along a spline through a sequence
// of planets, rendered in the terminal or stepped headlessly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/litescript/ls-flightpath/internal/camera"
	"github.com/litescript/ls-flightpath/internal/engine"
	"github.com/litescript/ls-flightpath/internal/logging"
	"github.com/litescript/ls-flightpath/internal/metrics"
	"github.com/litescript/ls-flightpath/internal/mission"
	"github.com/litescript/ls-flightpath/internal/ui"
	"github.com/litescript/ls-flightpath/internal/version"
)

// CLI flags
var (
	missionPath  string
	logLevel     string
	logFile      string
	fps          int
	headless     bool
	maxFrames    int
	stepDt       time.Duration
	realtime     bool
	snapshotPath string
	timelineMode bool
	metricsAddr  string
	cameraMode   string
	speed        float64
	noHUD        bool
	showVersion  bool
)

const (
	minFPS = 5
	maxFPS = 120
)

func main() {
	flag.StringVar(&missionPath, "mission", "", "Mission file (YAML, JSON or TOML); built-in route when empty")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&logFile, "log-file", "", "Write logs to file (TUI mode discards logs otherwise)")
	flag.IntVar(&fps, "fps", ui.DefaultFPS, "Frames per second in TUI mode")
	flag.BoolVar(&headless, "headless", false, "Step the flight without a TUI and print a summary")
	flag.IntVar(&maxFrames, "frames", defaultMaxFrames, "Headless frame cap")
	flag.DurationVar(&stepDt, "dt", defaultStep, "Headless time step per frame")
	flag.BoolVar(&realtime, "realtime", false, "Pace headless frames at wall-clock speed")
	flag.StringVar(&snapshotPath, "snapshot-path", "", "Export final frame as JSON to file (use - for stdout)")
	flag.BoolVar(&timelineMode, "timeline", true, "Include the flight log in headless output")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9100)")
	flag.StringVar(&cameraMode, "camera", "", "Initial camera mode (auto, free)")
	flag.Float64Var(&speed, "speed", 0, "Initial speed in progress per second")
	flag.BoolVar(&noHUD, "no-hud", false, "Start with the HUD hidden")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("ls-flightpath v%s\n", version.Version)
		return
	}

	if fps < minFPS {
		fps = minFPS
	} else if fps > maxFPS {
		fps = maxFPS
	}

	// Set up logging
	logger := logging.New(logging.ParseLevel(logLevel))
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fatal(fmt.Errorf("open log file: %w", err))
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !headless {
		// Anything on stderr would tear the alt screen.
		logger.SetOutput(io.Discard)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, cfg, err := loadConfig(missionPath)
	if err != nil {
		fatal(err)
	}
	cfg = applyFlags(cfg)

	opts := []engine.Option{engine.WithLogger(logger.With("engine"))}
	if metricsAddr != "" {
		collector, err := metrics.NewCollector(prometheus.NewRegistry())
		if err != nil {
			fatal(fmt.Errorf("metrics: %w", err))
		}
		opts = append(opts, engine.WithMetrics(collector))
		go serveMetrics(ctx, metricsAddr, collector, logger.With("metrics"))
	}

	e, err := engine.New(m, cfg, opts...)
	if err != nil {
		fatal(err)
	}

	if headless {
		hopts := headlessOptions{
			MaxFrames:    maxFrames,
			Step:         stepDt,
			Realtime:     realtime,
			SnapshotPath: snapshotPath,
			Timeline:     timelineMode,
		}
		if err := runHeadless(ctx, e, hopts, os.Stdout, logger.With("headless")); err != nil {
			fatal(err)
		}
		return
	}

	model := ui.New(e, ui.Config{FPS: fps, ShowHUD: !noHUD})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the mission and engine tuning from one viper source.
func loadConfig(path string) (mission.Mission, engine.Config, error) {
	v, err := mission.NewViper(path)
	if err != nil {
		return mission.Mission{}, engine.Config{}, err
	}
	m, err := mission.FromViper(v)
	if err != nil {
		return mission.Mission{}, engine.Config{}, fmt.Errorf("mission: %w", err)
	}
	return m, engine.ApplyViper(engine.DefaultConfig(), v), nil
}

// applyFlags lets explicit flags win over the config file.
func applyFlags(cfg engine.Config) engine.Config {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.InitialPose.Mode = camera.ParseMode(cameraMode)
		case "speed":
			if speed > 0 {
				cfg.Clock.InitialSpeed = speed
			}
		}
	})
	return cfg
}

func serveMetrics(ctx context.Context, addr string, c *metrics.Collector, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed: %v", err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
