// Package metrics exposes flight engine telemetry as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the engine metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	FramesTotal   prometheus.Counter
	EventsTotal   *prometheus.CounterVec
	TickDuration  prometheus.Histogram
	Progress      prometheus.Gauge
	Speed         prometheus.Gauge
	Running       prometheus.Gauge
	CameraMode    *prometheus.GaugeVec
	VisibleBodies prometheus.Gauge
	VisibleStars  prometheus.Gauge
}

// FrameSample is the per-tick data the collector records.
type FrameSample struct {
	Progress      float64
	Speed         float64
	Running       bool
	Mode          string
	VisibleBodies int
	VisibleStars  int
}

// NewCollector registers the flight metrics against reg. A nil reg uses the
// default registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightpath_frames_total",
		Help: "Frames assembled by the engine.",
	}), "flightpath_frames_total")
	if err != nil {
		return nil, err
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightpath_events_total",
		Help: "Journal events by type.",
	}, []string{"type"}), "flightpath_events_total")
	if err != nil {
		return nil, err
	}

	tick, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightpath_tick_duration_seconds",
		Help:    "Wall time spent advancing and assembling one frame.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	}), "flightpath_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	progress, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightpath_progress_ratio",
		Help: "Progress along the flight path in [0, 1].",
	}), "flightpath_progress_ratio")
	if err != nil {
		return nil, err
	}

	speed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightpath_speed",
		Help: "Clock speed in progress per second before modulation.",
	}), "flightpath_speed")
	if err != nil {
		return nil, err
	}

	running, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightpath_running",
		Help: "1 while the flight clock is running.",
	}), "flightpath_running")
	if err != nil {
		return nil, err
	}

	mode, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flightpath_camera_mode",
		Help: "1 for the active camera mode.",
	}, []string{"mode"}), "flightpath_camera_mode")
	if err != nil {
		return nil, err
	}

	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightpath_visible_bodies",
		Help: "Bodies drawn in the last frame.",
	}), "flightpath_visible_bodies")
	if err != nil {
		return nil, err
	}

	stars, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightpath_visible_stars",
		Help: "Stars inside the viewport in the last frame.",
	}), "flightpath_visible_stars")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		FramesTotal:   frames,
		EventsTotal:   events,
		TickDuration:  tick,
		Progress:      progress,
		Speed:         speed,
		Running:       running,
		CameraMode:    mode,
		VisibleBodies: bodies,
		VisibleStars:  stars,
	}, nil
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveFrame records one assembled frame and the time it took.
func (c *Collector) ObserveFrame(s FrameSample, took time.Duration) {
	if c == nil {
		return
	}
	c.FramesTotal.Inc()
	c.TickDuration.Observe(took.Seconds())
	c.Progress.Set(s.Progress)
	c.Speed.Set(s.Speed)
	if s.Running {
		c.Running.Set(1)
	} else {
		c.Running.Set(0)
	}
	c.SetMode(s.Mode)
	c.VisibleBodies.Set(float64(s.VisibleBodies))
	c.VisibleStars.Set(float64(s.VisibleStars))
}

// SetMode marks mode active and every other mode seen so far inactive.
func (c *Collector) SetMode(mode string) {
	if c == nil || mode == "" {
		return
	}
	for _, m := range []string{"AUTO", "FREE"} {
		if m == mode {
			continue
		}
		c.CameraMode.WithLabelValues(m).Set(0)
	}
	c.CameraMode.WithLabelValues(mode).Set(1)
}

// IncEvent counts a journal event.
func (c *Collector) IncEvent(eventType string) {
	if c == nil {
		return
	}
	c.EventsTotal.WithLabelValues(eventType).Inc()
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
