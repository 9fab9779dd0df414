package engine

import (
	"github.com/spf13/viper"

	"github.com/litescript/ls-flightpath/internal/camera"
	"github.com/litescript/ls-flightpath/internal/scene"
	"github.com/litescript/ls-flightpath/internal/state"
)

// Config holds the tuning of every engine component.
type Config struct {
	Camera      camera.Config
	Clock       state.ClockConfig
	Scene       scene.Config
	InitialPose camera.Pose
	Viewport    camera.Viewport
	JournalSize int
}

// DefaultConfig returns the canvas flight on an 800x600 pixel surface.
func DefaultConfig() Config {
	return Config{
		Camera:      camera.DefaultConfig(),
		Clock:       state.DefaultClockConfig(),
		Scene:       scene.DefaultConfig(),
		InitialPose: camera.DefaultPose(),
		Viewport:    camera.NewViewport(800, 600),
		JournalSize: state.DefaultJournalSize,
	}
}

// ApplyViper overrides cfg with the camera.*, clock.* and scene.* keys set
// in v. Unset keys keep their current values.
func ApplyViper(cfg Config, v *viper.Viper) Config {
	setFloat := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	setFloat("camera.auto_damping", &cfg.Camera.AutoDamping)
	setFloat("camera.free_damping", &cfg.Camera.FreeDamping)
	setFloat("camera.look_ahead", &cfg.Camera.LookAhead)
	setFloat("camera.input_decay", &cfg.Camera.InputDecay)
	setFloat("camera.drag_sensitivity", &cfg.Camera.DragSensitivity)
	setFloat("camera.pitch_limit", &cfg.Camera.PitchLimit)
	setFloat("camera.fov", &cfg.Viewport.FOV)
	if v.IsSet("camera.mode") {
		cfg.InitialPose.Mode = camera.ParseMode(v.GetString("camera.mode"))
	}

	setFloat("clock.initial_speed", &cfg.Clock.InitialSpeed)
	setFloat("clock.min_speed", &cfg.Clock.MinSpeed)
	setFloat("clock.max_speed", &cfg.Clock.MaxSpeed)
	setFloat("clock.speed_step", &cfg.Clock.SpeedStep)
	if v.IsSet("clock.max_step") {
		cfg.Clock.MaxStep = v.GetDuration("clock.max_step")
	}

	setFloat("scene.preview_span", &cfg.Scene.PreviewSpan)
	setInt("scene.preview_steps", &cfg.Scene.PreviewSteps)
	setInt("scene.star_count", &cfg.Scene.StarCount)
	if v.IsSet("scene.star_seed") {
		cfg.Scene.StarSeed = uint64(v.GetInt64("scene.star_seed"))
	}
	setFloat("scene.body_wobble", &cfg.Scene.BodyWobble)
	setFloat("scene.min_body_radius_px", &cfg.Scene.MinBodyRadiusPx)

	setInt("journal_size", &cfg.JournalSize)
	return cfg
}
