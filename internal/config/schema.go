package config

import (
	"fmt"
	"time"

	"coremap/internal/interaction"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Version     int                 `yaml:"version"`
	Log         LogConfig           `yaml:"log"`
	Server      ServerConfig        `yaml:"server"`
	Catalog     CatalogConfig       `yaml:"catalog"`
	Viewport    ViewportConfig      `yaml:"viewport"`
	Simulation  *SimulationOverride `yaml:"simulation,omitempty"`
	Interaction *PointerOverride    `yaml:"interaction,omitempty"`
	Routes      interaction.Routes  `yaml:"routes"`
}

// LogConfig selects the logger build
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ServerConfig holds HTTP and session settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// FrameInterval is the tick period of a running session
	FrameInterval Duration `yaml:"frame_interval"`
	// SessionIdle closes sessions that received no request for this long
	SessionIdle Duration `yaml:"session_idle"`
	KeepAlive   Duration `yaml:"keep_alive"`
	MaxSessions int      `yaml:"max_sessions"`
}

// CatalogConfig points at the system map description
type CatalogConfig struct {
	// Path is a .yaml, .json, .toml or .db file. Empty means the built-in map.
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch"`
}

// ViewportConfig is the layout area; the simulation centers on its middle
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SimulationOverride allows overriding the physics defaults
type SimulationOverride struct {
	LinkDistance    *float64 `yaml:"link_distance,omitempty"`
	ChargeStrength  *float64 `yaml:"charge_strength,omitempty"`
	CenterStrength  *float64 `yaml:"center_strength,omitempty"`
	CollideRadius   *float64 `yaml:"collide_radius,omitempty"`
	CollideStrength *float64 `yaml:"collide_strength,omitempty"`
	Theta           *float64 `yaml:"theta,omitempty"`
	AlphaMin        *float64 `yaml:"alpha_min,omitempty"`
	AlphaDecay      *float64 `yaml:"alpha_decay,omitempty"`
	VelocityDecay   *float64 `yaml:"velocity_decay,omitempty"`
}

// PointerOverride allows overriding the interaction defaults
type PointerOverride struct {
	HitRadius       *float64 `yaml:"hit_radius,omitempty"`
	ClickTolerance  *float64 `yaml:"click_tolerance,omitempty"`
	DragAlphaTarget *float64 `yaml:"drag_alpha_target,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
