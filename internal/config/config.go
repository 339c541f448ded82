// Package config provides configuration management for coremap.
//
// Config file locations (priority order):
//  1. $COREMAP_CONFIG
//  2. ./coremap.yaml
//  3. ~/.config/coremap/config.yaml
//  4. /etc/coremap/config.yaml
//
// Missing values fall back to the built-in system map defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"coremap/internal/interaction"
	"coremap/internal/physics"
	"coremap/internal/render"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the configuration of the built-in system map
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.FrameInterval <= 0 {
		c.Server.FrameInterval = Duration(time.Second / 60)
	}
	if c.Server.SessionIdle <= 0 {
		c.Server.SessionIdle = Duration(10 * time.Minute)
	}
	if c.Server.KeepAlive <= 0 {
		c.Server.KeepAlive = Duration(15 * time.Second)
	}
	if c.Server.MaxSessions <= 0 {
		c.Server.MaxSessions = 256
	}
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = 800
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = 600
	}

	defaults := interaction.DefaultRoutes()
	if c.Routes.Prefix == "" {
		c.Routes.Prefix = defaults.Prefix
	}
	if c.Routes.Slugs == nil {
		c.Routes.Slugs = defaults.Slugs
	}
}

// Center is the middle of the viewport
func (c *Config) Center() r2.Vec {
	return r2.Vec{X: c.Viewport.Width / 2, Y: c.Viewport.Height / 2}
}

// EffectivePhysics returns the simulation tuning with overrides applied
func (c *Config) EffectivePhysics() physics.Config {
	base := physics.DefaultConfig(c.Center())

	o := c.Simulation
	if o == nil {
		return base
	}
	apply(&base.LinkDistance, o.LinkDistance)
	apply(&base.ChargeStrength, o.ChargeStrength)
	apply(&base.CenterStrength, o.CenterStrength)
	apply(&base.CollideRadius, o.CollideRadius)
	apply(&base.CollideStrength, o.CollideStrength)
	apply(&base.Theta, o.Theta)
	apply(&base.AlphaMin, o.AlphaMin)
	apply(&base.VelocityDecay, o.VelocityDecay)

	if o.AlphaDecay != nil {
		base.AlphaDecay = *o.AlphaDecay
	} else if o.AlphaMin != nil {
		// a changed floor keeps the 300 tick cooling schedule
		base.AlphaDecay = 0
	}
	return base
}

// EffectivePointer returns the interaction tuning with overrides applied
func (c *Config) EffectivePointer() interaction.Config {
	base := interaction.DefaultConfig()

	o := c.Interaction
	if o == nil {
		return base
	}
	apply(&base.HitRadius, o.HitRadius)
	apply(&base.ClickTolerance, o.ClickTolerance)
	apply(&base.DragAlphaTarget, o.DragAlphaTarget)
	return base
}

// Style returns the render style for the viewport
func (c *Config) Style() render.Style {
	return render.DefaultStyle(c.Viewport.Width, c.Viewport.Height)
}

func apply(dst *float64, override *float64) {
	if override != nil {
		*dst = *override
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	source := c.Catalog.Path
	if source == "" {
		source = "builtin"
	}
	p := c.EffectivePhysics()
	summary := fmt.Sprintf("Catalog: %s (watch: %v)\n", source, c.Catalog.Watch)
	summary += fmt.Sprintf("Viewport: %gx%g, frame interval %s\n",
		c.Viewport.Width, c.Viewport.Height, c.Server.FrameInterval.Duration())
	summary += fmt.Sprintf("Forces: link %g, charge %g, collide %g",
		p.LinkDistance, p.ChargeStrength, p.CollideRadius)
	return summary
}
