package config

import "sort"

// Presets adjust the scene section of the default config.
var Presets = map[string]func(*Config){
	"classic": func(c *Config) {},
	"pile": func(c *Config) {
		c.Scene.MinBoxes, c.Scene.MaxBoxes = 20, 30
		c.Scene.SpawnRadius = 1.5
		c.Scene.ThrowSpeed = 1
		c.Camera.Distance = 24
	},
	"moon": func(c *Config) {
		c.Scene.Gravity = 1.62
		c.Scene.Restitution = 0.5
		c.Run.Duration = 30
	},
	"bouncy": func(c *Config) {
		c.Scene.Restitution = 0.85
		c.Scene.Friction = 0.2
		c.Scene.ThrowSpeed = 8
	},
	"single": func(c *Config) {
		c.Scene.MinBoxes, c.Scene.MaxBoxes = 1, 1
		c.Camera.Distance = 10
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
