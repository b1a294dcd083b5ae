package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/scene"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth       = 1280
	DefaultHeight      = 720
	DefaultFPS         = 60
	DefaultAddr        = ":8080"
	DefaultStreamFPS   = 30
	DefaultSendBuffer  = 8
	DefaultDt          = 1.0 / 60
	DefaultDuration    = 10.0
	DefaultSampleEvery = 6
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Seed   int64        `yaml:"seed"`
	Window WindowConfig `yaml:"window"`
	Scene  SceneConfig  `yaml:"scene"`
	Camera CameraConfig `yaml:"camera"`
	Serve  ServeConfig  `yaml:"serve"`
	Run    RunConfig    `yaml:"run"`
}

type WindowConfig struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Title   string `yaml:"title"`
	FPS     int    `yaml:"fps"`
	Texture string `yaml:"texture"`
}

type SceneConfig struct {
	MinBoxes    int     `yaml:"min_boxes"`
	MaxBoxes    int     `yaml:"max_boxes"`
	BoxSize     float64 `yaml:"box_size"`
	SpawnRadius float64 `yaml:"spawn_radius"`
	MinHeight   float64 `yaml:"min_height"`
	MaxHeight   float64 `yaml:"max_height"`
	ThrowSpeed  float64 `yaml:"throw_speed"`
	Spin        float64 `yaml:"spin"`
	Gravity     float64 `yaml:"gravity"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
	GroundSize  float64 `yaml:"ground_size"`
	Iterations  int     `yaml:"iterations"`
	Sleep       bool    `yaml:"sleep"`
}

type CameraConfig struct {
	Distance float32 `yaml:"distance"`
	Yaw      float32 `yaml:"yaw"`
	Pitch    float32 `yaml:"pitch"`
}

type ServeConfig struct {
	Addr       string `yaml:"addr"`
	FPS        int    `yaml:"fps"`
	SendBuffer int    `yaml:"send_buffer"`
}

type RunConfig struct {
	Dt              float64 `yaml:"dt"`
	Duration        float64 `yaml:"duration"`
	StopWhenSettled bool    `yaml:"stop_when_settled"`
	SampleEvery     int     `yaml:"sample_every"`
}

func DefaultConfig() *Config {
	p := scene.DefaultParams()
	return &Config{
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  "dicebox",
			FPS:    DefaultFPS,
		},
		Scene: SceneFromParams(p),
		Camera: CameraConfig{
			Distance: 18,
			Yaw:      0.785,
			Pitch:    0.55,
		},
		Serve: ServeConfig{
			Addr:       DefaultAddr,
			FPS:        DefaultStreamFPS,
			SendBuffer: DefaultSendBuffer,
		},
		Run: RunConfig{
			Dt:              DefaultDt,
			Duration:        DefaultDuration,
			StopWhenSettled: true,
			SampleEvery:     DefaultSampleEvery,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path and decodes it over base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOver(data, base)
}

// Parse decodes YAML over the defaults, so omitted keys keep their default.
func Parse(data []byte) (*Config, error) {
	return ParseOver(data, DefaultConfig())
}

// ParseOver decodes YAML over a copy of base; base is not modified.
func ParseOver(data []byte, base *Config) (*Config, error) {
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Window.FPS <= 0 || c.Serve.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalidConfig)
	}
	if c.Serve.SendBuffer <= 0 {
		return fmt.Errorf("%w: send buffer must be positive", ErrInvalidConfig)
	}
	if c.Run.Dt <= 0 || c.Run.Duration <= 0 {
		return fmt.Errorf("%w: dt and duration must be positive", ErrInvalidConfig)
	}
	if limit := float64(physics.MaxStep) * physics.MaxSubSteps; c.Run.Dt > limit {
		return fmt.Errorf("%w: dt %f exceeds %f", ErrInvalidConfig, c.Run.Dt, limit)
	}
	if c.Run.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample_every must be positive", ErrInvalidConfig)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Params converts the scene section into throw parameters.
func (c *Config) Params() scene.Params {
	s := c.Scene
	return scene.Params{
		MinBoxes:    s.MinBoxes,
		MaxBoxes:    s.MaxBoxes,
		BoxSize:     s.BoxSize,
		SpawnRadius: s.SpawnRadius,
		MinHeight:   s.MinHeight,
		MaxHeight:   s.MaxHeight,
		ThrowSpeed:  s.ThrowSpeed,
		Spin:        s.Spin,
		Gravity:     s.Gravity,
		Friction:    s.Friction,
		Restitution: s.Restitution,
		GroundSize:  s.GroundSize,
		Iterations:  s.Iterations,
		AllowSleep:  s.Sleep,
	}
}

func SceneFromParams(p scene.Params) SceneConfig {
	return SceneConfig{
		MinBoxes:    p.MinBoxes,
		MaxBoxes:    p.MaxBoxes,
		BoxSize:     p.BoxSize,
		SpawnRadius: p.SpawnRadius,
		MinHeight:   p.MinHeight,
		MaxHeight:   p.MaxHeight,
		ThrowSpeed:  p.ThrowSpeed,
		Spin:        p.Spin,
		Gravity:     p.Gravity,
		Friction:    p.Friction,
		Restitution: p.Restitution,
		GroundSize:  p.GroundSize,
		Iterations:  p.Iterations,
		Sleep:       p.AllowSleep,
	}
}
