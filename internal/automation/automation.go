// Package automation runs scripted sequences of throws described in YAML.
package automation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/san-kum/dicebox/internal/config"
	"github.com/san-kum/dicebox/internal/metrics"
	"github.com/san-kum/dicebox/internal/scene"
	"github.com/san-kum/dicebox/internal/sim"
	"github.com/san-kum/dicebox/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a named list of throw batches.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep throws Repeat times with the given preset and overrides.
// Zero Dt, Duration or Seed fall back to the preset and scenario values.
type ScenarioStep struct {
	Name            string             `yaml:"name"`
	Preset          string             `yaml:"preset"`
	Seed            int64              `yaml:"seed"`
	Repeat          int                `yaml:"repeat"`
	Duration        float64            `yaml:"duration"`
	Dt              float64            `yaml:"dt"`
	StopWhenSettled *bool              `yaml:"stop_when_settled"`
	Params          map[string]float64 `yaml:"params"`
	SaveAs          string             `yaml:"save_as"`
}

// StepResult is one throw of one step.
type StepResult struct {
	Step      string
	Throw     int
	ThrowSeed int64
	RunID     string
	Result    *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	for i, step := range scenario.Steps {
		if step.Preset != "" && config.GetPreset(step.Preset) == nil {
			return nil, fmt.Errorf("step %d: unknown preset %q", i+1, step.Preset)
		}
		if step.Repeat < 0 {
			return nil, fmt.Errorf("step %d: repeat must be non-negative", i+1)
		}
	}
	return &scenario, nil
}

// stepConfig resolves the preset, overrides and run settings of one step.
func stepConfig(step ScenarioStep) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if step.Preset != "" {
		cfg = config.GetPreset(step.Preset)
	}
	if step.Dt > 0 {
		cfg.Run.Dt = step.Dt
	}
	if step.Duration > 0 {
		cfg.Run.Duration = step.Duration
	}
	if step.StopWhenSettled != nil {
		cfg.Run.StopWhenSettled = *step.StopWhenSettled
	}

	p := cfg.Params()
	for name, v := range step.Params {
		if err := p.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	cfg.Scene = config.SceneFromParams(p)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes every step in order. Throws are saved to st when it is
// non-nil; logger may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}

		cfg, err := stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		seed := step.Seed
		if seed == 0 {
			seed = scenario.Seed + int64(i)
		}
		sc, err := scene.New(cfg.Params(), seed)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		repeat := step.Repeat
		if repeat == 0 {
			repeat = 1
		}

		for k := 0; k < repeat; k++ {
			if k > 0 {
				if err := sc.Restart(); err != nil {
					return results, fmt.Errorf("step %d throw %d: %w", i+1, k+1, err)
				}
			}
			logger.Printf("step %d/%d %s: throw %d/%d", i+1, len(scenario.Steps), name, k+1, repeat)

			s := sim.New()
			for _, m := range metrics.Defaults() {
				s.AddMetric(m)
			}
			res, err := s.Run(ctx, sc.World(), sim.Config{
				Dt:              cfg.Run.Dt,
				Duration:        cfg.Run.Duration,
				StopWhenSettled: cfg.Run.StopWhenSettled,
				SampleEvery:     cfg.Run.SampleEvery,
			})
			if err != nil {
				return results, fmt.Errorf("step %d throw %d: %w", i+1, k+1, err)
			}

			sr := StepResult{Step: name, Throw: k, ThrowSeed: sc.ThrowSeed(), Result: res}
			if st != nil {
				meta := storage.RunMetadata{
					Preset:    step.Preset,
					Seed:      seed,
					ThrowSeed: sc.ThrowSeed(),
					Boxes:     sc.World().Len() - 1,
					Dt:        cfg.Run.Dt,
					Duration:  cfg.Run.Duration,
					Params:    sc.Params(),
				}
				if step.SaveAs != "" {
					meta.ID = fmt.Sprintf("%s_%d", step.SaveAs, k+1)
				}
				id, err := st.Save(meta, res)
				if err != nil {
					return results, fmt.Errorf("step %d throw %d: %w", i+1, k+1, err)
				}
				sr.RunID = id
			}
			results = append(results, sr)
		}
	}

	return results, nil
}
