package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/dicebox/internal/physics"
)

// Simulator steps a world headlessly at a fixed rate.
type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, w *physics.World, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Dt > w.MaxAdvance() {
		return nil, fmt.Errorf("dt %f exceeds the %f seconds a world step can cover", cfg.Dt, w.MaxAdvance())
	}

	steps := int(cfg.Duration/cfg.Dt + 0.5)
	sampleEvery := cfg.SampleEvery
	if sampleEvery <= 0 {
		sampleEvery = 1
	}
	result := &Result{
		Frames:  make([]Frame, 0, steps/sampleEvery+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := w.Time()
	result.Frames = append(result.Frames, Frame{Time: 0, Bodies: w.Bodies()})

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		if err := w.Step(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++
		t := w.Time() - start

		for _, m := range s.metrics {
			m.Observe(w, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(w, t)
		}

		settled := w.Settled()
		last := i == steps-1 || (cfg.StopWhenSettled && settled)
		if result.StepsTaken%sampleEvery == 0 || last {
			result.Frames = append(result.Frames, Frame{Time: t, Bodies: w.Bodies()})
		}
		if settled && !result.Settled {
			result.Settled = true
			result.SettleTime = t
		}
		if !settled {
			result.Settled = false
		}
		if cfg.StopWhenSettled && settled {
			break
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
