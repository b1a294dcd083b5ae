package sim

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicebox/internal/physics"
)

func newDropWorld(height float64) (*physics.World, error) {
	w := physics.NewWorld()
	if _, err := w.AddBody(physics.NewPlane(mgl64.Vec3{0, 1, 0})); err != nil {
		return nil, err
	}
	if _, err := w.AddBody(physics.NewBox(mgl64.Vec3{0.5, 0.5, 0.5}).WithPosition(mgl64.Vec3{0, height, 0})); err != nil {
		return nil, err
	}
	return w, nil
}

func dropWorld(t *testing.T, height float64) *physics.World {
	t.Helper()
	w, err := newDropWorld(height)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                        { return "count" }
func (c *countingMetric) Observe(w *physics.World, t float64) { c.count++ }
func (c *countingMetric) Value() float64                      { return float64(c.count) }
func (c *countingMetric) Reset()                              { c.count = 0 }

func TestSimulatorRun(t *testing.T) {
	s := New()
	m := &countingMetric{}
	s.AddMetric(m)

	cfg := Config{Dt: 0.1, Duration: 1.0, SampleEvery: 1}
	result, err := s.Run(context.Background(), dropWorld(t, 20), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Frames) != 11 {
		t.Errorf("expected 11 frames, got %d", len(result.Frames))
	}
	if result.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations, got %f", result.Metrics["count"])
	}
	if len(result.Frames[0].Bodies) != 2 {
		t.Errorf("expected 2 bodies per frame, got %d", len(result.Frames[0].Bodies))
	}
}

func TestSimulatorSampling(t *testing.T) {
	cfg := Config{Dt: 0.1, Duration: 1.0, SampleEvery: 4}
	result, err := New().Run(context.Background(), dropWorld(t, 20), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// initial, steps 4 and 8, final step 10
	if len(result.Frames) != 4 {
		t.Errorf("expected 4 frames, got %d", len(result.Frames))
	}
	if last := result.Frames[len(result.Frames)-1].Time; last < 0.99 {
		t.Errorf("last frame should be at the end of the run, got t=%f", last)
	}
}

func TestSimulatorStopsWhenSettled(t *testing.T) {
	cfg := Config{Dt: 1.0 / 60, Duration: 30, StopWhenSettled: true, SampleEvery: 10}
	result, err := New().Run(context.Background(), dropWorld(t, 1), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !result.Settled {
		t.Fatal("expected run to settle")
	}
	if result.SettleTime >= 30 || result.StepsTaken >= 30*60 {
		t.Errorf("run did not stop early: %d steps", result.StepsTaken)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Run(context.Background(), dropWorld(t, 5), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorDtWithinWorldStep(t *testing.T) {
	w := dropWorld(t, 5)
	if _, err := New().Run(context.Background(), w, Config{Dt: 0.5, Duration: 10}); err == nil {
		t.Fatal("expected error for dt beyond what one world step covers")
	}
	if w.Time() != 0 {
		t.Errorf("rejected run should not step, t=%f", w.Time())
	}

	dt := w.MaxAdvance()
	res, err := New().Run(context.Background(), w, Config{Dt: dt, Duration: 2})
	if err != nil {
		t.Fatal(err)
	}
	last := res.Frames[len(res.Frames)-1].Time
	if last < 2-dt/2 {
		t.Errorf("run covered %.3fs of 2s", last)
	}
}

func TestSimulatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := New().Run(ctx, dropWorld(t, 5), Config{Dt: 0.01, Duration: 1})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("cancelled run should return a partial result with no steps")
	}
}

func TestEnsemble(t *testing.T) {
	factory := func(idx int) (*physics.World, error) {
		return newDropWorld(float64(2 + idx))
	}
	e := NewEnsemble(factory, 4, func() []Metric { return []Metric{&countingMetric{}} })

	results, err := e.Run(context.Background(), Config{Dt: 0.05, Duration: 0.5, SampleEvery: 1})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Metrics["count"] != 10 {
			t.Errorf("run %d: expected 10 observations, got %f", i, r.Metrics["count"])
		}
	}
}

func TestEnsembleRejectsNoRuns(t *testing.T) {
	factory := func(idx int) (*physics.World, error) { return newDropWorld(5) }
	for _, n := range []int{0, -1} {
		if _, err := NewEnsemble(factory, n, nil).Run(context.Background(), Config{Dt: 0.05, Duration: 0.5}); err == nil {
			t.Errorf("expected error for %d runs", n)
		}
	}
}
