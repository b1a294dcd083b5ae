package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dicebox/internal/storage"
)

const ladder = `
name: friction ladder
seed: 7
steps:
  - name: slick
    preset: single
    repeat: 2
    duration: 0.5
    params:
      friction: 0.05
    save_as: slick
  - preset: moon
    duration: 0.25
    stop_when_settled: false
    params:
      max_boxes: 2
      min_boxes: 2
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(ladder))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "friction ladder" || sc.Seed != 7 {
		t.Errorf("unexpected header %+v", sc)
	}
	if len(sc.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(sc.Steps))
	}
	if sc.Steps[0].Params["friction"] != 0.05 {
		t.Errorf("params not decoded: %v", sc.Steps[0].Params)
	}
	if sc.Steps[1].StopWhenSettled == nil || *sc.Steps[1].StopWhenSettled {
		t.Error("stop_when_settled override lost")
	}
}

func TestParseScenarioRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no steps", "name: empty\n"},
		{"unknown preset", "steps:\n  - preset: mars\n"},
		{"negative repeat", "steps:\n  - repeat: -1\n"},
		{"bad yaml", "steps: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(ladder))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 throws, got %d", len(results))
	}
	if results[0].RunID != "slick_1" || results[1].RunID != "slick_2" {
		t.Errorf("unexpected run ids %q, %q", results[0].RunID, results[1].RunID)
	}
	if results[0].ThrowSeed == results[1].ThrowSeed {
		t.Error("repeats should use different throws")
	}
	if results[2].Step != "step2" {
		t.Errorf("expected default step name, got %q", results[2].Step)
	}

	meta, err := st.Load("slick_1")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Params.Friction != 0.05 || meta.Boxes != 1 {
		t.Errorf("unexpected saved metadata %+v", meta)
	}
	last, err := st.Load(results[2].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if last.Boxes != 2 || last.Params.Gravity != 1.62 {
		t.Errorf("moon step not applied: %+v", last)
	}
}

func TestRunScenarioUnknownParam(t *testing.T) {
	sc, err := ParseScenario([]byte("steps:\n  - params:\n      wobble: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RunScenario(context.Background(), sc, nil, nil); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(ladder), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Steps) != 2 {
		t.Errorf("expected 2 steps, got %d", len(sc.Steps))
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
