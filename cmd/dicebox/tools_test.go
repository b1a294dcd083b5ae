package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dicebox/internal/sim"
	"github.com/spf13/cobra"
)

func TestPickFrame(t *testing.T) {
	frames := []sim.Frame{{Time: 0}, {Time: 0.1}, {Time: 0.2}, {Time: 0.3}}
	tests := []struct {
		at   float64
		want float64
	}{
		{-1, 0.3},
		{0, 0},
		{0.15, 0.1},
		{0.2, 0.2},
		{5, 0.3},
	}
	for _, tt := range tests {
		if got := pickFrame(frames, tt.at).Time; got != tt.want {
			t.Errorf("pickFrame(%v) = %v, expected %v", tt.at, got, tt.want)
		}
	}
}

func TestParseValues(t *testing.T) {
	got, err := parseValues("0.1, 0.5,1")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.1, 0.5, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if _, err := parseValues("0.1,x"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestCheckRuns(t *testing.T) {
	for _, n := range []int{-1, 0} {
		if err := checkRuns(n); err == nil {
			t.Errorf("expected error for %d runs", n)
		}
	}
	if err := checkRuns(1); err != nil {
		t.Errorf("1 run should be accepted: %v", err)
	}
}

func TestLoadConfigFileOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dicebox.yaml")
	if err := os.WriteFile(path, []byte("scene:\n  friction: 0.9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	oldPreset, oldFile := preset, configFile
	t.Cleanup(func() { preset, configFile = oldPreset, oldFile })
	preset, configFile = "moon", path

	cfg, err := loadConfig(&cobra.Command{Use: "run"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene.Gravity != 1.62 {
		t.Errorf("preset gravity lost, got %f", cfg.Scene.Gravity)
	}
	if cfg.Scene.Friction != 0.9 {
		t.Errorf("file friction not applied, got %f", cfg.Scene.Friction)
	}
}
