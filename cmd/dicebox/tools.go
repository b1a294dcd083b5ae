package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/dicebox/internal/automation"
	"github.com/san-kum/dicebox/internal/export"
	"github.com/san-kum/dicebox/internal/optim"
	"github.com/san-kum/dicebox/internal/sim"
	"github.com/san-kum/dicebox/internal/storage"
	"github.com/san-kum/dicebox/internal/viz"
	"github.com/spf13/cobra"
)

const snapshotGridLines = 12

// pickFrame returns the last frame at or before at, or the final frame when
// at is negative.
func pickFrame(frames []sim.Frame, at float64) sim.Frame {
	if at < 0 {
		return frames[len(frames)-1]
	}
	i := sort.Search(len(frames), func(i int) bool { return frames[i].Time > at })
	if i == 0 {
		return frames[0]
	}
	return frames[i-1]
}

func snapshotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", args[0])
	}

	frame := pickFrame(frames, snapAt)
	canvas := viz.NewCanvas(snapWidth, snapHeight)
	wf := viz.FrameWireframe(frame.Bodies, meta.Params.GroundSize, snapshotGridLines)
	viz.Render3D(canvas, wf, cameraFrom(cfg))
	svg := export.CanvasToSVG(canvas, 4)

	if snapOut == "-" {
		_, err := fmt.Fprint(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(snapOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote frame t=%.2fs to %s\n", frame.Time, snapOut)
	return nil
}

func checkRuns(n int) error {
	if n < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", n)
	}
	return nil
}

func parseValues(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func tuneThrows(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := checkRuns(tuneRuns); err != nil {
		return err
	}
	if len(tuneParams) != len(tuneValues) {
		return fmt.Errorf("got %d --param but %d --values", len(tuneParams), len(tuneValues))
	}
	ranges := make([][]float64, len(tuneValues))
	for i, v := range tuneValues {
		if ranges[i], err = parseValues(v); err != nil {
			return fmt.Errorf("--values for %s: %w", tuneParams[i], err)
		}
	}
	grid, err := optim.NewGridSearch(tuneParams, ranges)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	throwSeeds := make([]int64, tuneRuns)
	for i := range throwSeeds {
		throwSeeds[i] = rng.Int63()
	}
	runCfg := simConfig(cfg)
	runCfg.StopWhenSettled = true

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("searching %d grid points x %d throws\n\n", grid.Size(), tuneRuns)
	start := time.Now()
	best, score, trials, err := grid.Search(ctx, optim.SettleObjective(cfg.Params(), throwSeeds, runCfg))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN SETTLE\n", strings.ToUpper(strings.Join(tuneParams, "\t")))
	for _, t := range trials {
		cols := make([]string, len(tuneParams))
		for i, name := range tuneParams {
			cols[i] = strconv.FormatFloat(t.Params[name], 'g', -1, 64)
		}
		result := fmt.Sprintf("%.3fs", t.Score)
		if t.Err != nil {
			result = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(cols, "\t"), result)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest after %v: ", time.Since(start).Round(time.Millisecond))
	for _, name := range tuneParams {
		fmt.Printf("%s=%g ", name, best[name])
	}
	fmt.Printf("(mean settle %.3fs)\n", score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := log.New(os.Stderr, "scenario: ", log.LstdFlags)
	results, err := automation.RunScenario(ctx, scenario, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTHROW\tRUN ID\tSTEPS\tSETTLED")
	for _, r := range results {
		settled := "-"
		if r.Result.Settled {
			settled = fmt.Sprintf("%.2fs", r.Result.SettleTime)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", r.Step, r.Throw+1, r.RunID, r.Result.StepsTaken, settled)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}
