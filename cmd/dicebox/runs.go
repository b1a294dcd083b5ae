package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dicebox/internal/config"
	"github.com/san-kum/dicebox/internal/export"
	"github.com/san-kum/dicebox/internal/metrics"
	"github.com/san-kum/dicebox/internal/physics"
	"github.com/san-kum/dicebox/internal/scene"
	"github.com/san-kum/dicebox/internal/sim"
	"github.com/san-kum/dicebox/internal/storage"
	"github.com/spf13/cobra"
)

const maxPlots = 6

func simConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:              cfg.Run.Dt,
		Duration:        cfg.Run.Duration,
		StopWhenSettled: cfg.Run.StopWhenSettled,
		SampleEvery:     cfg.Run.SampleEvery,
	}
}

func runThrow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sc, err := scene.New(cfg.Params(), cfg.Seed)
	if err != nil {
		return err
	}
	w := sc.World()

	s := sim.New()
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("throwing %d boxes (seed %d)...\n", w.Len()-1, cfg.Seed)
	start := time.Now()

	result, err := s.Run(ctx, w, simConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Preset:    preset,
		Seed:      cfg.Seed,
		ThrowSeed: sc.ThrowSeed(),
		Boxes:     w.Len() - 1,
		Dt:        cfg.Run.Dt,
		Duration:  cfg.Run.Duration,
		Params:    cfg.Params(),
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.Settled {
		fmt.Printf("settled after %.2fs\n", result.SettleTime)
	} else {
		fmt.Println("did not settle")
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBOXES\tSEED\tSTEPS\tSETTLED")

	for _, run := range runs {
		settled := "-"
		if run.Settled {
			settled = fmt.Sprintf("%.2fs", run.SettleTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Boxes,
			run.Seed,
			run.Steps,
			settled,
		)
	}

	return w.Flush()
}

// heightSeries collects each box's height over the recorded frames.
func heightSeries(frames []sim.Frame) ([]physics.ID, map[physics.ID][]float64) {
	series := make(map[physics.ID][]float64)
	ids := make([]physics.ID, 0)
	for _, f := range frames {
		for _, b := range f.Bodies {
			if b.Kind != physics.KindBox {
				continue
			}
			if _, ok := series[b.ID]; !ok {
				ids = append(ids, b.ID)
			}
			series[b.ID] = append(series[b.ID], b.Position.Y())
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, series
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("boxes: %d\n", meta.Boxes)
	fmt.Printf("samples: %d over %.2fs\n\n", len(frames), frames[len(frames)-1].Time)

	ids, series := heightSeries(frames)
	plotted := 0
	for _, id := range ids {
		if plotBody >= 0 && physics.ID(plotBody) != id {
			continue
		}
		if plotted == maxPlots {
			fmt.Printf("(%d more boxes, use --body to pick one)\n", len(ids)-plotted)
			break
		}
		graph := asciigraph.Plot(series[id],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("box %d height", id)),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("no box with id %d in run %s", plotBody, runID)
	}

	if svgOut != "" {
		chart := make([]export.Series, 0, len(ids))
		for _, id := range ids {
			if plotBody >= 0 && physics.ID(plotBody) != id {
				continue
			}
			chart = append(chart, export.Series{Label: fmt.Sprintf("box %d", id), Values: series[id]})
		}
		if err := os.WriteFile(svgOut, []byte(export.SeriesToSVG(chart, 800, 400)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(args[0], os.Stdout)
}

func benchThrows(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := checkRuns(benchRuns); err != nil {
		return err
	}
	params := cfg.Params()
	rng := rand.New(rand.NewSource(cfg.Seed))
	throwSeeds := make([]int64, benchRuns)
	for i := range throwSeeds {
		throwSeeds[i] = rng.Int63()
	}

	factory := func(idx int) (*physics.World, error) {
		return scene.Replay(params, throwSeeds[idx])
	}
	ens := sim.NewEnsemble(factory, benchRuns, metrics.Defaults)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("simulating %d throws\n\n", benchRuns)
	start := time.Now()
	results, err := ens.Run(ctx, simConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	steps, settled := 0, 0
	settleTimes := make([]float64, 0, len(results))
	for _, r := range results {
		steps += r.StepsTaken
		if r.Settled {
			settled++
			settleTimes = append(settleTimes, r.SettleTime)
		}
	}
	sort.Float64s(settleTimes)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THROWS\tSETTLED\tSTEPS\tTIME\tSTEPS/SEC\tMEDIAN SETTLE")
	median := "-"
	if len(settleTimes) > 0 {
		median = fmt.Sprintf("%.2fs", settleTimes[len(settleTimes)/2])
	}
	fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%s\n",
		len(results), settled, steps, elapsed.Round(time.Millisecond), float64(steps)/elapsed.Seconds(), median)

	return w.Flush()
}
