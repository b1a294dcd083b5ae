package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/san-kum/dicebox/internal/config"
	"github.com/san-kum/dicebox/internal/gui"
	"github.com/san-kum/dicebox/internal/render"
	"github.com/san-kum/dicebox/internal/scene"
	"github.com/san-kum/dicebox/internal/stream"
	"github.com/san-kum/dicebox/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	// overrides
	boxes     int
	fps       int
	addr      string
	dt        float64
	duration  float64
	texture   string
	watch     bool
	benchRuns int
	plotBody  int
	svgOut    string
	// snapshot
	snapAt     float64
	snapWidth  int
	snapHeight int
	snapOut    string
	// tune
	tuneRuns   int
	tuneParams []string
	tuneValues []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dicebox",
		Short: "throw dice and watch them tumble",
		RunE:  runGUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dicebox", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")
	rootCmd.PersistentFlags().IntVar(&boxes, "boxes", 0, "throw exactly this many boxes")
	rootCmd.PersistentFlags().StringVar(&texture, "texture", "", "dice texture image (png, jpeg, bmp, webp)")
	rootCmd.Flags().BoolVar(&watch, "watch", true, "reload the config file when it changes")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the 3D window",
		RunE:  runGUI,
	}
	guiCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "target frame rate")
	guiCmd.Flags().BoolVar(&watch, "watch", true, "reload the config file when it changes")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the scene to browsers over websocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().IntVar(&fps, "fps", config.DefaultStreamFPS, "frames per second sent to clients")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the throw in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a throw headless and record it",
		RunE:  runThrow,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "maximum duration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded throws",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot box heights of a recorded throw",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", -1, "plot only this body id")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the heights as an SVG chart")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render one recorded frame as an SVG wireframe",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().Float64Var(&snapAt, "at", -1, "frame time in seconds (-1 for the last frame)")
	snapshotCmd.Flags().IntVar(&snapWidth, "width", 80, "canvas width in cells")
	snapshotCmd.Flags().IntVar(&snapHeight, "height", 40, "canvas height in cells")
	snapshotCmd.Flags().StringVarP(&snapOut, "output", "o", "-", "output file (- for stdout)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a recorded throw as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "simulate many throws in parallel",
		RunE:  benchThrows,
	}
	benchCmd.Flags().IntVar(&benchRuns, "runs", 32, "number of throws")
	benchCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	benchCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "maximum duration")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search scene parameters for the fastest settle",
		RunE:  tuneThrows,
	}
	tuneCmd.Flags().IntVar(&tuneRuns, "runs", 8, "throws per grid point")
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", []string{"friction", "restitution"}, "parameter to search (repeatable)")
	tuneCmd.Flags().StringArrayVar(&tuneValues, "values", []string{"0.2,0.5,0.8", "0.1,0.3,0.5"}, "comma separated values, one per --param")
	tuneCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	tuneCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "maximum duration per throw")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of throws from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(guiCmd, serveCmd, liveCmd, runCmd, listCmd, plotCmd, exportCmd, snapshotCmd,
		presetsCmd, benchCmd, tuneCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig starts from the preset, decodes the config file over it, then
// applies changed flags; each layer overrides the one before it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		fileCfg, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if flags.Changed("boxes") {
		cfg.Scene.MinBoxes, cfg.Scene.MaxBoxes = boxes, boxes
	}
	if flags.Changed("texture") {
		cfg.Window.Texture = texture
	}
	if flags.Changed("addr") {
		cfg.Serve.Addr = addr
	}
	if flags.Changed("fps") {
		switch cmd.Name() {
		case "serve":
			cfg.Serve.FPS = fps
		default:
			cfg.Window.FPS = fps
		}
	}
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cameraFrom(cfg *config.Config) render.Camera {
	cam := render.DefaultCamera()
	cam.Distance = cfg.Camera.Distance
	cam.Yaw = cfg.Camera.Yaw
	cam.Pitch = cfg.Camera.Pitch
	return cam
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := scene.New(cfg.Params(), cfg.Seed)
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "gui: ", log.LstdFlags)

	var watcher *config.Watcher
	if configFile != "" && watch {
		watcher, err = config.NewWatcher(configFile, config.GetPreset(preset))
		if err != nil {
			logger.Printf("config watch disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	return gui.Run(ctx, sc, gui.Options{
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		Title:       cfg.Window.Title,
		FPS:         cfg.Window.FPS,
		TexturePath: cfg.Window.Texture,
		Camera:      cameraFrom(cfg),
		Logger:      logger,
		Watcher:     watcher,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := scene.New(cfg.Params(), cfg.Seed)
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "stream: ", log.LstdFlags)

	hub := stream.NewHub(sc, stream.HubOptions{
		FPS:         cfg.Serve.FPS,
		SendBuffer:  cfg.Serve.SendBuffer,
		TexturePath: cfg.Window.Texture,
		Camera:      cameraFrom(cfg),
		Logger:      logger,
	})
	srv, err := stream.NewServer(cfg.Serve.Addr, hub, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return srv.ListenAndServe(ctx)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := scene.New(cfg.Params(), cfg.Seed)
	if err != nil {
		return err
	}
	// the terminal belongs to the TUI; errors surface in its stats panel
	return tui.Run(sc, cfg.Window.FPS, log.New(io.Discard, "", 0))
}
