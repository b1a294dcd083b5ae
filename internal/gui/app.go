// Package gui is the native front end: a resizable raylib window drawing the
// app model's entities with the lit, textured GLSL program.
package gui

import (
	"context"
	"fmt"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/dicebox/internal/app"
	"github.com/san-kum/dicebox/internal/config"
	"github.com/san-kum/dicebox/internal/render"
	"github.com/san-kum/dicebox/internal/scene"
)

var (
	ColText    = rl.NewColor(220, 220, 220, 255)
	ColTextDim = rl.NewColor(140, 140, 150, 255)
	ColError   = rl.NewColor(230, 80, 80, 255)
)

type Options struct {
	Width, Height int
	Title         string
	FPS           int
	// TexturePath is loaded in the background; boxes use a flat fallback
	// until it arrives. Empty means the built-in pip atlas.
	TexturePath string
	Camera      render.Camera
	Logger      *log.Logger
	// Watcher, if set, feeds reloaded configs into the running scene.
	Watcher *config.Watcher
}

type App struct {
	model    app.Model
	opts     Options
	renderer *renderer
	textures <-chan render.TextureResult
	log      *log.Logger
}

func initWindow(o Options) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(o.Width), int32(o.Height), o.Title)
	rl.SetTargetFPS(int32(o.FPS))
	rl.SetExitKey(rl.KeyEscape)
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(ctx context.Context, sc *scene.Scene, o Options) error {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	initWindow(o)
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return fmt.Errorf("gui: window could not be created")
	}

	a := &App{
		model:    app.New(sc, rl.GetScreenWidth(), rl.GetScreenHeight(), o.Logger),
		opts:     o,
		renderer: newRenderer(),
		log:      o.Logger,
	}
	defer a.renderer.unload()
	if o.Camera.Distance > 0 {
		a.model.Camera = o.Camera
	}

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.startTextureLoad(loadCtx)

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		a.Update()
		a.Draw()
	}
	return nil
}

// startTextureLoad kicks off the dice texture. The procedural atlas stands
// in for a file when none is configured, so it goes through the same path.
func (a *App) startTextureLoad(ctx context.Context) {
	if a.opts.TexturePath != "" {
		a.textures = render.AsyncLoad(ctx, a.opts.TexturePath)
		return
	}
	ch := make(chan render.TextureResult, 1)
	go func() {
		defer close(ch)
		ch <- render.TextureResult{Path: "builtin:atlas", Image: render.DiceAtlas(atlasCell)}
	}()
	a.textures = ch
}

func (a *App) pollInput() app.Input {
	in := app.Input{
		Dt:           float64(rl.GetFrameTime()),
		Resized:      rl.IsWindowResized(),
		Width:        rl.GetScreenWidth(),
		Height:       rl.GetScreenHeight(),
		Clicked:      rl.IsMouseButtonPressed(rl.MouseButtonLeft),
		PausePressed: rl.IsKeyPressed(rl.KeySpace),
		Wheel:        rl.GetMouseWheelMove(),
	}
	if in.Clicked {
		p := rl.GetMousePosition()
		in.ClickX, in.ClickY = p.X, p.Y
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		in.OrbitX--
	}
	if rl.IsKeyDown(rl.KeyRight) {
		in.OrbitX++
	}
	if rl.IsKeyDown(rl.KeyUp) {
		in.OrbitY++
	}
	if rl.IsKeyDown(rl.KeyDown) {
		in.OrbitY--
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		in.OrbitX += d.X * 0.2
		in.OrbitY += d.Y * 0.2
	}
	if rl.IsKeyPressed(rl.KeyR) || rl.IsKeyPressed(rl.KeyEnter) {
		in.Clicked = true
	}
	return in
}

func (a *App) Update() {
	a.drainAsync()
	a.model = a.model.Apply(app.Messages(a.pollInput())...)
	a.renderer.setDiceTexture(a.model.DiceTexture)
}

// drainAsync forwards finished texture loads and config reloads without
// blocking the frame.
func (a *App) drainAsync() {
	if a.textures != nil {
		select {
		case res, ok := <-a.textures:
			if ok {
				a.model = a.model.Update(app.TextureLoaded(res))
			}
			a.textures = nil
		default:
		}
	}

	w := a.opts.Watcher
	if w == nil {
		return
	}
	select {
	case cfg, ok := <-w.Configs:
		if ok {
			a.log.Printf("config reloaded")
			a.model = a.model.Update(app.Reconfigure{Params: cfg.Params()})
		}
	case err, ok := <-w.Errors:
		if ok {
			a.log.Printf("config reload: %v", err)
		}
	default:
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(toColor(render.Backdrop))

	cam := a.model.Camera
	rl.BeginMode3D(rl.NewCamera3D(vec3(cam.Eye()), vec3(cam.Target), rl.NewVector3(0, 1, 0), render.FieldOfView, rl.CameraPerspective))
	a.renderer.setLight(a.model.Light)
	a.renderer.draw(a.model.Entities())
	rl.EndMode3D()

	a.drawHUD()
}

func (a *App) drawHUD() {
	m := a.model
	w := m.Scene.World()
	rl.DrawText(fmt.Sprintf("throw #%d   t=%.2fs   bodies=%d", m.Throws, m.Elapsed, w.Len()), 12, 12, 20, ColText)

	status := "click to throw again"
	switch {
	case m.Paused:
		status = "paused (space)"
	case w.Settled():
		status = "settled - click to throw again"
	}
	rl.DrawText(status, 12, 38, 16, ColTextDim)
	if !m.TextureReady && m.TextureErr == nil {
		rl.DrawText("loading texture...", 12, 58, 16, ColTextDim)
	}
	if m.Err != nil {
		rl.DrawText(m.Err.Error(), 12, int32(m.Height)-28, 16, ColError)
	}
	rl.DrawFPS(int32(m.Width)-90, 12)
}
