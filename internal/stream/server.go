// Package stream is the browser front end. One hub steps the shared world
// and pushes entity frames over websockets to an embedded WebGL page, which
// sends clicks back to throw again.
package stream

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/dicebox/internal/render"
	"golang.org/x/sync/errgroup"
)

//go:embed web/index.html
var indexHTML []byte

const groundTiles = 20

type Server struct {
	hub      *Hub
	addr     string
	log      *log.Logger
	upgrader websocket.Upgrader
	assets   []byte
}

func NewServer(addr string, hub *Hub, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	assets, err := json.Marshal(newAssets(groundTiles))
	if err != nil {
		return nil, err
	}
	s := &Server{
		hub:    hub,
		addr:   addr,
		log:    logger,
		assets: assets,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", s.serveHealth)
	mux.HandleFunc("/assets.json", s.serveAssets)
	mux.HandleFunc("/texture/dice.png", s.serveDice)
	mux.HandleFunc("/texture/ground.png", s.serveGround)
	return mux
}

// ListenAndServe runs the hub and the HTTP server until ctx is cancelled or
// either fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.hub.Run(ctx) })
	g.Go(func() error {
		s.log.Printf("listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) serveAssets(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.assets)
}

func (s *Server) serveDice(w http.ResponseWriter, r *http.Request) {
	img, _ := s.hub.DiceTexture()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		s.log.Printf("encode dice texture: %v", err)
	}
}

func (s *Server) serveGround(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, render.GroundTexture(64)); err != nil {
		s.log.Printf("encode ground texture: %v", err)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, s.hub.opts.SendBuffer)}
	s.hub.register(c)
	s.log.Printf("client %s connected (%d total)", c.addr(), s.hub.Clients())

	go c.writePump()
	c.readPump(s.hub)
}
