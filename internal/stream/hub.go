package stream

import (
	"context"
	"encoding/json"
	"image"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/dicebox/internal/app"
	"github.com/san-kum/dicebox/internal/render"
	"github.com/san-kum/dicebox/internal/scene"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 1024
	inboxSize  = 32
)

type HubOptions struct {
	FPS        int
	SendBuffer int
	// TexturePath is decoded in the background; pages keep the fallback
	// texture until the frame's textureVersion changes.
	TexturePath string
	Camera      render.Camera
	Logger      *log.Logger
}

// Hub owns the one shared simulation. Only Run touches the model; clients
// talk to it through the inbox.
type Hub struct {
	opts  HubOptions
	log   *log.Logger
	model app.Model
	inbox chan app.Msg

	mu         sync.RWMutex
	clients    map[*client]struct{}
	last       []byte
	dice       *image.RGBA
	texVersion int
	seq        uint64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(sc *scene.Scene, opts HubOptions) *Hub {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 8
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	m := app.New(sc, 1280, 720, opts.Logger)
	if opts.Camera.Distance > 0 {
		m.Camera = opts.Camera
	}
	h := &Hub{
		opts:    opts,
		log:     opts.Logger,
		model:   m,
		inbox:   make(chan app.Msg, inboxSize),
		clients: make(map[*client]struct{}),
		dice:    m.DiceTexture,
	}
	h.publish()
	return h
}

// Run steps and broadcasts at the configured rate until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	textures := h.startTextureLoad(ctx)
	ticker := time.NewTicker(time.Second / time.Duration(h.opts.FPS))
	defer ticker.Stop()
	defer h.closeAll()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-h.inbox:
			h.model = h.model.Update(msg)
		case res, ok := <-textures:
			if ok {
				h.model = h.model.Update(app.TextureLoaded(res))
			}
			textures = nil
		case now := <-ticker.C:
			h.model = h.model.Update(app.Tick{Dt: now.Sub(last).Seconds()})
			last = now
			h.broadcast(h.publish())
		}
	}
}

func (h *Hub) startTextureLoad(ctx context.Context) <-chan render.TextureResult {
	if h.opts.TexturePath != "" {
		return render.AsyncLoad(ctx, h.opts.TexturePath)
	}
	ch := make(chan render.TextureResult, 1)
	ch <- render.TextureResult{Path: "builtin:atlas", Image: render.DiceAtlas(128)}
	close(ch)
	return ch
}

// publish encodes the current model as the latest frame.
func (h *Hub) publish() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.model.DiceTexture != h.dice {
		h.dice = h.model.DiceTexture
		h.texVersion++
	}
	h.seq++
	data, err := json.Marshal(newFrame(h.model, h.seq, h.texVersion))
	if err != nil {
		h.log.Printf("encode frame: %v", err)
		return h.last
	}
	h.last = data
	return data
}

// broadcast never blocks: a client whose buffer is full is dropped.
func (h *Hub) broadcast(data []byte) {
	if data == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Printf("dropping slow client %s", c.addr())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients is the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DiceTexture is the texture pages should currently show.
func (h *Hub) DiceTexture() (*image.RGBA, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dice, h.texVersion
}

// dispatch queues a model update, dropping it if the hub is backed up.
func (h *Hub) dispatch(msg app.Msg) {
	select {
	case h.inbox <- msg:
	default:
		h.log.Printf("inbox full, dropping %T", msg)
	}
}

func (c *client) addr() string {
	if c.conn == nil {
		return "<detached>"
	}
	return c.conn.RemoteAddr().String()
}

// readPump turns client messages into hub commands until the socket fails.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMsg
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Printf("read %s: %v", c.addr(), err)
			}
			return
		}
		switch msg.Type {
		case "click":
			h.dispatch(app.Click{})
		case "pause":
			h.dispatch(app.TogglePause{})
		case "resize":
			if msg.Width <= 0 || msg.Height <= 0 {
				continue
			}
			vp := Viewport{Type: "viewport", Width: msg.Width, Height: msg.Height, Perspective: render.Perspective(msg.Width, msg.Height)}
			data, err := json.Marshal(vp)
			if err != nil {
				continue
			}
			h.sendTo(c, data)
		default:
			h.log.Printf("unknown message %q from %s", msg.Type, c.addr())
		}
	}
}

func (h *Hub) sendTo(c *client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump is the only writer on the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
