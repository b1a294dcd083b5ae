package stream

import (
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/dicebox/internal/scene"
)

func newTestHub(t *testing.T, sendBuffer int) *Hub {
	t.Helper()
	sc, err := scene.New(scene.DefaultParams(), 11)
	if err != nil {
		t.Fatalf("scene: %v", err)
	}
	return NewHub(sc, HubOptions{FPS: 60, SendBuffer: sendBuffer, Logger: log.New(io.Discard, "", 0)})
}

func startServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := newTestHub(t, 16)
	srv, err := NewServer("", hub, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
	})
	return ts, hub
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil returns the first message of the wanted type.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, accept func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			t.Fatalf("bad message %s: %v", data, err)
		}
		if head.Type == typ && (accept == nil || accept(data)) {
			return data
		}
	}
	t.Fatalf("no %s message before deadline", typ)
	return nil
}

func TestHealthz(t *testing.T) {
	ts, _ := startServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIndexAndAssets(t *testing.T) {
	ts, _ := startServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "webgl") {
		t.Error("index should be the WebGL page")
	}

	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/assets.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var assets Assets
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		t.Fatalf("decode assets: %v", err)
	}
	cube, ok := assets.Meshes["cube"]
	if !ok {
		t.Fatal("missing cube mesh")
	}
	if len(cube.Positions) != 24*3 || len(cube.Indices) != 36 {
		t.Errorf("unexpected cube mesh: %d positions, %d indices", len(cube.Positions), len(cube.Indices))
	}
	if assets.Uniforms["transform"] != "transform" {
		t.Errorf("unexpected uniform names %v", assets.Uniforms)
	}
}

func TestTextures(t *testing.T) {
	ts, _ := startServer(t)
	for _, path := range []string{"/texture/dice.png", "/texture/ground.png"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		_, err = png.Decode(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Errorf("%s is not a png: %v", path, err)
		}
	}
}

func TestStreamsFrames(t *testing.T) {
	ts, _ := startServer(t)
	conn := dial(t, ts)

	var first, later Frame
	if err := json.Unmarshal(readUntil(t, conn, "frame", nil), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(readUntil(t, conn, "frame", func(d json.RawMessage) bool {
		var f Frame
		return json.Unmarshal(d, &f) == nil && f.Seq > first.Seq
	}), &later); err != nil {
		t.Fatal(err)
	}

	if len(later.Entities) < 2 {
		t.Fatalf("expected ground and boxes, got %d entities", len(later.Entities))
	}
	last := later.Entities[len(later.Entities)-1]
	if last.Mesh != "plane" || last.Texture != "ground" {
		t.Errorf("ground should be drawn last, got %+v", last)
	}
	if later.Perspective == [16]float32{} || later.Camera == [16]float32{} {
		t.Error("frame is missing view matrices")
	}
}

func TestClickRestarts(t *testing.T) {
	ts, _ := startServer(t)
	conn := dial(t, ts)

	var f Frame
	if err := json.Unmarshal(readUntil(t, conn, "frame", nil), &f); err != nil {
		t.Fatal(err)
	}
	throw := f.Throw

	if err := conn.WriteJSON(ClientMsg{Type: "click"}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, "frame", func(d json.RawMessage) bool {
		var next Frame
		return json.Unmarshal(d, &next) == nil && next.Throw > throw
	})
}

func TestResizeAnswersViewport(t *testing.T) {
	ts, _ := startServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(ClientMsg{Type: "resize", Width: 400, Height: 200}); err != nil {
		t.Fatal(err)
	}
	var vp Viewport
	if err := json.Unmarshal(readUntil(t, conn, "viewport", nil), &vp); err != nil {
		t.Fatal(err)
	}
	if vp.Width != 400 || vp.Height != 200 {
		t.Errorf("unexpected viewport %dx%d", vp.Width, vp.Height)
	}
	// aspect 2: x scale is half the y scale
	if ratio := vp.Perspective[5] / vp.Perspective[0]; ratio < 1.99 || ratio > 2.01 {
		t.Errorf("expected aspect 2, got %f", ratio)
	}
}

func TestSlowClientDropped(t *testing.T) {
	hub := newTestHub(t, 1)
	c := &client{send: make(chan []byte, 1)}
	hub.register(c)
	if hub.Clients() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.Clients())
	}

	// register queued the latest frame, so the buffer is already full
	hub.broadcast(hub.publish())
	if hub.Clients() != 0 {
		t.Errorf("slow client should be dropped, %d remain", hub.Clients())
	}
	if _, ok := <-c.send; !ok {
		t.Fatal("queued frame should still be readable")
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}

	// unregistering a dropped client is a no-op
	hub.unregister(c)
}

func TestRunStopsOnCancel(t *testing.T) {
	hub := newTestHub(t, 4)
	c := &client{send: make(chan []byte, 4)}
	hub.register(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.Clients() != 0 {
		t.Error("clients should be disconnected on stop")
	}
}
