package stream

import (
	"github.com/san-kum/dicebox/internal/app"
	"github.com/san-kum/dicebox/internal/render"
)

// Frame is broadcast to every client once per hub tick. Matrices are
// column-major, as mgl32 stores them and WebGL expects them.
type Frame struct {
	Type           string        `json:"type"`
	Seq            uint64        `json:"seq"`
	Time           float64       `json:"time"`
	Throw          int           `json:"throw"`
	Paused         bool          `json:"paused"`
	Settled        bool          `json:"settled"`
	TextureVersion int           `json:"textureVersion"`
	Entities       []EntityFrame `json:"entities"`
	Camera         [16]float32   `json:"camera"`
	Perspective    [16]float32   `json:"perspective"`
	Light          [3]float32    `json:"light"`
	Ambient        float32       `json:"ambient"`
}

type EntityFrame struct {
	Body      uint32      `json:"body"`
	Mesh      string      `json:"mesh"`
	Texture   string      `json:"texture"`
	Transform [16]float32 `json:"transform"`
}

// Viewport answers a client resize with that client's projection.
type Viewport struct {
	Type        string      `json:"type"`
	Width       int         `json:"w"`
	Height      int         `json:"h"`
	Perspective [16]float32 `json:"perspective"`
}

// ClientMsg is anything a page sends up the socket.
type ClientMsg struct {
	Type   string `json:"type"` // click, resize, pause
	Width  int    `json:"w,omitempty"`
	Height int    `json:"h,omitempty"`
}

type MeshData struct {
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	UVs       []float32 `json:"uvs"`
	Indices   []uint16  `json:"indices"`
}

// Assets is everything the page needs before the first frame.
type Assets struct {
	Meshes   map[string]MeshData `json:"meshes"`
	Vertex   string              `json:"vertex"`
	Fragment string              `json:"fragment"`
	Uniforms map[string]string   `json:"uniforms"`
}

func newFrame(m app.Model, seq uint64, textureVersion int) Frame {
	w := m.Scene.World()
	entities := m.Entities()
	f := Frame{
		Type:           "frame",
		Seq:            seq,
		Time:           m.Elapsed,
		Throw:          m.Throws,
		Paused:         m.Paused,
		Settled:        w.Settled(),
		TextureVersion: textureVersion,
		Entities:       make([]EntityFrame, len(entities)),
		Camera:         m.Camera.View(),
		Perspective:    m.Perspective,
		Light:          m.Light.Direction.Normalize(),
		Ambient:        m.Light.Ambient,
	}
	for i, e := range entities {
		f.Entities[i] = EntityFrame{
			Body:      uint32(e.Body),
			Mesh:      e.Mesh.String(),
			Texture:   textureName(e.Uniforms.Texture),
			Transform: e.Uniforms.Transform,
		}
	}
	return f
}

func textureName(k render.TextureKind) string {
	switch k {
	case render.TextureDice:
		return "dice"
	case render.TextureGround:
		return "ground"
	default:
		return ""
	}
}

func meshData(m *render.Mesh) MeshData {
	return MeshData{Positions: m.Positions, Normals: m.Normals, UVs: m.UVs, Indices: m.Indices}
}

func newAssets(groundTiles float32) Assets {
	return Assets{
		Meshes: map[string]MeshData{
			render.MeshCube.String():  meshData(render.CubeMesh()),
			render.MeshPlane.String(): meshData(render.PlaneMesh(groundTiles)),
		},
		Vertex:   render.LitTexturedES100.Vertex,
		Fragment: render.LitTexturedES100.Fragment,
		Uniforms: map[string]string{
			"transform":   render.UniformTransform,
			"camera":      render.UniformCamera,
			"perspective": render.UniformPerspective,
			"texture":     render.UniformTexture,
			"light":       render.UniformLight,
			"ambient":     render.UniformAmbient,
		},
	}
}
