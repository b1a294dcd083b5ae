package render

import "github.com/go-gl/mathgl/mgl32"

type MeshKind uint8

const (
	MeshCube MeshKind = iota + 1
	MeshPlane
)

func (k MeshKind) String() string {
	switch k {
	case MeshCube:
		return "cube"
	case MeshPlane:
		return "plane"
	default:
		return "unknown"
	}
}

// Mesh holds flat vertex attribute arrays ready for upload: 3 floats per
// position and normal, 2 per texcoord, counter-clockwise triangles.
type Mesh struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint16
}

func (m *Mesh) VertexCount() int   { return len(m.Positions) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

func (m *Mesh) addQuad(corners [4]mgl32.Vec3, n mgl32.Vec3, uv [4]mgl32.Vec2) {
	base := uint16(m.VertexCount())
	for i, c := range corners {
		m.Positions = append(m.Positions, c.X(), c.Y(), c.Z())
		m.Normals = append(m.Normals, n.X(), n.Y(), n.Z())
		m.UVs = append(m.UVs, uv[i].X(), uv[i].Y())
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// AtlasColumns and AtlasRows describe the dice face atlas layout.
const (
	AtlasColumns = 3
	AtlasRows    = 2
)

type cubeFace struct {
	normal, u, v mgl32.Vec3
	pips         int
}

// Opposite faces sum to seven.
var cubeFaces = [6]cubeFace{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, 2},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}, 5},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, 1},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, 6},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, 3},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}, 4},
}

// FaceNormals returns the unit cube face normals paired with their pip count.
func FaceNormals() map[int]mgl32.Vec3 {
	out := make(map[int]mgl32.Vec3, len(cubeFaces))
	for _, f := range cubeFaces {
		out[f.pips] = f.normal
	}
	return out
}

// CubeMesh is a unit cube centred at the origin with one atlas cell per face.
func CubeMesh() *Mesh {
	m := &Mesh{}
	for _, f := range cubeFaces {
		c := f.normal.Mul(0.5)
		u, v := f.u.Mul(0.5), f.v.Mul(0.5)
		corners := [4]mgl32.Vec3{
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		}
		m.addQuad(corners, f.normal, atlasCell(f.pips))
	}
	return m
}

// atlasCell maps a pip count to its texture rectangle; v grows downward.
func atlasCell(pips int) [4]mgl32.Vec2 {
	col := float32((pips - 1) % AtlasColumns)
	row := float32((pips - 1) / AtlasColumns)
	u0, u1 := col/AtlasColumns, (col+1)/AtlasColumns
	v0, v1 := row/AtlasRows, (row+1)/AtlasRows
	return [4]mgl32.Vec2{{u0, v1}, {u1, v1}, {u1, v0}, {u0, v0}}
}

// PlaneMesh is a unit square in the XZ plane facing +Y, with the texture
// repeated tiles times along each edge.
func PlaneMesh(tiles float32) *Mesh {
	if tiles <= 0 {
		tiles = 1
	}
	m := &Mesh{}
	corners := [4]mgl32.Vec3{
		{-0.5, 0, 0.5},
		{0.5, 0, 0.5},
		{0.5, 0, -0.5},
		{-0.5, 0, -0.5},
	}
	uv := [4]mgl32.Vec2{{0, tiles}, {tiles, tiles}, {tiles, 0}, {0, 0}}
	m.addQuad(corners, mgl32.Vec3{0, 1, 0}, uv)
	return m
}
