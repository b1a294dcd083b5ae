package gui

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/dicebox/internal/render"
)

const (
	atlasCell   = 128
	groundTiles = 20
)

// renderer owns every GPU resource of the window.
type renderer struct {
	shader   rl.Shader
	locs     uniformLocs
	material rl.Material

	// raylib keeps pointers into these slices, so they live as long as the
	// uploaded meshes do.
	sources map[render.MeshKind]*render.Mesh
	meshes  map[render.MeshKind]rl.Mesh

	textures map[render.TextureKind]rl.Texture2D
	diceSrc  *image.RGBA
}

type uniformLocs struct {
	transform, camera, perspective int32
	light, ambient                 int32
}

func newRenderer() *renderer {
	r := &renderer{
		shader:   rl.LoadShaderFromMemory(render.LitTexturedGL330.Vertex, render.LitTexturedGL330.Fragment),
		sources:  map[render.MeshKind]*render.Mesh{render.MeshCube: render.CubeMesh(), render.MeshPlane: render.PlaneMesh(groundTiles)},
		meshes:   make(map[render.MeshKind]rl.Mesh),
		textures: make(map[render.TextureKind]rl.Texture2D),
	}
	r.locs = uniformLocs{
		transform:   rl.GetShaderLocation(r.shader, render.UniformTransform),
		camera:      rl.GetShaderLocation(r.shader, render.UniformCamera),
		perspective: rl.GetShaderLocation(r.shader, render.UniformPerspective),
		light:       rl.GetShaderLocation(r.shader, render.UniformLight),
		ambient:     rl.GetShaderLocation(r.shader, render.UniformAmbient),
	}
	r.material = rl.LoadMaterialDefault()
	r.material.Shader = r.shader

	for kind, src := range r.sources {
		r.meshes[kind] = uploadMesh(src)
	}
	r.textures[render.TextureGround] = uploadTexture(render.GroundTexture(64))
	return r
}

func uploadMesh(m *render.Mesh) rl.Mesh {
	mesh := rl.Mesh{
		VertexCount:   int32(m.VertexCount()),
		TriangleCount: int32(m.TriangleCount()),
		Vertices:      &m.Positions[0],
		Normals:       &m.Normals[0],
		Texcoords:     &m.UVs[0],
		Indices:       &m.Indices[0],
	}
	rl.UploadMesh(&mesh, false)
	return mesh
}

func uploadTexture(img *image.RGBA) rl.Texture2D {
	rlImg := rl.NewImageFromImage(img)
	defer rl.UnloadImage(rlImg)
	tex := rl.LoadTextureFromImage(rlImg)
	rl.GenTextureMipmaps(&tex)
	rl.SetTextureFilter(tex, rl.FilterTrilinear)
	rl.SetTextureWrap(tex, rl.WrapRepeat)
	return tex
}

// setDiceTexture re-uploads the dice texture when the model swaps images.
func (r *renderer) setDiceTexture(img *image.RGBA) {
	if img == nil || img == r.diceSrc {
		return
	}
	if old, ok := r.textures[render.TextureDice]; ok {
		rl.UnloadTexture(old)
	}
	r.textures[render.TextureDice] = uploadTexture(img)
	r.diceSrc = img
}

func (r *renderer) setLight(l render.Light) {
	d := l.Direction.Normalize()
	rl.SetShaderValue(r.shader, r.locs.light, []float32{d.X(), d.Y(), d.Z()}, rl.ShaderUniformVec3)
	rl.SetShaderValue(r.shader, r.locs.ambient, []float32{l.Ambient}, rl.ShaderUniformFloat)
}

func (r *renderer) draw(entities []render.Entity) {
	for _, e := range entities {
		mesh, ok := r.meshes[e.Mesh]
		if !ok {
			continue
		}
		rl.SetShaderValueMatrix(r.shader, r.locs.transform, toMatrix(e.Uniforms.Transform))
		rl.SetShaderValueMatrix(r.shader, r.locs.camera, toMatrix(e.Uniforms.Camera))
		rl.SetShaderValueMatrix(r.shader, r.locs.perspective, toMatrix(e.Uniforms.Perspective))
		rl.SetMaterialTexture(&r.material, rl.MapDiffuse, r.textures[e.Uniforms.Texture])
		rl.DrawMesh(mesh, r.material, rl.MatrixIdentity())
	}
}

func (r *renderer) unload() {
	for kind, mesh := range r.meshes {
		// detach the Go-owned arrays so raylib only frees GPU buffers
		mesh.Vertices, mesh.Normals, mesh.Texcoords, mesh.Indices = nil, nil, nil, nil
		rl.UnloadMesh(&mesh)
		delete(r.meshes, kind)
	}
	for kind, tex := range r.textures {
		rl.UnloadTexture(tex)
		delete(r.textures, kind)
	}
	rl.UnloadShader(r.shader)
}

// toMatrix copies a column-major mgl32 matrix into raylib's layout, whose
// field names follow the same column-major indices.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func toColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func vec3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X(), v.Y(), v.Z())
}
