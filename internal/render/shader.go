package render

import "github.com/go-gl/mathgl/mgl32"

// Uniform and attribute names shared by every program.
const (
	UniformTransform   = "transform"
	UniformCamera      = "camera"
	UniformPerspective = "perspective"
	UniformTexture     = "texture0"
	UniformLight       = "lightDirection"
	UniformAmbient     = "ambient"

	AttribPosition = "vertexPosition"
	AttribNormal   = "vertexNormal"
	AttribTexCoord = "vertexTexCoord"
)

// Light is a single directional light plus ambient term.
type Light struct {
	Direction mgl32.Vec3 // direction the light travels
	Ambient   float32
}

func DefaultLight() Light {
	return Light{Direction: mgl32.Vec3{-1, -3, -2}.Normalize(), Ambient: 0.35}
}

// Program is a vertex/fragment source pair for one shading language dialect.
type Program struct {
	Name     string
	Vertex   string
	Fragment string
}

// LitTexturedGL330 targets desktop OpenGL 3.3 core.
var LitTexturedGL330 = Program{
	Name: "lit-textured-330",
	Vertex: `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
in vec2 vertexTexCoord;

uniform mat4 transform;
uniform mat4 camera;
uniform mat4 perspective;

out vec3 fragNormal;
out vec2 fragTexCoord;

void main() {
    fragNormal = normalize(mat3(transform) * vertexNormal);
    fragTexCoord = vertexTexCoord;
    gl_Position = perspective * camera * transform * vec4(vertexPosition, 1.0);
}
`,
	Fragment: `#version 330
in vec3 fragNormal;
in vec2 fragTexCoord;

uniform sampler2D texture0;
uniform vec3 lightDirection;
uniform float ambient;

out vec4 finalColor;

void main() {
    float diffuse = max(dot(normalize(fragNormal), -lightDirection), 0.0);
    vec4 texel = texture(texture0, fragTexCoord);
    finalColor = vec4(texel.rgb * (ambient + (1.0 - ambient) * diffuse), texel.a);
}
`,
}

// LitTexturedES100 targets WebGL 1 in the browser page.
var LitTexturedES100 = Program{
	Name: "lit-textured-es100",
	Vertex: `attribute vec3 vertexPosition;
attribute vec3 vertexNormal;
attribute vec2 vertexTexCoord;

uniform mat4 transform;
uniform mat4 camera;
uniform mat4 perspective;

varying vec3 fragNormal;
varying vec2 fragTexCoord;

void main() {
    fragNormal = normalize((transform * vec4(vertexNormal, 0.0)).xyz);
    fragTexCoord = vertexTexCoord;
    gl_Position = perspective * camera * transform * vec4(vertexPosition, 1.0);
}
`,
	Fragment: `precision mediump float;

varying vec3 fragNormal;
varying vec2 fragTexCoord;

uniform sampler2D texture0;
uniform vec3 lightDirection;
uniform float ambient;

void main() {
    float diffuse = max(dot(normalize(fragNormal), -lightDirection), 0.0);
    vec4 texel = texture2D(texture0, fragTexCoord);
    gl_FragColor = vec4(texel.rgb * (ambient + (1.0 - ambient) * diffuse), texel.a);
}
`,
}
