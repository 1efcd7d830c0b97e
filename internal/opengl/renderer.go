package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/chewxy/math32"
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"gltf-viewer/core"
	"gltf-viewer/math"
	"gltf-viewer/scene"
)

// MaxLocalLights is the number of point and spot lights shaded per frame.
const MaxLocalLights = 8

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
	// IndexType is gl.UNSIGNED_SHORT when every index fits in 16 bits.
	IndexType uint32
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32
	log     *zap.Logger

	mvpLoc   int32
	modelLoc int32

	// Frame uniforms
	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32
	ambientColorLoc   int32
	cameraPosLoc      int32
	exposureLoc       int32

	localCountLoc     int32
	localPosLoc       [MaxLocalLights]int32
	localDirLoc       [MaxLocalLights]int32
	localColorLoc     [MaxLocalLights]int32
	localIntensityLoc [MaxLocalLights]int32
	localFalloffLoc   [MaxLocalLights]int32
	localConeLoc      [MaxLocalLights]int32

	// Material uniforms
	baseColorLoc       int32
	metallicLoc        int32
	roughnessLoc       int32
	emissiveLoc        int32
	unlitLoc           int32
	alphaCutoffLoc     int32
	alphaMaskLoc       int32
	uvTransformLoc     int32
	baseColorMapLoc    int32
	hasBaseColorMapLoc int32
	emissiveMapLoc     int32
	hasEmissiveMapLoc  int32

	viewport  core.Viewport
	wireframe bool

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

// ── Shaders ──────────────────────────────────────────────────────────────────

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;
uniform mat3 uvTransform;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;

void main() {
    gl_Position  = mvp * vec4(inPosition, 1.0);
    fragColor    = inColor;
    fragNormal   = mat3(model) * inNormal;
    fragUV       = (uvTransform * vec3(inUV, 1.0)).xy;
    fragWorldPos = (model * vec4(inPosition, 1.0)).xyz;
}
` + "\x00"

// Physically based intensities (lux, lumens) are scaled by the camera
// exposure before Blinn-Phong shading with a roughness-derived exponent.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;

out vec4 outColor;

uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  ambientColor;
uniform vec3  cameraPos;
uniform float exposure;

#define MAX_LOCAL_LIGHTS 8
uniform int   localCount;
uniform vec3  localPos[MAX_LOCAL_LIGHTS];
uniform vec3  localDir[MAX_LOCAL_LIGHTS];
uniform vec3  localColor[MAX_LOCAL_LIGHTS];
uniform float localIntensity[MAX_LOCAL_LIGHTS];
uniform float localFalloff[MAX_LOCAL_LIGHTS];
uniform vec2  localCone[MAX_LOCAL_LIGHTS]; // cos(inner), cos(outer); outer < -1 for point lights

uniform vec4  baseColor;
uniform float metallic;
uniform float roughness;
uniform vec3  emissive;
uniform bool  unlit;
uniform bool  alphaMask;
uniform float alphaCutoff;

uniform sampler2D baseColorMap;
uniform bool      hasBaseColorMap;
uniform sampler2D emissiveMap;
uniform bool      hasEmissiveMap;

vec3 shade(vec3 albedo, vec3 N, vec3 V, vec3 L, vec3 radiance) {
    float NdotL = max(dot(N, L), 0.0);
    vec3  H     = normalize(L + V);
    float shininess = mix(256.0, 4.0, roughness);
    float spec  = pow(max(dot(N, H), 0.0), shininess) * (1.0 - roughness);
    vec3  diffuse  = albedo * (1.0 - metallic);
    vec3  specular = mix(vec3(0.04), albedo, metallic) * spec;
    return (diffuse + specular) * radiance * NdotL;
}

void main() {
    vec4 color = baseColor * fragColor;
    if (hasBaseColorMap) {
        color *= texture(baseColorMap, fragUV);
    }
    if (alphaMask && color.a < alphaCutoff) {
        discard;
    }
    vec3 glow = emissive;
    if (hasEmissiveMap) {
        glow *= texture(emissiveMap, fragUV).rgb;
    }
    if (unlit) {
        outColor = vec4(color.rgb + glow, color.a);
        return;
    }

    vec3 N = normalize(fragNormal);
    if (!gl_FrontFacing) {
        N = -N;
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    vec3 lit = ambientColor * color.rgb;
    lit += shade(color.rgb, N, V, normalize(-lightDir), lightColor * lightIntensity * exposure);

    for (int i = 0; i < localCount; i++) {
        vec3  toLight = localPos[i] - fragWorldPos;
        float dist2   = max(dot(toLight, toLight), 1e-4);
        vec3  L       = toLight * inversesqrt(dist2);
        float r       = localFalloff[i];
        float window  = clamp(1.0 - (dist2 * dist2) / (r * r * r * r), 0.0, 1.0);
        float atten   = window * window / dist2;
        if (localCone[i].y >= -1.0) {
            float cd = dot(-L, normalize(localDir[i]));
            atten *= smoothstep(localCone[i].y, localCone[i].x, cd);
        }
        lit += shade(color.rgb, N, V, L, localColor[i] * localIntensity[i] * exposure * atten);
    }

    outColor = vec4(lit + glow, color.a);
}
` + "\x00"

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer(log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("opengl initialised",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	loc := func(name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}

	r := &Renderer{
		program: prog,
		log:     log,

		mvpLoc:   loc("mvp"),
		modelLoc: loc("model"),

		lightDirLoc:       loc("lightDir"),
		lightColorLoc:     loc("lightColor"),
		lightIntensityLoc: loc("lightIntensity"),
		ambientColorLoc:   loc("ambientColor"),
		cameraPosLoc:      loc("cameraPos"),
		exposureLoc:       loc("exposure"),
		localCountLoc:     loc("localCount"),

		baseColorLoc:       loc("baseColor"),
		metallicLoc:        loc("metallic"),
		roughnessLoc:       loc("roughness"),
		emissiveLoc:        loc("emissive"),
		unlitLoc:           loc("unlit"),
		alphaCutoffLoc:     loc("alphaCutoff"),
		alphaMaskLoc:       loc("alphaMask"),
		uvTransformLoc:     loc("uvTransform"),
		baseColorMapLoc:    loc("baseColorMap"),
		hasBaseColorMapLoc: loc("hasBaseColorMap"),
		emissiveMapLoc:     loc("emissiveMap"),
		hasEmissiveMapLoc:  loc("hasEmissiveMap"),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}

	for i := 0; i < MaxLocalLights; i++ {
		r.localPosLoc[i] = loc(fmt.Sprintf("localPos[%d]", i))
		r.localDirLoc[i] = loc(fmt.Sprintf("localDir[%d]", i))
		r.localColorLoc[i] = loc(fmt.Sprintf("localColor[%d]", i))
		r.localIntensityLoc[i] = loc(fmt.Sprintf("localIntensity[%d]", i))
		r.localFalloffLoc[i] = loc(fmt.Sprintf("localFalloff[%d]", i))
		r.localConeLoc[i] = loc(fmt.Sprintf("localCone[%d]", i))
	}

	// Texture units: baseColor=0, emissive=1
	gl.UseProgram(prog)
	gl.Uniform1i(r.baseColorMapLoc, 0)
	gl.Uniform1i(r.emissiveMapLoc, 1)

	return r, nil
}

// ── Viewport / clear ─────────────────────────────────────────────────────────

// SetViewport sets the GL viewport and scissor rectangle.
func (r *Renderer) SetViewport(vp core.Viewport) {
	r.viewport = vp
	gl.Viewport(vp.Left, vp.Bottom, int32(vp.Width), int32(vp.Height))
	gl.Scissor(vp.Left, vp.Bottom, int32(vp.Width), int32(vp.Height))
}

func (r *Renderer) Viewport() core.Viewport {
	return r.viewport
}

// Clear clears color and depth inside the current viewport.
func (r *Renderer) Clear(c core.Color) {
	gl.Enable(gl.SCISSOR_TEST)
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
}

// ClearDepth clears only the depth buffer inside the current viewport.
func (r *Renderer) ClearDepth() {
	gl.Enable(gl.SCISSOR_TEST)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
}

// ── Frame uniforms ───────────────────────────────────────────────────────────

// BeginPass binds the program and uploads per-view lighting. Only the first
// directional light is shaded; point and spot lights beyond MaxLocalLights
// are skipped.
func (r *Renderer) BeginPass(lights []*scene.Light, ambient core.Color, camPos math.Vec3, exposure float32) {
	gl.UseProgram(r.program)

	gl.Uniform3f(r.ambientColorLoc, ambient.R, ambient.G, ambient.B)
	gl.Uniform3f(r.cameraPosLoc, camPos.X, camPos.Y, camPos.Z)
	gl.Uniform1f(r.exposureLoc, exposure)

	dirLight := math.Vec3Down
	dirColor := core.ColorBlack
	dirIntensity := float32(0)
	haveDir := false

	n := 0
	for _, l := range lights {
		if l == nil {
			continue
		}
		if l.Type.IsDirectional() {
			if !haveDir {
				dirLight = l.Direction.Normalize()
				dirColor = l.Color
				dirIntensity = l.Intensity
				haveDir = true
			}
			continue
		}
		if n >= MaxLocalLights {
			continue
		}
		// Lumens to candela over the emitting solid angle.
		candela := l.Intensity / (4 * math32.Pi)
		cone := [2]float32{1, -2}
		if l.Type == scene.LightTypeSpot {
			candela = l.Intensity / math32.Pi
			cone = [2]float32{math32.Cos(l.InnerCone), math32.Cos(l.OuterCone)}
		}
		d := l.Direction.Normalize()
		gl.Uniform3f(r.localPosLoc[n], l.Position.X, l.Position.Y, l.Position.Z)
		gl.Uniform3f(r.localDirLoc[n], d.X, d.Y, d.Z)
		gl.Uniform3f(r.localColorLoc[n], l.Color.R, l.Color.G, l.Color.B)
		gl.Uniform1f(r.localIntensityLoc[n], candela)
		gl.Uniform1f(r.localFalloffLoc[n], l.Falloff)
		gl.Uniform2f(r.localConeLoc[n], cone[0], cone[1])
		n++
	}

	gl.Uniform3f(r.lightDirLoc, dirLight.X, dirLight.Y, dirLight.Z)
	gl.Uniform3f(r.lightColorLoc, dirColor.R, dirColor.G, dirColor.B)
	gl.Uniform1f(r.lightIntensityLoc, dirIntensity)
	gl.Uniform1i(r.localCountLoc, int32(n))
}

// ── Wireframe ─────────────────────────────────────────────────────────────────

// SetWireframe toggles wireframe rendering mode.
func (r *Renderer) SetWireframe(enabled bool) {
	r.wireframe = enabled
	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// IsWireframe returns whether wireframe mode is active.
func (r *Renderer) IsWireframe() bool {
	return r.wireframe
}

// ── DrawMesh ──────────────────────────────────────────────────────────────────

// DrawMesh draws a mesh with the given MVP and model matrices, uploading it
// on first use. Material parameters are read from mesh.Material.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(r.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat)

	primitive := uint32(gl.TRIANGLES)
	switch mesh.DrawMode {
	case scene.DrawLines:
		primitive = gl.LINES
	case scene.DrawPoints:
		primitive = gl.POINTS
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(primitive, gpu.IndexCount, gpu.IndexType, nil)
	} else {
		gl.DrawArrays(primitive, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) applyMaterial(mat *scene.MaterialInstance) {
	c := mat.BaseColor()
	gl.Uniform4f(r.baseColorLoc, c.R, c.G, c.B, c.A)
	gl.Uniform1f(r.metallicLoc, mat.Float(scene.ParamMetallic))
	gl.Uniform1f(r.roughnessLoc, mat.Float(scene.ParamRoughness))

	e := mat.Color(scene.ParamEmissive)
	s := mat.Float(scene.ParamEmissiveFactor)
	gl.Uniform3f(r.emissiveLoc, e.R*s, e.G*s, e.B*s)

	gl.Uniform1i(r.unlitLoc, boolToInt32(mat.Bool(scene.ParamUnlit)))

	// Only masked materials carry their own cutoff.
	gl.Uniform1i(r.alphaMaskLoc, boolToInt32(mat.IsSet(scene.ParamAlphaCutoff)))
	gl.Uniform1f(r.alphaCutoffLoc, mat.Float(scene.ParamAlphaCutoff))

	uv := math.Mat3Identity()
	if v, ok := mat.Parameter(scene.ParamUVTransform); ok {
		if m, ok := v.(math.Mat3); ok {
			uv = m
		}
	}
	gl.UniformMatrix3fv(r.uvTransformLoc, 1, false, (*float32)(unsafe.Pointer(&uv[0][0])))

	if mat.Bool(scene.ParamDoubleSided) {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	// Base color (unit 0)
	if tex := mat.Texture(scene.ParamBaseColorMap); tex.Uploaded() {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasBaseColorMapLoc, 1)
	} else {
		gl.Uniform1i(r.hasBaseColorMapLoc, 0)
	}

	// Emissive (unit 1)
	if tex := mat.Texture(scene.ParamEmissiveMap); tex.Uploaded() {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasEmissiveMapLoc, 1)
	} else {
		gl.Uniform1i(r.hasEmissiveMapLoc, 0)
	}
}

// ── Resource management ───────────────────────────────────────────────────────

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// MeshCount returns the number of meshes resident on the GPU.
func (r *Renderer) MeshCount() int {
	return len(r.gpuMeshes)
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	gl.DeleteProgram(r.program)
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))
	colorOff := int(unsafe.Offsetof(v.Color))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 4, gl.FLOAT, false, stride, gl.PtrOffset(colorOff))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		if short, ok := scene.PackIndices16(mesh.Indices); ok {
			gpu.IndexType = gl.UNSIGNED_SHORT
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(short)*2, gl.Ptr(short), gl.STATIC_DRAW)
		} else {
			gpu.IndexType = gl.UNSIGNED_INT
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
		}
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	r.log.Debug("mesh uploaded",
		zap.String("mesh", mesh.Name),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int32("indices", gpu.IndexCount),
		zap.Bool("short_indices", gpu.IndexType == gl.UNSIGNED_SHORT))
	return gpu
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
