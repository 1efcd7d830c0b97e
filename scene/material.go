package scene

import (
	"errors"
	"fmt"
	"maps"

	"gltf-viewer/core"
	"gltf-viewer/math"
)

// ErrUnknownParameter is returned when a parameter is not declared by the
// instance's material.
var ErrUnknownParameter = errors.New("scene: unknown material parameter")

// ErrParameterType is returned when a value does not match the declared type.
var ErrParameterType = errors.New("scene: material parameter type mismatch")

// ParamType is the declared type of a material parameter.
type ParamType int

const (
	ParamBool ParamType = iota
	ParamFloat
	ParamInt
	ParamVec2
	ParamVec3
	ParamVec4
	ParamMat3
	ParamMat4
	ParamTexture
)

func (t ParamType) String() string {
	switch t {
	case ParamBool:
		return "bool"
	case ParamFloat:
		return "float"
	case ParamInt:
		return "int"
	case ParamVec2:
		return "vec2"
	case ParamVec3:
		return "vec3"
	case ParamVec4:
		return "vec4"
	case ParamMat3:
		return "mat3"
	case ParamMat4:
		return "mat4"
	case ParamTexture:
		return "texture"
	}
	return fmt.Sprintf("ParamType(%d)", int(t))
}

func paramTypeOf(v any) (ParamType, bool) {
	switch v.(type) {
	case bool:
		return ParamBool, true
	case float32:
		return ParamFloat, true
	case int32:
		return ParamInt, true
	case math.Vec2:
		return ParamVec2, true
	case math.Vec3:
		return ParamVec3, true
	case math.Vec4, core.Color:
		return ParamVec4, true
	case math.Mat3:
		return ParamMat3, true
	case math.Mat4:
		return ParamMat4, true
	case *Texture:
		return ParamTexture, true
	}
	return 0, false
}

// Standard parameter names of the lit material.
const (
	ParamBaseColor      = "baseColor"
	ParamBaseColorMap   = "baseColorMap"
	ParamMetallic       = "metallic"
	ParamRoughness      = "roughness"
	ParamEmissive       = "emissive"
	ParamUnlit          = "unlit"
	ParamDoubleSided    = "doubleSided"
	ParamAlphaCutoff    = "alphaCutoff"
	ParamUVTransform    = "uvTransform"
	ParamNormalMap      = "normalMap"
	ParamOcclusionMap   = "occlusionMap"
	ParamMetalRoughMap  = "metallicRoughnessMap"
	ParamEmissiveMap    = "emissiveMap"
	ParamEmissiveFactor = "emissiveStrength"
	ParamNormalScale    = "normalScale"
)

// Material declares a parameter set with defaults. Instances override
// individual values.
type Material struct {
	Name     string
	params   map[string]ParamType
	defaults map[string]any
}

// NewMaterial declares an empty material.
func NewMaterial(name string) *Material {
	return &Material{
		Name:     name,
		params:   make(map[string]ParamType),
		defaults: make(map[string]any),
	}
}

// Declare adds a parameter with a default value; its type is taken from def.
func (m *Material) Declare(name string, def any) error {
	t, ok := paramTypeOf(def)
	if !ok {
		return fmt.Errorf("%w: %s has unsupported type %T", ErrParameterType, name, def)
	}
	m.params[name] = t
	m.defaults[name] = def
	return nil
}

// HasParameter reports whether name is declared.
func (m *Material) HasParameter(name string) bool {
	_, ok := m.params[name]
	return ok
}

// Type returns the declared type of name.
func (m *Material) Type(name string) (ParamType, bool) {
	t, ok := m.params[name]
	return t, ok
}

// CreateInstance returns an instance using the material's defaults.
func (m *Material) CreateInstance(name string) *MaterialInstance {
	return &MaterialInstance{Name: name, Material: m, values: make(map[string]any)}
}

var litMaterial = newLitMaterial()

func newLitMaterial() *Material {
	m := NewMaterial("Lit")
	_ = m.Declare(ParamBaseColor, core.ColorWhite)
	_ = m.Declare(ParamMetallic, float32(0))
	_ = m.Declare(ParamRoughness, float32(0.5))
	_ = m.Declare(ParamEmissive, core.Color{A: 1})
	_ = m.Declare(ParamEmissiveFactor, float32(1))
	_ = m.Declare(ParamUnlit, false)
	_ = m.Declare(ParamDoubleSided, false)
	_ = m.Declare(ParamAlphaCutoff, float32(0.5))
	_ = m.Declare(ParamNormalScale, float32(1))
	_ = m.Declare(ParamUVTransform, math.Mat3Identity())
	for _, tex := range []string{ParamBaseColorMap, ParamNormalMap, ParamOcclusionMap, ParamMetalRoughMap, ParamEmissiveMap} {
		_ = m.Declare(tex, (*Texture)(nil))
	}
	return m
}

// LitMaterial is the shared material every loaded primitive instantiates.
func LitMaterial() *Material {
	return litMaterial
}

// MaterialInstance is a Material with per-instance parameter values.
type MaterialInstance struct {
	Name     string
	Material *Material
	values   map[string]any
}

// DefaultMaterial returns a plain white lit instance.
func DefaultMaterial() *MaterialInstance {
	return litMaterial.CreateInstance("Default")
}

// NewColorMaterial returns a lit instance with the given base color.
func NewColorMaterial(name string, c core.Color) *MaterialInstance {
	mi := litMaterial.CreateInstance(name)
	mi.mustSet(ParamBaseColor, c)
	return mi
}

// SetParameter stores value under name. The value must match the declared
// type; core.Color and math.Vec4 are interchangeable.
func (mi *MaterialInstance) SetParameter(name string, value any) error {
	want, ok := mi.Material.Type(name)
	if !ok {
		return fmt.Errorf("%w: %q on %s", ErrUnknownParameter, name, mi.Material.Name)
	}
	got, ok := paramTypeOf(value)
	if !ok || got != want {
		return fmt.Errorf("%w: %q wants %s, got %T", ErrParameterType, name, want, value)
	}
	mi.values[name] = value
	return nil
}

func (mi *MaterialInstance) mustSet(name string, value any) {
	if err := mi.SetParameter(name, value); err != nil {
		panic(err)
	}
}

// Parameter returns the instance value, or the material default.
func (mi *MaterialInstance) Parameter(name string) (any, bool) {
	if v, ok := mi.values[name]; ok {
		return v, true
	}
	v, ok := mi.Material.defaults[name]
	return v, ok
}

// IsSet reports whether the instance overrides the material default for name.
func (mi *MaterialInstance) IsSet(name string) bool {
	_, ok := mi.values[name]
	return ok
}

// Clone copies the instance values.
func (mi *MaterialInstance) Clone(name string) *MaterialInstance {
	return &MaterialInstance{Name: name, Material: mi.Material, values: maps.Clone(mi.values)}
}

func (mi *MaterialInstance) BaseColor() core.Color {
	return mi.Color(ParamBaseColor)
}

// Color reads a Vec4-typed parameter as a color. Missing values are white.
func (mi *MaterialInstance) Color(name string) core.Color {
	v, _ := mi.Parameter(name)
	switch c := v.(type) {
	case core.Color:
		return c
	case math.Vec4:
		return core.Color{R: c.X, G: c.Y, B: c.Z, A: c.W}
	}
	return core.ColorWhite
}

func (mi *MaterialInstance) Float(name string) float32 {
	v, _ := mi.Parameter(name)
	f, _ := v.(float32)
	return f
}

func (mi *MaterialInstance) Bool(name string) bool {
	v, _ := mi.Parameter(name)
	b, _ := v.(bool)
	return b
}

func (mi *MaterialInstance) Texture(name string) *Texture {
	v, _ := mi.Parameter(name)
	t, _ := v.(*Texture)
	return t
}

// Textures returns the non-nil texture parameters.
func (mi *MaterialInstance) Textures() []*Texture {
	var out []*Texture
	for name, t := range mi.Material.params {
		if t != ParamTexture {
			continue
		}
		if tex := mi.Texture(name); tex != nil {
			out = append(out, tex)
		}
	}
	return out
}
