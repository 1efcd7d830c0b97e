package scene

import (
	"testing"

	"gltf-viewer/core"
	"gltf-viewer/math"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialInstanceParameters(t *testing.T) {
	mi := DefaultMaterial()

	assert.Equal(t, core.ColorWhite, mi.BaseColor())
	assert.Equal(t, float32(0.5), mi.Float(ParamRoughness))
	assert.Nil(t, mi.Texture(ParamBaseColorMap))

	require.NoError(t, mi.SetParameter(ParamRoughness, float32(0.9)))
	assert.Equal(t, float32(0.9), mi.Float(ParamRoughness))

	// Vec4 and Color are interchangeable for vec4 parameters.
	require.NoError(t, mi.SetParameter(ParamBaseColor, math.NewVec4(1, 0, 0, 1)))
	assert.Equal(t, core.ColorRed, mi.BaseColor())

	err := mi.SetParameter(ParamRoughness, 0.9)
	assert.ErrorIs(t, err, ErrParameterType, "float64 is not a declared type")

	err = mi.SetParameter("sheen", float32(1))
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestMaterialInstanceTextures(t *testing.T) {
	tex := NewSolidTexture("white", 255, 255, 255, 255)
	mi := DefaultMaterial()
	require.NoError(t, mi.SetParameter(ParamBaseColorMap, tex))
	require.NoError(t, mi.SetParameter(ParamEmissiveMap, tex))

	assert.Same(t, tex, mi.Texture(ParamBaseColorMap))
	assert.Equal(t, []*Texture{tex, tex}, mi.Textures())
}

func TestMaterialInstanceIsolation(t *testing.T) {
	a := NewColorMaterial("a", core.ColorBlue)
	b := a.Clone("b")
	require.NoError(t, b.SetParameter(ParamBaseColor, core.ColorGreen))

	assert.Equal(t, core.ColorBlue, a.BaseColor())
	assert.Equal(t, core.ColorGreen, b.BaseColor())
	assert.Equal(t, core.ColorWhite, DefaultMaterial().BaseColor(), "defaults are shared, values are not")
}

func TestMaterialDeclare(t *testing.T) {
	m := NewMaterial("custom")
	require.NoError(t, m.Declare("tint", math.Vec3One))
	assert.True(t, m.HasParameter("tint"))

	typ, ok := m.Type("tint")
	require.True(t, ok)
	assert.Equal(t, ParamVec3, typ)
	assert.Equal(t, "vec3", typ.String())

	assert.ErrorIs(t, m.Declare("bad", "string"), ErrParameterType)

	mi := m.CreateInstance("i")
	v, ok := mi.Parameter("tint")
	require.True(t, ok)
	assert.Equal(t, math.Vec3One, v)
}
