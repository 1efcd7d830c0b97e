package scene

import (
	"errors"
	"fmt"
	stdmath "math"

	"gltf-viewer/core"
	"gltf-viewer/math"
)

// LightType selects the light model.
type LightType int

const (
	LightTypeSun LightType = iota
	LightTypeDirectional
	LightTypePoint
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeSun:
		return "sun"
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	}
	return fmt.Sprintf("LightType(%d)", int(t))
}

// IsDirectional reports whether position and falloff are ignored.
func (t LightType) IsDirectional() bool {
	return t == LightTypeSun || t == LightTypeDirectional
}

// LuminousEfficacy is lumens per watt for an ideal 555 nm source.
const LuminousEfficacy = 683

var (
	ErrInvalidLightDirection = errors.New("scene: light direction must be non-zero")
	ErrInvalidLightIntensity = errors.New("scene: light intensity must be non-negative")
	ErrInvalidSpotCone       = errors.New("scene: spot cone needs 0 <= inner <= outer")
	ErrPointLightShadows     = errors.New("scene: point lights cannot cast shadows")
)

// Light is a built light source. Intensity is in lux for directional lights
// and lumens for point and spot lights.
type Light struct {
	Type        LightType
	Position    math.Vec3
	Direction   math.Vec3
	Color       core.Color
	Intensity   float32
	Falloff     float32
	InnerCone   float32
	OuterCone   float32
	CastShadows bool

	// Sun disc parameters. They describe LightTypeSun for a sky pass and
	// do not affect the lit shader.
	SunAngularRadius float32
	SunHaloSize      float32
	SunHaloFalloff   float32
}

// LightBuilder collects light parameters; Build validates them.
type LightBuilder struct {
	light Light

	// Candela conversion depends on the final type and cone, so it is
	// applied in Build.
	candela    float32
	hasCandela bool
}

// NewLightBuilder starts a light of type t with defaults: white, 100000 lux
// or lumens, pointing down, falloff 1.
func NewLightBuilder(t LightType) *LightBuilder {
	return &LightBuilder{light: Light{
		Type:             t,
		Direction:        math.Vec3Down,
		Color:            core.ColorWhite,
		Intensity:        100000,
		Falloff:          1,
		InnerCone:        stdmath.Pi / 4,
		OuterCone:        stdmath.Pi / 4,
		SunAngularRadius: 0.545,
		SunHaloSize:      10,
		SunHaloFalloff:   80,
	}}
}

func (b *LightBuilder) Color(c core.Color) *LightBuilder {
	b.light.Color = c
	return b
}

func (b *LightBuilder) Position(p math.Vec3) *LightBuilder {
	b.light.Position = p
	return b
}

// Direction is normalized on Build.
func (b *LightBuilder) Direction(d math.Vec3) *LightBuilder {
	b.light.Direction = d
	return b
}

func (b *LightBuilder) CastShadows(enable bool) *LightBuilder {
	b.light.CastShadows = enable
	return b
}

func (b *LightBuilder) Falloff(radius float32) *LightBuilder {
	b.light.Falloff = radius
	return b
}

// Intensity sets lux (directional) or lumens (point, spot).
func (b *LightBuilder) Intensity(v float32) *LightBuilder {
	b.light.Intensity = v
	b.hasCandela = false
	return b
}

// IntensityWatts sets the intensity from electrical power and efficiency
// (0..1): efficiency * 683 * watts.
func (b *LightBuilder) IntensityWatts(watts, efficiency float32) *LightBuilder {
	return b.Intensity(efficiency * LuminousEfficacy * watts)
}

// IntensityCandela sets a luminous intensity. Point lights convert with 4π,
// spot lights with π; directional lights take the value unchanged.
func (b *LightBuilder) IntensityCandela(cd float32) *LightBuilder {
	b.candela = cd
	b.hasCandela = true
	return b
}

// SpotCone sets the inner and outer half-angles in radians. outer is clamped
// to π/2.
func (b *LightBuilder) SpotCone(inner, outer float32) *LightBuilder {
	b.light.InnerCone = inner
	b.light.OuterCone = min(outer, stdmath.Pi/2)
	return b
}

// SunAngularRadius sets the sun disc's angular radius in degrees.
func (b *LightBuilder) SunAngularRadius(degrees float32) *LightBuilder {
	b.light.SunAngularRadius = degrees
	return b
}

func (b *LightBuilder) SunHalo(size, falloff float32) *LightBuilder {
	b.light.SunHaloSize = size
	b.light.SunHaloFalloff = falloff
	return b
}

// Build validates the parameters and returns the light.
func (b *LightBuilder) Build() (*Light, error) {
	l := b.light
	if b.hasCandela {
		switch l.Type {
		case LightTypePoint:
			l.Intensity = b.candela * 4 * stdmath.Pi
		case LightTypeSpot:
			l.Intensity = b.candela * stdmath.Pi
		default:
			l.Intensity = b.candela
		}
	}

	if l.Intensity < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLightIntensity, l.Intensity)
	}
	if l.Type != LightTypePoint {
		if l.Direction.LengthSqr() == 0 {
			return nil, ErrInvalidLightDirection
		}
		l.Direction = l.Direction.Normalize()
	}
	if l.Type == LightTypePoint && l.CastShadows {
		return nil, ErrPointLightShadows
	}
	if l.Type == LightTypeSpot && (l.InnerCone < 0 || l.InnerCone > l.OuterCone) {
		return nil, fmt.Errorf("%w: inner %v, outer %v", ErrInvalidSpotCone, l.InnerCone, l.OuterCone)
	}
	return &l, nil
}

// NewSunLight returns the default sun: straight down, casting shadows.
func NewSunLight() *Light {
	l, err := NewLightBuilder(LightTypeSun).
		Direction(math.Vec3Down).
		CastShadows(true).
		Build()
	if err != nil {
		panic(err)
	}
	return l
}
