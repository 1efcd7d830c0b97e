package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Conversions between the engine's float32 types and mathgl's flat
// column-major arrays. Camera projections and node transforms are accepted in
// double precision and narrowed here.

func (m Mat4) ToMgl64() mgl64.Mat4 {
	var d mgl64.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			d[c*4+r] = float64(m[c][r])
		}
	}
	return d
}

func Mat4FromMgl64(d mgl64.Mat4) Mat4 {
	var m Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[c][r] = float32(d[c*4+r])
		}
	}
	return m
}

func (m Mat4) ToMgl32() mgl32.Mat4 {
	var f mgl32.Mat4
	for c := 0; c < 4; c++ {
		copy(f[c*4:c*4+4], m[c][:])
	}
	return f
}

func Mat4FromMgl32(f mgl32.Mat4) Mat4 {
	var m Mat4
	for c := 0; c < 4; c++ {
		copy(m[c][:], f[c*4:c*4+4])
	}
	return m
}

func (m Mat3) ToMgl64() mgl64.Mat3 {
	var d mgl64.Mat3
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			d[c*3+r] = float64(m[c][r])
		}
	}
	return d
}

func Mat3FromMgl64(d mgl64.Mat3) Mat3 {
	var m Mat3
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			m[c][r] = float32(d[c*3+r])
		}
	}
	return m
}

func (v Vec3) ToMgl64() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

func Vec3FromMgl64(d mgl64.Vec3) Vec3 {
	return Vec3{float32(d[0]), float32(d[1]), float32(d[2])}
}
