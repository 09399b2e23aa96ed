// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package geometry holds the compact vertex, surface and mesh values that
// model importers produce and the renderer uploads.
package geometry

import (
	"math"

	glm "github.com/go-gl/mathgl/mgl32"
)

// Quantization ranges of packed vertex components.
const (
	NormalScale   = 127
	TexCoordScale = 32767
)

// VertexSize is the in-memory size of a DrawVertex in bytes.
const VertexSize = 32

// DrawVertex is a single mesh vertex with quantized attributes.
// Tangent, Color and Weights are carried but not uploaded by the renderer.
type DrawVertex struct {
	Pos       glm.Vec3
	Normal    [4]int8
	Tangent   [4]int8
	TexCoords [2]int16
	Color     [4]uint8
	Weights   [4]uint8
}

// Equal compares position, normal and texture coordinates only.
func (v DrawVertex) Equal(other DrawVertex) bool {
	return v.Pos == other.Pos &&
		v.Normal == other.Normal &&
		v.TexCoords == other.TexCoords
}

// SetNormal packs n into the normal bytes.
func (v *DrawVertex) SetNormal(n glm.Vec3) {
	v.Normal = PackNormal(n)
}

// SetTexCoords packs uv into the texture coordinate shorts.
func (v *DrawVertex) SetTexCoords(uv glm.Vec2) {
	v.TexCoords = PackTexCoords(uv)
}

// UnpackedNormal returns the normal as floats in [-1, 1].
func (v DrawVertex) UnpackedNormal() glm.Vec3 {
	return glm.Vec3{
		UnpackNormalComponent(v.Normal[0]),
		UnpackNormalComponent(v.Normal[1]),
		UnpackNormalComponent(v.Normal[2]),
	}
}

// UnpackedTexCoords returns the texture coordinates as floats in [-1, 1].
func (v DrawVertex) UnpackedTexCoords() glm.Vec2 {
	return glm.Vec2{
		UnpackTexCoordComponent(v.TexCoords[0]),
		UnpackTexCoordComponent(v.TexCoords[1]),
	}
}

// PackNormal quantizes a unit vector into signed bytes, w is left zero.
func PackNormal(n glm.Vec3) [4]int8 {
	return [4]int8{
		int8(quantize(n[0], NormalScale)),
		int8(quantize(n[1], NormalScale)),
		int8(quantize(n[2], NormalScale)),
		0,
	}
}

// PackTexCoords quantizes texture coordinates into signed shorts.
func PackTexCoords(uv glm.Vec2) [2]int16 {
	return [2]int16{
		int16(quantize(uv[0], TexCoordScale)),
		int16(quantize(uv[1], TexCoordScale)),
	}
}

// UnpackNormalComponent maps a packed normal byte back to [-1, 1].
// -128 and -127 both decode to -1, as with GL signed normalized bytes.
func UnpackNormalComponent(c int8) float32 {
	f := float32(c) / NormalScale
	if f < -1 {
		return -1
	}
	return f
}

// UnpackTexCoordComponent maps a packed texture coordinate back to [-1, 1].
func UnpackTexCoordComponent(c int16) float32 {
	return float32(c) / TexCoordScale
}

func quantize(f float32, scale float64) float64 {
	v := math.Round(float64(f) * scale)
	if v > scale {
		return scale
	}
	if v < -scale {
		return -scale
	}
	return v
}
