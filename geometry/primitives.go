// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package geometry

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

func newVertex(pos glm.Vec3, normal glm.Vec3, uv glm.Vec2) DrawVertex {
	v := DrawVertex{
		Pos:   pos,
		Color: [4]uint8{255, 255, 255, 255},
	}
	v.SetNormal(normal)
	v.SetTexCoords(uv)
	return v
}

// Quad builds a unit quad in the XY plane facing +Z, made of
// four vertices and two triangles in a single surface.
func Quad() *DrawMesh {
	normal := glm.Vec3{0, 0, 1}
	mesh := &DrawMesh{
		Vertices: []DrawVertex{
			newVertex(glm.Vec3{-0.5, -0.5, 0}, normal, glm.Vec2{0, 0}),
			newVertex(glm.Vec3{0.5, -0.5, 0}, normal, glm.Vec2{1, 0}),
			newVertex(glm.Vec3{0.5, 0.5, 0}, normal, glm.Vec2{1, 1}),
			newVertex(glm.Vec3{-0.5, 0.5, 0}, normal, glm.Vec2{0, 1}),
		},
	}
	surface := NewSurface()
	surface.Indices = []uint32{0, 1, 2, 2, 3, 0}
	mesh.AddSurface(surface)
	return mesh
}

var cubeFaces = []struct {
	normal glm.Vec3
	u, v   glm.Vec3
}{
	{glm.Vec3{0, 0, 1}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 1, 0}},
	{glm.Vec3{0, 0, -1}, glm.Vec3{-1, 0, 0}, glm.Vec3{0, 1, 0}},
	{glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, -1}, glm.Vec3{0, 1, 0}},
	{glm.Vec3{-1, 0, 0}, glm.Vec3{0, 0, 1}, glm.Vec3{0, 1, 0}},
	{glm.Vec3{0, 1, 0}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, -1}},
	{glm.Vec3{0, -1, 0}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, 1}},
}

// Cube builds a unit cube centred on the origin with per-face normals.
func Cube() *DrawMesh {
	mesh := &DrawMesh{}
	surface := NewSurface()
	for _, face := range cubeFaces {
		base := uint32(len(mesh.Vertices))
		centre := face.normal.Mul(0.5)
		u := face.u.Mul(0.5)
		v := face.v.Mul(0.5)
		mesh.Vertices = append(mesh.Vertices,
			newVertex(centre.Sub(u).Sub(v), face.normal, glm.Vec2{0, 0}),
			newVertex(centre.Add(u).Sub(v), face.normal, glm.Vec2{1, 0}),
			newVertex(centre.Add(u).Add(v), face.normal, glm.Vec2{1, 1}),
			newVertex(centre.Sub(u).Add(v), face.normal, glm.Vec2{0, 1}),
		)
		surface.Indices = append(surface.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	mesh.AddSurface(surface)
	return mesh
}
