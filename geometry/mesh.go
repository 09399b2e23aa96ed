// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package geometry

import (
	"github.com/devblok/glbox/material"
)

// DefaultMaterialName is given to surfaces that did not name a material.
const DefaultMaterialName = "default"

// DrawTriangle indexes three vertices of a mesh.
type DrawTriangle struct {
	Indices [3]uint32
}

// DrawSurface is a run of indexed geometry drawn with one material,
// which makes it one draw call.
type DrawSurface struct {
	MaterialName string
	Material     *material.Material
	Indices      []uint32
}

// NewSurface creates an empty surface using the default material name.
func NewSurface() DrawSurface {
	return DrawSurface{MaterialName: DefaultMaterialName}
}

// TriangleCount is the number of triangles the surface draws.
func (s DrawSurface) TriangleCount() int {
	return len(s.Indices) / 3
}

// DrawMesh holds the vertices and surfaces of a model.
// It is built once and read by the renderer afterwards.
type DrawMesh struct {
	Surfaces  []DrawSurface
	Triangles []DrawTriangle
	Vertices  []DrawVertex
}

// AddSurface appends a surface. The first surface of a mesh that was
// described with triangles takes its indices from them when it has none.
func (m *DrawMesh) AddSurface(surface DrawSurface) {
	if len(m.Surfaces) == 0 && len(surface.Indices) == 0 {
		for _, tri := range m.Triangles {
			surface.Indices = append(surface.Indices, tri.Indices[:]...)
		}
	}
	if surface.MaterialName == "" {
		surface.MaterialName = DefaultMaterialName
	}
	m.Surfaces = append(m.Surfaces, surface)
}

// TriangleCount sums the triangles of every surface.
func (m *DrawMesh) TriangleCount() int {
	var count int
	for _, s := range m.Surfaces {
		count += s.TriangleCount()
	}
	return count
}

// Empty reports whether the mesh has nothing to draw.
func (m *DrawMesh) Empty() bool {
	return len(m.Vertices) == 0 || len(m.Surfaces) == 0
}
