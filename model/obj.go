// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/devblok/glbox/geometry"
	"github.com/g3n/engine/loader/obj"
	glm "github.com/go-gl/mathgl/mgl32"
)

// corner is a face corner with resolved position, uv and normal
// indices as the decoder reports them.
type corner [3]int

type objBuilder struct {
	dec   *obj.Decoder
	mesh  *geometry.DrawMesh
	cache map[corner]uint32
}

// ReadOBJ reads a Wavefront OBJ stream. Faces are triangulated as fans,
// identical face corners share a vertex and every change of material
// starts a new surface named after it. Material libraries are not read.
func ReadOBJ(r io.Reader) (*geometry.DrawMesh, error) {
	dec, err := obj.DecodeReader(r, strings.NewReader(""))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormat, err)
	}

	b := &objBuilder{
		dec:   dec,
		mesh:  &geometry.DrawMesh{},
		cache: map[corner]uint32{},
	}

	var (
		current  geometry.DrawSurface
		material string
		started  bool
	)
	for _, o := range dec.Objects {
		for _, face := range o.Faces {
			name := b.materialName(face.Material)
			if !started || name != material {
				if len(current.Indices) > 0 {
					b.mesh.AddSurface(current)
				}
				current = geometry.NewSurface()
				if name != "" {
					current.MaterialName = name
				}
				material, started = name, true
			}

			indices, err := b.face(face)
			if err != nil {
				return nil, fmt.Errorf("%w: object %s: %s", ErrFormat, o.Name, err)
			}
			current.Indices = append(current.Indices, indices...)
		}
	}
	if len(current.Indices) > 0 {
		b.mesh.AddSurface(current)
	}
	return b.mesh, nil
}

// materialName is empty for faces that no usemtl applies to.
func (b *objBuilder) materialName(name string) string {
	if _, ok := b.dec.Materials[name]; !ok {
		return ""
	}
	return name
}

func (b *objBuilder) face(face obj.Face) ([]uint32, error) {
	corners := make([]uint32, len(face.Vertices))
	for i := range face.Vertices {
		c := corner{face.Vertices[i], face.Uvs[i], face.Normals[i]}
		idx, err := b.vertex(c)
		if err != nil {
			return nil, err
		}
		corners[i] = idx
	}

	var indices []uint32
	for i := 1; i+1 < len(corners); i++ {
		indices = append(indices, corners[0], corners[i], corners[i+1])
	}
	return indices, nil
}

// absent reports the decoder's marker for an omitted uv or normal.
func absent(i int) bool {
	return int64(i) == math.MaxUint32
}

// vertex returns the mesh index of c, creating the vertex the first
// time the corner is seen.
func (b *objBuilder) vertex(c corner) (uint32, error) {
	if idx, ok := b.cache[c]; ok {
		return idx, nil
	}

	if err := checkIndex("position", c[0], len(b.dec.Vertices)/3); err != nil {
		return 0, err
	}
	p := b.dec.Vertices[c[0]*3:]
	v := geometry.DrawVertex{
		Pos:   glm.Vec3{p[0], p[1], p[2]},
		Color: [4]uint8{255, 255, 255, 255},
	}
	if !absent(c[1]) {
		if err := checkIndex("uv", c[1], len(b.dec.Uvs)/2); err != nil {
			return 0, err
		}
		t := b.dec.Uvs[c[1]*2:]
		v.SetTexCoords(glm.Vec2{t[0], 1 - t[1]})
	}
	if !absent(c[2]) {
		if err := checkIndex("normal", c[2], len(b.dec.Normals)/3); err != nil {
			return 0, err
		}
		n := b.dec.Normals[c[2]*3:]
		v.SetNormal(glm.Vec3{n[0], n[1], n[2]})
	}

	idx := uint32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	b.cache[c] = idx
	return idx, nil
}

func checkIndex(kind string, i, count int) error {
	if i < 0 || i >= count {
		return fmt.Errorf("%s index %d out of range, %d defined", kind, i+1, count)
	}
	return nil
}
