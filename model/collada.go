// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/devblok/glbox/geometry"
	"github.com/devblok/glbox/util/collada"
	glm "github.com/go-gl/mathgl/mgl32"
)

// ReadCollada converts the triangle lists of every geometry in a
// Collada document into one mesh, one surface per triangle list.
func ReadCollada(fileContents []byte) (*geometry.DrawMesh, error) {
	var doc collada.Collada
	if err := xml.Unmarshal(fileContents, &doc); err != nil {
		return nil, errors.New("xml.Unmarshal(): " + err.Error())
	}

	mesh := &geometry.DrawMesh{}
	for g := range doc.Geometries {
		geo := &doc.Geometries[g].Mesh
		for t := range geo.Triangles {
			surface, err := importTriangles(mesh, geo, &geo.Triangles[t])
			if err != nil {
				return nil, fmt.Errorf("%w: geometry %s: %s", ErrFormat, doc.Geometries[g].ID, err)
			}
			if len(surface.Indices) > 0 {
				mesh.AddSurface(surface)
			}
		}
	}
	return mesh, nil
}

type colladaInputs struct {
	position, normal, texCoord *collada.Source

	positionOffset, normalOffset, texCoordOffset int
}

func resolveInputs(geo *collada.Mesh, tri *collada.Triangles) (colladaInputs, error) {
	var in colladaInputs

	vertex, ok := tri.Input(collada.SemanticVertex)
	if !ok {
		return in, errors.New("triangles without a VERTEX input")
	}
	if in.position, ok = geo.Resolve(vertex); !ok {
		return in, fmt.Errorf("source %s not found", vertex.Source)
	}
	in.positionOffset = int(vertex.Offset)

	if normal, ok := tri.Input(collada.SemanticNormal); ok {
		in.normal, _ = geo.Resolve(normal)
		in.normalOffset = int(normal.Offset)
	}
	if tex, ok := tri.Input(collada.SemanticTexCoord); ok {
		in.texCoord, _ = geo.Resolve(tex)
		in.texCoordOffset = int(tex.Offset)
	}
	return in, nil
}

// importTriangles appends the vertices of one triangle list to mesh.
// Corners with the same indices share a vertex.
func importTriangles(mesh *geometry.DrawMesh, geo *collada.Mesh, tri *collada.Triangles) (geometry.DrawSurface, error) {
	cache := map[string]uint32{}
	surface := geometry.NewSurface()
	surface.MaterialName = tri.Material

	in, err := resolveInputs(geo, tri)
	if err != nil {
		return surface, err
	}

	stride := tri.Stride()
	for corner := 0; corner+stride <= len(tri.Index); corner += stride {
		indices := tri.Index[corner : corner+stride]
		key := cornerKey(indices)
		if idx, ok := cache[key]; ok {
			surface.Indices = append(surface.Indices, idx)
			continue
		}

		pos := in.position.Element(indices[in.positionOffset])
		if len(pos) < 3 {
			return surface, fmt.Errorf("position %d out of range", indices[in.positionOffset])
		}
		v := geometry.DrawVertex{
			Pos:   glm.Vec3{pos[0], pos[1], pos[2]},
			Color: [4]uint8{255, 255, 255, 255},
		}
		if in.normal != nil {
			if n := in.normal.Element(indices[in.normalOffset]); len(n) >= 3 {
				v.SetNormal(glm.Vec3{n[0], n[1], n[2]})
			}
		}
		if in.texCoord != nil {
			if uv := in.texCoord.Element(indices[in.texCoordOffset]); len(uv) >= 2 {
				v.SetTexCoords(glm.Vec2{uv[0], 1 - uv[1]})
			}
		}

		idx := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, v)
		cache[key] = idx
		surface.Indices = append(surface.Indices, idx)
	}
	return surface, nil
}

func cornerKey(indices []int) string {
	var sb strings.Builder
	for i, idx := range indices {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}
