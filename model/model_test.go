// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/devblok/glbox/geometry"
	"github.com/devblok/glbox/material"
	"github.com/devblok/glbox/model"
	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/packd"
	glm "github.com/go-gl/mathgl/mgl32"
)

const quadOBJ = `# quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1

f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestReadOBJFan(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ReadOBJ(strings.NewReader(quadOBJ))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 4)
	c.Assert(mesh.Surfaces, qt.HasLen, 1)
	c.Assert(mesh.Surfaces[0].Indices, qt.DeepEquals, []uint32{0, 1, 2, 0, 2, 3})
	c.Assert(mesh.Surfaces[0].MaterialName, qt.Equals, geometry.DefaultMaterialName)
	c.Assert(mesh.TriangleCount(), qt.Equals, 2)

	v := mesh.Vertices[0]
	c.Assert(v.Normal, qt.Equals, [4]int8{0, 0, 127, 0})
	// v is flipped, so (0, 0) becomes (0, 1)
	c.Assert(v.TexCoords, qt.Equals, [2]int16{0, 32767})
}

func TestReadOBJDeduplicates(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ReadOBJ(strings.NewReader(`
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 4)
	c.Assert(mesh.Surfaces[0].Indices, qt.DeepEquals, []uint32{0, 1, 2, 0, 2, 3})
	c.Assert(mesh.Vertices[3].Pos, qt.Equals, glm.Vec3{0, 1, 0})
}

func TestReadOBJNegativeIndices(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ReadOBJ(strings.NewReader(`
v 0 0 0
v 1 0 0
v 1 1 0
vn 0 1 0
f -3//-1 -2//-1 -1//-1
`))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 3)
	c.Assert(mesh.Vertices[2].Pos, qt.Equals, glm.Vec3{1, 1, 0})
	c.Assert(mesh.Vertices[0].Normal, qt.Equals, [4]int8{0, 127, 0, 0})
}

func TestReadOBJRelativeIndicesPerBlock(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ReadOBJ(strings.NewReader(`
v 0 0 0
v 1 1 1
v 2 2 2
f -3 -2 -1
v 5 5 5
v 6 6 6
v 7 7 7
f -3 -2 -1
`))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 6)
	c.Assert(mesh.Surfaces, qt.HasLen, 1)
	c.Assert(mesh.Surfaces[0].Indices, qt.DeepEquals, []uint32{0, 1, 2, 3, 4, 5})
	c.Assert(mesh.Vertices[3].Pos, qt.Equals, glm.Vec3{5, 5, 5})
	c.Assert(mesh.Vertices[5].Pos, qt.Equals, glm.Vec3{7, 7, 7})
}

func TestReadOBJMaterials(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ReadOBJ(strings.NewReader(`
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
usemtl brick
f 1 2 3
usemtl stone
f 1 3 4
usemtl unused
`))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Surfaces, qt.HasLen, 2)
	c.Assert(mesh.Surfaces[0].MaterialName, qt.Equals, "brick")
	c.Assert(mesh.Surfaces[1].MaterialName, qt.Equals, "stone")
	c.Assert(mesh.Surfaces[1].Indices, qt.DeepEquals, []uint32{0, 2, 3})
}

func TestReadOBJErrors(t *testing.T) {
	for name, src := range map[string]string{
		"out of range":   "v 0 0 0\nf 1 2 3\n",
		"zero index":     "v 0 0 0\nv 0 0 0\nv 0 0 0\nf 0 1 2\n",
		"bad float":      "v 0 zero 0\n",
		"short vertex":   "v 0 0\n",
		"missing normal": "v 0 0 0\nv 0 0 0\nv 0 0 0\nf 1//1 2//1 3//1\n",
		"relative range": "v 0 0 0\nv 0 0 0\nf -3 -2 -1\n",
		"short face":     "v 0 0 0\nv 0 0 0\nf 1 2\n",
	} {
		if _, err := model.ReadOBJ(strings.NewReader(src)); !errors.Is(err, model.ErrFormat) {
			t.Errorf("incorrect error for %s: %v", name, err)
		}
	}
}

func TestReadOBJEmpty(t *testing.T) {
	mesh, err := model.ReadOBJ(strings.NewReader("# nothing here\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !mesh.Empty() || len(mesh.Surfaces) != 0 {
		t.Fatal("empty source must give an empty mesh")
	}
}

const triangleDAE = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <library_geometries>
    <geometry id="Tri-mesh" name="Tri">
      <mesh>
        <source id="Tri-mesh-positions">
          <float_array id="Tri-mesh-positions-array" count="9">0 0 0 1 0 0 1 1 0</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-positions-array" count="3" stride="3"/>
          </technique_common>
        </source>
        <source id="Tri-mesh-normals">
          <float_array id="Tri-mesh-normals-array" count="3">0 0 1</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-normals-array" count="1" stride="3"/>
          </technique_common>
        </source>
        <source id="Tri-mesh-map">
          <float_array id="Tri-mesh-map-array" count="6">0 0 1 0 1 1</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-map-array" count="3" stride="2"/>
          </technique_common>
        </source>
        <vertices id="Tri-mesh-vertices">
          <input semantic="POSITION" source="#Tri-mesh-positions"/>
        </vertices>
        <triangles material="Paint-material" count="2">
          <input semantic="VERTEX" source="#Tri-mesh-vertices" offset="0"/>
          <input semantic="NORMAL" source="#Tri-mesh-normals" offset="1"/>
          <input semantic="TEXCOORD" source="#Tri-mesh-map" offset="2" set="0"/>
          <p>0 0 0 1 0 1 2 0 2 2 0 2 1 0 1 0 0 0</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
</COLLADA>
`

func TestReadCollada(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ReadCollada([]byte(triangleDAE))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 3)
	c.Assert(mesh.Surfaces, qt.HasLen, 1)
	c.Assert(mesh.Surfaces[0].MaterialName, qt.Equals, "Paint-material")
	c.Assert(mesh.Surfaces[0].Indices, qt.DeepEquals, []uint32{0, 1, 2, 2, 1, 0})
	c.Assert(mesh.Vertices[1].Pos, qt.Equals, glm.Vec3{1, 0, 0})
	c.Assert(mesh.Vertices[1].Normal, qt.Equals, [4]int8{0, 0, 127, 0})
	c.Assert(mesh.Vertices[2].TexCoords, qt.Equals, [2]int16{32767, 0})
}

func TestReadColladaErrors(t *testing.T) {
	if _, err := model.ReadCollada([]byte("<COLLADA><broken")); err == nil {
		t.Fatal("broken xml must fail")
	}
	outOfRange := strings.Replace(triangleDAE, "<p>0 0 0", "<p>7 0 0", 1)
	if _, err := model.ReadCollada([]byte(outOfRange)); !errors.Is(err, model.ErrFormat) {
		t.Fatalf("incorrect error: %v", err)
	}
}

func TestLoad(t *testing.T) {
	c := qt.New(t)
	box := packd.NewMemoryBox()
	box.AddString("models/quad.obj", quadOBJ)
	box.AddString("models/tri.dae", triangleDAE)

	m, err := model.Load(box, "models/quad.obj")
	c.Assert(err, qt.IsNil)
	c.Assert(m.OK(), qt.Equals, true)
	c.Assert(m.Name(), qt.Equals, "models/quad.obj")
	c.Assert(m.SurfaceCount(), qt.Equals, 1)

	m, err = model.Load(box, "models/tri.dae")
	c.Assert(err, qt.IsNil)
	c.Assert(m.Mesh().TriangleCount(), qt.Equals, 2)

	m, err = model.Load(box, "models/missing.obj")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(m.OK(), qt.Equals, false)

	_, err = model.Load(box, "models/quad.fbx")
	c.Assert(errors.Is(err, model.ErrUnsupported), qt.Equals, true)
}

func TestSetMaterial(t *testing.T) {
	m := model.New("cube", geometry.Cube())
	mat := material.New("stone")
	m.SetMaterial(mat)
	for i, s := range m.Mesh().Surfaces {
		if s.Material != mat {
			t.Fatalf("surface %d has no material", i)
		}
	}
	if !model.New("empty", nil).Mesh().Empty() {
		t.Fatal("nil mesh must become an empty mesh")
	}
}
