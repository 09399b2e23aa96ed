// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package model loads meshes from OBJ and Collada files into the
// frontend model representation.
package model

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/devblok/glbox/geometry"
	"github.com/devblok/glbox/material"
	"github.com/gobuffalo/packd"
)

// Model errors.
var (
	ErrFormat      = errors.New("malformed model")
	ErrUnsupported = errors.New("unsupported model format")
)

// Importer turns file contents into a mesh.
type Importer func(data []byte) (*geometry.DrawMesh, error)

var importers = map[string]Importer{
	".obj": func(data []byte) (*geometry.DrawMesh, error) {
		return ReadOBJ(bytes.NewReader(data))
	},
	".dae": ReadCollada,
}

// ImporterFor returns the importer handling the extension of name.
func ImporterFor(name string) (Importer, bool) {
	imp, ok := importers[strings.ToLower(path.Ext(name))]
	return imp, ok
}

// Model is a named mesh. It is not OK when its source failed to load.
type Model struct {
	name string
	mesh *geometry.DrawMesh
	ok   bool
}

// New wraps a mesh built in code.
func New(name string, mesh *geometry.DrawMesh) *Model {
	if mesh == nil {
		mesh = &geometry.DrawMesh{}
	}
	return &Model{
		name: name,
		mesh: mesh,
		ok:   true,
	}
}

// Load reads the model file name from src. The returned model is never
// nil, on error it is empty and not OK.
func Load(src packd.Finder, name string) (*Model, error) {
	m := &Model{
		name: name,
		mesh: &geometry.DrawMesh{},
	}
	imp, ok := ImporterFor(name)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	data, err := src.Find(name)
	if err != nil {
		return m, fmt.Errorf("model %s: %w", name, err)
	}
	mesh, err := imp(data)
	if err != nil {
		return m, fmt.Errorf("model %s: %w", name, err)
	}
	m.mesh = mesh
	m.ok = true
	return m, nil
}

// Name is the path or name the model was created with.
func (m *Model) Name() string {
	return m.name
}

// Mesh returns the geometry.
func (m *Model) Mesh() *geometry.DrawMesh {
	return m.mesh
}

// OK reports whether the model loaded.
func (m *Model) OK() bool {
	return m.ok
}

// SetMaterial assigns mat to every surface.
func (m *Model) SetMaterial(mat *material.Material) {
	for i := range m.mesh.Surfaces {
		m.mesh.Surfaces[i].Material = mat
	}
}

// SurfaceCount is the number of surfaces, one draw call each.
func (m *Model) SurfaceCount() int {
	return len(m.mesh.Surfaces)
}
