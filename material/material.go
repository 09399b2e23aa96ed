// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package material holds the backend independent view of textures,
// shaders and the materials that combine them.
package material

import (
	"github.com/devblok/glbox/gfx"
	"github.com/devblok/glbox/shader"
)

// Shader is a compiled shader with one program per supported
// flag combination.
type Shader interface {
	gfx.Resource

	// Path is the source the shader was loaded from.
	Path() string

	// Supported returns the capabilities declared by the source.
	Supported() shader.Flags

	// Permutations lists the compiled flag combinations.
	Permutations() []shader.Flags

	// Bind makes the permutation matching flags exactly current.
	// When there is none, no program is bound and false is returned.
	Bind(flags shader.Flags) bool

	// Reload drops every program and runs load and compile again.
	Reload() error

	// ErrorMessage returns the last load, compile or link error text.
	ErrorMessage() string
}

// Material defaults.
const (
	DefaultMaterialName = "Default"
	BuiltinMaterialFile = "#built-in"
)

// Material references a shader and an ordered list of textures.
// It does not own any of them, the render world does.
type Material struct {
	name     string
	fileName string

	shader   Shader
	textures []Texture
}

// New creates an empty material.
func New(name string) *Material {
	if name == "" {
		name = DefaultMaterialName
	}
	return &Material{
		name:     name,
		fileName: BuiltinMaterialFile,
	}
}

// Name returns the material name.
func (m *Material) Name() string {
	return m.name
}

// SetName renames the material.
func (m *Material) SetName(name string) {
	m.name = name
}

// FileName is the material's source, BuiltinMaterialFile when created in code.
func (m *Material) FileName() string {
	return m.fileName
}

// Shader returns the shader the material renders with, may be nil.
func (m *Material) Shader() Shader {
	return m.shader
}

// SetShader sets the shader reference.
func (m *Material) SetShader(s Shader) {
	m.shader = s
}

// Textures returns the textures in insertion order.
func (m *Material) Textures() []Texture {
	return m.textures
}

// AddTexture appends tex unless the material already references it.
// With force set, duplicates are appended anyway.
func (m *Material) AddTexture(tex Texture, force bool) {
	if tex == nil {
		return
	}
	if !force {
		for _, t := range m.textures {
			if t == tex {
				return
			}
		}
	}
	m.textures = append(m.textures, tex)
}

// Texture returns the order-th texture of type typ, counting only
// textures of that type, or nil.
func (m *Material) Texture(typ TextureType, order int) Texture {
	var seen int
	for _, t := range m.textures {
		if t.Type() != typ {
			continue
		}
		if seen == order {
			return t
		}
		seen++
	}
	return nil
}

// Clear drops every texture and shader reference.
func (m *Material) Clear() {
	m.shader = nil
	m.textures = nil
}
