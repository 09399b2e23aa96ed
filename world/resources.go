// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package world

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/devblok/glbox/assets"
	"github.com/devblok/glbox/core"
	"github.com/devblok/glbox/material"
	"github.com/devblok/glbox/model"
	log "github.com/sirupsen/logrus"
)

// PlaceholderTexture is assigned to every surface of a new model. When
// the asset is missing a checkerboard is generated under this name.
const PlaceholderTexture = "metal1.png"

const (
	placeholderSize = 64
	placeholderCell = 8
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// CreateModel loads a model from a file or wraps a mesh built in code
// and uploads it. Models are deduplicated by name. A model that fails
// to load is not registered.
func (w *RenderWorld) CreateModel(params core.ModelParams) (core.ModelHandle, error) {
	if w.backend == nil {
		return core.InvalidModel, ErrNotInitialised
	}
	if h, ok := w.modelNames[params.Name]; ok && params.Name != "" {
		return h, nil
	}

	var m *model.Model
	switch params.Type {
	case core.ModelFromMesh:
		if params.Mesh == nil {
			return core.InvalidModel, errors.New("world.CreateModel(): no mesh given for " + params.Name)
		}
		m = model.New(params.Name, params.Mesh)
	default:
		var err error
		if m, err = model.Load(w.src, params.Name); err != nil {
			log.WithField("model", params.Name).Warn("Failed to load model: " + err.Error())
			return core.InvalidModel, err
		}
	}

	mat := w.CreateMaterialSimple(w.placeholderTexture())
	for i := range m.Mesh().Surfaces {
		if m.Mesh().Surfaces[i].Material == nil {
			m.Mesh().Surfaces[i].Material = mat
		}
	}

	h := w.backend.CreateModel(m.Mesh())
	if h == core.InvalidModel {
		return h, errors.New("world.CreateModel(): backend rejected " + params.Name)
	}
	w.models[h] = m
	if params.Name != "" {
		w.modelNames[params.Name] = h
	}

	log.WithFields(log.Fields{
		"model":     params.Name,
		"handle":    h,
		"surfaces":  m.SurfaceCount(),
		"triangles": m.Mesh().TriangleCount(),
	}).Info("Model created")
	return h, nil
}

// UpdateModel is not supported, models are immutable once created.
func (w *RenderWorld) UpdateModel(h core.ModelHandle, params core.ModelParams) bool {
	log.WithField("handle", h).Warn("UpdateModel is not supported")
	return false
}

// Model returns the frontend model of h.
func (w *RenderWorld) Model(h core.ModelHandle) (*model.Model, bool) {
	m, ok := w.models[h]
	return m, ok
}

func (w *RenderWorld) placeholderTexture() material.Texture {
	tex, err := w.LoadTexture(PlaceholderTexture, material.TextureAlbedo, material.DefaultTextureFlags)
	if err == nil {
		return tex
	}
	log.WithField("texture", PlaceholderTexture).Debug("Generating placeholder texture: " + err.Error())

	tex, err = w.CreateTexture(PlaceholderTexture, placeholderSize, placeholderSize,
		material.TextureAlbedo, material.DefaultTextureFlags,
		material.Checkerboard(placeholderSize, placeholderCell))
	if err != nil {
		log.Error("Failed to create placeholder texture: " + err.Error())
		return nil
	}
	return tex
}

// CreateMaterialSimple returns a material named after tex that renders
// tex with the default shader. Materials are deduplicated by name.
func (w *RenderWorld) CreateMaterialSimple(tex material.Texture) *material.Material {
	if tex == nil || w.backend == nil {
		return nil
	}
	for _, m := range w.materials {
		if m.Name() == tex.Name() {
			return m
		}
	}

	m := material.New(tex.Name())
	m.SetShader(w.backend.DefaultShader())
	m.AddTexture(tex, false)
	w.materials = append(w.materials, m)
	return m
}

// LoadMaterial returns the material called name. An image file name
// creates a simple material with the image as albedo.
func (w *RenderWorld) LoadMaterial(name string) (*material.Material, error) {
	if w.backend == nil {
		return nil, ErrNotInitialised
	}
	for _, m := range w.materials {
		if m.Name() == name {
			return m, nil
		}
	}
	if !imageExtensions[strings.ToLower(path.Ext(name))] {
		return nil, fmt.Errorf("%w: material %s", assets.ErrNotFound, name)
	}
	tex, err := w.LoadTexture(name, material.TextureAlbedo, material.DefaultTextureFlags)
	if err != nil {
		return nil, err
	}
	return w.CreateMaterialSimple(tex), nil
}

// Materials returns every registered material.
func (w *RenderWorld) Materials() []*material.Material {
	return w.materials
}

// ReloadMaterials decodes the files of every file backed texture
// referenced by a material again and uploads them.
func (w *RenderWorld) ReloadMaterials() {
	seen := map[material.Texture]bool{}
	for _, m := range w.materials {
		for _, tex := range m.Textures() {
			if seen[tex] || tex.FileName() == material.BuiltinFileName {
				continue
			}
			seen[tex] = true
			if err := w.reloadTexture(tex); err != nil {
				log.WithField("texture", tex.Name()).Error("Failed to reload texture: " + err.Error())
				continue
			}
			log.WithField("texture", tex.Name()).Info("Reloaded texture")
		}
	}
}

func (w *RenderWorld) reloadTexture(tex material.Texture) error {
	data, err := w.src.Find(tex.FileName())
	if err != nil {
		return err
	}
	img, err := material.DecodeImage(data)
	if err != nil {
		return err
	}
	if flags := byteFlags(img, tex.Flags()); flags != tex.Flags() {
		return fmt.Errorf("format changed from %d to %d channels", tex.Flags().Channels(), flags.Channels())
	}
	return tex.LoadDirect(img.Width, img.Height, img.Pix)
}

// byteFlags matches flags to a decoded image, which is always 8 bit.
func byteFlags(img *material.Image, flags material.TextureFlags) material.TextureFlags {
	return img.Flags(flags)&^material.SizeFlags | material.TextureByteSized
}

// LoadTexture decodes the image file path and uploads it. Textures
// are deduplicated by name, a failed load registers nothing.
func (w *RenderWorld) LoadTexture(path string, typ material.TextureType, flags material.TextureFlags) (material.Texture, error) {
	if w.backend == nil {
		return nil, ErrNotInitialised
	}
	if tex := w.findTexture(path); tex != nil {
		return tex, nil
	}

	data, err := w.src.Find(path)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	img, err := material.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	if flags&material.TextureFloatSized != 0 {
		log.WithField("texture", path).Warn("Image files are uploaded as 8 bit textures")
	}

	tex := w.backend.AllocateTexture()
	tex.SetFileName(path)
	tex.SetType(typ)
	tex.SetFlags(byteFlags(img, flags))
	if err := tex.LoadDirect(img.Width, img.Height, img.Pix); err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}

	w.textures = append(w.textures, tex)
	log.WithFields(log.Fields{
		"texture": path,
		"width":   img.Width,
		"height":  img.Height,
	}).Info("Texture loaded")
	return tex, nil
}

// CreateTexture uploads width x height pixels laid out per flags under
// name. Textures are deduplicated by name.
func (w *RenderWorld) CreateTexture(name string, width, height int, typ material.TextureType, flags material.TextureFlags, data []byte) (material.Texture, error) {
	if w.backend == nil {
		return nil, ErrNotInitialised
	}
	if tex := w.findTexture(name); tex != nil {
		return tex, nil
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture %s: invalid size %dx%d", name, width, height)
	}
	if need := flags.DataSize(width, height); data != nil && len(data) < need {
		return nil, fmt.Errorf("texture %s: %d bytes given, %dx%d needs %d", name, len(data), width, height, need)
	}

	tex := w.backend.AllocateTexture()
	tex.SetName(name)
	tex.SetType(typ)
	tex.SetFlags(flags)
	if err := tex.LoadDirect(width, height, data); err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %s: %w", name, err)
	}
	w.textures = append(w.textures, tex)
	return tex, nil
}

// UpdateTexture replaces the pixels of an uploaded texture keeping
// its size and format.
func (w *RenderWorld) UpdateTexture(tex material.Texture, data []byte) error {
	if tex == nil || !tex.Loaded() {
		return errors.New("world.UpdateTexture(): texture not uploaded")
	}
	width, height := tex.Size()
	return tex.LoadDirect(width, height, data)
}

// Textures returns every registered texture.
func (w *RenderWorld) Textures() []material.Texture {
	return w.textures
}

func (w *RenderWorld) findTexture(name string) material.Texture {
	for _, t := range w.textures {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// LoadShader compiles the shader at path. Shaders are deduplicated
// by path.
func (w *RenderWorld) LoadShader(path string) (material.Shader, error) {
	if w.backend == nil {
		return nil, ErrNotInitialised
	}
	for _, s := range w.shaders {
		if s.Path() == path {
			return s, nil
		}
	}
	s, err := w.backend.LoadShader(path)
	if err != nil {
		return nil, err
	}
	w.shaders = append(w.shaders, s)
	return s, nil
}

// Shaders returns every registered shader, the default one first.
func (w *RenderWorld) Shaders() []material.Shader {
	return w.shaders
}

// ReloadShaders recompiles every shader from source. A shader that
// fails keeps binding nothing until it reloads cleanly.
func (w *RenderWorld) ReloadShaders() {
	for _, s := range w.shaders {
		if err := s.Reload(); err != nil {
			log.WithField("shader", s.Path()).Error("Failed to reload shader: " + s.ErrorMessage())
		}
	}
}
