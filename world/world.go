// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package world is the render world: the handle based registry of
// entities, models, materials, textures and shaders that drives a
// backend once per frame.
//
// A RenderWorld is not safe for concurrent use and must be used from
// the thread that owns the graphics context.
package world

import (
	"errors"

	"github.com/devblok/glbox/core"
	"github.com/devblok/glbox/material"
	"github.com/devblok/glbox/model"
	"github.com/gobuffalo/packd"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// ErrNotInitialised is returned by resource operations before Init.
var ErrNotInitialised = errors.New("render world not initialised")

// DefaultMaxEntities is used when the configuration sets no capacity.
const DefaultMaxEntities = 16384

// RenderWorld owns every render resource and the entity slots.
type RenderWorld struct {
	registry *core.Registry
	src      packd.Finder
	cfg      core.RendererConfiguration

	backend core.Renderer

	entities   []entitySlot
	models     map[core.ModelHandle]*model.Model
	modelNames map[string]core.ModelHandle
	materials  []*material.Material
	textures   []material.Texture
	shaders    []material.Shader
}

// New creates a world that creates its backend from registry and
// reads assets from src.
func New(registry *core.Registry, src packd.Finder, cfg core.RendererConfiguration) *RenderWorld {
	capacity := cfg.MaxEntities
	if capacity <= 0 {
		capacity = DefaultMaxEntities
	}
	w := &RenderWorld{
		registry: registry,
		src:      src,
		cfg:      cfg,
		entities: make([]entitySlot, capacity),
	}
	w.resetRegistries()
	return w
}

func (w *RenderWorld) resetRegistries() {
	for i := range w.entities {
		w.entities[i] = newSlot()
	}
	w.models = map[core.ModelHandle]*model.Model{}
	w.modelNames = map[string]core.ModelHandle{}
	w.materials = nil
	w.textures = nil
	w.shaders = nil
}

// Init creates the backend selected by params.
func (w *RenderWorld) Init(params core.InitParams) error {
	if w.backend != nil {
		w.Shutdown()
	}

	backend, err := w.registry.Create(params)
	if err != nil {
		log.WithField("backend", params.Backend).Error("Render world init failed: " + err.Error())
		w.Shutdown()
		return err
	}
	w.backend = backend
	if s := backend.DefaultShader(); s != nil {
		w.shaders = append(w.shaders, s)
	}
	backend.Clear()

	log.WithFields(log.Fields{
		"api":       backend.APIName(),
		"windowing": params.Windowing,
		"width":     params.Width,
		"height":    params.Height,
	}).Info("Render world initialised")
	return nil
}

// Shutdown releases every resource and the backend. The world can be
// initialised again afterwards.
func (w *RenderWorld) Shutdown() {
	if w.backend != nil {
		for i := range w.entities {
			w.freeSlot(i)
		}
		w.backend.Shutdown()
		w.backend = nil
	}
	w.resetRegistries()
}

// Backend returns the active backend, nil before Init.
func (w *RenderWorld) Backend() core.Renderer {
	return w.backend
}

// APIName names the graphics API of the backend.
func (w *RenderWorld) APIName() string {
	if w.backend == nil {
		return ""
	}
	return w.backend.APIName()
}

// IsHardware reports whether the backend draws on a GPU.
func (w *RenderWorld) IsHardware() bool {
	return w.backend != nil && w.backend.IsHardware()
}

// CalculateModelMatrix returns the model matrix an entity is drawn with.
func (w *RenderWorld) CalculateModelMatrix(params core.EntityParams) glm.Mat4 {
	return core.CalculateModelMatrix(params)
}

// Stats returns the counters of the last rendered frame.
func (w *RenderWorld) Stats() core.FrameStats {
	if w.backend == nil {
		return core.FrameStats{}
	}
	return w.backend.Stats()
}

// RenderFrame draws every active entity with view. Immediate entities
// are freed once visited.
func (w *RenderWorld) RenderFrame(view core.View) {
	if w.backend == nil {
		return
	}
	w.backend.Clear()
	w.backend.BeginFrame()
	w.backend.SetView(view)

	for i := range w.entities {
		slot := &w.entities[i]
		if slot.state == slotFree {
			continue
		}
		if m, ok := w.models[slot.params.Model]; ok {
			w.renderEntity(slot, m)
		}
		if slot.state == slotTemporary {
			w.freeSlot(i)
		}
	}

	w.backend.EndFrame()
}

func (w *RenderWorld) renderEntity(slot *entitySlot, m *model.Model) {
	surfaces := m.SurfaceCount()
	size := len(slot.params.Batch)
	if size == 0 {
		if slot.batch != core.InvalidBatch {
			w.backend.DestroyBatch(slot.batch)
			slot.batch = core.InvalidBatch
			slot.batchDirty = false
		}
		for s := 0; s < surfaces; s++ {
			w.backend.RenderSurface(&slot.params, s)
		}
		return
	}

	if slot.batch == core.InvalidBatch {
		slot.batch = w.backend.CreateBatch(slot.params.Batch)
	} else if slot.batchDirty {
		w.backend.UpdateBatch(slot.batch, slot.params.Batch)
	}
	slot.batchDirty = false

	for s := 0; s < surfaces; s++ {
		w.backend.RenderSurfaceBatch(&slot.params, s, slot.batch, size)
	}
}
