// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package renderer implements the OpenGL 4.5 backend of the render world.
package renderer

import (
	"fmt"

	"github.com/devblok/glbox/core"
	"github.com/devblok/glbox/device"
	"github.com/devblok/glbox/geometry"
	"github.com/devblok/glbox/material"
	"github.com/devblok/glbox/shader"
	"github.com/gobuffalo/packd"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// Projection planes.
const (
	NearPlane = 0.01
	FarPlane  = 8192
)

// APIName is returned by GL45.APIName.
const APIName = "OpenGL 4.5"

// Factory returns a core.Factory creating GL45 renderers. The
// InitParams.Context must be a device.Device.
func Factory(src packd.Finder, cfg core.RendererConfiguration) core.Factory {
	return func(params core.InitParams) (core.Renderer, error) {
		dev, ok := params.Context.(device.Device)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not a device.Device", core.ErrInvalidContext, params.Context)
		}
		return New(dev, src, cfg, params)
	}
}

type glModel struct {
	mesh   *geometry.DrawMesh
	buffer *VertexBuffer
	arrays []*VertexArray
}

func (m *glModel) release() {
	for _, va := range m.arrays {
		va.Release()
	}
	m.buffer.Release()
}

// GL45 is the OpenGL 4.5 renderer.
type GL45 struct {
	dev device.Device
	src packd.Finder
	cfg core.RendererConfiguration

	defaultShader *Shader
	shaders       []*Shader
	textures      []*Texture
	models        []*glModel
	batches       []*InstancedArray

	view       core.View
	projection glm.Mat4
	viewMatrix glm.Mat4

	frame core.FrameStats
	stats core.FrameStats
}

var _ core.Renderer = &GL45{}

// New initialises the device and loads the default shader.
func New(dev device.Device, src packd.Finder, cfg core.RendererConfiguration, params core.InitParams) (*GL45, error) {
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("device.Init(): %w", err)
	}
	info := dev.Info()
	log.WithFields(log.Fields{
		"vendor":   info.Vendor,
		"renderer": info.Renderer,
		"version":  info.Version,
		"glsl":     info.ShadingLanguage,
	}).Info("OpenGL device initialised")

	r := &GL45{
		dev: dev,
		src: src,
		cfg: cfg,
	}
	r.SetView(core.DefaultView(params.Width, params.Height))

	defaultShader, err := r.loadShader(cfg.DefaultShader)
	if err != nil {
		return nil, fmt.Errorf("default shader: %w", err)
	}
	r.defaultShader = defaultShader
	return r, nil
}

// Device returns the device the renderer draws with.
func (r *GL45) Device() device.Device {
	return r.dev
}

// Shutdown implements core.Renderer
func (r *GL45) Shutdown() {
	for _, m := range r.models {
		m.release()
	}
	for _, b := range r.batches {
		if b != nil {
			b.Release()
		}
	}
	for _, t := range r.textures {
		t.Release()
	}
	for _, s := range r.shaders {
		s.Release()
	}
	r.models, r.batches, r.textures, r.shaders = nil, nil, nil, nil
	r.defaultShader = nil
	r.checkError("Shutdown")
}

// APIName implements core.Renderer
func (r *GL45) APIName() string {
	return APIName
}

// IsHardware implements core.Renderer
func (r *GL45) IsHardware() bool {
	return true
}

// DefaultShader implements core.Renderer
func (r *GL45) DefaultShader() material.Shader {
	return r.defaultShader
}

// BatchThreshold is the batch size above which batches draw instanced.
func (r *GL45) BatchThreshold() int {
	return r.cfg.BatchThreshold
}

// SetBatchThreshold changes the instancing threshold.
func (r *GL45) SetBatchThreshold(n int) {
	r.cfg.BatchThreshold = n
}

// checkError logs every pending driver error.
func (r *GL45) checkError(op string) {
	for code := r.dev.GetError(); code != device.NoError; code = r.dev.GetError() {
		log.WithField("op", op).Warn("OpenGL error: " + device.ErrorString(code))
	}
}

// CreateModel implements core.Renderer
func (r *GL45) CreateModel(mesh *geometry.DrawMesh) core.ModelHandle {
	m := &glModel{
		mesh:   mesh,
		buffer: NewVertexBuffer(r.dev, mesh.Vertices),
	}
	for _, s := range mesh.Surfaces {
		m.arrays = append(m.arrays, NewVertexArray(r.dev, m.buffer, s.Indices))
	}
	r.checkError("CreateModel")

	r.models = append(r.models, m)
	return core.ModelHandle(len(r.models) - 1)
}

func (r *GL45) model(h core.ModelHandle) *glModel {
	if int64(h) >= int64(len(r.models)) {
		return nil
	}
	return r.models[h]
}

// AllocateTexture implements core.Renderer
func (r *GL45) AllocateTexture() material.Texture {
	live := r.textures[:0]
	for _, t := range r.textures {
		if t.ID() != 0 {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(r.textures); i++ {
		r.textures[i] = nil
	}
	r.textures = live

	t := newTexture(r.dev)
	r.textures = append(r.textures, t)
	r.checkError("AllocateTexture")
	return t
}

// TextureCount is the number of textures the backend tracks. Released
// textures are dropped on the next allocation.
func (r *GL45) TextureCount() int {
	return len(r.textures)
}

// LoadShader implements core.Renderer
func (r *GL45) LoadShader(path string) (material.Shader, error) {
	s, err := r.loadShader(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *GL45) loadShader(path string) (*Shader, error) {
	s := newShader(r.dev, r.src, path)
	err := s.load()
	r.checkError("LoadShader")
	if err != nil {
		log.WithField("path", path).Error(s.ErrorMessage())
		return nil, err
	}
	log.WithFields(log.Fields{
		"path":         path,
		"supported":    s.Supported().String(),
		"permutations": len(s.programs),
	}).Info("Shader loaded")
	r.shaders = append(r.shaders, s)
	return s, nil
}

// CreateBatch implements core.Renderer
func (r *GL45) CreateBatch(params []core.BatchParams) core.BatchHandle {
	ia := NewInstancedArray(r.dev, params)
	r.checkError("CreateBatch")
	for i, b := range r.batches {
		if b == nil {
			r.batches[i] = ia
			return core.BatchHandle(i)
		}
	}
	r.batches = append(r.batches, ia)
	return core.BatchHandle(len(r.batches) - 1)
}

func (r *GL45) batch(h core.BatchHandle) *InstancedArray {
	if int64(h) >= int64(len(r.batches)) {
		return nil
	}
	return r.batches[h]
}

// UpdateBatch implements core.Renderer
func (r *GL45) UpdateBatch(h core.BatchHandle, params []core.BatchParams) bool {
	ia := r.batch(h)
	if ia == nil {
		return false
	}
	ia.Update(params)
	r.checkError("UpdateBatch")
	return true
}

// DestroyBatch implements core.Renderer
func (r *GL45) DestroyBatch(h core.BatchHandle) {
	if ia := r.batch(h); ia != nil {
		ia.Release()
		r.batches[h] = nil
	}
}

// Clear implements core.Renderer
func (r *GL45) Clear() {
	c := r.cfg.ClearColor
	r.dev.ClearColor(c[0], c[1], c[2], c[3])
	r.dev.Clear(device.ColorBufferBit | device.DepthBufferBit)
}

// BeginFrame implements core.Renderer
func (r *GL45) BeginFrame() {
	r.frame = core.FrameStats{}
	r.dev.Enable(device.DepthTest)
	r.dev.Enable(device.CullFaceMode)
	r.dev.CullFace(device.Back)
	r.dev.DepthRange(0, 1)
	r.dev.Viewport(0, 0, int32(r.view.Width), int32(r.view.Height))
}

// SetView implements core.Renderer
func (r *GL45) SetView(view core.View) {
	r.view = view
	aspect := float32(1)
	if view.Height > 0 {
		aspect = float32(view.Width) / float32(view.Height)
	}
	r.projection = glm.Perspective(glm.DegToRad(view.FOV), aspect, NearPlane, FarPlane)
	p := view.CameraPosition
	r.viewMatrix = view.CameraOrientation.Mul4(glm.Translate3D(p.X(), p.Y(), p.Z()))
	r.dev.Viewport(0, 0, int32(view.Width), int32(view.Height))
}

// View returns the current view.
func (r *GL45) View() core.View {
	return r.view
}

// prepare binds everything a draw of surface needs except instance
// data. It returns nil when nothing must be drawn.
func (r *GL45) prepare(entity *core.EntityParams, surface int, flags shader.Flags) *VertexArray {
	m := r.model(entity.Model)
	if m == nil || surface < 0 || surface >= len(m.arrays) {
		return nil
	}

	mat := m.mesh.Surfaces[surface].Material
	sh := r.defaultShader
	if mat != nil {
		if s, ok := mat.Shader().(*Shader); ok && s != nil {
			sh = s
		}
	}
	if sh == nil || !sh.Bind(flags) {
		return nil
	}

	var albedo material.Texture
	if mat != nil {
		albedo = mat.Texture(material.TextureAlbedo, 0)
	}
	if albedo != nil {
		albedo.Bind(0)
	} else {
		r.dev.ActiveTexture(device.Texture0)
		r.dev.BindTexture(device.Texture2D, 0)
	}

	p := sh.current()
	r.dev.UniformMatrix4(p.projection, r.projection)
	r.dev.UniformMatrix4(p.model, core.CalculateModelMatrix(*entity))
	r.dev.UniformMatrix4(p.view, r.viewMatrix)

	va := m.arrays[surface]
	va.Bind()
	return va
}

// RenderSurface implements core.Renderer
func (r *GL45) RenderSurface(entity *core.EntityParams, surface int) {
	va := r.prepare(entity, surface, shader.FlagNormal)
	if va == nil {
		return
	}
	r.dev.DrawElements(device.Triangles, va.Count())
	r.frame.DrawCalls++
	r.frame.Triangles += int(va.Count()) / 3
}

// RenderSurfaceBatch implements core.Renderer. Batches up to the
// threshold are drawn as a single instance.
func (r *GL45) RenderSurfaceBatch(entity *core.EntityParams, surface int, batch core.BatchHandle, size int) {
	if size <= r.cfg.BatchThreshold {
		r.RenderSurface(entity, surface)
		return
	}
	ia := r.batch(batch)
	if ia == nil {
		log.WithField("batch", batch).Warn("RenderSurfaceBatch with an invalid batch")
		return
	}
	if size > ia.Size() {
		size = ia.Size()
		if size <= r.cfg.BatchThreshold {
			r.RenderSurface(entity, surface)
			return
		}
	}

	va := r.prepare(entity, surface, shader.FlagNormal|shader.FlagInstanced)
	if va == nil {
		return
	}
	ia.Bind()
	r.dev.DrawElementsInstanced(device.Triangles, va.Count(), int32(size))
	ia.Unbind()

	r.frame.DrawCalls++
	r.frame.Triangles += int(va.Count()) / 3 * size
}

// EndFrame implements core.Renderer
func (r *GL45) EndFrame() {
	r.dev.BindVertexArray(0)
	r.dev.BindBuffer(device.ArrayBuffer, 0)
	r.dev.BindBuffer(device.ElementArrayBuffer, 0)
	r.dev.ActiveTexture(device.Texture0)
	r.dev.BindTexture(device.Texture2D, 0)
	r.dev.UseProgram(0)

	r.stats = r.frame
	log.WithFields(log.Fields{
		"drawCalls": r.stats.DrawCalls,
		"triangles": r.stats.Triangles,
	}).Debug("Frame finished")
}

// Stats implements core.Renderer
func (r *GL45) Stats() core.FrameStats {
	return r.stats
}
