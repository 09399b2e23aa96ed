// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core defines the handle based render API shared by the
// render world and its backends.
package core

import (
	"github.com/devblok/glbox/geometry"
	"github.com/devblok/glbox/material"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Handles are opaque indices into registries owned by the render world
// or a backend. HandleInvalid is the all ones value.
type (
	EntityHandle uint32
	ModelHandle  uint32
	BatchHandle  uint32
)

// HandleInvalid is returned when a handle could not be allocated.
const HandleInvalid = ^uint32(0)

// Invalid handle values of each handle type.
const (
	InvalidEntity = EntityHandle(HandleInvalid)
	InvalidModel  = ModelHandle(HandleInvalid)
	InvalidBatch  = BatchHandle(HandleInvalid)
)

// Backend selects the graphics API implementation.
type Backend int

// Backends, values are stable across versions.
const (
	BackendOpenGL21   Backend = 0
	BackendOpenGL33   Backend = 1
	BackendOpenGL45   Backend = 2
	BackendVulkan     Backend = 100
	BackendDirect3D9  Backend = 200
	BackendDirect3D11 Backend = 201
	BackendSoftware   Backend = 400
)

func (b Backend) String() string {
	switch b {
	case BackendOpenGL21:
		return "OpenGL 2.1"
	case BackendOpenGL33:
		return "OpenGL 3.3"
	case BackendOpenGL45:
		return "OpenGL 4.5"
	case BackendVulkan:
		return "Vulkan"
	case BackendDirect3D9:
		return "Direct3D 9"
	case BackendDirect3D11:
		return "Direct3D 11"
	case BackendSoftware:
		return "Software"
	}
	return "unknown"
}

// Windowing tells the backend who created the graphics context.
type Windowing int

// Windowing frameworks.
const (
	WindowingSDL2 Windowing = iota
	WindowingGLFW
	WindowingCustom
)

func (w Windowing) String() string {
	switch w {
	case WindowingSDL2:
		return "sdl2"
	case WindowingGLFW:
		return "glfw"
	case WindowingCustom:
		return "custom"
	}
	return "unknown"
}

// InitParams are read once when the world starts.
type InitParams struct {
	Width     int
	Height    int
	Backend   Backend
	Windowing Windowing

	// Context is the backend specific graphics context,
	// a device.Device for the OpenGL 4.5 backend.
	Context interface{}
}

// DefaultInitParams returns 1280x720 on OpenGL 4.5 under SDL2.
func DefaultInitParams() InitParams {
	return InitParams{
		Width:     1280,
		Height:    720,
		Backend:   BackendOpenGL45,
		Windowing: WindowingSDL2,
	}
}

// View describes the camera of a frame.
type View struct {
	Width  int
	Height int

	RenderMask        uint32
	CameraPosition    glm.Vec3
	CameraOrientation glm.Mat4
	// FOV is the vertical field of view in degrees.
	FOV float32
	// Orthographic is accepted but not implemented by any backend.
	Orthographic bool
}

// DefaultView looks down -Z from the origin with a 70 degree FOV.
func DefaultView(width, height int) View {
	return View{
		Width:             width,
		Height:            height,
		RenderMask:        ^uint32(0),
		CameraOrientation: glm.Ident4(),
		FOV:               70,
	}
}

// BatchParams is one instance of a batched draw.
type BatchParams struct {
	Transform glm.Mat4
}

// EntityParams place a model in the world.
type EntityParams struct {
	Position    glm.Vec3
	Orientation glm.Mat4
	Model       ModelHandle
	RenderMask  uint32

	// Batch renders the model once per element with a single
	// draw call per surface when it is large enough.
	Batch []BatchParams
}

// NewEntityParams returns params for model at the origin.
func NewEntityParams(model ModelHandle) EntityParams {
	return EntityParams{
		Orientation: glm.Ident4(),
		Model:       model,
		RenderMask:  ^uint32(0),
	}
}

// ModelType tells where a model's geometry comes from.
type ModelType int

// Model sources.
const (
	ModelFromFile ModelType = iota
	ModelFromMesh
)

// ModelParams describe a model to create. Name identifies the model,
// for ModelFromFile it is the path of the OBJ or collada file.
type ModelParams struct {
	Name string
	Type ModelType
	Mesh *geometry.DrawMesh
}

// FrameStats are the counters of the last finished frame.
type FrameStats struct {
	DrawCalls int
	Triangles int
}

// CalculateModelMatrix translates by the position and then applies
// the orientation, the position is not rotated.
func CalculateModelMatrix(params EntityParams) glm.Mat4 {
	p := params.Position
	return glm.Translate3D(p.X(), p.Y(), p.Z()).Mul4(params.Orientation)
}

// Renderer is a graphics backend. A Renderer is bound to the thread
// owning its context and calls must follow the frame order:
// Clear, BeginFrame, SetView, RenderSurface and RenderSurfaceBatch, EndFrame.
type Renderer interface {
	// Shutdown releases every GPU object the backend created.
	Shutdown()

	// APIName names the graphics API, e.g. "OpenGL 4.5".
	APIName() string

	// IsHardware is false for software rasterizers.
	IsHardware() bool

	// DefaultShader is the shader given to new materials.
	DefaultShader() material.Shader

	// CreateModel uploads mesh. The surfaces keep their material
	// pointers and are read on every draw.
	CreateModel(mesh *geometry.DrawMesh) ModelHandle

	// AllocateTexture creates an empty texture object.
	AllocateTexture() material.Texture

	// LoadShader loads and compiles every permutation of the shader at path.
	LoadShader(path string) (material.Shader, error)

	// CreateBatch uploads per instance data.
	CreateBatch(params []BatchParams) BatchHandle

	// UpdateBatch replaces the instances of a batch, reusing its
	// storage when it is large enough.
	UpdateBatch(batch BatchHandle, params []BatchParams) bool

	// DestroyBatch frees the batch storage.
	DestroyBatch(batch BatchHandle)

	Clear()
	BeginFrame()
	SetView(view View)

	// RenderSurface draws one surface of the entity's model.
	RenderSurface(entity *EntityParams, surface int)

	// RenderSurfaceBatch draws size instances of a surface from a batch.
	RenderSurfaceBatch(entity *EntityParams, surface int, batch BatchHandle, size int)

	EndFrame()

	// Stats returns the counters of the last EndFrame.
	Stats() FrameStats
}
