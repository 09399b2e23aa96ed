// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/glbox/core"
	"github.com/devblok/glbox/device"
	"github.com/devblok/glbox/geometry"
)

// Vertex layout as seen by shaders: position, normal and texture
// coordinates at attribute locations 0, 1 and 2.
const (
	FloatsPerVertex = 8
	VertexStride    = FloatsPerVertex * 4

	attribPosition = 0
	attribNormal   = 1
	attribTexCoord = 2
)

// Instance layout: one mat4 as four vec4 columns starting at location 3.
const (
	FloatsPerInstance = 16
	InstanceStride    = FloatsPerInstance * 4

	attribInstance = 3
)

// FlattenVertices unpacks vertices into the 8 float GPU layout.
// Tangents, colours and weights are not uploaded.
func FlattenVertices(vertices []geometry.DrawVertex) []float32 {
	data := make([]float32, 0, len(vertices)*FloatsPerVertex)
	for _, v := range vertices {
		n := v.UnpackedNormal()
		uv := v.UnpackedTexCoords()
		data = append(data,
			v.Pos[0], v.Pos[1], v.Pos[2],
			n[0], n[1], n[2],
			uv[0], uv[1],
		)
	}
	return data
}

// VertexBuffer holds the vertices of one model.
type VertexBuffer struct {
	dev   device.Device
	id    uint32
	count int
}

// NewVertexBuffer uploads vertices into a static buffer.
func NewVertexBuffer(dev device.Device, vertices []geometry.DrawVertex) *VertexBuffer {
	vb := &VertexBuffer{
		dev:   dev,
		id:    dev.GenBuffer(),
		count: len(vertices),
	}
	dev.BindBuffer(device.ArrayBuffer, vb.id)
	dev.BufferFloats(device.ArrayBuffer, FlattenVertices(vertices), device.StaticDraw)
	dev.BindBuffer(device.ArrayBuffer, 0)
	return vb
}

// ID returns the buffer object name.
func (vb *VertexBuffer) ID() uint32 {
	return vb.id
}

// Count is the number of vertices uploaded.
func (vb *VertexBuffer) Count() int {
	return vb.count
}

// Release implements gfx.Releasable
func (vb *VertexBuffer) Release() {
	if vb.id != 0 {
		vb.dev.DeleteBuffer(vb.id)
		vb.id = 0
	}
}

// VertexArray draws one surface: it owns the surface's index buffer
// and the attribute bindings to the shared vertex buffer.
type VertexArray struct {
	dev     device.Device
	id      uint32
	indices uint32
	count   int32
}

// NewVertexArray creates the vertex array of a surface.
func NewVertexArray(dev device.Device, vb *VertexBuffer, indices []uint32) *VertexArray {
	va := &VertexArray{
		dev:   dev,
		id:    dev.GenVertexArray(),
		count: int32(len(indices)),
	}
	dev.BindVertexArray(va.id)

	dev.BindBuffer(device.ArrayBuffer, vb.id)
	va.indices = dev.GenBuffer()
	dev.BindBuffer(device.ElementArrayBuffer, va.indices)
	dev.BufferIndices(device.ElementArrayBuffer, indices, device.StaticDraw)

	dev.EnableVertexAttribArray(attribPosition)
	dev.VertexAttribFloats(attribPosition, 3, VertexStride, 0)
	dev.EnableVertexAttribArray(attribNormal)
	dev.VertexAttribFloats(attribNormal, 3, VertexStride, 3*4)
	dev.EnableVertexAttribArray(attribTexCoord)
	dev.VertexAttribFloats(attribTexCoord, 2, VertexStride, 6*4)

	dev.BindVertexArray(0)
	dev.BindBuffer(device.ArrayBuffer, 0)
	dev.BindBuffer(device.ElementArrayBuffer, 0)
	return va
}

// ID returns the vertex array object name.
func (va *VertexArray) ID() uint32 {
	return va.id
}

// Count is the number of indices drawn.
func (va *VertexArray) Count() int32 {
	return va.count
}

// Bind makes the vertex array current.
func (va *VertexArray) Bind() {
	va.dev.BindVertexArray(va.id)
}

// Release implements gfx.Releasable
func (va *VertexArray) Release() {
	if va.id == 0 {
		return
	}
	va.dev.DeleteBuffer(va.indices)
	va.dev.DeleteVertexArray(va.id)
	va.id, va.indices = 0, 0
}

// InstancedArray holds per instance transforms of a batch.
type InstancedArray struct {
	dev      device.Device
	id       uint32
	size     int
	capacity int
}

// NewInstancedArray uploads params into a dynamic buffer.
func NewInstancedArray(dev device.Device, params []core.BatchParams) *InstancedArray {
	ia := &InstancedArray{
		dev: dev,
		id:  dev.GenBuffer(),
	}
	ia.Update(params)
	return ia
}

func flattenInstances(params []core.BatchParams) []float32 {
	data := make([]float32, 0, len(params)*FloatsPerInstance)
	for _, p := range params {
		data = append(data, p.Transform[:]...)
	}
	return data
}

// Update replaces the instances. Growing reallocates the buffer,
// otherwise the data is written in place.
func (ia *InstancedArray) Update(params []core.BatchParams) {
	data := flattenInstances(params)
	ia.dev.BindBuffer(device.ArrayBuffer, ia.id)
	if len(params) > ia.capacity || ia.capacity == 0 {
		ia.dev.BufferFloats(device.ArrayBuffer, data, device.DynamicDraw)
		ia.capacity = len(params)
	} else {
		ia.dev.BufferSubFloats(device.ArrayBuffer, 0, data)
	}
	ia.dev.BindBuffer(device.ArrayBuffer, 0)
	ia.size = len(params)
}

// Size is the number of instances last uploaded.
func (ia *InstancedArray) Size() int {
	return ia.size
}

// Capacity is the number of instances the buffer can hold.
func (ia *InstancedArray) Capacity() int {
	return ia.capacity
}

// Bind sets up the instance attributes on the current vertex array.
func (ia *InstancedArray) Bind() {
	ia.dev.BindBuffer(device.ArrayBuffer, ia.id)
	for i := 0; i < 4; i++ {
		index := uint32(attribInstance + i)
		ia.dev.EnableVertexAttribArray(index)
		ia.dev.VertexAttribFloats(index, 4, InstanceStride, i*4*4)
		ia.dev.VertexAttribDivisor(index, 1)
	}
}

// Unbind disables the instance attributes again.
func (ia *InstancedArray) Unbind() {
	for i := 0; i < 4; i++ {
		index := uint32(attribInstance + i)
		ia.dev.VertexAttribDivisor(index, 0)
		ia.dev.DisableVertexAttribArray(index)
	}
	ia.dev.BindBuffer(device.ArrayBuffer, 0)
}

// Release implements gfx.Releasable
func (ia *InstancedArray) Release() {
	if ia.id != 0 {
		ia.dev.DeleteBuffer(ia.id)
		ia.id = 0
	}
}
