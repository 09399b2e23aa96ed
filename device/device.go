// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device describes the OpenGL 4.5 calls the renderer makes.
// Implementations live in device/opengl (the driver) and
// device/devicetest (an in-memory recorder for tests).
package device

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Info describes the driver behind a device.
type Info struct {
	Vendor          string
	Renderer        string
	Version         string
	ShadingLanguage string
}

// Device is a current OpenGL 4.5 context. Every call must be made
// from the thread that owns the context.
type Device interface {
	// Init loads the function pointers of the current context.
	Init() error

	// Info queries the driver strings.
	Info() Info

	// GetError pops the oldest recorded error, NoError when there are none.
	GetError() uint32

	Enable(capability uint32)
	CullFace(mode uint32)
	DepthRange(near, far float64)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)

	GenBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target, buffer uint32)
	BufferFloats(target uint32, data []float32, usage uint32)
	BufferSubFloats(target uint32, offset int, data []float32)
	BufferIndices(target uint32, data []uint32, usage uint32)

	GenVertexArray() uint32
	DeleteVertexArray(array uint32)
	BindVertexArray(array uint32)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	// VertexAttribFloats describes size floats at offset bytes into
	// each stride-byte record of the bound array buffer.
	VertexAttribFloats(index uint32, size, stride int32, offset int)
	VertexAttribDivisor(index, divisor uint32)

	DrawElements(mode uint32, count int32)
	DrawElementsInstanced(mode uint32, count, instances int32)

	CreateShader(kind uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	// ShaderStatus returns the compile status and up to maxLog bytes of the info log.
	ShaderStatus(shader uint32, maxLog int) (bool, string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	// ProgramStatus returns the link status and up to maxLog bytes of the info log.
	ProgramStatus(program uint32, maxLog int) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1i(location, value int32)
	UniformMatrix4(location int32, m glm.Mat4)

	CreateTexture(target uint32) uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, internalFormat int32, width, height int32, format, dataType uint32, pixels []byte)
	TexParameteri(target, name uint32, value int32)
	GenerateMipmap(target uint32)
}
