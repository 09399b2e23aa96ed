// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package opengl implements device.Device with the go-gl OpenGL 4.5 core bindings.
package opengl

import (
	"errors"
	"strings"
	"unsafe"

	"github.com/devblok/glbox/device"
	"github.com/go-gl/gl/v4.5-core/gl"
	glm "github.com/go-gl/mathgl/mgl32"
)

// New returns a device for the context current on the calling thread.
// Init must be called before anything else.
func New() *Device {
	return &Device{}
}

// Device issues calls to the OpenGL driver.
type Device struct{}

var _ device.Device = &Device{}

// Init implements interface
func (d *Device) Init() error {
	if err := gl.Init(); err != nil {
		return errors.New("gl.Init(): " + err.Error())
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return nil
}

// Info implements interface
func (d *Device) Info() device.Info {
	return device.Info{
		Vendor:          gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer:        gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:         gl.GoStr(gl.GetString(gl.VERSION)),
		ShadingLanguage: gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	}
}

// GetError implements interface
func (d *Device) GetError() uint32 { return gl.GetError() }

// Enable implements interface
func (d *Device) Enable(capability uint32) { gl.Enable(capability) }

// CullFace implements interface
func (d *Device) CullFace(mode uint32) { gl.CullFace(mode) }

// DepthRange implements interface
func (d *Device) DepthRange(near, far float64) { gl.DepthRange(near, far) }

// Viewport implements interface
func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

// ClearColor implements interface
func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

// Clear implements interface
func (d *Device) Clear(mask uint32) { gl.Clear(mask) }

// GenBuffer implements interface
func (d *Device) GenBuffer() uint32 {
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	return buffer
}

// DeleteBuffer implements interface
func (d *Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

// BindBuffer implements interface
func (d *Device) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

// BufferFloats implements interface
func (d *Device) BufferFloats(target uint32, data []float32, usage uint32) {
	gl.BufferData(target, len(data)*4, dataPtr(data, len(data)), usage)
}

// BufferSubFloats implements interface
func (d *Device) BufferSubFloats(target uint32, offset int, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target, offset, len(data)*4, gl.Ptr(data))
}

// BufferIndices implements interface
func (d *Device) BufferIndices(target uint32, data []uint32, usage uint32) {
	gl.BufferData(target, len(data)*4, dataPtr(data, len(data)), usage)
}

// GenVertexArray implements interface
func (d *Device) GenVertexArray() uint32 {
	var array uint32
	gl.GenVertexArrays(1, &array)
	return array
}

// DeleteVertexArray implements interface
func (d *Device) DeleteVertexArray(array uint32) { gl.DeleteVertexArrays(1, &array) }

// BindVertexArray implements interface
func (d *Device) BindVertexArray(array uint32) { gl.BindVertexArray(array) }

// EnableVertexAttribArray implements interface
func (d *Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

// DisableVertexAttribArray implements interface
func (d *Device) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

// VertexAttribFloats implements interface
func (d *Device) VertexAttribFloats(index uint32, size, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

// VertexAttribDivisor implements interface
func (d *Device) VertexAttribDivisor(index, divisor uint32) { gl.VertexAttribDivisor(index, divisor) }

// DrawElements implements interface
func (d *Device) DrawElements(mode uint32, count int32) {
	gl.DrawElements(mode, count, gl.UNSIGNED_INT, nil)
}

// DrawElementsInstanced implements interface
func (d *Device) DrawElementsInstanced(mode uint32, count, instances int32) {
	gl.DrawElementsInstanced(mode, count, gl.UNSIGNED_INT, nil, instances)
}

// CreateShader implements interface
func (d *Device) CreateShader(kind uint32) uint32 { return gl.CreateShader(kind) }

// ShaderSource implements interface
func (d *Device) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

// CompileShader implements interface
func (d *Device) CompileShader(shader uint32) { gl.CompileShader(shader) }

// ShaderStatus implements interface
func (d *Device) ShaderStatus(shader uint32, maxLog int) (bool, string) {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var length int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
	return false, infoLog(length, maxLog, func(size int32, buf *uint8) {
		gl.GetShaderInfoLog(shader, size, nil, buf)
	})
}

// DeleteShader implements interface
func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

// CreateProgram implements interface
func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

// AttachShader implements interface
func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

// LinkProgram implements interface
func (d *Device) LinkProgram(program uint32) { gl.LinkProgram(program) }

// ProgramStatus implements interface
func (d *Device) ProgramStatus(program uint32, maxLog int) (bool, string) {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	return false, infoLog(length, maxLog, func(size int32, buf *uint8) {
		gl.GetProgramInfoLog(program, size, nil, buf)
	})
}

// DeleteProgram implements interface
func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

// UseProgram implements interface
func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

// UniformLocation implements interface
func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// Uniform1i implements interface
func (d *Device) Uniform1i(location, value int32) { gl.Uniform1i(location, value) }

// UniformMatrix4 implements interface
func (d *Device) UniformMatrix4(location int32, m glm.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

// CreateTexture implements interface
func (d *Device) CreateTexture(target uint32) uint32 {
	var texture uint32
	gl.CreateTextures(target, 1, &texture)
	return texture
}

// DeleteTexture implements interface
func (d *Device) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

// ActiveTexture implements interface
func (d *Device) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

// BindTexture implements interface
func (d *Device) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

// TexImage2D implements interface
func (d *Device) TexImage2D(target uint32, internalFormat int32, width, height int32, format, dataType uint32, pixels []byte) {
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(target, 0, internalFormat, width, height, 0, format, dataType, ptr)
}

// TexParameteri implements interface
func (d *Device) TexParameteri(target, name uint32, value int32) {
	gl.TexParameteri(target, name, value)
}

// GenerateMipmap implements interface
func (d *Device) GenerateMipmap(target uint32) { gl.GenerateMipmap(target) }

// dataPtr returns nil for empty data so BufferData only allocates.
func dataPtr(data interface{}, length int) unsafe.Pointer {
	if length == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func infoLog(length int32, maxLog int, get func(int32, *uint8)) string {
	if int(length) > maxLog {
		length = int32(maxLog)
	}
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	get(length, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}
