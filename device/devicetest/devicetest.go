// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package devicetest provides an in-memory device.Device that records
// the objects and draw calls a renderer makes, for tests without a GPU.
package devicetest

import (
	"strings"

	"github.com/devblok/glbox/device"
	glm "github.com/go-gl/mathgl/mgl32"
)

// Markers recognised by the default compile and link hooks.
const (
	CompileErrorMarker = "#error"
	LinkErrorMarker    = "LINK_ERROR"
)

// Buffer is a recorded buffer object.
type Buffer struct {
	Floats      []float32
	Indices     []uint32
	Usage       uint32
	Allocations int
	Updates     int
	Deleted     bool
}

// Attrib is a recorded vertex attribute binding.
type Attrib struct {
	Buffer  uint32
	Size    int32
	Stride  int32
	Offset  int
	Divisor uint32
	Enabled bool
}

// VertexArray is a recorded vertex array object.
type VertexArray struct {
	ElementBuffer uint32
	Attribs       map[uint32]*Attrib
	Deleted       bool
}

// Shader is a recorded shader object.
type Shader struct {
	Kind     uint32
	Source   string
	Compiled bool
	Log      string
	Deleted  bool
}

// Program is a recorded program object.
type Program struct {
	Shaders  []uint32
	Linked   bool
	Log      string
	Deleted  bool
	Uniforms map[string]int32
	Matrices map[int32]glm.Mat4
	Ints     map[int32]int32
}

// Texture is a recorded texture object.
type Texture struct {
	InternalFormat int32
	Format         uint32
	DataType       uint32
	Width, Height  int32
	Pixels         []byte
	Params         map[uint32]int32
	Mipmaps        int
	Uploads        int
	Deleted        bool
}

// Draw is one recorded draw call.
type Draw struct {
	Mode        uint32
	Count       int32
	Instances   int32
	Program     uint32
	VertexArray uint32
	Texture     uint32
}

// Device records every call. The zero value is not usable, use New.
type Device struct {
	// CompileHook decides the outcome of CompileShader.
	CompileHook func(kind uint32, source string) (bool, string)
	// LinkHook decides the outcome of LinkProgram.
	LinkHook func(vertex, fragment string) (bool, string)

	InitErr error
	Errors  []uint32
	Inits   int

	Buffers      map[uint32]*Buffer
	VertexArrays map[uint32]*VertexArray
	Shaders      map[uint32]*Shader
	Programs     map[uint32]*Program
	Textures     map[uint32]*Texture
	Draws        []Draw

	Enabled       map[uint32]bool
	CullMode      uint32
	DepthNear     float64
	DepthFar      float64
	ViewportRect  [4]int32
	ClearRGBA     [4]float32
	Clears        int
	ClearMask     uint32
	BoundProgram  uint32
	BoundArray    uint32
	BoundBuffers  map[uint32]uint32
	BoundTextures map[uint32]uint32
	ActiveUnit    uint32

	next uint32
}

var _ device.Device = &Device{}

// New creates an empty recording device.
func New() *Device {
	return &Device{
		CompileHook:   defaultCompile,
		LinkHook:      defaultLink,
		Buffers:       map[uint32]*Buffer{},
		VertexArrays:  map[uint32]*VertexArray{},
		Shaders:       map[uint32]*Shader{},
		Programs:      map[uint32]*Program{},
		Textures:      map[uint32]*Texture{},
		Enabled:       map[uint32]bool{},
		BoundBuffers:  map[uint32]uint32{},
		BoundTextures: map[uint32]uint32{},
		ActiveUnit:    device.Texture0,
	}
}

func defaultCompile(kind uint32, source string) (bool, string) {
	if strings.Contains(source, CompileErrorMarker) {
		return false, "0:1(1): error: #error directive encountered"
	}
	return true, ""
}

func defaultLink(vertex, fragment string) (bool, string) {
	if strings.Contains(vertex, LinkErrorMarker) || strings.Contains(fragment, LinkErrorMarker) {
		return false, "error: linking failed"
	}
	return true, ""
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

// ResetDraws forgets the recorded draw calls.
func (d *Device) ResetDraws() {
	d.Draws = nil
}

// LivePrograms counts programs that were not deleted.
func (d *Device) LivePrograms() int {
	var n int
	for _, p := range d.Programs {
		if !p.Deleted {
			n++
		}
	}
	return n
}

// LiveTextures counts textures that were not deleted.
func (d *Device) LiveTextures() int {
	var n int
	for _, t := range d.Textures {
		if !t.Deleted {
			n++
		}
	}
	return n
}

// Init implements device.Device
func (d *Device) Init() error {
	d.Inits++
	return d.InitErr
}

// Info implements device.Device
func (d *Device) Info() device.Info {
	return device.Info{
		Vendor:          "devicetest",
		Renderer:        "recorder",
		Version:         "4.5.0",
		ShadingLanguage: "4.50",
	}
}

// GetError implements device.Device
func (d *Device) GetError() uint32 {
	if len(d.Errors) == 0 {
		return device.NoError
	}
	code := d.Errors[0]
	d.Errors = d.Errors[1:]
	return code
}

// Enable implements device.Device
func (d *Device) Enable(capability uint32) { d.Enabled[capability] = true }

// CullFace implements device.Device
func (d *Device) CullFace(mode uint32) { d.CullMode = mode }

// DepthRange implements device.Device
func (d *Device) DepthRange(near, far float64) { d.DepthNear, d.DepthFar = near, far }

// Viewport implements device.Device
func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportRect = [4]int32{x, y, width, height}
}

// ClearColor implements device.Device
func (d *Device) ClearColor(r, g, b, a float32) { d.ClearRGBA = [4]float32{r, g, b, a} }

// Clear implements device.Device
func (d *Device) Clear(mask uint32) {
	d.Clears++
	d.ClearMask = mask
}

// GenBuffer implements device.Device
func (d *Device) GenBuffer() uint32 {
	id := d.id()
	d.Buffers[id] = &Buffer{}
	return id
}

// DeleteBuffer implements device.Device
func (d *Device) DeleteBuffer(buffer uint32) {
	if b, ok := d.Buffers[buffer]; ok {
		b.Deleted = true
	}
}

// BindBuffer implements device.Device
func (d *Device) BindBuffer(target, buffer uint32) {
	d.BoundBuffers[target] = buffer
	if target == device.ElementArrayBuffer {
		if va, ok := d.VertexArrays[d.BoundArray]; ok {
			va.ElementBuffer = buffer
		}
	}
}

func (d *Device) bound(target uint32) *Buffer {
	return d.Buffers[d.BoundBuffers[target]]
}

// BufferFloats implements device.Device
func (d *Device) BufferFloats(target uint32, data []float32, usage uint32) {
	if b := d.bound(target); b != nil {
		b.Floats = append([]float32(nil), data...)
		b.Usage = usage
		b.Allocations++
	}
}

// BufferSubFloats implements device.Device
func (d *Device) BufferSubFloats(target uint32, offset int, data []float32) {
	b := d.bound(target)
	if b == nil {
		return
	}
	start := offset / 4
	if start+len(data) > len(b.Floats) {
		d.Errors = append(d.Errors, device.InvalidValue)
		return
	}
	copy(b.Floats[start:], data)
	b.Updates++
}

// BufferIndices implements device.Device
func (d *Device) BufferIndices(target uint32, data []uint32, usage uint32) {
	if b := d.bound(target); b != nil {
		b.Indices = append([]uint32(nil), data...)
		b.Usage = usage
		b.Allocations++
	}
}

// GenVertexArray implements device.Device
func (d *Device) GenVertexArray() uint32 {
	id := d.id()
	d.VertexArrays[id] = &VertexArray{Attribs: map[uint32]*Attrib{}}
	return id
}

// DeleteVertexArray implements device.Device
func (d *Device) DeleteVertexArray(array uint32) {
	if va, ok := d.VertexArrays[array]; ok {
		va.Deleted = true
	}
}

// BindVertexArray implements device.Device
func (d *Device) BindVertexArray(array uint32) { d.BoundArray = array }

func (d *Device) attrib(index uint32) *Attrib {
	va, ok := d.VertexArrays[d.BoundArray]
	if !ok {
		d.Errors = append(d.Errors, device.InvalidOperation)
		return &Attrib{}
	}
	a, ok := va.Attribs[index]
	if !ok {
		a = &Attrib{}
		va.Attribs[index] = a
	}
	return a
}

// EnableVertexAttribArray implements device.Device
func (d *Device) EnableVertexAttribArray(index uint32) { d.attrib(index).Enabled = true }

// DisableVertexAttribArray implements device.Device
func (d *Device) DisableVertexAttribArray(index uint32) { d.attrib(index).Enabled = false }

// VertexAttribFloats implements device.Device
func (d *Device) VertexAttribFloats(index uint32, size, stride int32, offset int) {
	a := d.attrib(index)
	a.Buffer = d.BoundBuffers[device.ArrayBuffer]
	a.Size, a.Stride, a.Offset = size, stride, offset
}

// VertexAttribDivisor implements device.Device
func (d *Device) VertexAttribDivisor(index, divisor uint32) { d.attrib(index).Divisor = divisor }

// DrawElements implements device.Device
func (d *Device) DrawElements(mode uint32, count int32) {
	d.DrawElementsInstanced(mode, count, 1)
}

// DrawElementsInstanced implements device.Device
func (d *Device) DrawElementsInstanced(mode uint32, count, instances int32) {
	d.Draws = append(d.Draws, Draw{
		Mode:        mode,
		Count:       count,
		Instances:   instances,
		Program:     d.BoundProgram,
		VertexArray: d.BoundArray,
		Texture:     d.BoundTextures[device.Texture0],
	})
}

// CreateShader implements device.Device
func (d *Device) CreateShader(kind uint32) uint32 {
	id := d.id()
	d.Shaders[id] = &Shader{Kind: kind}
	return id
}

// ShaderSource implements device.Device
func (d *Device) ShaderSource(shader uint32, source string) {
	if s, ok := d.Shaders[shader]; ok {
		s.Source = source
	}
}

// CompileShader implements device.Device
func (d *Device) CompileShader(shader uint32) {
	if s, ok := d.Shaders[shader]; ok {
		s.Compiled, s.Log = d.CompileHook(s.Kind, s.Source)
	}
}

// ShaderStatus implements device.Device
func (d *Device) ShaderStatus(shader uint32, maxLog int) (bool, string) {
	s, ok := d.Shaders[shader]
	if !ok {
		return false, ""
	}
	return s.Compiled, truncate(s.Log, maxLog)
}

// DeleteShader implements device.Device
func (d *Device) DeleteShader(shader uint32) {
	if s, ok := d.Shaders[shader]; ok {
		s.Deleted = true
	}
}

// CreateProgram implements device.Device
func (d *Device) CreateProgram() uint32 {
	id := d.id()
	d.Programs[id] = &Program{
		Uniforms: map[string]int32{},
		Matrices: map[int32]glm.Mat4{},
		Ints:     map[int32]int32{},
	}
	return id
}

// AttachShader implements device.Device
func (d *Device) AttachShader(program, shader uint32) {
	if p, ok := d.Programs[program]; ok {
		p.Shaders = append(p.Shaders, shader)
	}
}

// LinkProgram implements device.Device
func (d *Device) LinkProgram(program uint32) {
	p, ok := d.Programs[program]
	if !ok {
		return
	}
	var vertex, fragment string
	for _, id := range p.Shaders {
		s := d.Shaders[id]
		if s == nil || !s.Compiled {
			p.Linked, p.Log = false, "error: attached shader not compiled"
			return
		}
		switch s.Kind {
		case device.VertexShader:
			vertex = s.Source
		case device.FragmentShader:
			fragment = s.Source
		}
	}
	p.Linked, p.Log = d.LinkHook(vertex, fragment)
}

// ProgramStatus implements device.Device
func (d *Device) ProgramStatus(program uint32, maxLog int) (bool, string) {
	p, ok := d.Programs[program]
	if !ok {
		return false, ""
	}
	return p.Linked, truncate(p.Log, maxLog)
}

// DeleteProgram implements device.Device
func (d *Device) DeleteProgram(program uint32) {
	if p, ok := d.Programs[program]; ok {
		p.Deleted = true
	}
	if d.BoundProgram == program {
		d.BoundProgram = 0
	}
}

// UseProgram implements device.Device
func (d *Device) UseProgram(program uint32) { d.BoundProgram = program }

// UniformLocation implements device.Device
func (d *Device) UniformLocation(program uint32, name string) int32 {
	p, ok := d.Programs[program]
	if !ok || !p.Linked {
		return -1
	}
	if loc, ok := p.Uniforms[name]; ok {
		return loc
	}
	loc := int32(len(p.Uniforms))
	p.Uniforms[name] = loc
	return loc
}

func (d *Device) current() *Program {
	p, ok := d.Programs[d.BoundProgram]
	if !ok {
		d.Errors = append(d.Errors, device.InvalidOperation)
		return nil
	}
	return p
}

// Uniform1i implements device.Device
func (d *Device) Uniform1i(location, value int32) {
	if p := d.current(); p != nil && location >= 0 {
		p.Ints[location] = value
	}
}

// UniformMatrix4 implements device.Device
func (d *Device) UniformMatrix4(location int32, m glm.Mat4) {
	if p := d.current(); p != nil && location >= 0 {
		p.Matrices[location] = m
	}
}

// Matrix returns the last value set for a named matrix uniform of a program.
func (d *Device) Matrix(program uint32, name string) (glm.Mat4, bool) {
	p, ok := d.Programs[program]
	if !ok {
		return glm.Mat4{}, false
	}
	loc, ok := p.Uniforms[name]
	if !ok {
		return glm.Mat4{}, false
	}
	m, ok := p.Matrices[loc]
	return m, ok
}

// CreateTexture implements device.Device
func (d *Device) CreateTexture(target uint32) uint32 {
	id := d.id()
	d.Textures[id] = &Texture{Params: map[uint32]int32{}}
	return id
}

// DeleteTexture implements device.Device
func (d *Device) DeleteTexture(texture uint32) {
	if t, ok := d.Textures[texture]; ok {
		t.Deleted = true
	}
}

// ActiveTexture implements device.Device
func (d *Device) ActiveTexture(unit uint32) { d.ActiveUnit = unit }

// BindTexture implements device.Device
func (d *Device) BindTexture(target, texture uint32) { d.BoundTextures[d.ActiveUnit] = texture }

func (d *Device) boundTexture() *Texture {
	return d.Textures[d.BoundTextures[d.ActiveUnit]]
}

// TexImage2D implements device.Device
func (d *Device) TexImage2D(target uint32, internalFormat int32, width, height int32, format, dataType uint32, pixels []byte) {
	t := d.boundTexture()
	if t == nil {
		d.Errors = append(d.Errors, device.InvalidOperation)
		return
	}
	t.InternalFormat, t.Format, t.DataType = internalFormat, format, dataType
	t.Width, t.Height = width, height
	t.Pixels = append([]byte(nil), pixels...)
	t.Uploads++
}

// TexParameteri implements device.Device
func (d *Device) TexParameteri(target, name uint32, value int32) {
	if t := d.boundTexture(); t != nil {
		t.Params[name] = value
	}
}

// GenerateMipmap implements device.Device
func (d *Device) GenerateMipmap(target uint32) {
	if t := d.boundTexture(); t != nil {
		t.Mipmaps++
	}
}

func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
