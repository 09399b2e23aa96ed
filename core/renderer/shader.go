// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/devblok/glbox/device"
	"github.com/devblok/glbox/material"
	"github.com/devblok/glbox/shader"
	"github.com/gobuffalo/packd"
	log "github.com/sirupsen/logrus"
)

// ErrShaderCompile is returned when a stage fails to compile or link.
var ErrShaderCompile = errors.New("shader compilation failed")

// InfoLogSize caps the compile and link logs kept from the driver.
const InfoLogSize = 512

// Uniform names looked up in every program.
const (
	UniformProjection = "projMatrix"
	UniformModel      = "modelMatrix"
	UniformView       = "viewMatrix"
	UniformAlbedo     = "albedoMap"
)

type program struct {
	flags shader.Flags
	id    uint32

	projection int32
	model      int32
	view       int32
	albedo     int32
}

// Shader holds one linked program per permutation of its source.
type Shader struct {
	dev  device.Device
	src  packd.Finder
	path string

	supported shader.Flags
	programs  []program
	bound     *program
	errMsg    string
}

var _ material.Shader = &Shader{}

func newShader(dev device.Device, src packd.Finder, path string) *Shader {
	return &Shader{
		dev:  dev,
		src:  src,
		path: path,
	}
}

// Name implements gfx.Named
func (s *Shader) Name() string {
	return s.path
}

// Path implements material.Shader
func (s *Shader) Path() string {
	return s.path
}

// Supported implements material.Shader
func (s *Shader) Supported() shader.Flags {
	return s.supported
}

// Permutations implements material.Shader
func (s *Shader) Permutations() []shader.Flags {
	flags := make([]shader.Flags, 0, len(s.programs))
	for _, p := range s.programs {
		flags = append(flags, p.flags)
	}
	return flags
}

// ErrorMessage implements material.Shader
func (s *Shader) ErrorMessage() string {
	return s.errMsg
}

// Bind implements material.Shader
func (s *Shader) Bind(flags shader.Flags) bool {
	s.bound = nil
	if flags.SubsetOf(s.supported) {
		for i := range s.programs {
			if s.programs[i].flags == flags {
				s.bound = &s.programs[i]
				s.dev.UseProgram(s.bound.id)
				return true
			}
		}
	}
	s.dev.UseProgram(0)
	return false
}

// Reload implements material.Shader
func (s *Shader) Reload() error {
	s.Release()
	if err := s.load(); err != nil {
		return err
	}
	log.WithField("path", s.path).WithField("permutations", len(s.programs)).Info("Shader reloaded")
	return nil
}

// Release implements gfx.Releasable
func (s *Shader) Release() {
	for _, p := range s.programs {
		s.dev.DeleteProgram(p.id)
	}
	s.programs = nil
	s.bound = nil
}

// current returns the program of the last successful Bind.
func (s *Shader) current() *program {
	return s.bound
}

func (s *Shader) load() error {
	s.errMsg = ""
	data, err := s.src.Find(s.path)
	if err != nil {
		s.errMsg = fmt.Sprintf("Shader '%s' does not exist", s.path)
		return fmt.Errorf("shader %s: %w", s.path, err)
	}

	source, err := shader.Parse(bytes.NewReader(data))
	if err != nil {
		s.errMsg = err.Error()
		return fmt.Errorf("shader %s: %w", s.path, err)
	}
	s.supported = source.Supported

	for _, flags := range source.Permutations() {
		p, msg := s.compile(
			source.StageText(shader.StageVertex, flags),
			source.StageText(shader.StageFragment, flags),
		)
		if msg != "" {
			s.Release()
			s.errMsg = msg
			return fmt.Errorf("%w: %s [%s]: %s", ErrShaderCompile, s.path, flags, msg)
		}
		p.flags = flags
		s.programs = append(s.programs, p)
	}
	return nil
}

// compile builds one program. On failure the message is the vertex
// log, then the fragment log, then the link log.
func (s *Shader) compile(vertex, fragment string) (program, string) {
	dev := s.dev

	vs := dev.CreateShader(device.VertexShader)
	dev.ShaderSource(vs, vertex)
	dev.CompileShader(vs)
	fs := dev.CreateShader(device.FragmentShader)
	dev.ShaderSource(fs, fragment)
	dev.CompileShader(fs)
	defer dev.DeleteShader(vs)
	defer dev.DeleteShader(fs)

	if ok, msg := dev.ShaderStatus(vs, InfoLogSize); !ok {
		return program{}, failure("vertex", msg)
	}
	if ok, msg := dev.ShaderStatus(fs, InfoLogSize); !ok {
		return program{}, failure("fragment", msg)
	}

	id := dev.CreateProgram()
	dev.AttachShader(id, vs)
	dev.AttachShader(id, fs)
	dev.LinkProgram(id)
	if ok, msg := dev.ProgramStatus(id, InfoLogSize); !ok {
		dev.DeleteProgram(id)
		return program{}, failure("link", msg)
	}

	p := program{
		id:         id,
		projection: dev.UniformLocation(id, UniformProjection),
		model:      dev.UniformLocation(id, UniformModel),
		view:       dev.UniformLocation(id, UniformView),
		albedo:     dev.UniformLocation(id, UniformAlbedo),
	}
	if p.albedo >= 0 {
		dev.UseProgram(id)
		dev.Uniform1i(p.albedo, 0)
		dev.UseProgram(0)
	}
	return p, ""
}

func failure(stage, msg string) string {
	if msg == "" {
		msg = "no info log"
	}
	return stage + ": " + msg
}
