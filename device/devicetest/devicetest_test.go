// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package devicetest_test

import (
	"testing"

	"github.com/devblok/glbox/device"
	"github.com/devblok/glbox/device/devicetest"
)

func TestVertexArrayRecordsAttribs(t *testing.T) {
	d := devicetest.New()
	va := d.GenVertexArray()
	vb := d.GenBuffer()
	ib := d.GenBuffer()

	d.BindVertexArray(va)
	d.BindBuffer(device.ArrayBuffer, vb)
	d.BufferFloats(device.ArrayBuffer, []float32{1, 2, 3}, device.StaticDraw)
	d.BindBuffer(device.ElementArrayBuffer, ib)
	d.BufferIndices(device.ElementArrayBuffer, []uint32{0, 1, 2}, device.StaticDraw)
	d.EnableVertexAttribArray(0)
	d.VertexAttribFloats(0, 3, 12, 0)

	rec := d.VertexArrays[va]
	if rec.ElementBuffer != ib {
		t.Fatalf("incorrect element buffer: %d", rec.ElementBuffer)
	}
	if a := rec.Attribs[0]; a.Buffer != vb || !a.Enabled || a.Size != 3 {
		t.Fatalf("incorrect attrib: %+v", a)
	}
	if d.GetError() != device.NoError {
		t.Fatal("no error expected")
	}
}

func TestSubDataOutOfRange(t *testing.T) {
	d := devicetest.New()
	d.BindBuffer(device.ArrayBuffer, d.GenBuffer())
	d.BufferFloats(device.ArrayBuffer, make([]float32, 4), device.DynamicDraw)
	d.BufferSubFloats(device.ArrayBuffer, 8, make([]float32, 4))
	if code := d.GetError(); code != device.InvalidValue {
		t.Fatalf("incorrect error: %s", device.ErrorString(code))
	}
}

func TestCompileAndLinkHooks(t *testing.T) {
	d := devicetest.New()

	vs := d.CreateShader(device.VertexShader)
	d.ShaderSource(vs, "void main() {}")
	d.CompileShader(vs)
	if ok, _ := d.ShaderStatus(vs, 512); !ok {
		t.Fatal("shader must compile")
	}

	fs := d.CreateShader(device.FragmentShader)
	d.ShaderSource(fs, "#error broken")
	d.CompileShader(fs)
	ok, msg := d.ShaderStatus(fs, 8)
	if ok || len(msg) != 8 {
		t.Fatalf("incorrect status: %v %q", ok, msg)
	}

	prog := d.CreateProgram()
	d.AttachShader(prog, vs)
	d.AttachShader(prog, fs)
	d.LinkProgram(prog)
	if ok, _ := d.ProgramStatus(prog, 512); ok {
		t.Fatal("program with a broken shader must not link")
	}
	if loc := d.UniformLocation(prog, "modelMatrix"); loc != -1 {
		t.Fatalf("incorrect location: %d", loc)
	}
}

func TestDrawRecordsState(t *testing.T) {
	d := devicetest.New()
	prog := d.CreateProgram()
	d.LinkProgram(prog)
	d.UseProgram(prog)
	tex := d.CreateTexture(device.Texture2D)
	d.ActiveTexture(device.Texture0)
	d.BindTexture(device.Texture2D, tex)

	d.DrawElementsInstanced(device.Triangles, 6, 4)
	if len(d.Draws) != 1 {
		t.Fatalf("incorrect number of draws: %d", len(d.Draws))
	}
	if dc := d.Draws[0]; dc.Program != prog || dc.Texture != tex || dc.Instances != 4 {
		t.Fatalf("incorrect draw: %+v", dc)
	}
}
