// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/devblok/glbox/core"
	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"
	glm "github.com/go-gl/mathgl/mgl32"
)

func TestInvalidHandles(t *testing.T) {
	if uint32(core.InvalidEntity) != 0xFFFFFFFF || uint32(core.InvalidModel) != 0xFFFFFFFF {
		t.Fatal("incorrect invalid handle value")
	}
}

func TestBackendValues(t *testing.T) {
	c := qt.New(t)
	c.Assert(int(core.BackendOpenGL45), qt.Equals, 2)
	c.Assert(int(core.BackendVulkan), qt.Equals, 100)
	c.Assert(int(core.BackendDirect3D11), qt.Equals, 201)
	c.Assert(int(core.BackendSoftware), qt.Equals, 400)
	c.Assert(core.BackendOpenGL45.String(), qt.Equals, "OpenGL 4.5")
	c.Assert(core.WindowingGLFW.String(), qt.Equals, "glfw")
}

func TestDefaultInitParams(t *testing.T) {
	p := core.DefaultInitParams()
	if p.Width != 1280 || p.Height != 720 || p.Backend != core.BackendOpenGL45 || p.Windowing != core.WindowingSDL2 {
		t.Fatalf("incorrect defaults: %+v", p)
	}
}

type nopRenderer struct {
	core.Renderer
	name string
}

func (r *nopRenderer) APIName() string { return r.name }

func factory(name string) core.Factory {
	return func(core.InitParams) (core.Renderer, error) {
		return &nopRenderer{name: name}, nil
	}
}

func TestRegistryOrder(t *testing.T) {
	c := qt.New(t)
	reg := core.NewRegistry()
	reg.Register(core.BackendOpenGL45, factory("first"))
	reg.Register(core.BackendVulkan, factory("vulkan"))
	reg.Register(core.BackendOpenGL45, factory("second"))

	c.Assert(reg.Backends(), qt.DeepEquals, []core.Backend{core.BackendOpenGL45, core.BackendVulkan})

	r, err := reg.Create(core.DefaultInitParams())
	c.Assert(err, qt.IsNil)
	c.Assert(r.APIName(), qt.Equals, "second")
}

func TestRegistryNotFound(t *testing.T) {
	reg := core.NewRegistry()
	reg.Register(core.BackendOpenGL45, factory("gl"))

	params := core.DefaultInitParams()
	params.Backend = core.BackendDirect3D9
	if _, err := reg.Create(params); !errors.Is(err, core.ErrBackendNotFound) {
		t.Fatalf("incorrect error: %v", err)
	}
	if _, ok := reg.Lookup(core.BackendSoftware); ok {
		t.Fatal("software backend must not be found")
	}
}

func TestCalculateModelMatrix(t *testing.T) {
	params := core.NewEntityParams(0)
	params.Position = glm.Vec3{1, 2, 3}
	params.Orientation = glm.HomogRotate3DY(glm.DegToRad(90))

	m := core.CalculateModelMatrix(params)

	// the origin lands on the position, the position itself is not rotated
	origin := m.Mul4x1(glm.Vec4{0, 0, 0, 1})
	if !origin.Vec3().ApproxEqual(glm.Vec3{1, 2, 3}) {
		t.Fatalf("incorrect translation: %v", origin)
	}
	x := m.Mul4x1(glm.Vec4{1, 0, 0, 1})
	if !x.Vec3().ApproxEqualThreshold(glm.Vec3{1, 2, 2}, 1e-5) {
		t.Fatalf("incorrect rotation: %v", x)
	}
}

func TestReadConfiguration(t *testing.T) {
	c := qt.New(t)
	cfg, err := core.ReadConfiguration(strings.NewReader(`
renderer:
  batchThreshold: 32
  clearColor: [1, 0, 0, 1]
assets:
  directory: /srv/assets
  archives: [base.kar, extra.kar]
logLevel: debug
`))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Renderer.BatchThreshold, qt.Equals, 32)
	c.Assert(cfg.Renderer.ClearColor, qt.Equals, [4]float32{1, 0, 0, 1})
	c.Assert(cfg.Renderer.MaxEntities, qt.Equals, 16384)
	c.Assert(cfg.Renderer.DefaultShader, qt.Equals, "shaders/default.glsl")
	c.Assert(cfg.Assets.Archives, qt.DeepEquals, []string{"base.kar", "extra.kar"})
	c.Assert(cfg.LogLevel, qt.Equals, "debug")
}

func TestReadConfigurationEmpty(t *testing.T) {
	cfg, err := core.ReadConfiguration(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Renderer.BatchThreshold != 10 {
		t.Fatalf("incorrect batch threshold: %d", cfg.Renderer.BatchThreshold)
	}
}

func TestReadConfigurationInvalid(t *testing.T) {
	c := qt.New(t)
	_, err := core.ReadConfiguration(strings.NewReader("renderer: [1, 2"))
	c.Assert(err, qt.ErrorMatches, "yaml.Decode\\(\\): .*")
}

func TestApplyEnvironment(t *testing.T) {
	c := qt.New(t)
	envy.Temp(func() {
		envy.Set(core.EnvAssetDir, "/tmp/assets")
		envy.Set(core.EnvBatchThreshold, "4")
		envy.Set(core.EnvDefaultShader, "shaders/flat.glsl")

		cfg := core.DefaultConfiguration()
		cfg.ApplyEnvironment()
		c.Assert(cfg.Assets.Directory, qt.Equals, "/tmp/assets")
		c.Assert(cfg.Renderer.BatchThreshold, qt.Equals, 4)
		c.Assert(cfg.Renderer.DefaultShader, qt.Equals, "shaders/flat.glsl")

		envy.Set(core.EnvBatchThreshold, "many")
		cfg = core.DefaultConfiguration()
		cfg.ApplyEnvironment()
		c.Assert(cfg.Renderer.BatchThreshold, qt.Equals, 10)
	})
}

func TestTimeDelta(t *testing.T) {
	tm := core.NewTime(core.TimeConfiguration{FramesPerSecond: 0, EventPollDelay: 0})
	defer tm.Stop()
	if d := tm.Delta(); d < 0 {
		t.Fatalf("incorrect delta: %f", d)
	}
	if tm.Fps() != 0 {
		t.Fatal("incorrect fps")
	}
}
