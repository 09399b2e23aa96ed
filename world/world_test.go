// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package world_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/devblok/glbox/assets"
	"github.com/devblok/glbox/core"
	"github.com/devblok/glbox/core/renderer"
	"github.com/devblok/glbox/device/devicetest"
	"github.com/devblok/glbox/geometry"
	"github.com/devblok/glbox/material"
	"github.com/devblok/glbox/world"
	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/packd"
	glm "github.com/go-gl/mathgl/mgl32"
)

const quadOBJ = `v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
f 1 2 3 4
`

func encodePNG(t *testing.T, w, h int, opaque bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(128)
			if opaque {
				a = 255
			}
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 10, A: a})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newBox(t *testing.T) *packd.MemoryBox {
	t.Helper()
	src, err := assets.Builtin().Find(assets.DefaultShaderPath)
	if err != nil {
		t.Fatal(err)
	}
	box := packd.NewMemoryBox()
	box.AddBytes(assets.DefaultShaderPath, src)
	box.AddString("models/quad.obj", quadOBJ)
	return box
}

func newWorld(t *testing.T, box *packd.MemoryBox, capacity int) (*world.RenderWorld, *devicetest.Device) {
	t.Helper()
	cfg := core.DefaultConfiguration().Renderer
	cfg.MaxEntities = capacity

	registry := core.NewRegistry()
	registry.Register(core.BackendOpenGL45, renderer.Factory(box, cfg))

	dev := devicetest.New()
	params := core.DefaultInitParams()
	params.Context = dev

	w := world.New(registry, box, cfg)
	if err := w.Init(params); err != nil {
		t.Fatal(err)
	}
	return w, dev
}

func quadModel(t *testing.T, w *world.RenderWorld) core.ModelHandle {
	t.Helper()
	h, err := w.CreateModel(core.ModelParams{Name: "models/quad.obj"})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestInitUnknownBackend(t *testing.T) {
	w := world.New(core.NewRegistry(), packd.NewMemoryBox(), core.DefaultConfiguration().Renderer)
	err := w.Init(core.DefaultInitParams())
	if !errors.Is(err, core.ErrBackendNotFound) {
		t.Fatalf("incorrect error: %v", err)
	}
	if _, err := w.CreateModel(core.ModelParams{Name: "x.obj"}); !errors.Is(err, world.ErrNotInitialised) {
		t.Fatalf("incorrect error: %v", err)
	}
	w.RenderFrame(core.DefaultView(1, 1))
}

func TestInit(t *testing.T) {
	c := qt.New(t)
	w, dev := newWorld(t, newBox(t), 8)
	c.Assert(w.APIName(), qt.Equals, "OpenGL 4.5")
	c.Assert(w.IsHardware(), qt.Equals, true)
	c.Assert(w.Capacity(), qt.Equals, 8)
	c.Assert(w.Shaders(), qt.HasLen, 1)
	c.Assert(dev.Inits, qt.Equals, 1)
}

func TestDefaultCapacity(t *testing.T) {
	cfg := core.DefaultConfiguration().Renderer
	cfg.MaxEntities = 0
	w := world.New(core.NewRegistry(), packd.NewMemoryBox(), cfg)
	if w.Capacity() != world.DefaultMaxEntities {
		t.Fatalf("incorrect capacity: %d", w.Capacity())
	}
}

func TestQuadFrame(t *testing.T) {
	c := qt.New(t)
	w, dev := newWorld(t, newBox(t), 8)
	model := quadModel(t, w)

	params := core.NewEntityParams(model)
	params.Position = glm.Vec3{0, 0, -5}
	h := w.CreateEntity(params)
	c.Assert(h, qt.Not(qt.Equals), core.InvalidEntity)

	dev.ResetDraws()
	w.RenderFrame(core.DefaultView(1280, 720))
	c.Assert(dev.Draws, qt.HasLen, 1)
	c.Assert(w.Stats(), qt.Equals, core.FrameStats{DrawCalls: 1, Triangles: 2})

	draw := dev.Draws[0]
	c.Assert(draw.Count, qt.Equals, int32(6))
	c.Assert(draw.Instances, qt.Equals, int32(1))
	modelMatrix, ok := dev.Matrix(draw.Program, "modelMatrix")
	c.Assert(ok, qt.Equals, true)
	c.Assert(modelMatrix, qt.Equals, w.CalculateModelMatrix(params))

	// placeholder checkerboard bound as albedo
	c.Assert(draw.Texture, qt.Not(qt.Equals), uint32(0))
	tex := dev.Textures[draw.Texture]
	c.Assert(tex.Width, qt.Equals, int32(64))
	c.Assert(tex.Height, qt.Equals, int32(64))
}

func TestModelDeduplicated(t *testing.T) {
	w, _ := newWorld(t, newBox(t), 8)
	a := quadModel(t, w)
	b := quadModel(t, w)
	if a != b {
		t.Fatalf("incorrect handle: %d != %d", a, b)
	}
	if len(w.Materials()) != 1 || len(w.Textures()) != 1 {
		t.Fatalf("incorrect registry size: %d materials, %d textures", len(w.Materials()), len(w.Textures()))
	}
}

func TestModelFromMesh(t *testing.T) {
	c := qt.New(t)
	w, _ := newWorld(t, newBox(t), 8)
	h, err := w.CreateModel(core.ModelParams{Name: "cube", Type: core.ModelFromMesh, Mesh: geometry.Cube()})
	c.Assert(err, qt.IsNil)

	m, ok := w.Model(h)
	c.Assert(ok, qt.Equals, true)
	for _, s := range m.Mesh().Surfaces {
		c.Assert(s.Material, qt.Not(qt.IsNil))
		c.Assert(s.Material.Name(), qt.Equals, world.PlaceholderTexture)
	}

	_, err = w.CreateModel(core.ModelParams{Name: "nothing", Type: core.ModelFromMesh})
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestModelLoadFailure(t *testing.T) {
	w, _ := newWorld(t, newBox(t), 8)
	h, err := w.CreateModel(core.ModelParams{Name: "models/missing.obj"})
	if err == nil || h != core.InvalidModel {
		t.Fatalf("incorrect result: %d, %v", h, err)
	}
	if _, ok := w.Model(h); ok {
		t.Fatal("failed model must not be registered")
	}
	if w.UpdateModel(h, core.ModelParams{}) {
		t.Fatal("UpdateModel must not succeed")
	}
}

func TestPlaceholderFromFile(t *testing.T) {
	box := newBox(t)
	box.AddBytes(world.PlaceholderTexture, encodePNG(t, 4, 2, true))
	w, _ := newWorld(t, box, 8)
	quadModel(t, w)

	tex := w.Textures()[0]
	width, height := tex.Size()
	if width != 4 || height != 2 || tex.FileName() != world.PlaceholderTexture {
		t.Fatalf("incorrect placeholder: %dx%d from %s", width, height, tex.FileName())
	}
}

func TestEntityLifecycle(t *testing.T) {
	c := qt.New(t)
	w, _ := newWorld(t, newBox(t), 8)
	model := quadModel(t, w)

	h := w.CreateEntity(core.NewEntityParams(model))
	c.Assert(h, qt.Equals, core.EntityHandle(0))

	moved := core.NewEntityParams(model)
	moved.Position = glm.Vec3{1, 2, 3}
	c.Assert(w.UpdateEntity(h, moved), qt.Equals, true)
	params, ok := w.Entity(h)
	c.Assert(ok, qt.Equals, true)
	c.Assert(params.Position, qt.Equals, glm.Vec3{1, 2, 3})

	w.DestroyEntity(h)
	c.Assert(w.UpdateEntity(h, moved), qt.Equals, false)
	_, ok = w.Entity(h)
	c.Assert(ok, qt.Equals, false)

	c.Assert(w.UpdateEntity(core.InvalidEntity, moved), qt.Equals, false)
	c.Assert(w.UpdateEntity(100, moved), qt.Equals, false)
	w.DestroyEntity(100)
	w.DestroyEntity(core.InvalidEntity)

	// freed slots are reused
	c.Assert(w.CreateEntity(moved), qt.Equals, h)
}

func TestCapacity(t *testing.T) {
	w, _ := newWorld(t, newBox(t), 2)
	model := quadModel(t, w)
	w.CreateEntity(core.NewEntityParams(model))
	w.CreateEntity(core.NewEntityParams(model))
	if h := w.CreateEntity(core.NewEntityParams(model)); h != core.InvalidEntity {
		t.Fatalf("incorrect handle: %d", h)
	}
	if h := w.CreateImmediateEntity(core.NewEntityParams(model)); h != core.InvalidEntity {
		t.Fatalf("incorrect handle: %d", h)
	}
}

func TestImmediateEntity(t *testing.T) {
	c := qt.New(t)
	w, dev := newWorld(t, newBox(t), 8)
	model := quadModel(t, w)

	h := w.CreateImmediateEntity(core.NewEntityParams(model))
	c.Assert(h, qt.Not(qt.Equals), core.InvalidEntity)
	c.Assert(w.UpdateEntity(h, core.NewEntityParams(model)), qt.Equals, false)
	c.Assert(w.ActiveEntities(), qt.Equals, 1)

	dev.ResetDraws()
	w.RenderFrame(core.DefaultView(640, 480))
	c.Assert(dev.Draws, qt.HasLen, 1)
	c.Assert(w.ActiveEntities(), qt.Equals, 0)

	dev.ResetDraws()
	w.RenderFrame(core.DefaultView(640, 480))
	c.Assert(dev.Draws, qt.HasLen, 0)
}

func TestImmediateEntityInvalidModel(t *testing.T) {
	w, _ := newWorld(t, newBox(t), 8)
	w.CreateImmediateEntity(core.NewEntityParams(core.InvalidModel))
	w.RenderFrame(core.DefaultView(640, 480))
	if n := w.ActiveEntities(); n != 0 {
		t.Fatalf("incorrect active entities: %d", n)
	}
}

func TestBatchedEntity(t *testing.T) {
	c := qt.New(t)
	w, dev := newWorld(t, newBox(t), 8)
	model := quadModel(t, w)

	params := core.NewEntityParams(model)
	for i := 0; i < 50; i++ {
		params.Batch = append(params.Batch, core.BatchParams{
			Transform: glm.Translate3D(float32(i), 0, 0),
		})
	}
	h := w.CreateEntity(params)

	dev.ResetDraws()
	w.RenderFrame(core.DefaultView(1280, 720))
	c.Assert(dev.Draws, qt.HasLen, 1)
	c.Assert(dev.Draws[0].Instances, qt.Equals, int32(50))
	c.Assert(w.Stats(), qt.Equals, core.FrameStats{DrawCalls: 1, Triangles: 100})

	// an unchanged batch is not uploaded again
	buffers := len(dev.Buffers)
	w.RenderFrame(core.DefaultView(1280, 720))
	c.Assert(dev.Buffers, qt.HasLen, buffers)

	params.Batch = params.Batch[:20]
	c.Assert(w.UpdateEntity(h, params), qt.Equals, true)
	dev.ResetDraws()
	w.RenderFrame(core.DefaultView(1280, 720))
	c.Assert(dev.Draws[0].Instances, qt.Equals, int32(20))
	c.Assert(dev.Buffers, qt.HasLen, buffers)

	w.DestroyEntity(h)
	deleted := 0
	for _, b := range dev.Buffers {
		if b.Deleted {
			deleted++
		}
	}
	c.Assert(deleted, qt.Equals, 1)
}

func TestBatchClearedReleasesBuffer(t *testing.T) {
	c := qt.New(t)
	w, dev := newWorld(t, newBox(t), 8)
	model := quadModel(t, w)

	params := core.NewEntityParams(model)
	for i := 0; i < 30; i++ {
		params.Batch = append(params.Batch, core.BatchParams{
			Transform: glm.Translate3D(0, float32(i), 0),
		})
	}
	h := w.CreateEntity(params)
	w.RenderFrame(core.DefaultView(1280, 720))

	params.Batch = nil
	c.Assert(w.UpdateEntity(h, params), qt.Equals, true)
	dev.ResetDraws()
	w.RenderFrame(core.DefaultView(1280, 720))
	c.Assert(dev.Draws, qt.HasLen, 1)
	c.Assert(dev.Draws[0].Instances, qt.Equals, int32(1))

	deleted := 0
	for _, b := range dev.Buffers {
		if b.Deleted {
			deleted++
		}
	}
	c.Assert(deleted, qt.Equals, 1)

	// destroying the entity does not release the buffer twice
	w.DestroyEntity(h)
	deleted = 0
	for _, b := range dev.Buffers {
		if b.Deleted {
			deleted++
		}
	}
	c.Assert(deleted, qt.Equals, 1)
}

func TestCreateEntityCopiesBatch(t *testing.T) {
	w, _ := newWorld(t, newBox(t), 8)
	params := core.NewEntityParams(quadModel(t, w))
	params.Batch = []core.BatchParams{{Transform: glm.Ident4()}}
	h := w.CreateEntity(params)
	params.Batch[0].Transform = glm.Translate3D(1, 1, 1)

	stored, _ := w.Entity(h)
	if stored.Batch[0].Transform != glm.Ident4() {
		t.Fatal("entity must not alias the caller's batch")
	}
}

func TestLoadTexture(t *testing.T) {
	c := qt.New(t)
	box := newBox(t)
	box.AddBytes("textures/glass.png", encodePNG(t, 8, 4, false))
	w, dev := newWorld(t, box, 8)

	tex, err := w.LoadTexture("textures/glass.png", material.TextureAlbedo, material.DefaultTextureFlags|material.TextureFloatSized)
	c.Assert(err, qt.IsNil)
	c.Assert(tex.Loaded(), qt.Equals, true)
	c.Assert(tex.Flags().Channels(), qt.Equals, 4)
	c.Assert(tex.Flags()&material.TextureByteSized, qt.Not(qt.Equals), material.TextureFlags(0))

	again, err := w.LoadTexture("textures/glass.png", material.TextureAlbedo, material.DefaultTextureFlags)
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.Equals, tex)
	c.Assert(w.Textures(), qt.HasLen, 1)
	c.Assert(dev.LiveTextures(), qt.Equals, 1)
}

func TestLoadTextureMissing(t *testing.T) {
	w, dev := newWorld(t, newBox(t), 8)
	for i := 0; i < 2; i++ {
		if _, err := w.LoadTexture("textures/missing.png", material.TextureAlbedo, material.DefaultTextureFlags); err == nil {
			t.Fatal("missing texture must fail")
		}
	}
	if len(w.Textures()) != 0 || dev.LiveTextures() != 0 {
		t.Fatalf("incorrect textures after failure: %d registered, %d live", len(w.Textures()), dev.LiveTextures())
	}
	if len(dev.Textures) != 0 || w.Backend().(*renderer.GL45).TextureCount() != 0 {
		t.Fatalf("incorrect allocations after failure: %d created, %d tracked", len(dev.Textures), w.Backend().(*renderer.GL45).TextureCount())
	}
}

func TestLoadTextureUndecodable(t *testing.T) {
	box := newBox(t)
	box.AddString("textures/broken.png", "not an image")
	w, dev := newWorld(t, box, 8)
	if _, err := w.LoadTexture("textures/broken.png", material.TextureAlbedo, material.DefaultTextureFlags); err == nil {
		t.Fatal("undecodable texture must fail")
	}
	if len(dev.Textures) != 0 {
		t.Fatalf("incorrect textures created: %d", len(dev.Textures))
	}
}

func TestCreateAndUpdateTexture(t *testing.T) {
	c := qt.New(t)
	w, dev := newWorld(t, newBox(t), 8)

	flags := material.TextureDynamic | material.TextureNearest | material.TextureNoMip |
		material.TextureGreyscale | material.TextureByteSized
	tex, err := w.CreateTexture("lightmap", 2, 2, material.TextureLightmap, flags, []byte{1, 2, 3, 4})
	c.Assert(err, qt.IsNil)
	c.Assert(tex.Name(), qt.Equals, "lightmap")

	created := len(dev.Textures)
	_, err = w.CreateTexture("short", 2, 2, material.TextureAlbedo, flags, []byte{1})
	c.Assert(err, qt.Not(qt.IsNil))
	_, err = w.CreateTexture("empty", 0, 2, material.TextureAlbedo, flags, nil)
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(dev.Textures, qt.HasLen, created)
	c.Assert(w.Backend().(*renderer.GL45).TextureCount(), qt.Equals, 1)
	c.Assert(w.Textures(), qt.HasLen, 1)

	c.Assert(w.UpdateTexture(tex, []byte{5, 6, 7, 8}), qt.IsNil)
	var found bool
	for _, rec := range dev.Textures {
		if !rec.Deleted && bytes.Equal(rec.Pixels, []byte{5, 6, 7, 8}) {
			found = true
		}
	}
	c.Assert(found, qt.Equals, true)
	c.Assert(w.UpdateTexture(nil, nil), qt.Not(qt.IsNil))
}

func TestLoadMaterial(t *testing.T) {
	c := qt.New(t)
	box := newBox(t)
	box.AddBytes("textures/brick.png", encodePNG(t, 2, 2, true))
	w, _ := newWorld(t, box, 8)

	m, err := w.LoadMaterial("textures/brick.png")
	c.Assert(err, qt.IsNil)
	c.Assert(m.Name(), qt.Equals, "textures/brick.png")
	c.Assert(m.Shader(), qt.Equals, w.Shaders()[0])
	c.Assert(m.Texture(material.TextureAlbedo, 0), qt.Not(qt.IsNil))

	again, err := w.LoadMaterial("textures/brick.png")
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.Equals, m)

	_, err = w.LoadMaterial("materials/brick.mtr")
	c.Assert(errors.Is(err, assets.ErrNotFound), qt.Equals, true)
	c.Assert(w.CreateMaterialSimple(nil), qt.IsNil)
}

func TestReloadMaterials(t *testing.T) {
	c := qt.New(t)
	box := newBox(t)
	box.AddBytes("textures/brick.png", encodePNG(t, 2, 2, true))
	w, dev := newWorld(t, box, 8)

	_, err := w.LoadMaterial("textures/brick.png")
	c.Assert(err, qt.IsNil)
	tex := w.Textures()[0]

	box.AddBytes("textures/brick.png", encodePNG(t, 4, 4, true))
	w.ReloadMaterials()
	width, _ := tex.Size()
	c.Assert(width, qt.Equals, 4)

	// changing the channel layout is refused
	box.AddBytes("textures/brick.png", encodePNG(t, 8, 8, false))
	w.ReloadMaterials()
	width, _ = tex.Size()
	c.Assert(width, qt.Equals, 4)
	c.Assert(dev.LiveTextures(), qt.Equals, 1)
}

func TestShaders(t *testing.T) {
	c := qt.New(t)
	box := newBox(t)
	src, err := box.Find(assets.DefaultShaderPath)
	c.Assert(err, qt.IsNil)
	box.AddBytes("shaders/other.glsl", src)
	w, _ := newWorld(t, box, 8)

	s, err := w.LoadShader("shaders/other.glsl")
	c.Assert(err, qt.IsNil)
	again, err := w.LoadShader("shaders/other.glsl")
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.Equals, s)
	c.Assert(w.Shaders(), qt.HasLen, 2)

	_, err = w.LoadShader("shaders/missing.glsl")
	c.Assert(err, qt.Not(qt.IsNil))

	box.AddString("shaders/other.glsl", "#version 450 core\n#section vertex\n#error broken\n#endsection\n#section fragment\nvoid main() {}\n#endsection\n")
	w.ReloadShaders()
	c.Assert(s.ErrorMessage(), qt.Not(qt.Equals), "")
	c.Assert(w.Shaders()[0].ErrorMessage(), qt.Equals, "")
}

func TestShutdown(t *testing.T) {
	c := qt.New(t)
	w, dev := newWorld(t, newBox(t), 8)
	model := quadModel(t, w)
	w.CreateEntity(core.NewEntityParams(model))

	w.Shutdown()
	c.Assert(w.APIName(), qt.Equals, "")
	c.Assert(w.ActiveEntities(), qt.Equals, 0)
	c.Assert(w.Textures(), qt.HasLen, 0)
	c.Assert(dev.LivePrograms(), qt.Equals, 0)
	c.Assert(dev.LiveTextures(), qt.Equals, 0)
	w.Shutdown()
}
