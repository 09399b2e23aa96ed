// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/devblok/glbox/assets"
	"github.com/devblok/glbox/core"
	"github.com/devblok/glbox/core/renderer"
	"github.com/devblok/glbox/device/opengl"
	"github.com/devblok/glbox/geometry"
	"github.com/devblok/glbox/world"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

var (
	configFile = flag.String("config", "", "YAML configuration file")
	envFile    = flag.String("env", "", "Environment file loaded before GLBOX_* variables are read")
	windowing  = flag.String("window", "sdl2", "Windowing system: sdl2 or glfw")
	watch      = flag.Bool("watch", false, "Reload shaders and textures when files in the asset directory change")
	modelName  = flag.String("model", "", "Model file to display, a cube when empty")
	cpuProfile = flag.String("cpuprof", "", "Write a CPU profile to the file")
	memProfile = flag.String("memprof", "", "Write a heap profile to the file on exit")
	traceFile  = flag.String("trace", "", "Write an execution trace to the file")
)

const (
	rotationSpeed = 0.8
	cameraSpeed   = 0.25
	fovStep       = 5
	minFOV        = 20
	maxFOV        = 120
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func loadConfiguration() (core.Configuration, error) {
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return core.Configuration{}, errors.New("godotenv.Load(): " + err.Error())
		}
		envy.Reload()
	}

	cfg := core.DefaultConfiguration()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		if cfg, err = core.ReadConfiguration(f); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnvironment()
	cfg.ApplyLogLevel()
	return cfg, nil
}

func openWindow(cfg core.RendererConfiguration, params *core.InitParams) (window, error) {
	switch *windowing {
	case core.WindowingSDL2.String():
		params.Windowing = core.WindowingSDL2
		return newSDLWindow("glbox", cfg.ScreenWidth, cfg.ScreenHeight)
	case core.WindowingGLFW.String():
		params.Windowing = core.WindowingGLFW
		return newGLFWWindow("glbox", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	return nil, errors.New("unknown windowing system " + *windowing)
}

func createModel(w *world.RenderWorld) (core.ModelHandle, error) {
	if *modelName == "" {
		return w.CreateModel(core.ModelParams{
			Name: "cube",
			Type: core.ModelFromMesh,
			Mesh: geometry.Cube(),
		})
	}
	return w.CreateModel(core.ModelParams{Name: *modelName})
}

func run() error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	params := core.DefaultInitParams()
	params.Width = cfg.Renderer.ScreenWidth
	params.Height = cfg.Renderer.ScreenHeight
	win, err := openWindow(cfg.Renderer, &params)
	if err != nil {
		return err
	}
	defer win.Close()
	params.Context = opengl.New()

	src, closeAssets := assets.Open(cfg.Assets.Directory, cfg.Assets.Archives)
	defer closeAssets()

	registry := core.NewRegistry()
	registry.Register(core.BackendOpenGL45, renderer.Factory(src, cfg.Renderer))

	rw := world.New(registry, src, cfg.Renderer)
	if err := rw.Init(params); err != nil {
		return err
	}
	defer rw.Shutdown()

	model, err := createModel(rw)
	if err != nil {
		return err
	}
	entityParams := core.NewEntityParams(model)
	entity := rw.CreateEntity(entityParams)

	var reloads <-chan reloadKind
	if *watch {
		if cfg.Assets.Directory == "" {
			log.Warn("No asset directory to watch")
		} else {
			ch, stop, err := watchAssets(cfg.Assets.Directory)
			if err != nil {
				return err
			}
			defer stop()
			reloads = ch
		}
	}

	view := core.DefaultView(params.Width, params.Height)
	view.CameraPosition = glm.Vec3{0, 0, -4}

	timer := core.NewTime(cfg.Time)
	defer timer.Stop()

	var (
		angle  float32
		frames int
	)
EventLoop:
	for {
		select {
		case kind := <-reloads:
			switch kind {
			case reloadShaders:
				rw.ReloadShaders()
			case reloadMaterials:
				rw.ReloadMaterials()
			}
		case <-timer.EventTicker().C:
			for _, in := range win.Poll() {
				switch in {
				case inputQuit:
					log.Info("Event loop exited")
					break EventLoop
				case inputReload:
					rw.ReloadShaders()
				case inputForward:
					view.CameraPosition[2] += cameraSpeed
				case inputBackward:
					view.CameraPosition[2] -= cameraSpeed
				case inputZoomIn:
					view.FOV = glm.Clamp(view.FOV-fovStep, minFOV, maxFOV)
				case inputZoomOut:
					view.FOV = glm.Clamp(view.FOV+fovStep, minFOV, maxFOV)
				}
			}
		case <-timer.FpsTicker().C:
			angle += timer.Delta() * rotationSpeed
			entityParams.Orientation = glm.HomogRotate3DY(angle).Mul4(glm.HomogRotate3DX(angle / 2))
			rw.UpdateEntity(entity, entityParams)

			rw.RenderFrame(view)
			win.Swap()

			frames++
			if timer.Fps() > 0 && frames%(timer.Fps()*5) == 0 {
				stats := rw.Stats()
				log.WithFields(log.Fields{
					"drawCalls": stats.DrawCalls,
					"triangles": stats.Triangles,
				}).Info("Frame stats")
			}
		}
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}
