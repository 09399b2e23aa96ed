// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/veandco/go-sdl2/sdl"
)

type input int

const (
	inputQuit input = iota
	inputReload
	inputForward
	inputBackward
	inputZoomIn
	inputZoomOut
)

// window owns the OpenGL context the renderer draws into.
type window interface {
	Poll() []input
	Swap()
	Close()
}

type sdlWindow struct {
	window  *sdl.Window
	context sdl.GLContext
}

func newSDLWindow(title string, width, height int) (*sdlWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.New("sdl.Init(): " + err.Error())
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 5)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, errors.New("sdl.CreateWindow(): " + err.Error())
	}

	ctx, err := w.GLCreateContext()
	if err != nil {
		w.Destroy()
		sdl.Quit()
		return nil, errors.New("sdl.GLCreateContext(): " + err.Error())
	}
	sdl.GLSetSwapInterval(1)

	return &sdlWindow{
		window:  w,
		context: ctx,
	}, nil
}

func (w *sdlWindow) Poll() []input {
	var inputs []input
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Type != sdl.KEYDOWN {
				continue
			}
			switch et.Keysym.Sym {
			case sdl.K_ESCAPE:
				inputs = append(inputs, inputQuit)
			case sdl.K_r:
				inputs = append(inputs, inputReload)
			case sdl.K_w:
				inputs = append(inputs, inputForward)
			case sdl.K_s:
				inputs = append(inputs, inputBackward)
			}
		case *sdl.MouseWheelEvent:
			if et.Y > 0 {
				inputs = append(inputs, inputZoomIn)
			} else if et.Y < 0 {
				inputs = append(inputs, inputZoomOut)
			}
		case *sdl.QuitEvent:
			inputs = append(inputs, inputQuit)
		}
	}
	return inputs
}

func (w *sdlWindow) Swap() {
	w.window.GLSwap()
}

func (w *sdlWindow) Close() {
	sdl.GLDeleteContext(w.context)
	w.window.Destroy()
	sdl.Quit()
}

type glfwWindow struct {
	window *glfw.Window
	inputs []input
}

func newGLFWWindow(title string, width, height int) (*glfwWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.New("glfw.Init(): " + err.Error())
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.New("glfw.CreateWindow(): " + err.Error())
	}
	w.MakeContextCurrent()
	glfw.SwapInterval(1)

	gw := &glfwWindow{window: w}
	w.SetKeyCallback(gw.onKey)
	w.SetScrollCallback(gw.onScroll)
	return gw, nil
}

func (w *glfwWindow) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.inputs = append(w.inputs, inputQuit)
	case glfw.KeyR:
		w.inputs = append(w.inputs, inputReload)
	case glfw.KeyW:
		w.inputs = append(w.inputs, inputForward)
	case glfw.KeyS:
		w.inputs = append(w.inputs, inputBackward)
	}
}

func (w *glfwWindow) onScroll(_ *glfw.Window, _, yoff float64) {
	if yoff > 0 {
		w.inputs = append(w.inputs, inputZoomIn)
	} else if yoff < 0 {
		w.inputs = append(w.inputs, inputZoomOut)
	}
}

func (w *glfwWindow) Poll() []input {
	glfw.PollEvents()
	if w.window.ShouldClose() {
		w.inputs = append(w.inputs, inputQuit)
	}
	inputs := w.inputs
	w.inputs = nil
	return inputs
}

func (w *glfwWindow) Swap() {
	w.window.SwapBuffers()
}

func (w *glfwWindow) Close() {
	w.window.Destroy()
	glfw.Terminate()
}
