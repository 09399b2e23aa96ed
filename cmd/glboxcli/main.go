// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/devblok/glbox/device"
	"github.com/devblok/glbox/device/opengl"
	"github.com/devblok/glbox/shader"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

// shaderInfo is the metadata printed for a shader source.
type shaderInfo struct {
	Path         string   `json:"path"`
	Version      string   `json:"version"`
	Supported    string   `json:"supported"`
	Permutations []string `json:"permutations"`
	VertexSize   int      `json:"vertexSize"`
	FragmentSize int      `json:"fragmentSize"`
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s device | shader <path>...\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	indent := flag.Bool("indent", false, "Indent the printed JSON")
	flag.Usage = usage
	flag.Parse()

	var (
		out interface{}
		err error
	)
	switch flag.Arg(0) {
	case "device":
		out, err = deviceInfo()
	case "shader":
		if flag.NArg() < 2 {
			usage()
			os.Exit(2)
		}
		out, err = shadersInfo(flag.Args()[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		panic(err)
	}

	var bytes []byte
	if *indent {
		bytes, err = json.MarshalIndent(out, "", "  ")
	} else {
		bytes, err = json.Marshal(out)
	}
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s\n", bytes)
}

// deviceInfo creates a hidden window to get a current context.
func deviceInfo() (device.Info, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return device.Info{}, errors.New("sdl.Init(): " + err.Error())
	}
	defer sdl.Quit()

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 5)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	window, err := sdl.CreateWindow("glboxcli", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		1, 1, sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		return device.Info{}, errors.New("sdl.CreateWindow(): " + err.Error())
	}
	defer window.Destroy()

	ctx, err := window.GLCreateContext()
	if err != nil {
		return device.Info{}, errors.New("sdl.GLCreateContext(): " + err.Error())
	}
	defer sdl.GLDeleteContext(ctx)

	dev := opengl.New()
	if err := dev.Init(); err != nil {
		return device.Info{}, err
	}
	return dev.Info(), nil
}

func shadersInfo(paths []string) ([]shaderInfo, error) {
	var infos []shaderInfo
	for _, path := range paths {
		info, err := readShader(path)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func readShader(path string) (shaderInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return shaderInfo{}, err
	}
	defer f.Close()

	src, err := shader.Parse(f)
	if err != nil {
		return shaderInfo{}, fmt.Errorf("%s: %w", path, err)
	}

	info := shaderInfo{
		Path:         path,
		Version:      src.Version,
		Supported:    src.Supported.String(),
		VertexSize:   len(src.Vertex),
		FragmentSize: len(src.Fragment),
	}
	for _, p := range src.Permutations() {
		info.Permutations = append(info.Permutations, p.String())
	}
	return info, nil
}
