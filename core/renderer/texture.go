// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"fmt"

	"github.com/devblok/glbox/device"
	"github.com/devblok/glbox/material"
	log "github.com/sirupsen/logrus"
)

// UploadFormat returns the internal format, pixel format and data
// type the flags select.
func UploadFormat(flags material.TextureFlags) (internal int32, format, dataType uint32) {
	float := flags&material.TextureFloatSized != 0
	dataType = device.UnsignedByte
	if float {
		dataType = device.Float
	}

	switch flags.Channels() {
	case 1:
		format, internal = device.Red, device.R8
		if float {
			internal = device.R32F
		}
	case 3:
		format, internal = device.RGB, device.RGB8
		if float {
			internal = device.RGB32F
		}
	default:
		format, internal = device.RGBA, device.RGBA8
		if float {
			internal = device.RGBA32F
		}
	}
	return
}

// WrapMode returns the wrap parameter, mirrored repeat wins over clamping.
func WrapMode(flags material.TextureFlags) int32 {
	switch {
	case flags&material.TextureRepeatMirror != 0:
		return device.MirroredRepeat
	case flags&material.TextureClampToEdge != 0:
		return device.ClampToEdge
	}
	return device.Repeat
}

// Filters returns the minification and magnification filters.
func Filters(flags material.TextureFlags) (min, mag int32) {
	mag, min = device.Linear, device.LinearMipmapLinear
	if flags&material.TextureNearest != 0 {
		mag, min = device.Nearest, device.NearestMipmapLinear
	}
	if flags&material.TextureNoMip != 0 {
		min = mag
	}
	return min, mag
}

// Texture is a 2D texture object.
type Texture struct {
	material.TextureInfo

	dev    device.Device
	id     uint32
	loaded bool
}

var _ material.Texture = &Texture{}

func newTexture(dev device.Device) *Texture {
	return &Texture{
		TextureInfo: material.NewTextureInfo(""),
		dev:         dev,
		id:          dev.CreateTexture(device.Texture2D),
	}
}

// ID returns the texture object name.
func (t *Texture) ID() uint32 {
	return t.id
}

// Loaded implements material.Texture
func (t *Texture) Loaded() bool {
	return t.loaded
}

// SetFlags implements material.Texture. Once pixels are uploaded the
// format bits are kept and only sampling changes apply.
func (t *Texture) SetFlags(flags material.TextureFlags) {
	if !t.loaded {
		t.SetInfoFlags(flags)
		return
	}

	current := t.Flags() & material.FormatFlags
	if flags&material.FormatFlags != current {
		log.WithField("texture", t.Name()).Warn("format flags of an uploaded texture apply on the next upload")
	}
	t.SetInfoFlags(flags&^material.FormatFlags | current)

	t.dev.ActiveTexture(device.Texture0)
	t.dev.BindTexture(device.Texture2D, t.id)
	t.applySampler()
}

func (t *Texture) applySampler() {
	wrap := WrapMode(t.Flags())
	min, mag := Filters(t.Flags())
	t.dev.TexParameteri(device.Texture2D, device.TextureWrapS, wrap)
	t.dev.TexParameteri(device.Texture2D, device.TextureWrapT, wrap)
	t.dev.TexParameteri(device.Texture2D, device.TextureMinFilter, min)
	t.dev.TexParameteri(device.Texture2D, device.TextureMagFilter, mag)
}

// LoadDirect implements material.Texture
func (t *Texture) LoadDirect(width, height int, data []byte) error {
	if t.id == 0 {
		return fmt.Errorf("texture %s was released", t.Name())
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("texture %s: invalid size %dx%d", t.Name(), width, height)
	}
	flags := t.Flags()
	if need := flags.DataSize(width, height); data != nil && len(data) < need {
		return fmt.Errorf("texture %s: %d bytes given, %dx%d needs %d", t.Name(), len(data), width, height, need)
	}

	internal, format, dataType := UploadFormat(flags)
	t.dev.ActiveTexture(device.Texture0)
	t.dev.BindTexture(device.Texture2D, t.id)
	t.dev.TexImage2D(device.Texture2D, internal, int32(width), int32(height), format, dataType, data)
	t.applySampler()
	if flags&material.TextureNoMip == 0 {
		t.dev.GenerateMipmap(device.Texture2D)
	}
	t.dev.BindTexture(device.Texture2D, 0)

	t.SetSize(width, height)
	t.loaded = true
	return nil
}

// Bind implements material.Texture
func (t *Texture) Bind(unit uint32) {
	t.dev.ActiveTexture(device.Texture0 + unit)
	t.dev.BindTexture(device.Texture2D, t.id)
}

// Release implements gfx.Releasable
func (t *Texture) Release() {
	if t.id != 0 {
		t.dev.DeleteTexture(t.id)
		t.id = 0
	}
	t.loaded = false
}
