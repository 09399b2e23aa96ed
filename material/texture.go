// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package material

import (
	"github.com/devblok/glbox/gfx"
)

// TextureType tells what a texture is sampled for.
type TextureType uint8

// Texture types.
const (
	TextureAlbedo TextureType = iota
	TextureNormal
	TexturePhysical
	TextureLightmap
)

func (t TextureType) String() string {
	switch t {
	case TextureAlbedo:
		return "albedo"
	case TextureNormal:
		return "normal"
	case TexturePhysical:
		return "physical"
	case TextureLightmap:
		return "lightmap"
	}
	return "unknown"
}

// TextureFlags describe the storage and sampling of a texture.
type TextureFlags uint16

// Texture flags.
const (
	TextureStatic TextureFlags = 1 << iota
	TextureDynamic
	TextureLinear
	TextureNearest
	TextureNoMip
	TextureRepeat
	TextureRepeatMirror
	TextureClampToEdge
	TextureGreyscale
	TextureRGB
	TextureRGBA
	TextureByteSized
	TextureFloatSized
)

// DefaultTextureFlags is used when nothing else is requested.
const DefaultTextureFlags = TextureStatic | TextureLinear | TextureRepeat | TextureRGB | TextureByteSized

// Flag groups.
const (
	ChannelFlags = TextureGreyscale | TextureRGB | TextureRGBA
	SizeFlags    = TextureByteSized | TextureFloatSized
	FormatFlags  = ChannelFlags | SizeFlags
)

// Channels returns the number of colour channels the flags describe.
func (f TextureFlags) Channels() int {
	switch {
	case f&TextureRGBA != 0:
		return 4
	case f&TextureGreyscale != 0:
		return 1
	}
	return 3
}

// BytesPerChannel is 4 for float textures and 1 otherwise.
func (f TextureFlags) BytesPerChannel() int {
	if f&TextureFloatSized != 0 {
		return 4
	}
	return 1
}

// WithChannels replaces the channel layout bits with the ones matching n.
func (f TextureFlags) WithChannels(n int) TextureFlags {
	f &^= ChannelFlags
	switch n {
	case 1:
		return f | TextureGreyscale
	case 3:
		return f | TextureRGB
	}
	return f | TextureRGBA
}

// DataSize is the number of bytes a width x height image with these flags occupies.
func (f TextureFlags) DataSize(width, height int) int {
	return width * height * f.Channels() * f.BytesPerChannel()
}

// BuiltinFileName marks textures that were not loaded from a file.
const BuiltinFileName = "#builtin"

// DefaultTextureName is the name of an unnamed texture.
const DefaultTextureName = "Default"

// Texture is a GPU texture as seen by the frontend.
type Texture interface {
	gfx.Releasable

	// Name is the file name for file backed textures
	// and the given name otherwise.
	Name() string
	SetName(string)
	FileName() string
	SetFileName(string)

	Type() TextureType
	SetType(TextureType)

	// Flags always describe the uploaded format. Changing sampling
	// bits on an uploaded texture applies them immediately.
	Flags() TextureFlags
	SetFlags(TextureFlags)

	Size() (width, height int)

	// Loaded reports whether pixel storage was uploaded.
	Loaded() bool

	// Bind binds the texture to a texture unit.
	Bind(unit uint32)

	// LoadDirect uploads width x height pixels laid out per Flags.
	// A nil data allocates blank storage.
	LoadDirect(width, height int, data []byte) error
}

// TextureInfo holds the backend independent part of a texture
// and is meant to be embedded by implementations.
type TextureInfo struct {
	name     string
	fileName string
	typ      TextureType
	flags    TextureFlags
	width    int
	height   int
}

// NewTextureInfo creates texture info for a built-in texture.
func NewTextureInfo(name string) TextureInfo {
	if name == "" {
		name = DefaultTextureName
	}
	return TextureInfo{
		name:     name,
		fileName: BuiltinFileName,
		typ:      TextureAlbedo,
		flags:    DefaultTextureFlags,
	}
}

// Name implements Texture
func (t *TextureInfo) Name() string {
	if t.fileName == BuiltinFileName || t.fileName == "" {
		return t.name
	}
	return t.fileName
}

// SetName implements Texture
func (t *TextureInfo) SetName(name string) {
	t.name = name
}

// FileName implements Texture
func (t *TextureInfo) FileName() string {
	return t.fileName
}

// SetFileName implements Texture
func (t *TextureInfo) SetFileName(name string) {
	t.fileName = name
}

// Type implements Texture
func (t *TextureInfo) Type() TextureType {
	return t.typ
}

// SetType implements Texture
func (t *TextureInfo) SetType(typ TextureType) {
	t.typ = typ
}

// Flags implements Texture
func (t *TextureInfo) Flags() TextureFlags {
	return t.flags
}

// SetInfoFlags stores flags without touching GPU state.
func (t *TextureInfo) SetInfoFlags(flags TextureFlags) {
	t.flags = flags
}

// Size implements Texture
func (t *TextureInfo) Size() (int, int) {
	return t.width, t.height
}

// SetSize stores the uploaded dimensions.
func (t *TextureInfo) SetSize(width, height int) {
	t.width, t.height = width, height
}
