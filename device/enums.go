// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

// OpenGL enums used by the renderer, values as in the GL headers.
const (
	NoError                     = 0
	InvalidEnum                 = 0x0500
	InvalidValue                = 0x0501
	InvalidOperation            = 0x0502
	StackOverflow               = 0x0503
	StackUnderflow              = 0x0504
	OutOfMemory                 = 0x0505
	InvalidFramebufferOperation = 0x0506
	InvalidIndex                = 0xFFFFFFFF

	Vendor                 = 0x1F00
	Renderer               = 0x1F01
	Version                = 0x1F02
	ShadingLanguageVersion = 0x8B8C

	DepthTest      = 0x0B71
	CullFaceMode   = 0x0B44
	Back           = 0x0405
	ColorBufferBit = 0x00004000
	DepthBufferBit = 0x00000100
	Triangles      = 0x0004

	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893
	StaticDraw         = 0x88E4
	DynamicDraw        = 0x88E8

	VertexShader   = 0x8B31
	FragmentShader = 0x8B30

	Texture2D           = 0x0DE1
	Texture0            = 0x84C0
	TextureMagFilter    = 0x2800
	TextureMinFilter    = 0x2801
	TextureWrapS        = 0x2802
	TextureWrapT        = 0x2803
	Nearest             = 0x2600
	Linear              = 0x2601
	NearestMipmapLinear = 0x2702
	LinearMipmapLinear  = 0x2703
	Repeat              = 0x2901
	ClampToEdge         = 0x812F
	MirroredRepeat      = 0x8370

	UnsignedByte = 0x1401
	UnsignedInt  = 0x1405
	Float        = 0x1406
	Red          = 0x1903
	RGB          = 0x1907
	RGBA         = 0x1908
	R8           = 0x8229
	R32F         = 0x822E
	RGB8         = 0x8051
	RGB32F       = 0x8815
	RGBA8        = 0x8058
	RGBA32F      = 0x8814
)

// ErrorString translates a GL error code into its name.
func ErrorString(code uint32) string {
	switch code {
	case NoError:
		return "GL_NO_ERROR"
	case InvalidEnum:
		return "GL_INVALID_ENUM"
	case InvalidValue:
		return "GL_INVALID_VALUE"
	case InvalidOperation:
		return "GL_INVALID_OPERATION"
	case StackOverflow:
		return "GL_STACK_OVERFLOW"
	case StackUnderflow:
		return "GL_STACK_UNDERFLOW"
	case OutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case InvalidFramebufferOperation:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case InvalidIndex:
		return "GL_INVALID_INDEX"
	}
	return "unknown GL error"
}
