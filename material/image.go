// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package material

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	// Decoders available to LoadTexture.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when image data cannot be decoded.
var ErrDecode = errors.New("image decode failed")

// Image is decoded pixel data ready for upload, rows top to bottom
// and channels tightly packed.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Flags returns flags with the channel bits matching the image.
func (img *Image) Flags(flags TextureFlags) TextureFlags {
	return flags.WithChannels(img.Channels)
}

// DecodeImage decodes any registered image format. Greyscale images
// give one channel, opaque images three and the rest four.
func DecodeImage(data []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	bounds := src.Bounds()
	out := &Image{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		out.Channels = 1
		gray := image.NewGray(image.Rect(0, 0, out.Width, out.Height))
		draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)
		out.Pix = gray.Pix
		return out, nil
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, out.Width, out.Height))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)

	if opaque(src, format) {
		out.Channels = 3
		out.Pix = make([]byte, 0, out.Width*out.Height*3)
		for i := 0; i < len(rgba.Pix); i += 4 {
			out.Pix = append(out.Pix, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
		}
		return out, nil
	}

	out.Channels = 4
	out.Pix = rgba.Pix
	return out, nil
}

func opaque(img image.Image, format string) bool {
	if format == "jpeg" {
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// Checkerboard builds an RGB checkerboard of size x size pixels
// with cells of cell pixels, used when a placeholder texture is missing.
func Checkerboard(size, cell int) []byte {
	if cell <= 0 {
		cell = 1
	}
	pix := make([]byte, 0, size*size*3)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := byte(64)
			if (x/cell+y/cell)%2 == 0 {
				c = 192
			}
			pix = append(pix, c, c, c)
		}
	}
	return pix
}
