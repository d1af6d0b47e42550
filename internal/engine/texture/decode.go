// Package texture decodes heightmap and ground texture images.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF (16-bit heightmaps)
)

// ErrEmpty is returned for images with no pixels.
var ErrEmpty = errors.New("image has no pixels")

// Load reads and decodes the image at path.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, path)
}

// Decode decodes image bytes. name is only used to recognise TGA, which has
// no magic number; every other format is sniffed from the data.
func Decode(data []byte, name string) (image.Image, error) {
	var img image.Image
	var err error

	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode %s: %w", name, ErrEmpty)
	}
	return img, nil
}

// ImageToRGBA converts any image.Image to a zero-origin *image.RGBA, the
// layout glTexImage2D expects.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Sample returns the pixel at (x, y) normalised to [0, 1].
//
// Grayscale images use their luminance directly (16-bit precision for
// Gray16). Colour images pack R, G and B into one 24-bit value, which gives
// 16.7M height steps from an ordinary RGB PNG.
func Sample(img image.Image, x, y int) float32 {
	b := img.Bounds()
	c := img.At(b.Min.X+x, b.Min.Y+y)

	switch v := c.(type) {
	case color.Gray:
		return float32(v.Y) / 0xFF
	case color.Gray16:
		return float32(v.Y) / 0xFFFF
	}

	// Alpha does not scale height.
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	packed := uint32(n.R)<<16 | uint32(n.G)<<8 | uint32(n.B)
	return float32(packed) / 0xFFFFFF
}
