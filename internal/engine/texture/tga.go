package texture

import (
	"errors"
	"fmt"
	"image"
)

// ErrTGA is wrapped by every TGA decoding failure.
var ErrTGA = errors.New("unsupported or corrupt TGA")

// TGA image types.
const (
	TGATrueColor    = 2
	TGAGray         = 3
	TGATrueColorRLE = 10
	TGAGrayRLE      = 11
)

const tgaHeaderSize = 18

type tgaHeader struct {
	kind          byte
	width, height int
	bytesPerPixel int
	topDown       bool // Rows stored top first
	dataOffset    int
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("%w: %d byte header", ErrTGA, len(data))
	}
	if data[1] != 0 {
		return tgaHeader{}, fmt.Errorf("%w: color-mapped", ErrTGA)
	}

	h := tgaHeader{
		kind:          data[2],
		width:         int(data[12]) | int(data[13])<<8,
		height:        int(data[14]) | int(data[15])<<8,
		bytesPerPixel: int(data[16]) / 8,
		topDown:       data[17]&0x20 != 0,
		dataOffset:    tgaHeaderSize + int(data[0]),
	}

	switch h.kind {
	case TGAGray, TGAGrayRLE:
		if data[16] != 8 {
			return h, fmt.Errorf("%w: %d-bit grayscale", ErrTGA, data[16])
		}
	case TGATrueColor, TGATrueColorRLE:
		if data[16] != 24 && data[16] != 32 {
			return h, fmt.Errorf("%w: %d-bit true-color", ErrTGA, data[16])
		}
	default:
		return h, fmt.Errorf("%w: image type %d", ErrTGA, h.kind)
	}
	if h.dataOffset > len(data) {
		return h, fmt.Errorf("%w: truncated image ID", ErrTGA)
	}
	return h, nil
}

// DecodeTGA decodes 8-bit grayscale and 24/32-bit true-color TGA files,
// raw or run-length encoded. Grayscale files decode to *image.Gray so they
// sample as heightmaps by luminance.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	pixels := make([]byte, h.width*h.height*h.bytesPerPixel)
	src := data[h.dataOffset:]
	if h.kind == TGATrueColorRLE || h.kind == TGAGrayRLE {
		err = unpackTGARLE(pixels, src, h.bytesPerPixel)
	} else if copy(pixels, src) < len(pixels) {
		err = fmt.Errorf("%w: truncated pixel data", ErrTGA)
	}
	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, h.width, h.height)
	rowSize := h.width * h.bytesPerPixel
	row := func(y int) []byte {
		if !h.topDown {
			y = h.height - 1 - y
		}
		return pixels[y*rowSize : (y+1)*rowSize]
	}

	if h.kind == TGAGray || h.kind == TGAGrayRLE {
		img := image.NewGray(rect)
		for y := 0; y < h.height; y++ {
			copy(img.Pix[y*img.Stride:], row(y))
		}
		return img, nil
	}

	img := image.NewNRGBA(rect)
	for y := 0; y < h.height; y++ {
		src := row(y)
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < h.width; x++ {
			p := src[x*h.bytesPerPixel:]
			// Stored BGR(A).
			dst[x*4+0] = p[2]
			dst[x*4+1] = p[1]
			dst[x*4+2] = p[0]
			dst[x*4+3] = 0xFF
			if h.bytesPerPixel == 4 {
				dst[x*4+3] = p[3]
			}
		}
	}
	return img, nil
}

// unpackTGARLE expands run-length packets from src until dst is full.
func unpackTGARLE(dst, src []byte, bytesPerPixel int) error {
	for out := 0; out < len(dst); {
		if len(src) == 0 {
			return fmt.Errorf("%w: run-length data ends after %d of %d bytes", ErrTGA, out, len(dst))
		}
		packet := src[0]
		src = src[1:]
		n := min((int(packet&0x7F)+1)*bytesPerPixel, len(dst)-out)

		if packet&0x80 != 0 {
			if len(src) < bytesPerPixel {
				return fmt.Errorf("%w: truncated run", ErrTGA)
			}
			for i := 0; i < n; i += bytesPerPixel {
				copy(dst[out+i:out+n], src[:bytesPerPixel])
			}
			src = src[bytesPerPixel:]
		} else {
			if len(src) < n {
				return fmt.Errorf("%w: truncated raw packet", ErrTGA)
			}
			copy(dst[out:], src[:n])
			src = src[n:]
		}
		out += n
	}
	return nil
}
