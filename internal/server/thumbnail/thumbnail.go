// Package thumbnail produces fixed-width, aspect-preserving image
// derivatives. Output is a pure function of the input bytes and width.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Widths are the derivative sizes generated for every image, largest first.
var Widths = []int{500, 250, 100}

// ErrUnsupportedImage is returned for bytes that do not decode as an image
// or whose dimensions exceed MaxPixels.
var ErrUnsupportedImage = errors.New("unsupported image")

// MaxPixels caps width*height of a source image. The header is checked
// before any pixel is decoded.
const MaxPixels = 50_000_000

const jpegQuality = 85

// Source is a decoded original, ready to be scaled to several widths.
type Source struct {
	img    image.Image
	format string
}

// Decode reads the image header, rejects oversized or empty images and then
// decodes the pixels once.
func Decode(src []byte) (*Source, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	return &Source{img: img, format: format}, nil
}

// Scale resizes the source to width pixels wide. JPEG and GIF sources keep
// their format; everything else is encoded as PNG.
func (s *Source) Scale(width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}

	b := s.img.Bounds()
	height := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), s.img, b, draw.Src, nil)

	var out bytes.Buffer
	var err error
	switch s.format {
	case "jpeg":
		err = jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		err = gif.Encode(&out, dst, nil)
	default:
		err = png.Encode(&out, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.format, err)
	}
	return out.Bytes(), nil
}

// Generate decodes src and scales it to a single width.
func Generate(src []byte, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}
	s, err := Decode(src)
	if err != nil {
		return nil, err
	}
	return s.Scale(width)
}
