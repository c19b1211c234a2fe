package ioutils

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// DefaultFaviconSize is the edge length favicons are scaled to fit.
const DefaultFaviconSize = 300

// ErrEmptyImage is returned for zero-sized input.
var ErrEmptyImage = errors.New("image: empty image")

// ImageService prepares station favicons for display and embedding.
//
// Favicons come in every format and size the directory's stations chose
// to publish. ImageService normalizes them to a bounded JPEG:
//
//	svc := NewImageService()
//	jpeg, err := svc.Thumbnail(ctx, faviconBytes, DefaultFaviconSize)
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// Thumbnail scales data to fit within size×size and re-encodes it as JPEG.
//
// The aspect ratio is preserved and images smaller than size are never
// enlarged. Transparent pixels are flattened onto white, since JPEG has
// no alpha channel.
func (s *ImageService) Thumbnail(ctx context.Context, data []byte, size int) ([]byte, error) {
	return s.ResizeImage(ctx, data, size, size)
}

// ResizeImage scales an image to fit within the specified maximum
// dimensions and returns JPEG-encoded bytes.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 300x200
//	resized, err := svc.ResizeImage(ctx, imageData, 300, 300)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return s.encode(dst)
}

// ConvertToJPEG re-encodes an image as JPEG without scaling it.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)

	return s.encode(dst)
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// fit returns the largest size within maxW×maxH with the aspect ratio of
// w×h, never larger than w×h and never smaller than 1×1.
func fit(w, h, maxW, maxH int) (int, int) {
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}

	ratio := float64(w) / float64(h)
	if float64(maxW)/float64(maxH) > ratio {
		w = int(float64(maxH) * ratio)
		h = maxH
	} else {
		h = int(float64(maxW) / ratio)
		w = maxW
	}
	return max(w, 1), max(h, 1)
}
