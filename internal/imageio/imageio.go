// Package imageio loads target images and saves rendered output. It is
// glue around the core: the optimizer only ever sees decoded NRGBA
// buffers with known dimensions.
package imageio

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/anthonynsimon/bild/transform"
)

// Load decodes the image at path and converts it to NRGBA. Supported
// formats are png, jpeg, gif, bmp, tiff and webp.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	slog.Debug("Decoded target image",
		"path", path,
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
	)

	return ToNRGBA(img), nil
}

// ToNRGBA converts any decoded image to an NRGBA buffer anchored at the
// origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}

	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return out
}

// Downscale resizes img so its longest side is at most maxDim pixels,
// preserving aspect ratio. Images already within the limit are returned
// unchanged. Rendering cost is O(shapes x pixels), so shrinking the
// target is the cheapest speedup available.
func Downscale(img *image.NRGBA, maxDim int) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	resized := transform.Resize(img, w, h, transform.Linear)

	slog.Debug("Downscaled target image", "width", w, "height", h)
	return ToNRGBA(resized)
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
