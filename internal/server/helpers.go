package server

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/sgalella/GeometricArt/internal/art"
	"github.com/sgalella/GeometricArt/internal/imageio"
)

// loadReference loads the job's target image, applying the configured
// downscale limit so dimensions match what the worker optimized against.
func loadReference(config JobConfig) (*image.NRGBA, error) {
	ref, err := imageio.Load(config.RefPath)
	if err != nil {
		return nil, err
	}
	return imageio.Downscale(ref, config.MaxDim), nil
}

// renderJob rasterizes the job's accepted shape list onto a fresh
// canvas sized like the reference image.
func renderJob(job Job) (*image.NRGBA, error) {
	if len(job.Shapes) == 0 {
		return nil, fmt.Errorf("job has no accepted shapes yet")
	}

	ref, err := loadReference(job.Config)
	if err != nil {
		return nil, err
	}

	canvas := art.NewCanvas(ref.Bounds().Dx(), ref.Bounds().Dy(), art.White)
	return art.CopyImage(canvas.Render(job.Shapes)), nil
}

// computeDiffImage creates a false-color difference image: black where
// the rendering matches the reference, red where it diverges.
func computeDiffImage(ref, best *image.NRGBA) *image.NRGBA {
	bounds := ref.Bounds()
	diff := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := ref.PixOffset(x, y)
			j := best.PixOffset(x, y)

			dr := int(ref.Pix[i+0]) - int(best.Pix[j+0])
			dg := int(ref.Pix[i+1]) - int(best.Pix[j+1])
			db := int(ref.Pix[i+2]) - int(best.Pix[j+2])

			mag := math.Sqrt(float64(dr*dr + dg*dg + db*db))

			// Max per-pixel magnitude is sqrt(3)*255 ~ 441.7
			normalized := uint8(math.Min(255, mag/441.67*255))

			diff.Set(x, y, color.NRGBA{R: normalized, A: 255})
		}
	}

	return diff
}
