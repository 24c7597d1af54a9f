package art

import (
	"fmt"
	"image"
)

// DimensionError reports a size mismatch between the rendered canvas and
// the target image. It is raised once at setup, never inside the loop.
type DimensionError struct {
	TargetWidth  int
	TargetHeight int
	Width        int
	Height       int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: target is %dx%d, canvas is %dx%d",
		e.TargetWidth, e.TargetHeight, e.Width, e.Height)
}

// Scorer computes the pixel difference between rendered images and a
// fixed target. Lower is better; zero means pixel-identical.
type Scorer struct {
	target   *image.NRGBA
	width    int
	height   int
	maxScore int64
}

// NewScorer creates a scorer for the given target. width and height are
// the dimensions the scorer will accept; a mismatch with the target is a
// DimensionError.
func NewScorer(target *image.NRGBA, width, height int) (*Scorer, error) {
	tw := target.Bounds().Dx()
	th := target.Bounds().Dy()
	if tw != width || th != height {
		return nil, &DimensionError{TargetWidth: tw, TargetHeight: th, Width: width, Height: height}
	}

	return &Scorer{
		target:   target,
		width:    width,
		height:   height,
		maxScore: int64(width) * int64(height) * 3 * 255,
	}, nil
}

// Score sums |rendered - target| over the RGB channels of every pixel.
// Both images must have the dimensions validated at construction.
func (s *Scorer) Score(rendered *image.NRGBA) int64 {
	return sumAbsDiff(rendered.Pix, s.target.Pix, rendered.Stride, s.target.Stride, s.width, s.height)
}

// MaxScore is the largest possible score: width * height * 3 * 255.
func (s *Scorer) MaxScore() int64 {
	return s.maxScore
}

// Similarity converts a score to a percentage: 100 at zero difference,
// 0 at the maximum possible difference.
func (s *Scorer) Similarity(score int64) float64 {
	return 100 * (1 - float64(score)/float64(s.maxScore))
}

// Target returns the target image the scorer compares against.
func (s *Scorer) Target() *image.NRGBA {
	return s.target
}

// sumAbsDiff walks both NRGBA pixel buffers row by row, accumulating the
// absolute per-channel difference and skipping alpha.
func sumAbsDiff(a, b []uint8, strideA, strideB, width, height int) int64 {
	var sum int64

	for y := 0; y < height; y++ {
		ra := y * strideA
		rb := y * strideB

		for x := 0; x < width; x++ {
			ia := ra + x*4
			ib := rb + x*4

			dr := int(a[ia+0]) - int(b[ib+0])
			if dr < 0 {
				dr = -dr
			}
			dg := int(a[ia+1]) - int(b[ib+1])
			if dg < 0 {
				dg = -dg
			}
			db := int(a[ia+2]) - int(b[ib+2])
			if db < 0 {
				db = -db
			}

			sum += int64(dr + dg + db)
		}
	}

	return sum
}
