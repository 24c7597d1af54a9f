package art

import (
	"image"
	"image/color"
	"sort"
)

// Canvas rasterizes a shape list over a solid background. The pixel
// buffer and the scanline scratch slice are reused across Render calls;
// this is the hot path of the optimization loop.
type Canvas struct {
	width      int
	height     int
	background color.NRGBA
	img        *image.NRGBA
	xs         []float64 // scanline intersection scratch
}

// NewCanvas creates a canvas of the given size. Callers typically pass
// White as the background.
func NewCanvas(width, height int, background color.NRGBA) *Canvas {
	return &Canvas{
		width:      width,
		height:     height,
		background: background,
		img:        image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Render paints the shapes in painter's order onto a freshly
// background-filled buffer and returns it. The returned image is owned
// by the canvas and is overwritten by the next Render call; callers that
// need to keep it must copy it (see CopyImage).
func (c *Canvas) Render(shapes []Shape) *image.NRGBA {
	c.clear()
	for i := range shapes {
		switch shapes[i].Kind {
		case KindCircle:
			c.fillCircle(shapes[i])
		default:
			c.fillPolygon(shapes[i])
		}
	}
	return c.img
}

// clear resets the reused buffer to the background color so no blended
// pixels from a rejected trial leak into the next one.
func (c *Canvas) clear() {
	pix := c.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = c.background.R
		pix[i+1] = c.background.G
		pix[i+2] = c.background.B
		pix[i+3] = 255
	}
}

// fillCircle blends the circle onto the buffer using the squared
// distance test over the circle's bounding box.
func (c *Canvas) fillCircle(s Shape) {
	minX := clampInt(s.X-s.Radius, 0, c.width-1)
	maxX := clampInt(s.X+s.Radius, 0, c.width-1)
	minY := clampInt(s.Y-s.Radius, 0, c.height-1)
	maxY := clampInt(s.Y+s.Radius, 0, c.height-1)

	r2 := s.Radius * s.Radius
	for y := minY; y <= maxY; y++ {
		dy := y - s.Y
		for x := minX; x <= maxX; x++ {
			dx := x - s.X
			if dx*dx+dy*dy > r2 {
				continue
			}
			c.blendPixel(x, y, s.Color)
		}
	}
}

// fillPolygon blends the polygon interior onto the buffer using an
// even-odd scanline fill. Edges are tested against the scanline with a
// half-open rule so shared vertices are counted exactly once.
func (c *Canvas) fillPolygon(s Shape) {
	n := len(s.Points)
	if n < 3 {
		return
	}

	minY, maxY := s.Points[0].Y, s.Points[0].Y
	for _, p := range s.Points[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	minY = clampInt(minY, 0, c.height-1)
	maxY = clampInt(maxY, 0, c.height-1)

	for y := minY; y <= maxY; y++ {
		c.xs = c.xs[:0]
		for i := 0; i < n; i++ {
			p1 := s.Points[i]
			p2 := s.Points[(i+1)%n]
			if (p1.Y <= y) == (p2.Y <= y) {
				continue
			}
			// Edge crosses the scanline; intersection in float to keep
			// the fill rule stable for steep edges.
			t := float64(y-p1.Y) / float64(p2.Y-p1.Y)
			c.xs = append(c.xs, float64(p1.X)+t*float64(p2.X-p1.X))
		}
		sort.Float64s(c.xs)

		for i := 0; i+1 < len(c.xs); i += 2 {
			start := clampInt(int(c.xs[i]+0.5), 0, c.width)
			end := clampInt(int(c.xs[i+1]+0.5), 0, c.width)
			for x := start; x < end; x++ {
				c.blendPixel(x, y, s.Color)
			}
		}
	}
}

// blendPixel applies alpha-over compositing for a single pixel:
// dst = (src*a + dst*(255-a)) / 255 per channel. The canvas background
// is opaque, so the destination alpha stays 255.
func (c *Canvas) blendPixel(x, y int, col Color) {
	i := c.img.PixOffset(x, y)
	pix := c.img.Pix

	a := int(col.A)
	na := 255 - a
	pix[i+0] = uint8((int(col.R)*a + int(pix[i+0])*na + 127) / 255)
	pix[i+1] = uint8((int(col.G)*a + int(pix[i+1])*na + 127) / 255)
	pix[i+2] = uint8((int(col.B)*a + int(pix[i+2])*na + 127) / 255)
	pix[i+3] = 255
}

// CopyImage returns a detached copy of img.
func CopyImage(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}
