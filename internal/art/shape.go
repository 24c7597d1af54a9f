package art

import (
	"image"
	"math/rand"
)

// Kind selects the geometric primitive used for the whole run
type Kind string

const (
	KindPolygon Kind = "polygon"
	KindCircle  Kind = "circle"
)

// Color is a non-premultiplied RGBA color. A is the blend weight used
// when the shape is composited onto the canvas.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Bounds defines the valid coordinate and radius ranges for shapes.
// Coordinates are clamped to [0, Width) x [0, Height); a circle radius
// is clamped to [0, MaxRadius].
type Bounds struct {
	Width     int
	Height    int
	MaxRadius int
}

// Shape is a tagged variant over {polygon, circle}. A polygon uses
// Points (vertex count fixed at creation); a circle uses X, Y and Radius.
type Shape struct {
	Kind   Kind          `json:"kind"`
	Points []image.Point `json:"points,omitempty"`
	X      int           `json:"x,omitempty"`
	Y      int           `json:"y,omitempty"`
	Radius int           `json:"radius,omitempty"`
	Color  Color         `json:"color"`
}

// Random alpha stays inside [alphaMin, alphaMax) so a fresh shape never
// fully covers what is underneath it and never disappears entirely.
const (
	alphaMin = 16
	alphaMax = 240
)

// Mutation step budgets. Coordinates and radius move by at most a tenth
// of their range per mutation, color channels by at most colorStep.
const colorStep = 32

// RandomShape creates a shape of the given kind with uniformly random
// geometry inside b and a uniformly random color. For polygons, sides
// fixes the vertex count for the lifetime of the shape.
func RandomShape(rng *rand.Rand, kind Kind, b Bounds, sides int) Shape {
	s := Shape{
		Kind: kind,
		Color: Color{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: uint8(alphaMin + rng.Intn(alphaMax-alphaMin)),
		},
	}

	switch kind {
	case KindCircle:
		s.X = rng.Intn(b.Width)
		s.Y = rng.Intn(b.Height)
		s.Radius = rng.Intn(b.MaxRadius + 1)
	default:
		s.Points = make([]image.Point, sides)
		for i := range s.Points {
			s.Points[i] = image.Point{X: rng.Intn(b.Width), Y: rng.Intn(b.Height)}
		}
	}

	return s
}

// Clone returns a deep copy of the shape. The polygon vertex slice is
// copied so the clone can be mutated independently.
func (s Shape) Clone() Shape {
	c := s
	if s.Points != nil {
		c.Points = make([]image.Point, len(s.Points))
		copy(c.Points, s.Points)
	}
	return c
}

// Delta records a single attribute mutation so the caller can undo it
// without holding a copy of the whole shape.
type Delta struct {
	Attr int // attribute index within the shape's attribute set
	Old  int // value before the mutation
}

// attrCount returns the size of the shape's attribute set: 2 coordinates
// per vertex plus 4 color channels for a polygon, x/y/radius plus 4
// channels for a circle.
func (s Shape) attrCount() int {
	if s.Kind == KindCircle {
		return 7
	}
	return 2*len(s.Points) + 4
}

// Mutate picks one attribute uniformly at random, perturbs it by a
// bounded uniform offset and clamps the result to its valid range.
// The returned delta identifies the changed attribute and its old value.
func (s *Shape) Mutate(rng *rand.Rand, b Bounds) Delta {
	attr := rng.Intn(s.attrCount())

	if s.Kind == KindCircle {
		return s.mutateCircle(rng, b, attr)
	}
	return s.mutatePolygon(rng, b, attr)
}

func (s *Shape) mutateCircle(rng *rand.Rand, b Bounds, attr int) Delta {
	switch attr {
	case 0:
		d := Delta{Attr: attr, Old: s.X}
		s.X = clampInt(s.X+step(rng, coordStep(b.Width)), 0, b.Width-1)
		return d
	case 1:
		d := Delta{Attr: attr, Old: s.Y}
		s.Y = clampInt(s.Y+step(rng, coordStep(b.Height)), 0, b.Height-1)
		return d
	case 2:
		d := Delta{Attr: attr, Old: s.Radius}
		s.Radius = clampInt(s.Radius+step(rng, coordStep(b.MaxRadius)), 0, b.MaxRadius)
		return d
	default:
		return s.mutateColor(rng, attr, attr-3)
	}
}

func (s *Shape) mutatePolygon(rng *rand.Rand, b Bounds, attr int) Delta {
	nCoords := 2 * len(s.Points)
	if attr >= nCoords {
		return s.mutateColor(rng, attr, attr-nCoords)
	}

	i := attr / 2
	if attr%2 == 0 {
		d := Delta{Attr: attr, Old: s.Points[i].X}
		s.Points[i].X = clampInt(s.Points[i].X+step(rng, coordStep(b.Width)), 0, b.Width-1)
		return d
	}
	d := Delta{Attr: attr, Old: s.Points[i].Y}
	s.Points[i].Y = clampInt(s.Points[i].Y+step(rng, coordStep(b.Height)), 0, b.Height-1)
	return d
}

// mutateColor perturbs channel ch (0=R, 1=G, 2=B, 3=A) of the shape's color.
func (s *Shape) mutateColor(rng *rand.Rand, attr, ch int) Delta {
	channels := [4]*uint8{&s.Color.R, &s.Color.G, &s.Color.B, &s.Color.A}
	p := channels[ch]
	d := Delta{Attr: attr, Old: int(*p)}
	*p = uint8(clampInt(int(*p)+step(rng, colorStep), 0, 255))
	return d
}

// step draws a uniform offset in [-max, max].
func step(rng *rand.Rand, max int) int {
	return rng.Intn(2*max+1) - max
}

// coordStep is a tenth of the dimension, never less than one pixel.
func coordStep(dim int) int {
	if dim < 10 {
		return 1
	}
	return dim / 10
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CloneShapes deep-copies a shape list. The climber snapshots lists this
// way before a trial mutation so a rejection restores the accepted state.
func CloneShapes(shapes []Shape) []Shape {
	out := make([]Shape, len(shapes))
	for i := range shapes {
		out[i] = shapes[i].Clone()
	}
	return out
}
