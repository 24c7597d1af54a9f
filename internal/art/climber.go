package art

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"math/rand"
	"time"
)

// Progress is the payload handed to the progress sink. It is a one-way
// notification; the loop never blocks on it beyond the synchronous call.
type Progress struct {
	Iteration  int
	Changes    int
	Score      int64
	Similarity float64
	Accepted   bool
}

// ProgressFunc receives progress notifications after each accepted
// change and at the configured report cadence.
type ProgressFunc func(Progress)

// Result is the terminal output of a run.
type Result struct {
	Shapes     []Shape
	Score      int64
	Similarity float64
	Iterations int
	Changes    int
	Image      *image.NRGBA
}

// Climber drives the hill-climbing loop: it owns the current accepted
// shape list and its score, proposes one mutation per iteration, renders
// and scores the trial, and keeps it only on strict improvement.
//
// The climber is purely sequential. All randomness comes from a single
// seeded generator, so a run is fully reproducible given the same seed
// and configuration.
type Climber struct {
	cfg        Config
	bounds     Bounds
	rng        *rand.Rand
	canvas     *Canvas
	scorer     *Scorer
	shapes     []Shape
	score      int64
	iteration  int
	changes    int
	onProgress ProgressFunc
}

// Option configures a Climber beyond its Config.
type Option func(*Climber)

// WithProgress installs the progress sink.
func WithProgress(fn ProgressFunc) Option {
	return func(hc *Climber) { hc.onProgress = fn }
}

// WithState seeds the climber with a previously accepted shape list and
// its counters, used when resuming from a checkpoint. The list is
// cloned; its length must equal Config.Shapes.
func WithState(shapes []Shape, iteration, changes int) Option {
	return func(hc *Climber) {
		hc.shapes = CloneShapes(shapes)
		hc.iteration = iteration
		hc.changes = changes
	}
}

// White is the background every canvas starts from.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// New validates the configuration, builds the canvas and scorer for the
// target's dimensions, initializes the shape list (randomly, unless
// WithState provides one) and computes the baseline score.
func New(target *image.NRGBA, cfg Config, opts ...Option) (*Climber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	width := target.Bounds().Dx()
	height := target.Bounds().Dy()

	scorer, err := NewScorer(target, width, height)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	hc := &Climber{
		cfg:    cfg,
		bounds: Bounds{Width: width, Height: height, MaxRadius: cfg.MaxRadius},
		rng:    rand.New(rand.NewSource(seed)),
		canvas: NewCanvas(width, height, White),
		scorer: scorer,
	}

	for _, opt := range opts {
		opt(hc)
	}

	if hc.shapes == nil {
		hc.shapes = make([]Shape, cfg.Shapes)
		for i := range hc.shapes {
			hc.shapes[i] = RandomShape(hc.rng, cfg.Kind, hc.bounds, cfg.Sides)
		}
	} else if len(hc.shapes) != cfg.Shapes {
		return nil, &ConfigError{Field: "Shapes", Reason: "does not match the provided shape list"}
	}

	hc.score = hc.scorer.Score(hc.canvas.Render(hc.shapes))

	slog.Debug("Climber initialized",
		"kind", cfg.Kind,
		"shapes", cfg.Shapes,
		"iterations", cfg.Iterations,
		"baseline_score", hc.score,
		"baseline_similarity", hc.Similarity(),
	)

	return hc, nil
}

// Step runs a single iteration: mutate one shape, render, score, and
// accept iff the new score is strictly lower. Returns whether the
// mutation was accepted.
func (hc *Climber) Step() bool {
	i := hc.rng.Intn(len(hc.shapes))
	prev := hc.shapes[i].Clone()
	hc.shapes[i].Mutate(hc.rng, hc.bounds)

	trial := hc.scorer.Score(hc.canvas.Render(hc.shapes))
	hc.iteration++

	accepted := trial < hc.score
	if accepted {
		hc.score = trial
		hc.changes++
	} else {
		// Equal scores are rejected too: the tracked score is strictly
		// non-increasing and never churns.
		hc.shapes[i] = prev
	}

	if hc.onProgress != nil {
		cadence := hc.cfg.ReportEvery > 0 && hc.iteration%hc.cfg.ReportEvery == 0
		if accepted || cadence {
			hc.onProgress(Progress{
				Iteration:  hc.iteration,
				Changes:    hc.changes,
				Score:      hc.score,
				Similarity: hc.Similarity(),
				Accepted:   accepted,
			})
		}
	}

	return accepted
}

// Run executes the loop until the iteration budget is reached or ctx is
// cancelled between iterations. The returned result always reflects the
// best accepted state; on cancellation the context error is returned
// alongside it.
func (hc *Climber) Run(ctx context.Context) (*Result, error) {
	for hc.iteration < hc.cfg.Iterations {
		select {
		case <-ctx.Done():
			return hc.Result(), ctx.Err()
		default:
		}
		hc.Step()
	}
	return hc.Result(), nil
}

// Result re-renders the accepted shape list and packages the terminal
// output. The image is detached from the reused canvas buffer.
func (hc *Climber) Result() *Result {
	return &Result{
		Shapes:     CloneShapes(hc.shapes),
		Score:      hc.score,
		Similarity: hc.Similarity(),
		Iterations: hc.iteration,
		Changes:    hc.changes,
		Image:      CopyImage(hc.canvas.Render(hc.shapes)),
	}
}

// Shapes returns a deep copy of the current accepted shape list.
func (hc *Climber) Shapes() []Shape {
	return CloneShapes(hc.shapes)
}

// Score returns the current accepted score.
func (hc *Climber) Score() int64 {
	return hc.score
}

// Similarity returns the current accepted score as a percentage.
func (hc *Climber) Similarity() float64 {
	return hc.scorer.Similarity(hc.score)
}

// Iteration returns the number of iterations run so far.
func (hc *Climber) Iteration() int {
	return hc.iteration
}

// Changes returns the number of accepted mutations so far.
func (hc *Climber) Changes() int {
	return hc.changes
}

// Done reports whether the iteration budget has been exhausted.
func (hc *Climber) Done() bool {
	return hc.iteration >= hc.cfg.Iterations
}
