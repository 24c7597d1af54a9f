package store

import (
	"fmt"
	"time"

	"github.com/sgalella/GeometricArt/internal/art"
)

// JobConfig is the persisted configuration of an optimization job: the
// core climber config plus the reference image it targets.
type JobConfig struct {
	RefPath string `json:"refPath"`
	art.Config

	// CheckpointInterval is the checkpoint cadence in seconds (0 = disabled).
	CheckpointInterval int `json:"checkpointInterval,omitempty"`

	// MaxDim optionally downscales the reference so its longest side is
	// at most this many pixels (0 = keep original size).
	MaxDim int `json:"maxDim,omitempty"`
}

// Checkpoint is a saved optimization state that can be resumed later.
//
// The hill climber's full state is the accepted shape list, its score
// and the two counters, so unlike population-based optimizers a resumed
// run continues exactly where it left off. The RNG stream restarts on
// resume, so a resumed run is reproducible but not bit-identical to an
// uninterrupted one.
type Checkpoint struct {
	// JobID uniquely identifies the optimization job.
	JobID string `json:"jobId"`

	// Shapes is the accepted shape list, in painter's order.
	Shapes []art.Shape `json:"shapes"`

	// Score is the accepted pixel-difference score of Shapes.
	Score int64 `json:"score"`

	// InitialScore is the baseline score of the random starting list.
	InitialScore int64 `json:"initialScore"`

	// Similarity is Score expressed as a percentage.
	Similarity float64 `json:"similarity"`

	// Iteration and Changes are the loop counters at checkpoint time.
	Iteration int `json:"iteration"`
	Changes   int `json:"changes"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed to validate resumes.
	Config JobConfig `json:"config"`
}

// CheckpointInfo is checkpoint metadata without the shape list, used
// for listings.
type CheckpointInfo struct {
	JobID      string    `json:"jobId"`
	Score      int64     `json:"score"`
	Similarity float64   `json:"similarity"`
	Iteration  int       `json:"iteration"`
	Changes    int       `json:"changes"`
	Timestamp  time.Time `json:"timestamp"`
	Kind       art.Kind  `json:"kind"`
	Shapes     int       `json:"shapes"`
	RefPath    string    `json:"refPath"`
}

// NewCheckpoint converts runtime climber state into a persistable
// checkpoint.
func NewCheckpoint(jobID string, shapes []art.Shape, score, initialScore int64, similarity float64, iteration, changes int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:        jobID,
		Shapes:       shapes,
		Score:        score,
		InitialScore: initialScore,
		Similarity:   similarity,
		Iteration:    iteration,
		Changes:      changes,
		Timestamp:    time.Now(),
		Config:       config,
	}
}

// ToInfo strips the shape list, keeping metadata only.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:      c.JobID,
		Score:      c.Score,
		Similarity: c.Similarity,
		Iteration:  c.Iteration,
		Changes:    c.Changes,
		Timestamp:  c.Timestamp,
		Kind:       c.Config.Kind,
		Shapes:     c.Config.Shapes,
		RefPath:    c.Config.RefPath,
	}
}

// Validate checks that the checkpoint is internally consistent.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.Shapes) == 0 {
		return &ValidationError{Field: "Shapes", Reason: "cannot be empty"}
	}
	if c.Score < 0 {
		return &ValidationError{Field: "Score", Reason: "cannot be negative"}
	}
	if c.InitialScore < 0 {
		return &ValidationError{Field: "InitialScore", Reason: "cannot be negative"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Changes < 0 {
		return &ValidationError{Field: "Changes", Reason: "cannot be negative"}
	}
	if c.Changes > c.Iteration {
		return &ValidationError{Field: "Changes", Reason: "cannot exceed Iteration"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.RefPath == "" {
		return &ValidationError{Field: "Config.RefPath", Reason: "cannot be empty"}
	}
	if err := c.Config.Validate(); err != nil {
		return &ValidationError{Field: "Config", Reason: err.Error()}
	}
	if len(c.Shapes) != c.Config.Shapes {
		return &ValidationError{
			Field:  "Shapes",
			Reason: fmt.Sprintf("length mismatch: expected %d shapes, got %d", c.Config.Shapes, len(c.Shapes)),
		}
	}
	for i := range c.Shapes {
		if c.Shapes[i].Kind != c.Config.Kind {
			return &ValidationError{
				Field:  "Shapes",
				Reason: fmt.Sprintf("shape %d has kind %q, config says %q", i, c.Shapes[i].Kind, c.Config.Kind),
			}
		}
	}
	return nil
}

// IsCompatible checks whether this checkpoint can be resumed with the
// given config. The reference image and shape geometry must match; the
// iteration budget and seed may differ.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.RefPath != config.RefPath {
		return &CompatibilityError{Field: "RefPath", Expected: c.Config.RefPath, Actual: config.RefPath}
	}
	if c.Config.Kind != config.Kind {
		return &CompatibilityError{Field: "Kind", Expected: string(c.Config.Kind), Actual: string(config.Kind)}
	}
	if c.Config.Shapes != config.Shapes {
		return &CompatibilityError{
			Field:    "Shapes",
			Expected: fmt.Sprintf("%d", c.Config.Shapes),
			Actual:   fmt.Sprintf("%d", config.Shapes),
		}
	}
	if config.Kind == art.KindPolygon && c.Config.Sides != config.Sides {
		return &CompatibilityError{
			Field:    "Sides",
			Expected: fmt.Sprintf("%d", c.Config.Sides),
			Actual:   fmt.Sprintf("%d", config.Sides),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
