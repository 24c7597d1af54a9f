package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sgalella/GeometricArt/internal/art"
)

func validConfig() JobConfig {
	return JobConfig{
		RefPath: "testdata/ref.png",
		Config: art.Config{
			Shapes:     2,
			Iterations: 1000,
			Kind:       art.KindCircle,
			MaxRadius:  20,
			Seed:       42,
		},
	}
}

func validCheckpoint() *Checkpoint {
	shapes := []art.Shape{
		{Kind: art.KindCircle, X: 5, Y: 5, Radius: 3, Color: art.Color{R: 255, A: 128}},
		{Kind: art.KindCircle, X: 10, Y: 10, Radius: 6, Color: art.Color{G: 255, A: 64}},
	}
	return NewCheckpoint("job-1", shapes, 5000, 12000, 72.5, 400, 120, validConfig())
}

func TestNewCheckpoint(t *testing.T) {
	cp := validCheckpoint()

	if cp.JobID != "job-1" {
		t.Errorf("JobID = %q, want job-1", cp.JobID)
	}
	if cp.Score != 5000 || cp.InitialScore != 12000 {
		t.Errorf("Scores = %d/%d, want 5000/12000", cp.Score, cp.InitialScore)
	}
	if cp.Iteration != 400 || cp.Changes != 120 {
		t.Errorf("Counters = %d/%d, want 400/120", cp.Iteration, cp.Changes)
	}
	if cp.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if err := cp.Validate(); err != nil {
		t.Errorf("Fresh checkpoint should validate: %v", err)
	}
}

func TestCheckpointValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Checkpoint)
		field  string
	}{
		{"empty job id", func(c *Checkpoint) { c.JobID = "" }, "JobID"},
		{"no shapes", func(c *Checkpoint) { c.Shapes = nil }, "Shapes"},
		{"negative score", func(c *Checkpoint) { c.Score = -1 }, "Score"},
		{"negative initial score", func(c *Checkpoint) { c.InitialScore = -1 }, "InitialScore"},
		{"negative iteration", func(c *Checkpoint) { c.Iteration = -1 }, "Iteration"},
		{"changes exceed iterations", func(c *Checkpoint) { c.Changes = c.Iteration + 1 }, "Changes"},
		{"zero timestamp", func(c *Checkpoint) { c.Timestamp = time.Time{} }, "Timestamp"},
		{"missing ref path", func(c *Checkpoint) { c.Config.RefPath = "" }, "Config.RefPath"},
		{"bad config", func(c *Checkpoint) { c.Config.Iterations = 0 }, "Config"},
		{"shape count mismatch", func(c *Checkpoint) { c.Shapes = c.Shapes[:1] }, "Shapes"},
		{"shape kind mismatch", func(c *Checkpoint) { c.Shapes[0].Kind = art.KindPolygon }, "Shapes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := validCheckpoint()
			tt.mutate(cp)

			err := cp.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Error field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}

func TestCheckpointIsCompatible(t *testing.T) {
	cp := validCheckpoint()

	if err := cp.IsCompatible(validConfig()); err != nil {
		t.Errorf("Identical config should be compatible: %v", err)
	}

	// A different iteration budget or seed is fine.
	cfg := validConfig()
	cfg.Iterations = 999999
	cfg.Seed = 7
	if err := cp.IsCompatible(cfg); err != nil {
		t.Errorf("Budget and seed changes should be compatible: %v", err)
	}
}

func TestCheckpointIncompatible(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*JobConfig)
		field  string
	}{
		{"different reference", func(c *JobConfig) { c.RefPath = "other.png" }, "RefPath"},
		{"different kind", func(c *JobConfig) { c.Kind = art.KindPolygon }, "Kind"},
		{"different shape count", func(c *JobConfig) { c.Shapes = 99 }, "Shapes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := validCheckpoint()
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cp.IsCompatible(cfg)
			if err == nil {
				t.Fatal("Expected compatibility error")
			}
			var cErr *CompatibilityError
			if !errors.As(err, &cErr) {
				t.Fatalf("Expected *CompatibilityError, got %T", err)
			}
			if cErr.Field != tt.field {
				t.Errorf("Error field = %q, want %q", cErr.Field, tt.field)
			}
		})
	}
}

func TestCheckpointSidesCompatibility(t *testing.T) {
	cp := validCheckpoint()
	cp.Config.Kind = art.KindPolygon
	cp.Config.Sides = 6
	for i := range cp.Shapes {
		cp.Shapes[i].Kind = art.KindPolygon
	}

	cfg := cp.Config
	cfg.Sides = 8
	err := cp.IsCompatible(cfg)
	var cErr *CompatibilityError
	if !errors.As(err, &cErr) || cErr.Field != "Sides" {
		t.Errorf("Polygon side count mismatch should be incompatible, got %v", err)
	}
}

func TestCheckpointToInfo(t *testing.T) {
	cp := validCheckpoint()
	info := cp.ToInfo()

	if info.JobID != cp.JobID || info.Score != cp.Score || info.Iteration != cp.Iteration {
		t.Errorf("Info lost metadata: %+v", info)
	}
	if info.Kind != art.KindCircle || info.Shapes != 2 {
		t.Errorf("Info lost config summary: %+v", info)
	}
	if info.RefPath != "testdata/ref.png" {
		t.Errorf("Info lost ref path: %q", info.RefPath)
	}
}
