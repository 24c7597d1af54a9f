package art

import (
	"log/slog"
	"math"
)

// StallConfig controls stall reporting on the accepted score. Stalls are
// reported only; the loop always runs its full iteration budget.
type StallConfig struct {
	// Enabled controls whether stall tracking is active.
	Enabled bool

	// Patience is the number of report windows with no significant
	// improvement before a stall is reported.
	Patience int

	// Threshold is the minimum relative improvement that counts as
	// progress, e.g. 0.001 for 0.1%.
	Threshold float64
}

// DefaultStallConfig reports a stall after three report windows without
// a 0.1% relative improvement.
func DefaultStallConfig() StallConfig {
	return StallConfig{
		Enabled:   true,
		Patience:  3,
		Threshold: 0.001,
	}
}

// StallTracker watches the accepted score across report windows and
// flags when the search has stopped making measurable progress.
type StallTracker struct {
	config          StallConfig
	lastSignificant float64
	staleCount      int
	samples         int
}

// NewStallTracker creates a tracker with the given config.
func NewStallTracker(config StallConfig) *StallTracker {
	return &StallTracker{
		config:          config,
		lastSignificant: math.Inf(1),
	}
}

// Update records the accepted score at a report window and returns true
// when the stall patience has been exhausted.
func (t *StallTracker) Update(score int64) bool {
	if !t.config.Enabled {
		return false
	}

	s := float64(score)
	t.samples++

	if t.samples == 1 || t.lastSignificant == 0 {
		t.lastSignificant = s
		return false
	}

	relative := (t.lastSignificant - s) / t.lastSignificant
	if relative >= t.config.Threshold {
		t.lastSignificant = s
		t.staleCount = 0
		return false
	}

	t.staleCount++
	if t.staleCount >= t.config.Patience {
		slog.Debug("Search stalled",
			"stale_windows", t.staleCount,
			"patience", t.config.Patience,
			"score", score,
		)
		return true
	}
	return false
}

// StaleCount returns the number of consecutive windows without
// significant improvement.
func (t *StallTracker) StaleCount() int {
	return t.staleCount
}

// Reset clears the tracker's state.
func (t *StallTracker) Reset() {
	t.lastSignificant = math.Inf(1)
	t.staleCount = 0
	t.samples = 0
}
