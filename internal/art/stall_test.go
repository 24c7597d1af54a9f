package art

import "testing"

func TestStallTrackerDetectsStall(t *testing.T) {
	tracker := NewStallTracker(StallConfig{Enabled: true, Patience: 3, Threshold: 0.001})

	if tracker.Update(10000) {
		t.Error("First sample should never report a stall")
	}

	// No improvement at all for three windows.
	for i := 1; i <= 2; i++ {
		if tracker.Update(10000) {
			t.Errorf("Stall reported after %d stale windows, patience is 3", i)
		}
	}
	if !tracker.Update(10000) {
		t.Error("Expected a stall after 3 windows without improvement")
	}
	if tracker.StaleCount() != 3 {
		t.Errorf("StaleCount should be 3, got %d", tracker.StaleCount())
	}
}

func TestStallTrackerResetOnImprovement(t *testing.T) {
	tracker := NewStallTracker(StallConfig{Enabled: true, Patience: 2, Threshold: 0.001})

	tracker.Update(10000)
	tracker.Update(10000) // stale window 1

	// A 1% improvement clears the stale count.
	if tracker.Update(9900) {
		t.Error("Significant improvement should not report a stall")
	}
	if tracker.StaleCount() != 0 {
		t.Errorf("StaleCount should reset on improvement, got %d", tracker.StaleCount())
	}
}

func TestStallTrackerInsignificantImprovement(t *testing.T) {
	tracker := NewStallTracker(StallConfig{Enabled: true, Patience: 2, Threshold: 0.01})

	tracker.Update(10000)
	// 0.5% improvement is below the 1% threshold.
	if tracker.Update(9950) {
		t.Error("One stale window should not report a stall yet")
	}
	if !tracker.Update(9940) {
		t.Error("Expected a stall after two windows below the threshold")
	}
}

func TestStallTrackerDisabled(t *testing.T) {
	tracker := NewStallTracker(StallConfig{Enabled: false, Patience: 1, Threshold: 0.5})

	for i := 0; i < 10; i++ {
		if tracker.Update(5000) {
			t.Fatal("Disabled tracker should never report a stall")
		}
	}
}

func TestStallTrackerReset(t *testing.T) {
	tracker := NewStallTracker(DefaultStallConfig())

	tracker.Update(1000)
	tracker.Update(1000)
	tracker.Reset()

	if tracker.StaleCount() != 0 {
		t.Errorf("Reset should clear the stale count, got %d", tracker.StaleCount())
	}
	if tracker.Update(1000) {
		t.Error("First sample after reset should never report a stall")
	}
}
