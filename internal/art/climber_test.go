package art

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func testConfig() Config {
	return Config{
		Shapes:     3,
		Iterations: 500,
		Kind:       KindCircle,
		MaxRadius:  8,
		Seed:       42,
	}
}

func TestClimberScoreNeverIncreases(t *testing.T) {
	target := uniformNRGBA(24, 24, 128, 64, 192)
	hc, err := New(target, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	prev := hc.Score()
	for i := 0; i < 500; i++ {
		hc.Step()
		if hc.Score() > prev {
			t.Fatalf("Score increased at iteration %d: %d -> %d", i, prev, hc.Score())
		}
		prev = hc.Score()
	}
}

func TestClimberRejectionRestoresState(t *testing.T) {
	target := uniformNRGBA(16, 16, 200, 200, 200)
	hc, err := New(target, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 200; i++ {
		before := hc.Shapes()
		score := hc.Score()
		if hc.Step() {
			continue
		}
		if hc.Score() != score {
			t.Fatalf("Rejected step changed the score: %d -> %d", score, hc.Score())
		}
		if !reflect.DeepEqual(before, hc.Shapes()) {
			t.Fatal("Rejected step left a mutated shape in place")
		}
	}
}

func TestClimberDeterministicGivenSeed(t *testing.T) {
	target := uniformNRGBA(20, 20, 30, 144, 255)
	cfg := testConfig()

	run := func() *Result {
		hc, err := New(target, cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		res, err := hc.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return res
	}

	a := run()
	b := run()

	if a.Score != b.Score || a.Changes != b.Changes {
		t.Errorf("Same seed produced different outcomes: score %d/%d, changes %d/%d",
			a.Score, b.Score, a.Changes, b.Changes)
	}
	if !reflect.DeepEqual(a.Shapes, b.Shapes) {
		t.Error("Same seed produced different shape lists")
	}
}

func TestClimberScoreMatchesRender(t *testing.T) {
	target := uniformNRGBA(18, 18, 90, 60, 30)
	hc, err := New(target, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := hc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	scorer, err := NewScorer(target, 18, 18)
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	canvas := NewCanvas(18, 18, White)
	rescore := scorer.Score(canvas.Render(res.Shapes))

	if rescore != res.Score {
		t.Errorf("Tracked score %d does not match re-rendered score %d", res.Score, rescore)
	}
}

func TestClimberSingleCircleScenario(t *testing.T) {
	target := uniformNRGBA(32, 32, 255, 0, 0)
	cfg := Config{
		Shapes:     1,
		Iterations: 1000,
		Kind:       KindCircle,
		MaxRadius:  16,
		Seed:       42,
	}

	hc, err := New(target, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	baseline := hc.Score()

	res, err := hc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Iterations != 1000 {
		t.Errorf("Expected 1000 iterations, got %d", res.Iterations)
	}
	if res.Score > baseline {
		t.Errorf("Final score %d worse than baseline %d", res.Score, baseline)
	}
	if res.Similarity < 0 || res.Similarity > 100 {
		t.Errorf("Similarity out of range: %f", res.Similarity)
	}
	if len(res.Shapes) != 1 {
		t.Errorf("Shape count drifted: %d", len(res.Shapes))
	}
}

func TestClimberProgressCallback(t *testing.T) {
	target := uniformNRGBA(16, 16, 0, 0, 0)
	cfg := testConfig()
	cfg.Iterations = 300
	cfg.ReportEvery = 100

	var events []Progress
	hc, err := New(target, cfg, WithProgress(func(p Progress) {
		events = append(events, p)
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := hc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cadenceHits := 0
	for _, ev := range events {
		if ev.Iteration%100 == 0 {
			cadenceHits++
		}
		if !ev.Accepted && ev.Iteration%100 != 0 {
			t.Errorf("Unexpected event at iteration %d: neither accepted nor on cadence", ev.Iteration)
		}
	}
	if cadenceHits < 3 {
		t.Errorf("Expected at least 3 cadence reports, got %d", cadenceHits)
	}
}

func TestClimberRunHonorsContext(t *testing.T) {
	target := uniformNRGBA(16, 16, 50, 50, 50)
	hc, err := New(target, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := hc.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if res == nil {
		t.Fatal("Cancelled run should still return the best state")
	}
	if res.Iterations != 0 {
		t.Errorf("Pre-cancelled context should stop before the first iteration, got %d", res.Iterations)
	}
}

func TestClimberResumeFromState(t *testing.T) {
	target := uniformNRGBA(20, 20, 80, 160, 240)
	cfg := testConfig()
	cfg.Iterations = 200

	hc, err := New(target, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		hc.Step()
	}

	resumed, err := New(target, cfg, WithState(hc.Shapes(), hc.Iteration(), hc.Changes()))
	if err != nil {
		t.Fatalf("Resume construction failed: %v", err)
	}

	if resumed.Score() != hc.Score() {
		t.Errorf("Resumed baseline score %d, want %d", resumed.Score(), hc.Score())
	}
	if resumed.Iteration() != 100 {
		t.Errorf("Resumed iteration %d, want 100", resumed.Iteration())
	}

	res, err := resumed.Run(context.Background())
	if err != nil {
		t.Fatalf("Resumed run failed: %v", err)
	}
	if res.Iterations != 200 {
		t.Errorf("Resumed run should finish the budget, got %d", res.Iterations)
	}
	if res.Score > hc.Score() {
		t.Errorf("Resumed run made the score worse: %d -> %d", hc.Score(), res.Score)
	}
}

func TestClimberWithStateLengthMismatch(t *testing.T) {
	target := uniformNRGBA(10, 10, 0, 0, 0)
	cfg := testConfig()

	_, err := New(target, cfg, WithState([]Shape{}, 0, 0))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigError for mismatched state length, got %v", err)
	}
}

func TestClimberInvalidConfig(t *testing.T) {
	target := uniformNRGBA(10, 10, 0, 0, 0)
	cfg := testConfig()
	cfg.Shapes = 0

	if _, err := New(target, cfg); err == nil {
		t.Fatal("Expected error for invalid config")
	}
}

func TestClimberDone(t *testing.T) {
	target := uniformNRGBA(8, 8, 10, 20, 30)
	cfg := testConfig()
	cfg.Iterations = 5

	hc, err := New(target, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if hc.Done() {
		t.Error("Fresh climber should not be done")
	}
	if _, err := hc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !hc.Done() {
		t.Error("Climber should be done after exhausting the budget")
	}
}
