package plotting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sgalella/GeometricArt/internal/store"
)

func sampleTrace() []store.TraceEntry {
	entries := make([]store.TraceEntry, 10)
	for i := range entries {
		entries[i] = store.TraceEntry{
			Iteration:  (i + 1) * 1000,
			Changes:    (i + 1) * 40,
			Score:      int64(100000 - i*8000),
			Similarity: 20 + float64(i)*7,
			Timestamp:  time.Now(),
		}
	}
	return entries
}

func TestSimilarityChart(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "similarity.png")

	if err := SimilarityChart(sampleTrace(), "test run", outPath); err != nil {
		t.Fatalf("SimilarityChart failed: %v", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("Chart file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Chart file is empty")
	}
}

func TestChangesChart(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "changes.png")

	if err := ChangesChart(sampleTrace(), "test run", outPath); err != nil {
		t.Fatalf("ChangesChart failed: %v", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("Chart file missing: %v", err)
	}
}

func TestChartsRejectEmptyTrace(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "empty.png")

	if err := SimilarityChart(nil, "empty", outPath); err == nil {
		t.Error("SimilarityChart should reject an empty trace")
	}
	if err := ChangesChart(nil, "empty", outPath); err == nil {
		t.Error("ChangesChart should reject an empty trace")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("No chart file should be written for an empty trace")
	}
}
