package store

import (
	"errors"
	"io"
	"testing"
	"time"
)

func traceEntry(iteration, changes int, score int64) TraceEntry {
	return TraceEntry{
		Iteration:  iteration,
		Changes:    changes,
		Score:      score,
		Similarity: 50.0,
		Timestamp:  time.Now(),
	}
}

func TestTraceWriteReadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}

	entries := []TraceEntry{
		traceEntry(100, 10, 9000),
		traceEntry(200, 25, 8500),
		traceEntry(300, 33, 8100),
	}
	for _, e := range entries {
		if err := tw.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	for i, e := range got {
		if e.Iteration != entries[i].Iteration || e.Score != entries[i].Score || e.Changes != entries[i].Changes {
			t.Errorf("Entry %d mismatch: got %+v, want %+v", i, e, entries[i])
		}
	}
}

func TestTraceWriterTruncatesByDefault(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(traceEntry(100, 1, 9000))
	tw.Close()

	tw, err = NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("Second NewTraceWriter failed: %v", err)
	}
	tw.Write(traceEntry(50, 2, 8000))
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 1 || got[0].Iteration != 50 {
		t.Errorf("Expected only the new entry, got %+v", got)
	}
}

func TestTraceWriterAppendMode(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(traceEntry(100, 1, 9000))
	tw.Close()

	tw, err = NewTraceWriter(dir, "job-1", true)
	if err != nil {
		t.Fatalf("Append NewTraceWriter failed: %v", err)
	}
	tw.Write(traceEntry(200, 2, 8000))
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries after append, got %d", len(got))
	}
	if got[0].Iteration != 100 || got[1].Iteration != 200 {
		t.Errorf("Append order wrong: %+v", got)
	}
}

func TestTraceFlushMakesEntriesVisible(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	defer tw.Close()

	tw.Write(traceEntry(100, 1, 9000))
	if err := tw.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	tr, err := OpenTrace(tw.Path())
	if err != nil {
		t.Fatalf("OpenTrace failed: %v", err)
	}
	defer tr.Close()

	entry, err := tr.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if entry.Iteration != 100 {
		t.Errorf("Entry iteration = %d, want 100", entry.Iteration)
	}
	if _, err := tr.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF after last entry, got %v", err)
	}
}

func TestTraceReaderMissing(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "no-such-job")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing trace, got %v", err)
	}
}
