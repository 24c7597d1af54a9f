package server

import (
	"testing"
	"time"
)

func TestEventBroadcaster(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job1")
	defer eb.Unsubscribe("job1", ch)

	event := ProgressEvent{
		JobID:      "job1",
		State:      StateRunning,
		Iteration:  1000,
		Changes:    50,
		Score:      8000,
		Similarity: 64.2,
		Timestamp:  time.Now(),
	}
	eb.Broadcast(event)

	select {
	case received := <-ch:
		if received.JobID != "job1" {
			t.Errorf("Expected jobID job1, got %s", received.JobID)
		}
		if received.Iteration != 1000 || received.Changes != 50 {
			t.Errorf("Event counters wrong: %+v", received)
		}
	case <-time.After(1 * time.Second):
		t.Error("Timeout waiting for event")
	}
}

func TestEventBroadcasterLastEventReplay(t *testing.T) {
	eb := NewEventBroadcaster()

	// Broadcast before anyone subscribes.
	eb.Broadcast(ProgressEvent{JobID: "job1", Iteration: 42})

	ch := eb.Subscribe("job1")
	defer eb.Unsubscribe("job1", ch)

	select {
	case received := <-ch:
		if received.Iteration != 42 {
			t.Errorf("Expected replay of last event, got iteration %d", received.Iteration)
		}
	case <-time.After(1 * time.Second):
		t.Error("New subscriber should receive the last event")
	}
}

func TestEventBroadcasterIsolatesJobs(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job1")
	defer eb.Unsubscribe("job1", ch)

	eb.Broadcast(ProgressEvent{JobID: "other", Iteration: 7})

	select {
	case ev := <-ch:
		t.Errorf("Received event for a different job: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBroadcasterFullChannelDoesNotBlock(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job1")
	defer eb.Unsubscribe("job1", ch)

	// Overfill the buffered channel; Broadcast must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			eb.Broadcast(ProgressEvent{JobID: "job1", Iteration: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a slow client")
	}
}

func TestEventBroadcasterCleanupJob(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job1")
	eb.CleanupJob("job1")

	if _, ok := <-ch; ok {
		t.Error("Cleanup should close subscriber channels")
	}

	// Unsubscribe after cleanup is a no-op, not a panic.
	eb.Unsubscribe("job1", ch)
}
