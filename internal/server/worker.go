package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sgalella/GeometricArt/internal/art"
	"github.com/sgalella/GeometricArt/internal/imageio"
	"github.com/sgalella/GeometricArt/internal/store"
)

// runJob executes an optimization job in the background. If
// checkpointStore is not nil and the job has CheckpointInterval > 0,
// periodic checkpoints are saved while the climber runs.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	}); err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "ref", job.Config.RefPath)

	ref, err := imageio.Load(job.Config.RefPath)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	ref = imageio.Downscale(ref, job.Config.MaxDim)

	slog.Info("Loaded reference image",
		"job_id", jobID,
		"width", ref.Bounds().Dx(),
		"height", ref.Bounds().Dy(),
	)

	// The progress sink runs on the climber's goroutine; it only takes
	// the job manager lock, so the loop never blocks on observers.
	var hc *art.Climber
	onProgress := func(p art.Progress) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Iteration = p.Iteration
			j.Changes = p.Changes
			j.Score = p.Score
			j.Similarity = p.Similarity
			if p.Accepted {
				j.Shapes = hc.Shapes()
			}
		})
	}

	hc, err = art.New(ref, job.Config.Config, art.WithProgress(onProgress))
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	jm.UpdateJob(jobID, func(j *Job) {
		j.InitialScore = hc.Score()
		j.Score = hc.Score()
		j.Similarity = hc.Similarity()
		j.Shapes = hc.Shapes()
	})

	// Broadcast SSE progress at a fixed cadence from job state.
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, progressDone)

	checkpointDone := make(chan struct{})
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	}

	start := time.Now()
	result, runErr := hc.Run(ctx)
	elapsed := time.Since(start)

	close(progressDone)
	close(checkpointDone)

	if runErr != nil {
		// Cancelled between iterations; the accepted state is still
		// consistent, so keep the best-so-far result.
		jm.UpdateJob(jobID, func(j *Job) {
			j.Shapes = result.Shapes
			j.Score = result.Score
			j.Similarity = result.Similarity
			j.Iteration = result.Iterations
			j.Changes = result.Changes
		})
		markJobCancelled(jm, jobID)
		return runErr
	}

	endTime := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Shapes = result.Shapes
		j.Score = result.Score
		j.Similarity = result.Similarity
		j.Iteration = result.Iterations
		j.Changes = result.Changes
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"iterations", result.Iterations,
		"changes", result.Changes,
		"similarity", result.Similarity,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:      jobID,
		State:      StateCompleted,
		Iteration:  result.Iterations,
		Changes:    result.Changes,
		Score:      result.Score,
		Similarity: result.Similarity,
		Timestamp:  time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events during optimization
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:      jobID,
				State:      job.State,
				Iteration:  job.Iteration,
				Changes:    job.Changes,
				Score:      job.Score,
				Similarity: job.Similarity,
				Timestamp:  time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints during optimization
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// artifactDirStore is implemented by stores that expose a per-job
// directory for image artifacts alongside the checkpoint.
type artifactDirStore interface {
	JobDir(jobID string) string
}

// saveCheckpoint saves a checkpoint of the job's accepted state.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if len(job.Shapes) == 0 {
		slog.Debug("Skipping checkpoint, no accepted shapes yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		job.Shapes,
		job.Score,
		job.InitialScore,
		job.Similarity,
		job.Iteration,
		job.Changes,
		job.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"iteration", job.Iteration,
		"similarity", job.Similarity,
	)

	if ds, ok := checkpointStore.(artifactDirStore); ok {
		if err := saveCheckpointArtifacts(ds.JobDir(jobID), job); err != nil {
			// Metadata is what matters for resume; artifacts are best effort.
			slog.Warn("Failed to save checkpoint artifacts", "job_id", jobID, "error", err)
		}
	}

	return nil
}

// saveCheckpointArtifacts renders and saves best.png next to the checkpoint.
func saveCheckpointArtifacts(jobDir string, job Job) error {
	best, err := renderJob(job)
	if err != nil {
		return err
	}

	bestPath := filepath.Join(jobDir, "best.png")
	if err := imageio.SavePNG(bestPath, best); err != nil {
		return fmt.Errorf("failed to save best.png: %w", err)
	}

	slog.Debug("Checkpoint artifacts saved", "job_id", job.ID, "best_path", bestPath)
	return nil
}
