package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore persists checkpoints on the filesystem under
// <baseDir>/jobs/<jobID>/. Writes go through a temp file + rename, so
// no locking is needed and concurrent callers are safe.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem store rooted at baseDir, creating the
// directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// JobDir returns the directory holding a job's checkpoint and artifacts.
func (fs *FSStore) JobDir(jobID string) string {
	return filepath.Join(fs.baseDir, "jobs", jobID)
}

func (fs *FSStore) checkpointPath(jobID string) string {
	return filepath.Join(fs.JobDir(jobID), "checkpoint.json")
}

// SaveCheckpoint atomically saves a checkpoint for the given job.
func (fs *FSStore) SaveCheckpoint(jobID string, checkpoint *Checkpoint) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if checkpoint == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}

	if err := os.MkdirAll(fs.JobDir(jobID), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	finalPath := fs.checkpointPath(jobID)
	tempPath := finalPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp checkpoint file: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}

	slog.Debug("Checkpoint saved", "job_id", jobID, "path", finalPath)
	return nil
}

// LoadCheckpoint retrieves the checkpoint for the given job.
func (fs *FSStore) LoadCheckpoint(jobID string) (*Checkpoint, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	path := fs.checkpointPath(jobID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{JobID: jobID}
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint: %w", err)
	}

	slog.Debug("Checkpoint loaded", "job_id", jobID, "path", path)
	return &checkpoint, nil
}

// ListCheckpoints returns metadata for all available checkpoints,
// skipping directories without a readable checkpoint.json.
func (fs *FSStore) ListCheckpoints() ([]CheckpointInfo, error) {
	jobsDir := filepath.Join(fs.baseDir, "jobs")

	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []CheckpointInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	var infos []CheckpointInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		checkpoint, err := fs.LoadCheckpoint(entry.Name())
		if err != nil {
			if !os.IsNotExist(err) && !isNotFound(err) {
				slog.Warn("Failed to load checkpoint for listing", "job_id", entry.Name(), "error", err)
			}
			continue
		}
		infos = append(infos, checkpoint.ToInfo())
	}

	slog.Debug("Listed checkpoints", "count", len(infos))
	return infos, nil
}

// DeleteCheckpoint removes the checkpoint and all artifacts for a job.
func (fs *FSStore) DeleteCheckpoint(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	jobDir := fs.JobDir(jobID)
	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		return &NotFoundError{JobID: jobID}
	} else if err != nil {
		return fmt.Errorf("failed to stat job directory: %w", err)
	}

	if err := os.RemoveAll(jobDir); err != nil {
		return fmt.Errorf("failed to remove job directory: %w", err)
	}

	slog.Debug("Checkpoint deleted", "job_id", jobID, "path", jobDir)
	return nil
}

func isNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}
