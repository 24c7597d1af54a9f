package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sgalella/GeometricArt/internal/art"
	"github.com/sgalella/GeometricArt/internal/store"
)

// JobState represents the current state of a job
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// JobConfig is an alias for the persisted job configuration.
type JobConfig = store.JobConfig

// Job represents an optimization job. Shapes holds the accepted shape
// list and is deliberately excluded from JSON: listings stay light and
// the rendered result is served as best.png instead.
type Job struct {
	ID           string      `json:"id"`
	State        JobState    `json:"state"`
	Config       JobConfig   `json:"config"`
	Shapes       []art.Shape `json:"-"`
	Score        int64       `json:"score"`
	InitialScore int64       `json:"initialScore"`
	Similarity   float64     `json:"similarity"`
	Iteration    int         `json:"iteration"`
	Changes      int         `json:"changes"`
	StartTime    time.Time   `json:"startTime"`
	EndTime      *time.Time  `json:"endTime,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob creates a new job with the given configuration
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job
}

// GetJob retrieves a snapshot of a job by ID. The shape list is cloned
// so callers can render it without racing the worker.
func (jm *JobManager) GetJob(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return Job{}, false
	}

	snapshot := *job
	snapshot.Shapes = art.CloneShapes(job.Shapes)
	return snapshot, true
}

// ListJobs returns snapshots of all jobs, without shape lists.
func (jm *JobManager) ListJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		snapshot := *job
		snapshot.Shapes = nil
		jobs = append(jobs, snapshot)
	}
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns snapshots of all jobs currently running.
func (jm *JobManager) GetRunningJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	running := make([]Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			snapshot := *job
			snapshot.Shapes = nil
			running = append(running, snapshot)
		}
	}
	return running
}
