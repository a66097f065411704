package server

import (
	"sync"

	"github.com/google/uuid"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job tracks one processing request from upload to download. Jobs live in
// memory only; the service is single-tenant by design and restarts drop
// unfinished work.
type Job struct {
	mu sync.Mutex

	ID      string `json:"id"`
	Status  string `json:"status"`
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Error   string `json:"error,omitempty"`

	workDir string
	zipPath string
}

func (j *Job) setProgress(stage string, pct int) {
	j.mu.Lock()
	j.Status = StatusProcessing
	j.Stage = stage
	j.Percent = pct
	j.mu.Unlock()
}

func (j *Job) complete(zipPath string) {
	j.mu.Lock()
	j.Status = StatusCompleted
	j.Stage = "done"
	j.Percent = 100
	j.zipPath = zipPath
	j.mu.Unlock()
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	j.Status = StatusFailed
	j.Error = err.Error()
	j.mu.Unlock()
}

// snapshot copies the public fields under the lock for JSON encoding.
func (j *Job) snapshot() Job {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Job{ID: j.ID, Status: j.Status, Stage: j.Stage, Percent: j.Percent, Error: j.Error}
}

type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*Job)}
}

func (s *jobStore) create(workDir string) *Job {
	job := &Job{
		ID:      uuid.NewString(),
		Status:  StatusPending,
		workDir: workDir,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

func (s *jobStore) get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}
