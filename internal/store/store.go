package store

import (
	"fmt"
	"sync"

	"github.com/blogforge/api/internal/model"
)

// JobStore is the in-memory registry of jobs. Membership here is the single
// authority for whether a job exists: deleting an id is the cancellation
// signal, and the runner stops as soon as a write finds the id gone.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

func New() *JobStore {
	return &JobStore{
		jobs: make(map[string]*model.Job),
	}
}

// Create inserts a new job. An existing id is a programming error, never a
// normal outcome, since ids are generated fresh per submission.
func (s *JobStore) Create(job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job id collision: %s", job.ID)
	}
	s.jobs[job.ID] = job
	return nil
}

// Get returns a snapshot copy of the job, so the caller never observes a
// half-applied runner update.
func (s *JobStore) Get(id string) (*model.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Update applies fn to the job under the write lock. Returns false if the
// job no longer exists, which the runner treats as cancellation.
func (s *JobStore) Update(id string, fn func(*model.Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// Delete removes the job. Returns true if it existed.
func (s *JobStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	return true
}

// List returns a snapshot of all known jobs for diagnostics.
func (s *JobStore) List() []model.JobSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.JobSummary, 0, len(s.jobs))
	for id, job := range s.jobs {
		summary := model.JobSummary{
			JobID:  id,
			Status: job.Status,
		}
		if job.Status == model.JobStatusRunning {
			summary.Stage = job.CurrentStage
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
