package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/blogforge/api/internal/model"
	"github.com/blogforge/api/internal/store"
	"github.com/blogforge/api/internal/worker"
)

var (
	// ErrJobNotFound means the id is unknown, including after cancellation.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobRunning means the result was requested before completion.
	ErrJobRunning = errors.New("job still running")
	// ErrNotConfigured means the OpenAI API key is missing.
	ErrNotConfigured = errors.New("OpenAI API key not configured")
)

// FailedJobError carries a failed job's structured error to the handler.
type FailedJobError struct {
	JobError model.JobError
}

func (e *FailedJobError) Error() string {
	return fmt.Sprintf("job failed at %s: %s", e.JobError.Stage, e.JobError.Message)
}

// BlogService owns job submission and the client-facing views of job state.
type BlogService struct {
	store      *store.JobStore
	generator  *worker.Generator
	configured bool
}

func NewBlogService(jobStore *store.JobStore, generator *worker.Generator, configured bool) *BlogService {
	return &BlogService{
		store:      jobStore,
		generator:  generator,
		configured: configured,
	}
}

// StartGeneration creates the job record and schedules the runner. It never
// waits for the job; the caller gets the id back immediately.
func (s *BlogService) StartGeneration(req *model.GenerateRequest) (*model.GenerateResponse, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	req.ApplyDefaults()

	job := model.NewJob(uuid.New().String())
	if err := s.store.Create(job); err != nil {
		// Fresh UUIDs never collide; anything here is a bug, not a retry case.
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// The job outlives the submitting request, so the runner gets its own
	// context rather than the request's.
	go s.generator.Run(context.Background(), job.ID, *req)

	return &model.GenerateResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.SubmittedAt,
	}, nil
}

// GetStatus projects the job's current state into the client view. Pure
// read: the store hands back a snapshot, so a concurrent runner update is
// seen either entirely or not at all.
func (s *BlogService) GetStatus(jobID string) (*model.StatusResponse, error) {
	job, ok := s.store.Get(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}
	return Project(job), nil
}

// Project derives the client-facing status view from a job snapshot.
func Project(job *model.Job) *model.StatusResponse {
	resp := &model.StatusResponse{
		JobID:  job.ID,
		Status: job.Status,
	}

	switch job.Status {
	case model.JobStatusCompleted:
		resp.Result = job.Result
	case model.JobStatusFailed:
		resp.Error = job.Error
	default:
		resp.Stage = job.CurrentStage
		resp.Progress = job.StageProgress
		resp.FoundPapers = job.FoundPapers
		resp.Message = statusMessage(job)
	}

	return resp
}

func statusMessage(job *model.Job) string {
	switch job.CurrentStage {
	case model.StageResearch:
		if job.FoundPapers > 0 {
			return fmt.Sprintf("Found %d relevant papers", job.FoundPapers)
		}
		return "Searching papers..."
	case model.StageGeneration:
		return "Writing content..."
	case model.StageValidation:
		return "Validating content..."
	}
	return "Processing..."
}

// GetResult returns the final artifact of a completed job.
func (s *BlogService) GetResult(jobID string) (*model.BlogResult, error) {
	job, ok := s.store.Get(jobID)
	if !ok {
		return nil, ErrJobNotFound
	}

	switch job.Status {
	case model.JobStatusCompleted:
		return job.Result, nil
	case model.JobStatusFailed:
		return nil, &FailedJobError{JobError: *job.Error}
	default:
		return nil, ErrJobRunning
	}
}

// Cancel removes the job from the store. The runner observes the absence at
// its next store write and stops advancing; no terminal state is recorded.
func (s *BlogService) Cancel(jobID string) error {
	if !s.store.Delete(jobID) {
		return ErrJobNotFound
	}
	return nil
}

// ListJobs returns a diagnostic snapshot of all known jobs.
func (s *BlogService) ListJobs() []model.JobSummary {
	return s.store.List()
}
