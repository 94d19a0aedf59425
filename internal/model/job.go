package model

import "time"

// Job is the mutable state of one generation job. A single runner goroutine
// owns all writes; readers get copies via the store, never the live record.
type Job struct {
	ID            string        `json:"id"`
	Status        JobStatus     `json:"status"`
	CurrentStage  Stage         `json:"currentStage,omitempty"` // meaningful only while running
	StageProgress map[Stage]int `json:"stageProgress"`
	FoundPapers   int           `json:"foundPapers"`
	Result        *BlogResult   `json:"result,omitempty"`
	Error         *JobError     `json:"error,omitempty"`
	SubmittedAt   time.Time     `json:"submittedAt"`
	FinishedAt    *time.Time    `json:"finishedAt,omitempty"`
}

// NewJob returns a running job at the first stage with zeroed progress.
func NewJob(id string) *Job {
	progress := make(map[Stage]int, len(StageOrder))
	for _, s := range StageOrder {
		progress[s] = 0
	}
	return &Job{
		ID:            id,
		Status:        JobStatusRunning,
		CurrentStage:  StageOrder[0],
		StageProgress: progress,
		SubmittedAt:   time.Now(),
	}
}

// Clone returns a deep copy so callers can read without racing the runner.
func (j *Job) Clone() *Job {
	c := *j
	c.StageProgress = make(map[Stage]int, len(j.StageProgress))
	for s, p := range j.StageProgress {
		c.StageProgress[s] = p
	}
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	if j.Error != nil {
		e := *j.Error
		c.Error = &e
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status != JobStatusRunning
}

// JobError is the structured failure attached to a failed job.
type JobError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Stage   Stage     `json:"stage"`
}

// JobSummary is the diagnostic listing entry for a job.
type JobSummary struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
	Stage  Stage     `json:"stage,omitempty"`
}
