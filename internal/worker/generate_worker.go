package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/blogforge/api/internal/model"
	"github.com/blogforge/api/internal/pipeline"
	"github.com/blogforge/api/internal/store"
)

// Provider abstracts the external collaborators that perform the real work
// for each stage. The runner never talks to OpenAI or the filesystem
// directly.
type Provider interface {
	FetchSourceMaterial(ctx context.Context, topic string, paperCount int) (*model.ResearchData, error)
	SynthesizeContent(ctx context.Context, research *model.ResearchData, opts model.GenerateRequest) (*model.BlogDocument, error)
	Persist(doc *model.BlogDocument, topic string) (string, error)
}

// Notifier pushes advisory progress events to subscribers. Polling the store
// remains the source of truth. The websocket hub satisfies this.
type Notifier interface {
	BroadcastProgress(jobID string, stage model.Stage, progress int, message string)
	BroadcastComplete(jobID string, result *model.BlogResult)
	BroadcastError(jobID string, jobErr model.JobError)
}

// Generator drives one job through the pipeline stages. All job mutation
// goes through the store; an Update that reports the id gone means the job
// was cancelled and the runner stops without a terminal state.
type Generator struct {
	store    *store.JobStore
	provider Provider
	notifier Notifier
	stages   []pipeline.StageSpec
}

// NewGenerator creates a generator. A nil stages slice uses the default
// pipeline; tests inject faster specs.
func NewGenerator(jobStore *store.JobStore, provider Provider, notifier Notifier, stages []pipeline.StageSpec) *Generator {
	if stages == nil {
		stages = pipeline.Stages()
	}
	return &Generator{
		store:    jobStore,
		provider: provider,
		notifier: notifier,
		stages:   stages,
	}
}

// Run executes the full pipeline for one submitted job. It is the only
// writer for that job record and transitions it to a terminal state at most
// once. Run is called on its own goroutine per job.
func (g *Generator) Run(ctx context.Context, jobID string, req model.GenerateRequest) {
	stage := g.stages[0].Stage
	defer func() {
		if r := recover(); r != nil {
			log.Printf("generation job %s panicked: %v", jobID, r)
			g.fail(jobID, model.JobError{
				Kind:    model.ErrKindAPI,
				Message: fmt.Sprintf("internal error: %v", r),
				Stage:   stage,
			})
		}
	}()

	var (
		research  *model.ResearchData
		doc       *model.BlogDocument
		savedPath string
	)

	for i, spec := range g.stages {
		stage = spec.Stage

		if !g.tickProgress(jobID, spec) {
			log.Printf("generation job %s cancelled during %s", jobID, spec.Stage)
			return
		}

		// Stage checkpoint: the provider call is the real work. A deleted
		// job is observed at the next store write, not mid-call.
		var err error
		switch spec.Stage {
		case model.StageResearch:
			research, err = g.provider.FetchSourceMaterial(ctx, req.Topic, req.PaperCount)
		case model.StageGeneration:
			doc, err = g.provider.SynthesizeContent(ctx, research, req)
		case model.StageValidation:
			savedPath, err = g.provider.Persist(doc, req.Topic)
		}
		if err != nil {
			g.fail(jobID, classify(err, spec.Stage))
			return
		}

		ok := g.store.Update(jobID, func(j *model.Job) {
			j.StageProgress[spec.Stage] = 100
			if spec.Stage == model.StageResearch {
				j.FoundPapers = len(research.Papers)
			}
			if i+1 < len(g.stages) {
				j.CurrentStage = g.stages[i+1].Stage
			}
		})
		if !ok {
			log.Printf("generation job %s cancelled after %s", jobID, spec.Stage)
			return
		}
		if g.notifier != nil {
			g.notifier.BroadcastProgress(jobID, spec.Stage, 100, spec.DisplayName)
		}
	}

	result := buildResult(jobID, doc, savedPath)
	now := time.Now()
	ok := g.store.Update(jobID, func(j *model.Job) {
		j.Status = model.JobStatusCompleted
		j.Result = result
		j.FinishedAt = &now
	})
	if !ok {
		return
	}
	if g.notifier != nil {
		g.notifier.BroadcastComplete(jobID, result)
	}
	log.Printf("generation job %s completed (%d words)", jobID, result.WordCount)
}

// tickProgress paces the stage from 0 toward 100, yielding between updates
// so cancellation and polls are observed promptly. The final 100 is written
// only after the stage checkpoint succeeds. Returns false on cancellation.
func (g *Generator) tickProgress(jobID string, spec pipeline.StageSpec) bool {
	for p := 0; p < 100; p += spec.TickStep {
		ok := g.store.Update(jobID, func(j *model.Job) {
			if p > j.StageProgress[spec.Stage] {
				j.StageProgress[spec.Stage] = p
			}
		})
		if !ok {
			return false
		}
		if g.notifier != nil {
			g.notifier.BroadcastProgress(jobID, spec.Stage, p, spec.DisplayName)
		}
		time.Sleep(spec.TickEvery)
	}
	return true
}

// fail transitions the job to its terminal failed state. A job deleted
// while the provider call was in flight is already gone; nothing to record.
func (g *Generator) fail(jobID string, jobErr model.JobError) {
	now := time.Now()
	ok := g.store.Update(jobID, func(j *model.Job) {
		if j.Terminal() {
			return
		}
		j.Status = model.JobStatusFailed
		j.Error = &jobErr
		j.FinishedAt = &now
	})
	if !ok {
		return
	}
	if g.notifier != nil {
		g.notifier.BroadcastError(jobID, jobErr)
	}
	log.Printf("generation job %s failed at %s: %s", jobID, jobErr.Stage, jobErr.Message)
}

// classify maps a provider failure to the client-facing taxonomy. Tagged
// provider errors carry their own kind; context timeouts count as network
// failures; everything else is the api_error default.
func classify(err error, stage model.Stage) model.JobError {
	kind := model.ErrKindAPI
	var perr *model.ProviderError
	switch {
	case errors.As(err, &perr):
		kind = perr.Kind
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		kind = model.ErrKindNetwork
	}
	return model.JobError{
		Kind:    kind,
		Message: err.Error(),
		Stage:   stage,
	}
}

func buildResult(jobID string, doc *model.BlogDocument, savedPath string) *model.BlogResult {
	readTime := doc.WordCount / 200
	if readTime < 1 {
		readTime = 1
	}
	return &model.BlogResult{
		JobID:             jobID,
		Title:             doc.Title,
		Content:           doc.BodyMD,
		WordCount:         doc.WordCount,
		EstimatedReadTime: readTime,
		CitationCount:     len(doc.References),
		SavedPath:         savedPath,
		CreatedAt:         time.Now(),
	}
}
