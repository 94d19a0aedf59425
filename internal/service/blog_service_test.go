package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blogforge/api/internal/model"
	"github.com/blogforge/api/internal/pipeline"
	"github.com/blogforge/api/internal/store"
	"github.com/blogforge/api/internal/worker"
)

// stubProvider returns canned artifacts instantly.
type stubProvider struct {
	fetchErr error
}

func (p *stubProvider) FetchSourceMaterial(ctx context.Context, topic string, paperCount int) (*model.ResearchData, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	papers := make([]model.Paper, paperCount)
	for i := range papers {
		papers[i] = model.Paper{Title: topic, DOI: "10.1000/x"}
	}
	return &model.ResearchData{Topic: topic, Papers: papers}, nil
}

func (p *stubProvider) SynthesizeContent(ctx context.Context, research *model.ResearchData, opts model.GenerateRequest) (*model.BlogDocument, error) {
	return &model.BlogDocument{
		Title:     "Post",
		WordCount: 1000,
		BodyMD:    "body",
		References: []model.Reference{
			{Index: 1, Title: "r1"},
			{Index: 2, Title: "r2"},
			{Index: 3, Title: "r3"},
		},
	}, nil
}

func (p *stubProvider) Persist(doc *model.BlogDocument, topic string) (string, error) {
	return "outputs/post.md", nil
}

func fastStages() []pipeline.StageSpec {
	return []pipeline.StageSpec{
		{Stage: model.StageResearch, DisplayName: "Searching papers", TickStep: 50, TickEvery: time.Millisecond},
		{Stage: model.StageGeneration, DisplayName: "Writing content", TickStep: 50, TickEvery: time.Millisecond},
		{Stage: model.StageValidation, DisplayName: "Validating content", TickStep: 50, TickEvery: time.Millisecond},
	}
}

func newTestService(t *testing.T, configured bool, p worker.Provider) (*BlogService, *store.JobStore) {
	t.Helper()
	if p == nil {
		p = &stubProvider{}
	}
	jobStore := store.New()
	gen := worker.NewGenerator(jobStore, p, nil, fastStages())
	return NewBlogService(jobStore, gen, configured), jobStore
}

func waitForStatus(t *testing.T, svc *BlogService, jobID string, want model.JobStatus) *model.StatusResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := svc.GetStatus(jobID)
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if resp.Status == want {
			return resp
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestStartGenerationNotConfigured(t *testing.T) {
	svc, _ := newTestService(t, false, nil)

	_, err := svc.StartGeneration(&model.GenerateRequest{Topic: "t"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStartGenerationReturnsImmediately(t *testing.T) {
	svc, _ := newTestService(t, true, nil)

	resp, err := svc.StartGeneration(&model.GenerateRequest{Topic: "go concurrency"})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("expected a job id")
	}
	if resp.Status != model.JobStatusRunning {
		t.Errorf("expected running, got %s", resp.Status)
	}

	status, err := svc.GetStatus(resp.JobID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Status != model.JobStatusRunning && status.Status != model.JobStatusCompleted {
		t.Errorf("unexpected status %s", status.Status)
	}

	final := waitForStatus(t, svc, resp.JobID, model.JobStatusCompleted)
	if final.Result == nil || final.Result.Content == "" {
		t.Error("expected non-empty result content")
	}
}

func TestStartGenerationConcurrentDistinctIDs(t *testing.T) {
	svc, _ := newTestService(t, true, nil)
	const n = 20

	var mu sync.Mutex
	ids := make(map[string]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.StartGeneration(&model.GenerateRequest{Topic: "t"})
			if err != nil {
				t.Errorf("start failed: %v", err)
				return
			}
			mu.Lock()
			ids[resp.JobID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != n {
		t.Fatalf("expected %d distinct job ids, got %d", n, len(ids))
	}
	for id := range ids {
		waitForStatus(t, svc, id, model.JobStatusCompleted)
	}
}

func TestProjectRunningMessages(t *testing.T) {
	job := model.NewJob("j")

	resp := Project(job)
	if resp.Status != model.JobStatusRunning {
		t.Fatalf("expected running, got %s", resp.Status)
	}
	if resp.Stage != model.StageResearch {
		t.Errorf("expected research stage, got %s", resp.Stage)
	}
	if resp.Message != "Searching papers..." {
		t.Errorf("unexpected message %q", resp.Message)
	}

	job.FoundPapers = 5
	if got := Project(job).Message; got != "Found 5 relevant papers" {
		t.Errorf("unexpected message %q", got)
	}

	job.CurrentStage = model.StageGeneration
	if got := Project(job).Message; got != "Writing content..." {
		t.Errorf("unexpected message %q", got)
	}

	job.CurrentStage = model.StageValidation
	if got := Project(job).Message; got != "Validating content..." {
		t.Errorf("unexpected message %q", got)
	}
}

func TestProjectTerminalStates(t *testing.T) {
	completed := model.NewJob("c")
	completed.Status = model.JobStatusCompleted
	completed.Result = &model.BlogResult{JobID: "c", Title: "Post"}

	resp := Project(completed)
	if resp.Result == nil || resp.Result.Title != "Post" {
		t.Error("expected result in completed projection")
	}
	if resp.Message != "" || resp.Stage != "" {
		t.Error("completed projection must not carry running fields")
	}

	failed := model.NewJob("f")
	failed.Status = model.JobStatusFailed
	failed.Error = &model.JobError{Kind: model.ErrKindResearch, Message: "no papers", Stage: model.StageResearch}

	resp = Project(failed)
	if resp.Error == nil || resp.Error.Kind != model.ErrKindResearch {
		t.Error("expected structured error in failed projection")
	}
	if resp.Result != nil {
		t.Error("failed projection must not carry a result")
	}
}

func TestGetStatusUnknown(t *testing.T) {
	svc, _ := newTestService(t, true, nil)
	if _, err := svc.GetStatus("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestGetResultStates(t *testing.T) {
	svc, jobStore := newTestService(t, true, nil)

	if _, err := svc.GetResult("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	running := model.NewJob("running")
	if err := jobStore.Create(running); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.GetResult("running"); !errors.Is(err, ErrJobRunning) {
		t.Fatalf("expected ErrJobRunning, got %v", err)
	}

	failed := model.NewJob("failed")
	failed.Status = model.JobStatusFailed
	failed.Error = &model.JobError{Kind: model.ErrKindNetwork, Message: "down", Stage: model.StageResearch}
	if err := jobStore.Create(failed); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.GetResult("failed")
	var fje *FailedJobError
	if !errors.As(err, &fje) {
		t.Fatalf("expected FailedJobError, got %v", err)
	}
	if fje.JobError.Kind != model.ErrKindNetwork {
		t.Errorf("expected network_error, got %s", fje.JobError.Kind)
	}

	done := model.NewJob("done")
	done.Status = model.JobStatusCompleted
	done.Result = &model.BlogResult{JobID: "done", WordCount: 900}
	if err := jobStore.Create(done); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	result, err := svc.GetResult("done")
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	if result.WordCount != 900 {
		t.Errorf("expected word count 900, got %d", result.WordCount)
	}
}

func TestCancelMakesJobUnknown(t *testing.T) {
	svc, _ := newTestService(t, true, nil)

	if err := svc.Cancel("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	resp, err := svc.StartGeneration(&model.GenerateRequest{Topic: "t"})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := svc.Cancel(resp.JobID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.GetStatus(resp.JobID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound after cancel, got %v", err)
	}
}

func TestListJobs(t *testing.T) {
	svc, _ := newTestService(t, true, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.StartGeneration(&model.GenerateRequest{Topic: "t"}); err != nil {
			t.Fatalf("start failed: %v", err)
		}
	}
	if got := len(svc.ListJobs()); got != 3 {
		t.Errorf("expected 3 jobs listed, got %d", got)
	}
}
