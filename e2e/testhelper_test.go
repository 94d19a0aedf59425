package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/blogforge/api/internal/handler"
	"github.com/blogforge/api/internal/model"
	"github.com/blogforge/api/internal/pipeline"
	"github.com/blogforge/api/internal/service"
	"github.com/blogforge/api/internal/store"
	"github.com/blogforge/api/internal/worker"
	ws "github.com/blogforge/api/internal/websocket"
)

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store *store.JobStore
}

// stubProvider stands in for the OpenAI-backed provider so jobs complete
// without network access.
type stubProvider struct {
	fetchErr   error
	fetchDelay time.Duration
}

func (p *stubProvider) FetchSourceMaterial(ctx context.Context, topic string, paperCount int) (*model.ResearchData, error) {
	if p.fetchDelay > 0 {
		time.Sleep(p.fetchDelay)
	}
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	papers := make([]model.Paper, paperCount)
	for i := range papers {
		papers[i] = model.Paper{
			Title:    fmt.Sprintf("Paper %d on %s", i+1, topic),
			DOI:      fmt.Sprintf("10.1000/test.%d", i+1),
			DOIValid: true,
		}
	}
	return &model.ResearchData{Topic: topic, Papers: papers}, nil
}

func (p *stubProvider) SynthesizeContent(ctx context.Context, research *model.ResearchData, opts model.GenerateRequest) (*model.BlogDocument, error) {
	refs := make([]model.Reference, len(research.Papers))
	for i, paper := range research.Papers {
		refs[i] = model.Reference{Index: i + 1, Title: paper.Title, DOI: paper.DOI}
	}
	return &model.BlogDocument{
		Title:      "Test Post: " + research.Topic,
		WordCount:  980,
		BodyMD:     "# Test Post\n\nBody text.",
		References: refs,
	}, nil
}

func (p *stubProvider) Persist(doc *model.BlogDocument, topic string) (string, error) {
	return "outputs/test.md", nil
}

// fastStages keeps e2e pipelines short.
func fastStages() []pipeline.StageSpec {
	return []pipeline.StageSpec{
		{Stage: model.StageResearch, DisplayName: "Searching papers", TickStep: 50, TickEvery: time.Millisecond},
		{Stage: model.StageGeneration, DisplayName: "Writing content", TickStep: 50, TickEvery: time.Millisecond},
		{Stage: model.StageValidation, DisplayName: "Validating content", TickStep: 50, TickEvery: time.Millisecond},
	}
}

// setupApp creates a Fiber app identical to main.go but with a stub provider
// and millisecond stage pacing so jobs finish within a test run.
func setupApp(t *testing.T, configured bool, p worker.Provider) *testApp {
	t.Helper()

	if p == nil {
		p = &stubProvider{}
	}

	validate := validator.New()

	hub := ws.NewHub()
	go hub.Run()

	jobStore := store.New()
	generator := worker.NewGenerator(jobStore, p, hub, fastStages())

	blogService := service.NewBlogService(jobStore, generator, configured)
	blogHandler := handler.NewBlogHandler(blogService, validate)

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"openai":  configured,
				"storage": true,
			},
		})
	})

	api := app.Group("/api")

	blog := api.Group("/blog")
	blog.Post("/generate", blogHandler.Generate)
	blog.Get("/status/:jobId", blogHandler.Status)
	blog.Get("/result/:jobId", blogHandler.Result)
	blog.Delete("/:jobId", blogHandler.Cancel)
	blog.Get("/jobs", blogHandler.List)

	return &testApp{app: app, store: jobStore}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// startJob submits a generation request and returns the job id.
func startJob(t *testing.T, ta *testApp, body string) string {
	t.Helper()
	resp, err := doRequest(ta.app, http.MethodPost, "/api/blog/generate", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	jobID, ok := result["jobId"].(string)
	if !ok || jobID == "" {
		t.Fatalf("expected a job id, got %v", result["jobId"])
	}
	return jobID
}

// pollUntilStatus polls the status endpoint until the job reports the wanted
// status, returning the final status payload.
func pollUntilStatus(t *testing.T, ta *testApp, jobID, want string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := doRequest(ta.app, http.MethodGet, "/api/blog/status/"+jobID, "")
		if err != nil {
			t.Fatalf("status request failed: %v", err)
		}
		assertStatus(t, resp, http.StatusOK)

		result := parseJSON(t, resp)
		if result["status"] == want {
			return result
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}
