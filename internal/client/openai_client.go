package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/blogforge/api/internal/config"
	"github.com/blogforge/api/internal/model"
)

// OpenAIClient handles communication with the OpenAI chat completions API
// using structured (json_schema) outputs.
type OpenAIClient struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	researchModel string
	blogModel     string
}

// ChatMessage represents a message in the chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// JSONSchemaFormat names the schema the model output must conform to
type JSONSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// ResponseFormat requests structured output from the API
type ResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *JSONSchemaFormat `json:"json_schema,omitempty"`
}

// ChatCompletionRequest represents the request body for chat completion
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_completion_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatCompletionResponse represents the response from chat completion
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewOpenAIClient creates a new OpenAI API client
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		researchModel: cfg.ResearchModel,
		blogModel:     cfg.BlogModel,
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// FetchSourceMaterial asks the model for real papers on the topic and
// post-processes the payload: dedupe by normalized title, flag DOI format.
func (c *OpenAIClient) FetchSourceMaterial(ctx context.Context, topic string, paperCount int) (*model.ResearchData, error) {
	content, err := c.chatCompletion(ctx, chatParams{
		model:      c.researchModel,
		system:     researchSystemPrompt,
		user:       buildResearchUserPrompt(topic, paperCount),
		maxTokens:  2000,
		schemaName: researchSchemaName,
		schemaJSON: researchSchemaJSON,
	})
	if err != nil {
		return nil, err
	}

	if err := validatePayload(researchSchema, content); err != nil {
		return nil, model.NewProviderError(model.ErrKindResearch, "fetch source material", err)
	}

	var research model.ResearchData
	if err := json.Unmarshal([]byte(content), &research); err != nil {
		return nil, model.NewProviderError(model.ErrKindResearch, "fetch source material",
			fmt.Errorf("invalid JSON response: %w", err))
	}

	research.Papers = dedupeByTitle(research.Papers)
	if len(research.Papers) == 0 {
		return nil, model.NewProviderError(model.ErrKindResearch, "fetch source material",
			fmt.Errorf("no papers found for topic %q", topic))
	}

	for i := range research.Papers {
		research.Papers[i].DOIValid = validateDOIFormat(research.Papers[i].DOI)
	}

	return &research, nil
}

// SynthesizeContent turns gathered research into a structured blog document.
func (c *OpenAIClient) SynthesizeContent(ctx context.Context, research *model.ResearchData, opts model.GenerateRequest) (*model.BlogDocument, error) {
	researchJSON, err := json.Marshal(research)
	if err != nil {
		return nil, model.NewProviderError(model.ErrKindAPI, "synthesize content", err)
	}

	content, err := c.chatCompletion(ctx, chatParams{
		model:      c.blogModel,
		system:     buildBlogSystemPrompt(opts),
		user:       buildBlogUserPrompt(research, researchJSON),
		maxTokens:  3200,
		schemaName: blogSchemaName,
		schemaJSON: blogSchemaJSON,
	})
	if err != nil {
		return nil, err
	}

	if err := validatePayload(blogSchema, content); err != nil {
		return nil, model.NewProviderError(model.ErrKindAPI, "synthesize content", err)
	}

	var doc model.BlogDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, model.NewProviderError(model.ErrKindAPI, "synthesize content",
			fmt.Errorf("invalid JSON response: %w", err))
	}

	return &doc, nil
}

type chatParams struct {
	model      string
	system     string
	user       string
	maxTokens  int
	schemaName string
	schemaJSON string
}

// chatCompletion sends a structured chat completion request and returns the
// raw message content. Failures come back as tagged provider errors.
func (c *OpenAIClient) chatCompletion(ctx context.Context, p chatParams) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: p.model,
		Messages: []ChatMessage{
			{Role: "system", Content: p.system},
			{Role: "user", Content: p.user},
		},
		Temperature: 0.7,
		MaxTokens:   p.maxTokens,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchemaFormat{
				Name:   p.schemaName,
				Strict: true,
				Schema: json.RawMessage(p.schemaJSON),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", model.NewProviderError(model.ErrKindAPI, "chat completion",
			fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", model.NewProviderError(model.ErrKindAPI, "chat completion",
			fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", model.NewProviderError(model.ErrKindNetwork, "chat completion", err)
	}
	defer resp.Body.Close()

	var chatResp ChatCompletionResponse
	if resp.StatusCode != http.StatusOK {
		return "", model.NewProviderError(model.ErrKindAPI, "chat completion",
			fmt.Errorf("openai API error (status %d)", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", model.NewProviderError(model.ErrKindAPI, "chat completion",
			fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if len(chatResp.Choices) == 0 {
		return "", model.NewProviderError(model.ErrKindAPI, "chat completion",
			fmt.Errorf("no choices in response"))
	}

	return chatResp.Choices[0].Message.Content, nil
}

func validatePayload(schema schemaValidator, content string) error {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}

type schemaValidator interface {
	Validate(v any) error
}

var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// validateDOIFormat checks DOI format roughly (does not verify existence).
func validateDOIFormat(doi string) bool {
	return doiPattern.MatchString(strings.TrimSpace(doi))
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// dedupeByTitle returns unique papers by normalized title, keeping order.
func dedupeByTitle(papers []model.Paper) []model.Paper {
	seen := make(map[string]bool, len(papers))
	out := make([]model.Paper, 0, len(papers))
	for _, p := range papers {
		key := whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(p.Title)), " ")
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	return out
}
