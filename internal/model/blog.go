package model

import "time"

// GenerateRequest represents the request body for starting a blog generation job
type GenerateRequest struct {
	Topic             string `json:"topic" validate:"required,min=1,max=500"`
	WordCount         int    `json:"wordCount" validate:"omitempty,gte=500,lte=2000"`
	Tone              Tone   `json:"tone" validate:"omitempty,oneof=conversational professional academic"`
	PaperCount        int    `json:"paperCount" validate:"omitempty,gte=3,lte=10"`
	IncludeFAQ        bool   `json:"includeFaq"`
	IncludeStatistics bool   `json:"includeStatistics"`
	IncludeExamples   bool   `json:"includeExamples"`
}

// ApplyDefaults fills unset optional fields.
func (r *GenerateRequest) ApplyDefaults() {
	if r.WordCount == 0 {
		r.WordCount = 1000
	}
	if r.Tone == "" {
		r.Tone = ToneConversational
	}
	if r.PaperCount == 0 {
		r.PaperCount = 5
	}
}

// GenerateResponse represents the response for a submitted job
type GenerateResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusResponse is the projector's client-facing view of a job
type StatusResponse struct {
	JobID       string        `json:"jobId"`
	Status      JobStatus     `json:"status"`
	Stage       Stage         `json:"stage,omitempty"`
	Progress    map[Stage]int `json:"progress,omitempty"`
	Message     string        `json:"message,omitempty"`
	FoundPapers int           `json:"foundPapers,omitempty"`
	Result      *BlogResult   `json:"result,omitempty"`
	Error       *JobError     `json:"error,omitempty"`
}

// Paper is one research paper returned by the research stage
type Paper struct {
	Title        string       `json:"title"`
	Authors      []string     `json:"authors"`
	Abstract     string       `json:"abstract"`
	Journal      string       `json:"journal"`
	DOI          string       `json:"doi"`
	DOIValid     bool         `json:"doiValid"`
	Citations    int          `json:"citations"`
	EvidenceType EvidenceType `json:"evidence_type"`
}

// ResearchData is the research stage artifact
type ResearchData struct {
	Topic  string  `json:"topic"`
	Papers []Paper `json:"papers"`
}

// Reference is a numbered citation in the generated post
type Reference struct {
	Index   int      `json:"index"`
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Journal string   `json:"journal"`
	Year    int      `json:"year"`
	DOI     string   `json:"doi"`
}

// BlogDocument is the generation stage artifact
type BlogDocument struct {
	Title      string      `json:"title"`
	WordCount  int         `json:"word_count"`
	BodyMD     string      `json:"body_md"`
	References []Reference `json:"references"`
}

// BlogResult is the final artifact attached to a completed job
type BlogResult struct {
	JobID             string    `json:"jobId"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	WordCount         int       `json:"wordCount"`
	EstimatedReadTime int       `json:"estimatedReadTime"` // minutes
	CitationCount     int       `json:"citationCount"`
	SavedPath         string    `json:"savedPath,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}
