package model

// Job status
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Stage identifies one phase of the generation pipeline. Order matters:
// a job never reports progress for a later stage before the earlier one
// reached 100.
type Stage string

const (
	StageResearch   Stage = "research"
	StageGeneration Stage = "generation"
	StageValidation Stage = "validation"
)

// StageOrder is the fixed pipeline order.
var StageOrder = []Stage{StageResearch, StageGeneration, StageValidation}

// Tone options for the generated blog post
type Tone string

const (
	ToneConversational Tone = "conversational"
	ToneProfessional   Tone = "professional"
	ToneAcademic       Tone = "academic"
)

// ErrorKind classifies terminal job failures surfaced to clients.
type ErrorKind string

const (
	ErrKindAPI      ErrorKind = "api_error"
	ErrKindResearch ErrorKind = "research_error"
	ErrKindNetwork  ErrorKind = "network_error"
)

// Evidence types a paper can carry
type EvidenceType string

const (
	EvidenceMetaAnalysis      EvidenceType = "meta-analysis"
	EvidenceSystematicReview  EvidenceType = "systematic review"
	EvidenceRCT               EvidenceType = "RCT"
	EvidenceQuasiExperimental EvidenceType = "quasi-experimental"
	EvidenceObservational     EvidenceType = "observational"
	EvidenceCaseReport        EvidenceType = "case report"
	EvidenceOther             EvidenceType = "other"
)
