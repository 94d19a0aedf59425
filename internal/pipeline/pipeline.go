package pipeline

import (
	"time"

	"github.com/blogforge/api/internal/model"
)

// StageSpec describes one pipeline stage: how its progress ticks are paced
// and what the client sees while it runs. Ticks are pacing only; the
// provider call at the end of the stage is the real work.
type StageSpec struct {
	Stage       model.Stage
	DisplayName string
	TickStep    int // percent added per tick
	TickEvery   time.Duration
}

// Stages returns the fixed pipeline in execution order. Adding a stage means
// appending here and handling one more provider capability in the runner.
func Stages() []StageSpec {
	return []StageSpec{
		{Stage: model.StageResearch, DisplayName: "Searching papers", TickStep: 10, TickEvery: 200 * time.Millisecond},
		{Stage: model.StageGeneration, DisplayName: "Writing content", TickStep: 15, TickEvery: 300 * time.Millisecond},
		{Stage: model.StageValidation, DisplayName: "Validating content", TickStep: 20, TickEvery: 150 * time.Millisecond},
	}
}
