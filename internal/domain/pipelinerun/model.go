package pipelinerun

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Trigger string

const (
	TriggerCLI      Trigger = "cli"
	TriggerSchedule Trigger = "schedule"
	TriggerHTTP     Trigger = "http"
)

func ParseTrigger(v string) (Trigger, error) {
	switch t := Trigger(strings.ToLower(strings.TrimSpace(v))); t {
	case TriggerCLI, TriggerSchedule, TriggerHTTP:
		return t, nil
	case "":
		return TriggerCLI, nil
	default:
		return "", fmt.Errorf("unknown trigger %q", v)
	}
}

// Run is one pipeline execution. Status is the binary outcome callers
// branch on; the other fields are diagnostics.
type Run struct {
	RunID       string
	Trigger     Trigger
	Status      Status
	StartedAt   time.Time
	FinishedAt  *time.Time
	RowsLoaded  map[string]int
	MergeResult []byte
	Error       string
}

func (r Run) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Finish closes the run with the outcome of err.
func (r Run) Finish(at time.Time, err error) Run {
	at = at.UTC()
	r.FinishedAt = &at
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return r
	}
	r.Status = StatusSucceeded
	r.Error = ""
	return r
}
