package pipelinerun

import (
	"errors"
	"testing"
	"time"
)

func TestRunFinish(t *testing.T) {
	started := time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC)
	run := Run{RunID: "r1", Status: StatusRunning, StartedAt: started}

	ok := run.Finish(started.Add(time.Minute), nil)
	if !ok.Succeeded() || ok.FinishedAt == nil || ok.Error != "" {
		t.Fatalf("unexpected successful run: %+v", ok)
	}

	failed := run.Finish(started.Add(time.Minute), errors.New("merge: ambiguous record"))
	if failed.Succeeded() || failed.Status != StatusFailed {
		t.Fatalf("expected failed run, got %s", failed.Status)
	}
	if failed.Error != "merge: ambiguous record" {
		t.Fatalf("unexpected error text: %q", failed.Error)
	}
	if run.FinishedAt != nil {
		t.Fatalf("finish must not mutate the receiver")
	}
}

func TestParseTrigger(t *testing.T) {
	cases := map[string]Trigger{
		"":         TriggerCLI,
		"HTTP":     TriggerHTTP,
		" cli ":    TriggerCLI,
		"schedule": TriggerSchedule,
	}
	for in, want := range cases {
		got, err := ParseTrigger(in)
		if err != nil || got != want {
			t.Fatalf("ParseTrigger(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := ParseTrigger("webhook"); err == nil {
		t.Fatalf("expected error for unknown trigger")
	}
}
