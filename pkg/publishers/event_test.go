package publishers

import (
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/authprobe/pkg/report"
)

func failedRun() report.Result {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return report.Result{
		ID:     "run-9",
		Name:   "Register and log in a new user",
		Status: report.StatusFailed,
		Error:  "login returned an empty token",
		Start:  start,
		Stop:   start.Add(1500 * time.Millisecond),
		Steps: []*report.StepResult{
			{Name: "Register new user", Status: report.StatusPassed, Start: start, Stop: start.Add(200 * time.Millisecond)},
			{
				Name:   "Log in registered user",
				Status: report.StatusFailed,
				Error:  "login returned an empty token",
				Start:  start,
				Stop:   start.Add(time.Second),
				Steps: []*report.StepResult{
					{Name: "POST /api/auth/login", Status: report.StatusPassed},
					{Name: "Check token", Status: report.StatusFailed, Error: "login returned an empty token"},
				},
			},
		},
	}
}

func TestNewEventSummarizesResult(t *testing.T) {
	evt := NewEvent("authprobe", failedRun())

	if evt.RunID != "run-9" || evt.Source != "authprobe" || evt.Status != report.StatusFailed {
		t.Fatalf("unexpected event header: %#v", evt)
	}
	if evt.DurationMs != 1500 {
		t.Fatalf("DurationMs = %d", evt.DurationMs)
	}
	if len(evt.Steps) != 2 || evt.Steps[1].DurationMs != 1000 || len(evt.Steps[1].Steps) != 2 {
		t.Fatalf("unexpected steps: %#v", evt.Steps)
	}
	if evt.FailedStep != "Log in registered user / Check token" {
		t.Fatalf("FailedStep = %q", evt.FailedStep)
	}
	if evt.PublishedAt.IsZero() {
		t.Fatalf("PublishedAt not set")
	}
}

func TestEventAttributesFromSteps(t *testing.T) {
	attrs := NewEvent("authprobe", failedRun()).Attributes()

	want := map[string]string{
		"run_id":      "run-9",
		"run_name":    "Register and log in a new user",
		"run_status":  "failed",
		"failed_step": "Log in registered user / Check token",
		"failure":     "login returned an empty token",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Fatalf("attribute %s = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestEventAttributesPassedRun(t *testing.T) {
	res := failedRun()
	res.Status = report.StatusPassed
	res.Steps = res.Steps[:1]

	attrs := NewEvent("", res).Attributes()
	if _, ok := attrs["failed_step"]; ok {
		t.Fatalf("passed run must not carry failed_step: %#v", attrs)
	}
	if attrs["run_status"] != "passed" {
		t.Fatalf("run_status = %q", attrs["run_status"])
	}
}

func TestEventAttributesTruncateLongValues(t *testing.T) {
	res := failedRun()
	res.Steps[1].Steps[1].Error = strings.Repeat("x", 1000)

	attrs := NewEvent("", res).Attributes()
	if len(attrs["failure"]) != maxAttributeLen {
		t.Fatalf("failure length = %d", len(attrs["failure"]))
	}
}
