package publishers

import (
	"time"

	"github.com/samvad-hq/authprobe/pkg/report"
)

// maxAttributeLen keeps message attributes well under broker limits.
const maxAttributeLen = 256

// StepSummary is the flattened outcome of one report step.
type StepSummary struct {
	Name       string        `json:"name"`
	Status     report.Status `json:"status"`
	Error      string        `json:"error,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	Steps      []StepSummary `json:"steps,omitempty"`
}

// Event represents the payload published downstream after a probe run.
type Event struct {
	Source      string         `json:"source"`
	RunID       string         `json:"run_id"`
	Name        string         `json:"name"`
	Status      report.Status  `json:"status"`
	Error       string         `json:"error,omitempty"`
	FailedStep  string         `json:"failed_step,omitempty"`
	Labels      []report.Label `json:"labels,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	DurationMs  int64          `json:"duration_ms"`
	Steps       []StepSummary  `json:"steps,omitempty"`
	PublishedAt time.Time      `json:"published_at"`
}

// NewEvent constructs an Event for the given run result.
func NewEvent(source string, res report.Result) Event {
	steps := summarizeSteps(res.Steps)
	failed, _ := failedStep(steps, "")
	return Event{
		Source:      source,
		RunID:       res.ID,
		Name:        res.Name,
		Status:      res.Status,
		Error:       res.Error,
		FailedStep:  failed,
		Labels:      res.Labels,
		StartedAt:   res.Start.UTC(),
		DurationMs:  res.Stop.Sub(res.Start).Milliseconds(),
		Steps:       steps,
		PublishedAt: time.Now().UTC(),
	}
}

// Attributes returns the routing metadata brokers attach to the message.
// Empty values are left out.
func (e Event) Attributes() map[string]string {
	attrs := make(map[string]string, 5)
	put := func(k, v string) {
		if v == "" {
			return
		}
		if len(v) > maxAttributeLen {
			v = v[:maxAttributeLen]
		}
		attrs[k] = v
	}
	put("run_id", e.RunID)
	put("run_name", e.Name)
	put("run_status", string(e.Status))
	if e.FailedStep != "" {
		_, msg := failedStep(e.Steps, "")
		put("failed_step", e.FailedStep)
		put("failure", msg)
	}
	return attrs
}

// failedStep walks to the deepest step that did not pass and returns its
// path ("parent / child") and error.
func failedStep(steps []StepSummary, prefix string) (string, string) {
	for _, s := range steps {
		if s.Status == report.StatusPassed {
			continue
		}
		path := s.Name
		if prefix != "" {
			path = prefix + " / " + s.Name
		}
		if child, msg := failedStep(s.Steps, path); child != "" {
			return child, msg
		}
		return path, s.Error
	}
	return "", ""
}

func summarizeSteps(steps []*report.StepResult) []StepSummary {
	if len(steps) == 0 {
		return nil
	}
	out := make([]StepSummary, 0, len(steps))
	for _, s := range steps {
		if s == nil {
			continue
		}
		out = append(out, StepSummary{
			Name:       s.Name,
			Status:     s.Status,
			Error:      s.Error,
			DurationMs: s.Stop.Sub(s.Start).Milliseconds(),
			Steps:      summarizeSteps(s.Steps),
		})
	}
	return out
}
