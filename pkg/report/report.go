// Package report records human-readable test steps and attachments.
//
// A Sink receives named steps and named attachments. Recorder is the
// in-memory implementation that produces a Result, which AllureWriter can
// persist in the Allure results format. Reports never drive control flow.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AttachmentType is the MIME type of an attachment.
type AttachmentType string

const (
	AttachmentJSON AttachmentType = "application/json"
	AttachmentText AttachmentType = "text/plain"
)

// Status mirrors the Allure test/step statuses.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusBroken Status = "broken"
)

// Sink accepts named steps and attachments.
type Sink interface {
	// Step runs fn inside a step called title. Steps nest through ctx.
	Step(ctx context.Context, title string, fn func(ctx context.Context) error) error
	// Attach adds content to the step carried by ctx, or to the run itself.
	Attach(ctx context.Context, name string, typ AttachmentType, content []byte)
}

// Nop is a Sink that only runs the step bodies.
type Nop struct{}

func (Nop) Step(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Nop) Attach(context.Context, string, AttachmentType, []byte) {}

// Label is a key/value pair used by report viewers to group results.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attachment holds a named artifact.
type Attachment struct {
	Name    string         `json:"name"`
	Type    AttachmentType `json:"type"`
	Content []byte         `json:"-"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Start       time.Time     `json:"start"`
	Stop        time.Time     `json:"stop"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	Steps       []*StepResult `json:"steps,omitempty"`
}

// Result is the outcome of one recorded run.
type Result struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Error       string        `json:"error,omitempty"`
	Labels      []Label       `json:"labels,omitempty"`
	Start       time.Time     `json:"start"`
	Stop        time.Time     `json:"stop"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	Steps       []*StepResult `json:"steps,omitempty"`
}

// AssertionError marks an expectation failure, as opposed to a broken call.
type AssertionError struct {
	msg string
}

func (e *AssertionError) Error() string { return e.msg }

// Failf builds an AssertionError.
func Failf(format string, args ...any) error {
	return &AssertionError{msg: fmt.Sprintf(format, args...)}
}

// StatusFor maps an error to a report status.
func StatusFor(err error) Status {
	if err == nil {
		return StatusPassed
	}
	var aErr *AssertionError
	if errors.As(err, &aErr) {
		return StatusFailed
	}
	return StatusBroken
}
