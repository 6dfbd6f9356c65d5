package report

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging surface the recorder relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

type stepKey struct{}

// Recorder is an in-memory Sink. It is not safe for concurrent use.
type Recorder struct {
	result Result
	log    Logger
	now    func() time.Time
}

// NewRecorder starts recording a run called name.
func NewRecorder(name string, log Logger) *Recorder {
	if log == nil {
		log = noopLogger{}
	}
	r := &Recorder{log: log, now: time.Now}
	r.result = Result{
		ID:    uuid.NewString(),
		Name:  name,
		Start: r.now(),
	}
	return r
}

// Label adds a grouping label (for example "feature" or "story").
func (r *Recorder) Label(name, value string) {
	r.result.Labels = append(r.result.Labels, Label{Name: name, Value: value})
}

// Step records fn as a child of the step carried by ctx.
func (r *Recorder) Step(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	step := &StepResult{Name: title, Start: r.now()}
	if parent, ok := ctx.Value(stepKey{}).(*StepResult); ok && parent != nil {
		parent.Steps = append(parent.Steps, step)
	} else {
		r.result.Steps = append(r.result.Steps, step)
	}

	r.log.DebugObj("report step started", "report_step", map[string]any{"name": title})

	err := fn(context.WithValue(ctx, stepKey{}, step))

	step.Stop = r.now()
	step.Status = StatusFor(err)
	if err != nil {
		step.Error = err.Error()
	}
	r.log.InfoObj("report step finished", "report_step", map[string]any{
		"name":        title,
		"status":      step.Status,
		"duration_ms": step.Stop.Sub(step.Start).Milliseconds(),
	})
	return err
}

// Attach stores content on the current step.
func (r *Recorder) Attach(ctx context.Context, name string, typ AttachmentType, content []byte) {
	att := Attachment{Name: name, Type: typ, Content: append([]byte(nil), content...)}
	if step, ok := ctx.Value(stepKey{}).(*StepResult); ok && step != nil {
		step.Attachments = append(step.Attachments, att)
	} else {
		r.result.Attachments = append(r.result.Attachments, att)
	}
	r.log.DebugObj("report attachment added", "report_attachment", map[string]any{
		"name":  name,
		"type":  typ,
		"bytes": len(content),
	})
}

// Finish closes the run with the outcome err and returns the result.
func (r *Recorder) Finish(err error) Result {
	r.result.Stop = r.now()
	r.result.Status = StatusFor(err)
	if err != nil {
		r.result.Error = err.Error()
	}
	return r.result
}
