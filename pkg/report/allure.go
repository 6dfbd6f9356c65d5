package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ozontech/allure-go/pkg/allure"
)

// AllureWriter persists results in the Allure results directory layout so
// the stock `allure generate` command can render them.
type AllureWriter struct {
	dir string
}

// NewAllureWriter writes into dir, creating it on first use.
func NewAllureWriter(dir string) *AllureWriter {
	return &AllureWriter{dir: dir}
}

// Write converts res to an allure.Result, stores it together with its
// attachments and returns the result file path.
func (w *AllureWriter) Write(res Result) (string, error) {
	if w == nil || strings.TrimSpace(w.dir) == "" {
		return "", fmt.Errorf("allure results directory is not configured")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create allure results directory: %w", err)
	}

	out := allure.NewResult(res.Name, res.Name)
	out.HistoryID = res.Name
	out.Status = allure.Status(res.Status)
	out.StatusDetails = allure.StatusDetail{Message: res.Error}
	out.Start = millis(res.Start)
	out.Stop = millis(res.Stop)
	for _, l := range res.Labels {
		out.Labels = append(out.Labels, &allure.Label{Name: l.Name, Value: l.Value})
	}

	var err error
	if out.Attachments, err = w.writeAttachments(res.Attachments); err != nil {
		return "", err
	}
	if out.Steps, err = w.convertSteps(res.Steps); err != nil {
		return "", err
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal allure result: %w", err)
	}
	path := filepath.Join(w.dir, fmt.Sprint(out.UUID)+"-result.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write allure result: %w", err)
	}
	return path, nil
}

func (w *AllureWriter) convertSteps(steps []*StepResult) ([]*allure.Step, error) {
	if len(steps) == 0 {
		return nil, nil
	}
	out := make([]*allure.Step, 0, len(steps))
	for _, s := range steps {
		if s == nil {
			continue
		}
		step := allure.NewSimpleStep(s.Name)
		step.Status = allure.Status(s.Status)
		step.StatusDetails = allure.StatusDetail{Message: s.Error}
		step.Start = millis(s.Start)
		step.Stop = millis(s.Stop)

		var err error
		if step.Attachments, err = w.writeAttachments(s.Attachments); err != nil {
			return nil, err
		}
		if step.Steps, err = w.convertSteps(s.Steps); err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, nil
}

// writeAttachments stores each content under the source name allure assigns.
func (w *AllureWriter) writeAttachments(atts []Attachment) ([]*allure.Attachment, error) {
	if len(atts) == 0 {
		return nil, nil
	}
	out := make([]*allure.Attachment, 0, len(atts))
	for _, a := range atts {
		att := allure.NewAttachment(a.Name, allure.MimeType(a.Type), a.Content)
		if err := os.WriteFile(filepath.Join(w.dir, att.Source), a.Content, 0o644); err != nil {
			return nil, fmt.Errorf("write attachment %q: %w", a.Name, err)
		}
		out = append(out, att)
	}
	return out, nil
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
