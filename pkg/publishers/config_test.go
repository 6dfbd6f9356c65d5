package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/authprobe/pkg/report"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "publishers.yaml", `
publishers:
  - id: " hook "
    type: HTTP
    on_status: [Failed, broken]
    http:
      url: https://hooks.example.com/run
      headers:
        X-Token: abc
        "": dropped
  - id: queue
    type: sqs
    sqs:
      queue_url: https://sqs.eu-west-1.amazonaws.com/1/runs
      region: eu-west-1
  - id: off
    type: sns
    disabled: true
    sns:
      topic_arn: arn:aws:sns:eu-west-1:1:runs
      region: eu-west-1
`)

	cfgs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("expected disabled publisher to be skipped, got %d", len(cfgs))
	}
	hook := cfgs[0]
	if hook.ID != "hook" || hook.Type != TypeHTTP || hook.HTTP.Method != "POST" {
		t.Fatalf("unexpected http config: %#v", hook)
	}
	if len(hook.OnStatus) != 2 || hook.OnStatus[0] != report.StatusFailed {
		t.Fatalf("OnStatus = %v", hook.OnStatus)
	}
	if len(hook.HTTP.Headers) != 1 || hook.HTTP.Headers["X-Token"] != "abc" {
		t.Fatalf("Headers = %v", hook.HTTP.Headers)
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := writeFile(t, "publishers.json", `{"publishers":[
  {"id":"events","type":"gcp_pubsub","pubsub":{"project_id":"p","topic":"runs"}}
]}`)

	cfgs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfgs) != 1 || cfgs[0].PubSub.Topic != "runs" {
		t.Fatalf("unexpected configs: %#v", cfgs)
	}
}

func TestLoadFileRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"missing block": "publishers:\n  - id: q\n    type: sqs\n",
		"missing field": "publishers:\n  - id: q\n    type: sqs\n    sqs:\n      queue_url: u\n",
		"unknown type":  "publishers:\n  - id: k\n    type: kafka\n",
		"missing id":    "publishers:\n  - type: http\n    http:\n      url: u\n",
		"bad status":    "publishers:\n  - id: h\n    type: http\n    on_status: [skipped]\n    http:\n      url: u\n",
		"duplicate id":  "publishers:\n  - id: h\n    type: http\n    http:\n      url: u\n  - id: h\n    type: http\n    http:\n      url: v\n",
		"unknown key":   "publishers:\n  - id: h\n    type: http\n    url: u\n",
		"empty file":    "",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFile(writeFile(t, "publishers.yaml", content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read publishers file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
