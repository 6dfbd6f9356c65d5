package publishers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/authprobe/pkg/report"
	"gopkg.in/yaml.v3"
)

// Supported publisher types.
const (
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"
)

// Config declares one destination for run results.
//
// OnStatus limits delivery to runs that ended with one of the listed
// statuses; an empty list delivers every run.
type Config struct {
	ID       string          `json:"id" yaml:"id"`
	Type     string          `json:"type" yaml:"type"`
	Disabled bool            `json:"disabled" yaml:"disabled"`
	OnStatus []report.Status `json:"on_status" yaml:"on_status"`
	HTTP     *HTTPConfig     `json:"http" yaml:"http"`
	SQS      *SQSConfig      `json:"sqs" yaml:"sqs"`
	SNS      *SNSConfig      `json:"sns" yaml:"sns"`
	PubSub   *PubSubConfig   `json:"pubsub" yaml:"pubsub"`
}

// HTTPConfig posts the event as JSON to URL.
type HTTPConfig struct {
	URL     string            `json:"url" yaml:"url"`
	Method  string            `json:"method" yaml:"method"`
	Headers map[string]string `json:"headers" yaml:"headers"`
}

// SQSConfig targets an SQS queue. FIFO queues are detected by the ".fifo" suffix.
type SQSConfig struct {
	QueueURL string `json:"queue_url" yaml:"queue_url"`
	Region   string `json:"region" yaml:"region"`
}

// SNSConfig targets an SNS topic. FIFO topics are detected by the ".fifo" suffix.
type SNSConfig struct {
	TopicARN string `json:"topic_arn" yaml:"topic_arn"`
	Region   string `json:"region" yaml:"region"`
}

// PubSubConfig targets a Google Cloud Pub/Sub topic.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// LoadFile reads publisher declarations from a YAML or JSON file and returns
// the enabled ones. Unknown keys are rejected.
func LoadFile(path string) ([]Config, error) {
	raw, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var file struct {
		Publishers []Config `json:"publishers" yaml:"publishers"`
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&file)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&file)
	}
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("publishers file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode publishers file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Publishers))
	out := make([]Config, 0, len(file.Publishers))
	for i := range file.Publishers {
		cfg := file.Publishers[i]
		if err := cfg.normalize(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[cfg.ID] {
			return nil, fmt.Errorf("publishers[%d]: duplicate id %q", i, cfg.ID)
		}
		seen[cfg.ID] = true
		if !cfg.Disabled {
			out = append(out, cfg)
		}
	}
	return out, nil
}

// normalize trims every field and checks the block matching Type.
func (c *Config) normalize() error {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.ID == "" {
		return errors.New("id is required")
	}

	for i, s := range c.OnStatus {
		s = report.Status(strings.ToLower(strings.TrimSpace(string(s))))
		switch s {
		case report.StatusPassed, report.StatusFailed, report.StatusBroken:
		default:
			return fmt.Errorf("publisher %q: unknown on_status %q", c.ID, s)
		}
		c.OnStatus[i] = s
	}

	switch c.Type {
	case TypeHTTP:
		if c.HTTP == nil {
			return blockMissing(c)
		}
		trim(&c.HTTP.URL, &c.HTTP.Method)
		c.HTTP.Method = strings.ToUpper(c.HTTP.Method)
		if c.HTTP.Method == "" {
			c.HTTP.Method = http.MethodPost
		}
		c.HTTP.Headers = cleanHeaders(c.HTTP.Headers)
		return requireFields(c.ID, "http.url", c.HTTP.URL)
	case TypeSQS:
		if c.SQS == nil {
			return blockMissing(c)
		}
		trim(&c.SQS.QueueURL, &c.SQS.Region)
		return requireFields(c.ID, "sqs.queue_url", c.SQS.QueueURL, "sqs.region", c.SQS.Region)
	case TypeSNS:
		if c.SNS == nil {
			return blockMissing(c)
		}
		trim(&c.SNS.TopicARN, &c.SNS.Region)
		return requireFields(c.ID, "sns.topic_arn", c.SNS.TopicARN, "sns.region", c.SNS.Region)
	case TypeGCPPubSub:
		if c.PubSub == nil {
			return blockMissing(c)
		}
		trim(&c.PubSub.ProjectID, &c.PubSub.Topic, &c.PubSub.CredentialsFile)
		return requireFields(c.ID, "pubsub.project_id", c.PubSub.ProjectID, "pubsub.topic", c.PubSub.Topic)
	case "":
		return fmt.Errorf("publisher %q: type is required", c.ID)
	default:
		return fmt.Errorf("publisher %q: unknown type %q", c.ID, c.Type)
	}
}

func blockMissing(c *Config) error {
	block := c.Type
	if c.Type == TypeGCPPubSub {
		block = "pubsub"
	}
	return fmt.Errorf("publisher %q: %s block is required", c.ID, block)
}

// requireFields takes name/value pairs and reports the first empty value.
func requireFields(id string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("publisher %q: %s is required", id, pairs[i])
		}
	}
	return nil
}

func trim(vals ...*string) {
	for _, v := range vals {
		*v = strings.TrimSpace(*v)
	}
}

func cleanHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
