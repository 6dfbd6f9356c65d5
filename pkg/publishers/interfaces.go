package publishers

import (
	"context"

	"github.com/samvad-hq/authprobe/pkg/httpclient"
)

// Publisher sends run events to a downstream sink (SQS, SNS, Pub/Sub, HTTP).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface shared with the transport client.
type Logger = httpclient.Logger
