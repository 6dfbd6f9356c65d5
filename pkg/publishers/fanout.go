package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/samvad-hq/authprobe/pkg/httpclient"
	"github.com/samvad-hq/authprobe/pkg/report"
)

type builder func(ctx context.Context, cfg Config, log Logger) (Publisher, error)

var builders = map[string]builder{
	TypeHTTP:      newHTTPPublisher,
	TypeSQS:       newSQSPublisher,
	TypeSNS:       newSNSPublisher,
	TypeGCPPubSub: newGCPPubSubPublisher,
}

type route struct {
	pub Publisher
	on  []report.Status
}

func (r route) wants(status report.Status) bool {
	return len(r.on) == 0 || slices.Contains(r.on, status)
}

// Fanout delivers each run event to the publishers whose status filter
// matches the run.
type Fanout struct {
	routes []route
	log    Logger
}

// NewFanout returns an empty dispatcher.
func NewFanout(log Logger) *Fanout {
	return &Fanout{log: httpclient.EnsureLogger(log)}
}

// Build creates a publisher for every config and routes them through one Fanout.
func Build(ctx context.Context, cfgs []Config, log Logger) (*Fanout, error) {
	f := NewFanout(log)
	for _, cfg := range cfgs {
		build, ok := builders[cfg.Type]
		if !ok {
			_ = f.Close()
			return nil, fmt.Errorf("publisher %q: unknown type %q", cfg.ID, cfg.Type)
		}
		pub, err := build(ctx, cfg, f.log)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("build %s publisher %q: %w", cfg.Type, cfg.ID, err)
		}
		f.Add(pub, cfg.OnStatus...)
	}
	return f, nil
}

// Add routes runs with one of the given statuses to pub; no statuses means every run.
func (f *Fanout) Add(pub Publisher, on ...report.Status) {
	if pub == nil {
		return
	}
	f.routes = append(f.routes, route{pub: pub, on: on})
}

// Publish sends evt to every matching publisher and returns how many
// accepted it. Delivery errors are joined.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}
	var errs []error
	delivered := 0
	for _, r := range f.routes {
		if !r.wants(evt.Status) {
			continue
		}
		if err := r.pub.Publish(ctx, evt); err != nil {
			f.log.ErrorObj("run event delivery failed", "publisher_error", map[string]any{
				"publisher_id": r.pub.ID(),
				"type":         r.pub.Type(),
				"run_id":       evt.RunID,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s publisher %q: %w", r.pub.Type(), r.pub.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of routed publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.routes)
}

// Close releases publishers holding client connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, r := range f.routes {
		if c, ok := r.pub.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher %q: %w", r.pub.Type(), r.pub.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
