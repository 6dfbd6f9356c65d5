package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/authprobe/internal/config"
	"github.com/samvad-hq/authprobe/internal/fixtures"
	"github.com/samvad-hq/authprobe/internal/logger"
	"github.com/samvad-hq/authprobe/pkg/authapi"
	"github.com/samvad-hq/authprobe/pkg/publishers"
	"github.com/samvad-hq/authprobe/pkg/report"
)

const (
	runName      = "Register and log in a new user"
	featureLabel = "Authentication"
	storyLabel   = "Register and log in"
)

// Probe runs the register/login flow against the configured auth service,
// records every run, writes Allure results and publishes a summary event.
type Probe struct {
	cfg      *config.Config
	suite    *fixtures.Suite
	writer   *report.AllureWriter
	fanout   *publishers.Fanout
	interval time.Duration
	log      logger.Logger
}

// NewProbe builds a probe runtime from config.
func NewProbe(ctx context.Context, cfg *config.Config, log logger.Logger) (*Probe, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	suite, err := fixtures.NewSuite(fixtures.OptionsFromConfig(cfg, log, nil))
	if err != nil {
		return nil, fmt.Errorf("build suite: %w", err)
	}

	p := &Probe{
		cfg:      cfg,
		suite:    suite,
		interval: cfg.ProbeInterval,
		log:      log,
	}
	if cfg.ReportDir != "" {
		p.writer = report.NewAllureWriter(cfg.ReportDir)
	}

	if cfg.PublishersFile != "" {
		fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
		if err != nil {
			suite.Close()
			return nil, err
		}
		p.fanout = fanout
	} else {
		log.InfoObj("no publishers file configured; results stay local", "report_dir", cfg.ReportDir)
	}

	return p, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	cfgs, err := publishers.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	fanout, err := publishers.Build(ctx, cfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]any, 0, len(cfgs))
	for _, c := range cfgs {
		summaries = append(summaries, map[string]any{"id": c.ID, "type": c.Type, "on_status": c.OnStatus})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return fanout, nil
}

// Run executes the flow once, or on every interval tick until ctx is cancelled
// when an interval is configured. In single-run mode a failed run is returned
// as an error.
func (p *Probe) Run(ctx context.Context) error {
	if p == nil || p.suite == nil {
		return fmt.Errorf("probe is not initialized")
	}

	if p.interval <= 0 {
		_, err := p.RunOnce(ctx)
		return err
	}

	p.log.InfoObj("probe loop starting", "probe_state", map[string]any{
		"base_url":         p.suite.BaseURL,
		"publishers_count": p.fanout.Size(),
		"interval":         p.interval.String(),
	})

	if _, err := p.RunOnce(ctx); err != nil {
		p.log.ErrorObj("initial probe run failed", "error", err.Error())
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("probe loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil {
				p.log.ErrorObj("scheduled probe run failed", "error", err.Error())
			}
		}
	}
}

// RunOnce records one register/login run. The returned error is the flow's
// outcome; reporting and publishing problems are logged, not returned.
func (p *Probe) RunOnce(ctx context.Context) (report.Result, error) {
	rec := report.NewRecorder(runName, p.log)
	rec.Label("feature", featureLabel)
	rec.Label("story", storyLabel)

	err := p.flow(ctx, rec, p.suite.WithSink(rec))
	res := rec.Finish(err)

	p.log.InfoObj("probe run finished", "probe_run", map[string]any{
		"run_id":      res.ID,
		"status":      res.Status,
		"duration_ms": res.Stop.Sub(res.Start).Milliseconds(),
	})

	if p.writer != nil {
		path, werr := p.writer.Write(res)
		if werr != nil {
			p.log.ErrorObj("write allure result failed", "error", werr.Error())
		} else {
			p.log.DebugObj("allure result written", "path", path)
		}
	}

	if p.fanout.Size() > 0 {
		sent, perr := p.fanout.Publish(ctx, publishers.NewEvent(p.cfg.AppName, res))
		if perr != nil {
			p.log.ErrorObj("publish run result failed", "error", perr.Error())
		}
		p.log.DebugObj("run result published", "publishers_delivered", sent)
	}

	return res, err
}

func (p *Probe) flow(ctx context.Context, rec *report.Recorder, auth *authapi.Client) error {
	creds := p.suite.Data.Registration()

	err := rec.Step(ctx, "Register new user", func(ctx context.Context) error {
		info, err := auth.Register(ctx, creds)
		if err != nil {
			return err
		}
		if info.Username != creds.Username {
			return report.Failf("registered username = %q, want %q", info.Username, creds.Username)
		}
		if info.Email != creds.Email {
			return report.Failf("registered email = %q, want %q", info.Email, creds.Email)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return rec.Step(ctx, "Log in registered user", func(ctx context.Context) error {
		resp, err := auth.Login(ctx, creds.Credentials())
		if err != nil {
			return err
		}
		if resp.Token == "" {
			return report.Failf("login returned an empty token")
		}
		if resp.User.Username != creds.Username {
			return report.Failf("logged in as %q, want %q", resp.User.Username, creds.Username)
		}
		return nil
	})
}

// Close releases the HTTP session and publisher clients.
func (p *Probe) Close() error {
	if p == nil {
		return nil
	}
	p.suite.Close()
	return p.fanout.Close()
}
