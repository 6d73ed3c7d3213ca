package panel

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/errors"
	"github.com/panelcert/panelcert/internal/logger"
)

// Summary is the record of one run, success or failure. It renders as
// the run command's JSON output.
type Summary struct {
	RunID    string    `json:"run_id"`
	Domain   string    `json:"domain"`
	CertName string    `json:"cert_name"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	Targets *ResolvedTargets `json:"targets,omitempty"`

	// Warnings lists every non-fatal finding: missing upload
	// confirmations, the subdomain fallback, snapshot problems.
	Warnings []string `json:"warnings,omitempty"`
}

// Warn records and logs a non-fatal finding.
func (s *Summary) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.Warnings = append(s.Warnings, msg)
	logger.Warn("%s", msg)
}

// BrowserFactory opens the browser a run drives. Runner takes it as a
// dependency so tests can substitute doubles for the real driver.
type BrowserFactory func(ctx context.Context, cfg *config.Config) (browser.Browser, error)

// Runner sequences one full provisioning run: load bundle, open
// browser, authenticate, resolve targets, deploy. Exactly once, no
// retries between stages.
type Runner struct {
	cfg        *config.Config
	newBrowser BrowserFactory
	now        func() time.Time
}

// NewRunner creates a Runner using newBrowser to open sessions.
func NewRunner(cfg *config.Config, newBrowser BrowserFactory) *Runner {
	return &Runner{
		cfg:        cfg,
		newBrowser: newBrowser,
		now:        time.Now,
	}
}

// Run executes the pipeline. The returned Summary is valid even on
// error, carrying whatever was resolved before the failure. On any
// stage error a diagnostic snapshot of the current page is written
// before the error propagates, and the browser is always closed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.NewString(),
		Domain:  r.cfg.Domain,
		Started: r.now(),
	}
	logger.WithRun(summary.RunID)

	bundle, err := LoadBundle(r.cfg.KeyFile, r.cfg.CertFile, r.cfg.Domain, r.now())
	if err != nil {
		summary.Finished = r.now()
		return summary, err
	}
	summary.CertName = bundle.Name
	logger.Info("Deploying %s for %s", bundle.Name, r.cfg.Domain)

	b, err := r.newBrowser(ctx, r.cfg)
	if err != nil {
		summary.Finished = r.now()
		return summary, errors.Wrap(errors.CodeBrowser, "open browser", err)
	}
	defer b.Close()

	if err := r.pipeline(ctx, b, bundle, summary); err != nil {
		r.snapshot(ctx, b.Page(), summary)
		summary.Finished = r.now()
		return summary, err
	}

	summary.Finished = r.now()
	logger.Info("Run complete in %s", summary.Finished.Sub(summary.Started).Round(time.Second))
	return summary, nil
}

// pipeline runs the three stages in order against an open browser.
func (r *Runner) pipeline(ctx context.Context, b browser.Browser, bundle *CertificateBundle, summary *Summary) error {
	auth := NewAuthenticator(b.Page(), r.cfg)
	if err := auth.Login(ctx); err != nil {
		return err
	}

	resolver := NewResolver(b, r.cfg, summary.Warn)
	targets, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	summary.Targets = targets

	deployer := NewDeployer(b.Page(), r.cfg, targets, bundle, summary.Warn)
	return deployer.Deploy(ctx)
}

// snapshot captures the page's visual state to the configured path for
// post-mortem. Failures here only warn; the run error stays primary.
func (r *Runner) snapshot(ctx context.Context, page browser.Page, summary *Summary) {
	img, err := page.Screenshot(ctx)
	if err != nil {
		summary.Warn("diagnostic snapshot failed: %v", err)
		return
	}
	if err := os.WriteFile(r.cfg.SnapshotFile, img, 0o644); err != nil {
		summary.Warn("write diagnostic snapshot: %v", err)
		return
	}
	logger.Info("Diagnostic snapshot written to %s", r.cfg.SnapshotFile)
}
