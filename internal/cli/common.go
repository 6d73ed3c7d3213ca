package cli

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/output"
	"github.com/panelcert/panelcert/internal/platform"
)

// lookPath resolves PATH candidates; replaceable in tests.
var lookPath platform.LookPathFunc = exec.LookPath

// loadValidConfig loads the configuration and checks every required
// setting before any browser activity.
func loadValidConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openBrowser launches the Chrome driver for cfg, detecting an
// executable when none is configured.
func openBrowser(ctx context.Context, cfg *config.Config) (browser.Browser, error) {
	execPath := cfg.BrowserPath
	if execPath == "" {
		detected, err := platform.DetectBrowser(lookPath)
		if err != nil {
			return nil, err
		}
		execPath = detected
	}

	return browser.NewChrome(ctx, browser.Options{
		ExecPath: execPath,
		Headless: cfg.Headless,
		SlowMo:   cfg.SlowMo,
	})
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}
