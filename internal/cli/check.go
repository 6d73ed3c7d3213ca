package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/executor"
	"github.com/panelcert/panelcert/internal/output"
	"github.com/panelcert/panelcert/internal/panel"
	"github.com/panelcert/panelcert/internal/platform"
	"github.com/panelcert/panelcert/internal/totp"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration and diagnose issues without deploying",
	Long: `Run diagnostic checks on the configuration and environment.

Checks:
  - Required settings (credentials, product id, domain)
  - Second-factor secret validity
  - Certificate bundle (PEM structure, key match, name coverage, expiry)
  - Chrome/Chromium availability

Nothing contacts the control panel; the check is safe to run anywhere.

Examples:
  panelcert check
  panelcert check --json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// CheckReport contains all diagnostic results
type CheckReport struct {
	Settings    []CheckResult `json:"settings"`
	Certificate []CheckResult `json:"certificate"`
	Browser     []CheckResult `json:"browser"`
}

// Failed reports whether any check errored.
func (r *CheckReport) Failed() bool {
	for _, group := range [][]CheckResult{r.Settings, r.Certificate, r.Browser} {
		for _, c := range group {
			if c.Status == "error" {
				return true
			}
		}
	}
	return false
}

func runCheck(cmd *cobra.Command, args []string) error {
	exec := executor.NewSystemExecutor()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	report := &CheckReport{}
	report.Settings = checkSettings(cfg)
	report.Certificate = checkCertificate(cfg)
	report.Browser = checkBrowser(exec, cfg)

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		displayCheckResults(report)
	}

	if report.Failed() {
		return fmt.Errorf("checks failed")
	}
	return nil
}

// checkSettings verifies required settings without revealing secrets.
func checkSettings(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	required := []struct {
		value  string
		name   string
		envVar string
	}{
		{cfg.Customer, "Customer number", config.EnvCustomer},
		{cfg.Password, "Password", config.EnvPassword},
		{cfg.TOTPSecret, "Second-factor secret", config.EnvTOTPSecret},
		{cfg.ProductID, "Product id", config.EnvProductID},
		{cfg.Domain, "Target domain", config.EnvDomain},
	}

	for _, r := range required {
		if r.value != "" {
			results = append(results, CheckResult{
				Status:  "success",
				Message: fmt.Sprintf("%s set", r.name),
			})
		} else {
			results = append(results, CheckResult{
				Status:  "error",
				Message: fmt.Sprintf("%s missing (set %s)", r.name, r.envVar),
			})
		}
	}

	// A malformed secret would only surface mid-login otherwise.
	if cfg.TOTPSecret != "" {
		if _, err := totp.Now(cfg.TOTPSecret); err != nil {
			results = append(results, CheckResult{
				Status:  "error",
				Message: "Second-factor secret does not produce a code (not base32?)",
			})
		} else {
			results = append(results, CheckResult{
				Status:  "success",
				Message: "Second-factor secret produces codes",
			})
		}
	}

	return results
}

// checkCertificate validates the bundle files the run would upload.
func checkCertificate(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	if cfg.Domain == "" {
		return append(results, CheckResult{
			Status:  "warning",
			Message: "Skipping certificate checks, no target domain",
		})
	}

	bundle, err := panel.LoadBundle(cfg.KeyFile, cfg.CertFile, cfg.Domain, time.Now())
	if err != nil {
		return append(results, CheckResult{
			Status:  "error",
			Message: fmt.Sprintf("Bundle not readable: %v", err),
		})
	}
	results = append(results, CheckResult{
		Status:  "success",
		Message: fmt.Sprintf("Bundle readable, would upload as %s", bundle.Name),
	})

	for _, problem := range bundle.Inspect(cfg.Domain, time.Now()) {
		status := "error"
		if strings.Contains(problem, "expires soon") {
			status = "warning"
		}
		results = append(results, CheckResult{Status: status, Message: problem})
	}
	if len(results) == 1 {
		results = append(results, CheckResult{
			Status:  "success",
			Message: fmt.Sprintf("Certificate valid for %s", cfg.Domain),
		})
	}

	return results
}

// chromeVersionPattern extracts the version from "Google Chrome 120.0..."
// or "Chromium 120.0..." output.
var chromeVersionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+)`)

// checkBrowser verifies a drivable Chrome/Chromium install.
func checkBrowser(exec executor.CommandExecutor, cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	path := cfg.BrowserPath
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return append(results, CheckResult{
				Status:  "error",
				Message: fmt.Sprintf("Configured browser %s not found", path),
			})
		}
	} else {
		detected, err := platform.DetectBrowser(exec.LookPath)
		if err != nil {
			return append(results, CheckResult{
				Status:  "error",
				Message: fmt.Sprintf("No browser found (tried %v)", platform.Candidates()),
			})
		}
		path = detected
	}

	version := "unknown"
	if out, err := exec.Execute(path, "--version"); err == nil {
		if matches := chromeVersionPattern.FindStringSubmatch(string(out)); len(matches) >= 2 {
			version = matches[1]
		}
	}
	results = append(results, CheckResult{
		Status:  "success",
		Message: fmt.Sprintf("Browser found: %s (%s)", path, version),
	})

	return results
}

func displayCheckResults(report *CheckReport) {
	output.Print("Checking settings...")
	for _, check := range report.Settings {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking certificate bundle...")
	for _, check := range report.Certificate {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking browser...")
	for _, check := range report.Browser {
		displayCheck(check)
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case "success":
		output.Success("%s", check.Message)
	case "warning":
		output.Warn("%s", check.Message)
	case "error":
		output.Error("%s", check.Message)
	}
}
