package cli

import (
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/panelcert/panelcert/internal/input"
	"github.com/panelcert/panelcert/internal/output"
	"github.com/panelcert/panelcert/internal/panel"
)

var runYes bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Deploy the certificate through the control panel",
	Long: `Execute one full deployment run: log in, resolve the target ids,
upload the certificate to the web and mail subsystems, and rebind every
vhost and mail service to it.

All inputs come from the environment (PANELCERT_*), the OS keyring, or
~/.config/panelcert/config.yaml. The run is unattended by design; when
invoked from a terminal it asks for confirmation first unless --yes is
given.

Examples:
  panelcert run
  panelcert run --yes
  panelcert run --json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Skip the interactive confirmation")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	if !runYes && isatty.IsTerminal(os.Stdin.Fd()) {
		output.Info("About to deploy a certificate for %s via %s", cfg.Domain, cfg.PanelURL)
		output.Print("Continue? [y/N]: ")
		if !input.Confirm(input.NewStdinReader()) {
			output.Print("Aborted")
			return nil
		}
	}

	runner := panel.NewRunner(cfg, openBrowser)
	summary, err := runner.Run(cmd.Context())
	if err != nil {
		if jsonOutput {
			// The summary still renders so callers see how far the run got.
			_ = output.JSON(summary)
		} else {
			output.Error("Run %s failed: %v", summary.RunID, err)
			if summary.CertName != "" {
				output.Print("  certificate: %s", summary.CertName)
			}
			output.Print("  diagnostic snapshot: %s", cfg.SnapshotFile)
		}
		return err
	}

	if jsonOutput {
		return output.JSON(summary)
	}

	output.Success("Deployed %s for %s", summary.CertName, summary.Domain)
	output.Print("  run id:      %s", summary.RunID)
	output.Print("  web host:    %s", summary.Targets.WebHostID)
	output.Print("  mail host:   %s", summary.Targets.MailHostID)
	output.Print("  domain ids:  %s (primary %s)",
		strings.Join(summary.Targets.WebDomainIDs, ", "), summary.Targets.PrimaryDomainID)
	output.Print("  mail id:     %s", summary.Targets.MailID)
	if summary.Targets.FallbackPrimary {
		output.Warn("No exact domain entry existed; a subdomain was promoted to primary")
	}
	for _, w := range summary.Warnings {
		output.Warn("%s", w)
	}
	output.Print("  duration:    %s", summary.Finished.Sub(summary.Started).Round(time.Second))
	return nil
}
