package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/panelcert/panelcert/internal/logger"
)

var (
	jsonOutput bool
	verbose    bool
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "panelcert",
	Short: "Certificate deployment through the hosting control panel",
	Long: `panelcert deploys a TLS certificate through the hosting provider's
web control panel, which offers no API.

It logs in (password plus time-based one-time code), follows the
single-sign-on handoffs into the web and mail hosting subsystems,
discovers the internal ids of the target domain and mail account, then
uploads the certificate and rebinds every vhost, the mail transports,
and webmail to it.`,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
}
