package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/output"
	"github.com/panelcert/panelcert/internal/totp"
)

var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Print the current second-factor code",
	Long: `Derive and print the current one-time code from the configured
second-factor secret, for logging in to the panel manually.

Examples:
  panelcert totp
  panelcert totp --json`,
	RunE: runTOTP,
}

func init() {
	rootCmd.AddCommand(totpCmd)
}

// TOTPResult carries the code and its remaining validity.
type TOTPResult struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in_seconds"`
}

func runTOTP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	code, err := totp.Code(cfg.TOTPSecret, time.Now())
	if err != nil {
		return err
	}

	result := TOTPResult{
		Code:      code,
		ExpiresIn: 30 - int(time.Now().Unix()%30),
	}

	if jsonOutput {
		return output.JSON(result)
	}
	output.Print("%s (valid for %ds)", result.Code, result.ExpiresIn)
	return nil
}
