package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/input"
	"github.com/panelcert/panelcert/internal/output"
	"github.com/panelcert/panelcert/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage secrets in the OS keyring",
	Long: `Store or remove the panel password and the second-factor secret in
the OS keyring, so unattended runs need neither in their environment.

Examples:
  panelcert secret set password
  panelcert secret set totp-secret
  panelcert secret clear password`,
}

var secretSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a secret in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretSet,
}

var secretClearCmd = &cobra.Command{
	Use:   "clear <name>",
	Short: "Remove a secret from the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretClear,
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretClearCmd)
}

// secretNames maps the accepted CLI names to keyring accounts.
var secretNames = map[string]string{
	config.KeyringPassword:   config.KeyringPassword,
	config.KeyringTOTPSecret: config.KeyringTOTPSecret,
}

// secretReader supplies the secret value; replaceable in tests.
var secretReader input.Reader

func resolveSecretName(arg string) (string, error) {
	account, ok := secretNames[arg]
	if !ok {
		known := make([]string, 0, len(secretNames))
		for k := range secretNames {
			known = append(known, k)
		}
		return "", fmt.Errorf("unknown secret %q (known: %s)", arg, strings.Join(known, ", "))
	}
	return account, nil
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	account, err := resolveSecretName(args[0])
	if err != nil {
		return err
	}

	reader := secretReader
	if reader == nil {
		reader = input.NewStdinReader()
	}

	output.Print("Enter value for %s: ", account)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read secret: %w", err)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty value, nothing stored")
	}

	if err := secrets.Store(account, value); err != nil {
		return fmt.Errorf("store secret: %w", err)
	}
	return outputResult(
		map[string]string{"stored": account, "service": secrets.Service},
		"Stored %s in the %s keyring", account, secrets.Service)
}

func runSecretClear(cmd *cobra.Command, args []string) error {
	account, err := resolveSecretName(args[0])
	if err != nil {
		return err
	}

	if err := secrets.Delete(account); err != nil {
		return fmt.Errorf("clear secret: %w", err)
	}
	return outputResult(
		map[string]string{"cleared": account, "service": secrets.Service},
		"Removed %s from the %s keyring", account, secrets.Service)
}
