package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/panelcert/panelcert/internal/errors"
	"github.com/panelcert/panelcert/internal/secrets"
)

// Environment variable names for every setting.
const (
	EnvCustomer      = "PANELCERT_USER"
	EnvPassword      = "PANELCERT_PASS"
	EnvTOTPSecret    = "PANELCERT_TOTP_SECRET"
	EnvProductID     = "PANELCERT_PRODUCT_ID"
	EnvDomain        = "PANELCERT_DOMAIN"
	EnvPanelURL      = "PANELCERT_PANEL_URL"
	EnvHostingDomain = "PANELCERT_HOSTING_DOMAIN"
	EnvKeyFile       = "PANELCERT_KEY_FILE"
	EnvCertFile      = "PANELCERT_CERT_FILE"
	EnvSnapshotFile  = "PANELCERT_SNAPSHOT_FILE"
	EnvBrowserPath   = "PANELCERT_BROWSER_PATH"
)

// Keyring account names for the secret fallbacks.
const (
	KeyringPassword   = "password"
	KeyringTOTPSecret = "totp-secret"
)

// Defaults for optional settings.
const (
	DefaultPanelURL      = "https://www.customercontrolpanel.de"
	DefaultHostingDomain = "webhosting.systems"
	DefaultKeyFile       = "/data/key.pem"
	DefaultCertFile      = "/data/cert.pem"
	DefaultSnapshotFile  = "error_screenshot.png"
)

// configDir is the default config directory under the user's home.
const configDir = ".config/panelcert"
const configFile = "config.yaml"

// Config represents the full run configuration.
type Config struct {
	// Operator identity and target.
	Customer   string `yaml:"customer"`
	Password   string `yaml:"-"` // secrets never come from the file
	TOTPSecret string `yaml:"-"`
	ProductID  string `yaml:"product_id"`
	Domain     string `yaml:"domain"`

	// Panel addresses.
	PanelURL      string `yaml:"panel_url"`
	HostingDomain string `yaml:"hosting_domain"`

	// Certificate material.
	KeyFile  string `yaml:"key_file"`
	CertFile string `yaml:"cert_file"`

	// Diagnostics.
	SnapshotFile string `yaml:"snapshot_file"`

	// Browser behavior.
	BrowserPath string        `yaml:"browser_path"`
	Headless    bool          `yaml:"headless"`
	SlowMo      time.Duration `yaml:"slow_mo"`

	// Wait bounds. Handoff and idle waits are required waits (fatal on
	// timeout); the confirm wait is best-effort.
	HandoffTimeout time.Duration `yaml:"handoff_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		PanelURL:       DefaultPanelURL,
		HostingDomain:  DefaultHostingDomain,
		KeyFile:        DefaultKeyFile,
		CertFile:       DefaultCertFile,
		SnapshotFile:   DefaultSnapshotFile,
		Headless:       true,
		SlowMo:         100 * time.Millisecond,
		HandoffTimeout: 60 * time.Second,
		IdleTimeout:    60 * time.Second,
		ConfirmTimeout: 30 * time.Second,
	}
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// Load builds the configuration: defaults, then the optional YAML file,
// then environment variables. Secrets resolve through internal/secrets
// (environment first, OS keyring second).
func Load() (*Config, error) {
	cfg := New()

	path, err := ConfigPath()
	if err == nil {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.loadSecrets(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays settings from the YAML file, if it exists.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.CodeConfig, "read config file", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrap(errors.CodeConfig, "parse config file", err)
	}
	return nil
}

// applyEnv overlays non-secret settings from the environment.
func (c *Config) applyEnv() {
	setIfPresent(&c.Customer, EnvCustomer)
	setIfPresent(&c.ProductID, EnvProductID)
	setIfPresent(&c.Domain, EnvDomain)
	setIfPresent(&c.PanelURL, EnvPanelURL)
	setIfPresent(&c.HostingDomain, EnvHostingDomain)
	setIfPresent(&c.KeyFile, EnvKeyFile)
	setIfPresent(&c.CertFile, EnvCertFile)
	setIfPresent(&c.SnapshotFile, EnvSnapshotFile)
	setIfPresent(&c.BrowserPath, EnvBrowserPath)
}

// loadSecrets resolves the password and second-factor secret.
func (c *Config) loadSecrets() error {
	pass, _, err := secrets.Lookup(EnvPassword, KeyringPassword)
	if err != nil {
		return errors.Wrap(errors.CodeConfig, "resolve panel password", err)
	}
	c.Password = pass

	seed, _, err := secrets.Lookup(EnvTOTPSecret, KeyringTOTPSecret)
	if err != nil {
		return errors.Wrap(errors.CodeConfig, "resolve second-factor secret", err)
	}
	c.TOTPSecret = seed

	return nil
}

// Validate checks that every required setting is present. It returns a
// CONFIG error naming the first missing one; callers run it before any
// browser or network activity.
func (c *Config) Validate() error {
	required := []struct {
		value  string
		envVar string
	}{
		{c.Customer, EnvCustomer},
		{c.Password, EnvPassword},
		{c.TOTPSecret, EnvTOTPSecret},
		{c.ProductID, EnvProductID},
		{c.Domain, EnvDomain},
	}

	for _, r := range required {
		if r.value == "" {
			return errors.Config(fmt.Sprintf("missing required setting: %s", r.envVar))
		}
	}
	return nil
}

func setIfPresent(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}
