package config

import (
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/panelcert/panelcert/internal/errors"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvCustomer, "123456")
	t.Setenv(EnvPassword, "hunter2")
	t.Setenv(EnvTOTPSecret, "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ")
	t.Setenv(EnvProductID, "whp1000")
	t.Setenv(EnvDomain, "example.com")
}

func TestDefaults(t *testing.T) {
	cfg := New()

	if cfg.PanelURL != DefaultPanelURL {
		t.Errorf("PanelURL = %q, want %q", cfg.PanelURL, DefaultPanelURL)
	}
	if cfg.HostingDomain != DefaultHostingDomain {
		t.Errorf("HostingDomain = %q, want %q", cfg.HostingDomain, DefaultHostingDomain)
	}
	if cfg.KeyFile != DefaultKeyFile || cfg.CertFile != DefaultCertFile {
		t.Errorf("bundle paths = (%q, %q), want defaults", cfg.KeyFile, cfg.CertFile)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.HandoffTimeout <= 0 || cfg.IdleTimeout <= 0 || cfg.ConfirmTimeout <= 0 {
		t.Error("wait bounds must have positive defaults")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	keyring.MockInit()
	setRequiredEnv(t)
	t.Setenv(EnvPanelURL, "https://panel.test")
	t.Setenv(EnvHostingDomain, "hosting.test")
	t.Setenv("HOME", t.TempDir()) // isolate from any real config file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Customer != "123456" {
		t.Errorf("Customer = %q", cfg.Customer)
	}
	if cfg.Password != "hunter2" {
		t.Errorf("Password = %q", cfg.Password)
	}
	if cfg.PanelURL != "https://panel.test" {
		t.Errorf("PanelURL = %q", cfg.PanelURL)
	}
	if cfg.HostingDomain != "hosting.test" {
		t.Errorf("HostingDomain = %q", cfg.HostingDomain)
	}
}

func TestLoadPasswordFromKeyring(t *testing.T) {
	keyring.MockInit()
	setRequiredEnv(t)
	t.Setenv(EnvPassword, "")
	t.Setenv("HOME", t.TempDir())

	if err := keyring.Set("panelcert", KeyringPassword, "ring-pass"); err != nil {
		t.Fatalf("keyring.Set() error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Password != "ring-pass" {
		t.Errorf("Password = %q, want keyring value", cfg.Password)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		wantVar string
	}{
		{
			name:    "complete config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing customer",
			mutate:  func(c *Config) { c.Customer = "" },
			wantErr: true,
			wantVar: EnvCustomer,
		},
		{
			name:    "missing password",
			mutate:  func(c *Config) { c.Password = "" },
			wantErr: true,
			wantVar: EnvPassword,
		},
		{
			name:    "missing totp secret",
			mutate:  func(c *Config) { c.TOTPSecret = "" },
			wantErr: true,
			wantVar: EnvTOTPSecret,
		},
		{
			name:    "missing domain",
			mutate:  func(c *Config) { c.Domain = "" },
			wantErr: true,
			wantVar: EnvDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Customer = "123456"
			cfg.Password = "hunter2"
			cfg.TOTPSecret = "SECRET"
			cfg.ProductID = "whp1000"
			cfg.Domain = "example.com"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, errors.ErrConfiguration) {
					t.Fatalf("Validate() = %v, want configuration error", err)
				}
				if tt.wantVar != "" && !strings.Contains(err.Error(), tt.wantVar) {
					t.Errorf("error %q should name %s", err.Error(), tt.wantVar)
				}
			} else if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}
