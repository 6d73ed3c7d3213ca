package panel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/errors"
)

func runnerConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.New()
	cfg.Customer = "12345"
	cfg.Password = "hunter2"
	cfg.TOTPSecret = rfcTOTPSecret
	cfg.ProductID = "4242"
	cfg.Domain = "example.com"
	cfg.PanelURL = "https://panel.test"
	cfg.KeyFile = filepath.Join(dir, "key.pem")
	cfg.CertFile = filepath.Join(dir, "cert.pem")
	cfg.SnapshotFile = filepath.Join(dir, "snapshot.png")
	cfg.HandoffTimeout = time.Second
	cfg.IdleTimeout = time.Second
	cfg.ConfirmTimeout = 50 * time.Millisecond

	require.NoError(t, os.WriteFile(cfg.KeyFile, []byte("KEY\n"), 0o600))
	require.NoError(t, os.WriteFile(cfg.CertFile, []byte("CERT\n"), 0o644))
	return cfg
}

// sessionBrowser wires a MockBrowser whose primary page passes login
// without a second factor and whose popups resolve cleanly.
func sessionBrowser() *browser.MockBrowser {
	web := webPopup(`[
		{"displayName": "example.com", "domainId": 101},
		{"displayName": "blog.example.com", "domainId": 102}
	]`)
	mail := mailPopup("55")

	b := browser.NewMockBrowser(web, mail)
	b.MainPage.URLFunc = func() (string, error) { return "https://panel.test/index.php", nil }
	b.MainPage.ContentFunc = func() (string, error) { return "<html>Welcome</html>", nil }
	b.MainPage.CountFunc = func(sel string) (int, error) { return 1, nil }
	return b
}

func factoryFor(b browser.Browser) BrowserFactory {
	return func(context.Context, *config.Config) (browser.Browser, error) {
		return b, nil
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := runnerConfig(t)
	b := sessionBrowser()

	r := NewRunner(cfg, factoryFor(b))
	r.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, "example.com", summary.Domain)
	assert.Equal(t, "acme-example.com20260824", summary.CertName)
	require.NotNil(t, summary.Targets)
	assert.Equal(t, []string{"101", "102"}, summary.Targets.WebDomainIDs)
	assert.Equal(t, "55", summary.Targets.MailID)

	assert.Equal(t, 1, b.CloseCalls, "browser released on success")
	_, statErr := os.Stat(cfg.SnapshotFile)
	assert.True(t, os.IsNotExist(statErr), "no snapshot on success")
}

func TestRunSnapshotOnFailure(t *testing.T) {
	cfg := runnerConfig(t)
	b := sessionBrowser()
	b.MainPage.CountFunc = func(sel string) (int, error) { return 0, nil } // product missing

	r := NewRunner(cfg, factoryFor(b))
	summary, err := r.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrProductNotFound), "got %v", err)

	// Diagnostic capture before propagation, browser still released.
	assert.Equal(t, 1, b.MainPage.ScreenshotCalls)
	img, readErr := os.ReadFile(cfg.SnapshotFile)
	require.NoError(t, readErr)
	assert.NotEmpty(t, img)
	assert.Equal(t, 1, b.CloseCalls)

	// The summary still reports what little the run established.
	assert.Equal(t, "acme-"+cfg.Domain+time.Now().UTC().Format("20060102"), summary.CertName)
	assert.Nil(t, summary.Targets)
}

func TestRunUnreadableBundleFailsBeforeBrowser(t *testing.T) {
	cfg := runnerConfig(t)
	require.NoError(t, os.Remove(cfg.KeyFile))

	opened := false
	factory := func(context.Context, *config.Config) (browser.Browser, error) {
		opened = true
		return browser.NewMockBrowser(), nil
	}

	r := NewRunner(cfg, factory)
	_, err := r.Run(context.Background())

	assert.True(t, errors.Is(err, errors.ErrConfiguration), "got %v", err)
	assert.False(t, opened, "no browser before the bundle loads")
}

func TestRunBrowserFactoryFailure(t *testing.T) {
	cfg := runnerConfig(t)
	factory := func(context.Context, *config.Config) (browser.Browser, error) {
		return nil, context.DeadlineExceeded
	}

	r := NewRunner(cfg, factory)
	_, err := r.Run(context.Background())
	assert.True(t, errors.Is(err, errors.ErrBrowser), "got %v", err)
}

func TestRunCollectsDeployWarnings(t *testing.T) {
	cfg := runnerConfig(t)
	b := sessionBrowser()
	b.MainPage.WaitVisibleFunc = func(sel string, timeout time.Duration) error {
		return context.DeadlineExceeded // confirmation banner never renders
	}

	r := NewRunner(cfg, factoryFor(b))
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Warnings, 2)
	assert.Contains(t, summary.Warnings[0], "no upload confirmation")
}
