package panel

import (
	"context"
	"strings"
	"time"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/errors"
	"github.com/panelcert/panelcert/internal/logger"
	"github.com/panelcert/panelcert/internal/totp"
)

// loginLanguage pins the panel UI to English; every selector downstream
// matches English labels.
const loginLanguage = "en-US"

// landingPath hosts both the second-factor prompt and, once the code is
// accepted, the authenticated landing page. Its presence in the URL
// right after the password step marks the challenge; settling on it
// after code submission marks acceptance.
const landingPath = "start.php"

// challengeMarker appears in the page content when the panel renders
// the second-factor form somewhere other than the landing path.
const challengeMarker = "verification"

// Authenticator performs the interactive login on the panel's primary
// page: customer number and password first, then a time-based one-time
// code when the panel asks for one.
type Authenticator struct {
	page browser.Page
	cfg  *config.Config

	// now feeds the one-time-code derivation; replaceable in tests.
	now func() time.Time
}

// NewAuthenticator creates an Authenticator driving page.
func NewAuthenticator(page browser.Page, cfg *config.Config) *Authenticator {
	return &Authenticator{
		page: page,
		cfg:  cfg,
		now:  time.Now,
	}
}

// Login authenticates the session. The second-factor prompt is not
// guaranteed: the panel skips it for trusted sessions, and it never
// announces in advance which it will do. Login decides from the page
// it actually lands on, and submits a code only when prompted.
func (a *Authenticator) Login(ctx context.Context) error {
	logger.Info("Logging in to %s", a.cfg.PanelURL)

	loginURL := a.cfg.PanelURL + "?login_language=" + loginLanguage
	if err := a.page.Navigate(ctx, loginURL); err != nil {
		return errors.Authentication("open login page", err)
	}

	if err := a.page.Fill(ctx, browser.ByPlaceholder("Customer number"), a.cfg.Customer); err != nil {
		return errors.Authentication("fill customer number", err)
	}
	if err := a.page.Fill(ctx, browser.ByPlaceholder("Password"), a.cfg.Password); err != nil {
		return errors.Authentication("fill password", err)
	}
	if err := a.page.Click(ctx, browser.ButtonByName("Log in")); err != nil {
		return errors.Authentication("submit login form", err)
	}

	if err := a.page.WaitIdle(ctx, a.cfg.IdleTimeout); err != nil {
		return errors.Authentication("page never settled after login", err)
	}

	prompted, err := a.secondFactorPrompted(ctx)
	if err != nil {
		return err
	}
	if !prompted {
		// Trusted session, already past the login wall.
		logger.Info("Logged in without second factor")
		return nil
	}

	return a.submitSecondFactor(ctx)
}

// secondFactorPrompted reports whether the panel is asking for a
// one-time code: either the post-login redirect reached the landing
// path (where the prompt is rendered) or the page content carries the
// verification form. Neither marker means the session is already past
// the login wall.
func (a *Authenticator) secondFactorPrompted(ctx context.Context) (bool, error) {
	url, err := a.page.URL(ctx)
	if err != nil {
		return false, errors.Authentication("read page url", err)
	}
	if strings.Contains(url, landingPath) {
		return true, nil
	}

	content, err := a.page.Content(ctx)
	if err != nil {
		return false, errors.Authentication("read page content", err)
	}
	return strings.Contains(content, challengeMarker), nil
}

// submitSecondFactor derives the current one-time code and submits it.
func (a *Authenticator) submitSecondFactor(ctx context.Context) error {
	logger.Info("Second factor requested, submitting one-time code")

	code, err := totp.Code(a.cfg.TOTPSecret, a.now())
	if err != nil {
		return err
	}

	if err := a.page.Fill(ctx, browser.ByPlaceholder("TAN"), code); err != nil {
		return errors.Authentication("fill one-time code", err)
	}
	if err := a.page.Click(ctx, browser.ButtonByName("Confirm token")); err != nil {
		return errors.Authentication("submit one-time code", err)
	}

	if err := a.page.WaitURLContains(ctx, landingPath, a.cfg.IdleTimeout); err != nil {
		return errors.Authentication("second factor rejected", err)
	}

	logger.Info("Login complete")
	return nil
}
