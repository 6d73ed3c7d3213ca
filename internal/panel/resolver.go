package panel

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/errors"
	"github.com/panelcert/panelcert/internal/logger"
)

// productListPath is the panel's product listing page.
const productListPath = "/produkte.php"

// SSO button labels on the product detail page. Exact text; the panel
// renders one per subsystem.
const (
	webHandoffButton  = "Auto-Login WEB"
	mailHandoffButton = "Auto-Login MAIL"
)

// mailListPath is the mail subsystem's account listing.
const mailListPath = "/smb/mail-settings/list"

// Resolver discovers every opaque identifier a deployment needs. It
// owns the whole browser because the SSO handoffs open popup pages.
type Resolver struct {
	browser browser.Browser
	cfg     *config.Config

	// warn records a non-fatal finding on the run summary.
	warn func(format string, args ...interface{})
}

// NewResolver creates a Resolver. warn receives non-fatal findings; nil
// routes them to the log only.
func NewResolver(b browser.Browser, cfg *config.Config, warn func(string, ...interface{})) *Resolver {
	if warn == nil {
		warn = logger.Warn
	}
	return &Resolver{browser: b, cfg: cfg, warn: warn}
}

// Resolve walks the panel from the product listing through both SSO
// handoffs and returns the populated target set. Requires an
// authenticated session on the browser's primary page.
func (r *Resolver) Resolve(ctx context.Context) (*ResolvedTargets, error) {
	if err := r.openProduct(ctx); err != nil {
		return nil, err
	}

	targets := &ResolvedTargets{}

	web, err := r.handoff(ctx, SubsystemWeb, webHandoffButton)
	if err != nil {
		return nil, err
	}
	err = func() error {
		defer web.page.Close()
		targets.WebHostID = web.HostID
		return r.collectWebIDs(ctx, web.page, targets)
	}()
	if err != nil {
		return nil, err
	}

	mail, err := r.handoff(ctx, SubsystemMail, mailHandoffButton)
	if err != nil {
		return nil, err
	}
	err = func() error {
		defer mail.page.Close()
		targets.MailHostID = mail.HostID
		return r.collectMailID(ctx, mail.page, targets)
	}()
	if err != nil {
		return nil, err
	}

	logger.InfoFields("Resolved all targets", map[string]interface{}{
		"web_host":   targets.WebHostID,
		"mail_host":  targets.MailHostID,
		"primary":    targets.PrimaryDomainID,
		"domain_ids": strings.Join(targets.WebDomainIDs, ","),
		"mail_id":    targets.MailID,
	})
	return targets, nil
}

// openProduct finds the configured product's row in the listing and
// opens its detail view, where the SSO buttons live.
func (r *Resolver) openProduct(ctx context.Context) error {
	page := r.browser.Page()

	if err := page.Navigate(ctx, r.cfg.PanelURL+productListPath); err != nil {
		return errors.Wrap(errors.CodeBrowser, "open product listing", err)
	}
	if err := page.WaitIdle(ctx, r.cfg.IdleTimeout); err != nil {
		return errors.Wrap(errors.CodeBrowser, "product listing never settled", err)
	}

	rowLink := productDetailLink(r.cfg.ProductID)
	n, err := page.Count(ctx, rowLink)
	if err != nil {
		return errors.Wrap(errors.CodeBrowser, "search product listing", err)
	}
	if n == 0 {
		return errors.NotFound(errors.CodeProductNotFound, r.cfg.ProductID)
	}

	logger.Info("Opening product %s", r.cfg.ProductID)
	if err := page.Click(ctx, firstMatch(rowLink)); err != nil {
		return errors.Wrap(errors.CodeBrowser, "open product detail", err)
	}
	if err := page.WaitIdle(ctx, r.cfg.IdleTimeout); err != nil {
		return errors.Wrap(errors.CodeBrowser, "product detail never settled", err)
	}
	return nil
}

// handoffResult pairs the adopted popup page with the host id carved
// from its final address.
type handoffResult struct {
	HostingHandoff
	page browser.Page
}

// handoff clicks an SSO button, adopts the popup it opens, waits for
// the subsystem to finish loading, and reads the host id off the popup
// hostname. The caller owns closing the returned page.
func (r *Resolver) handoff(ctx context.Context, kind SubsystemKind, button string) (*handoffResult, error) {
	page := r.browser.Page()
	logger.Info("Starting %s handoff", kind)

	popup, err := r.browser.ExpectPopup(ctx, r.cfg.HandoffTimeout, func() error {
		return page.Click(ctx, browser.ByExactText(button))
	})
	if errors.Is(err, browser.ErrPopupTimeout) {
		return nil, errors.WrapTarget(errors.CodeHandoffTimeout, string(kind), "popup never opened", err)
	}
	if err != nil {
		return nil, errors.WrapTarget(errors.CodeBrowser, string(kind), "trigger handoff", err)
	}

	if err := popup.WaitIdle(ctx, r.cfg.HandoffTimeout); err != nil {
		popup.Close()
		return nil, errors.WrapTarget(errors.CodeHandoffTimeout, string(kind), "popup never settled", err)
	}

	addr, err := popup.URL(ctx)
	if err != nil {
		popup.Close()
		return nil, errors.WrapTarget(errors.CodeBrowser, string(kind), "read popup url", err)
	}
	hostID, err := firstHostLabel(addr)
	if err != nil {
		popup.Close()
		return nil, errors.WrapTarget(errors.CodeBrowser, string(kind), "derive host id", err)
	}

	logger.Info("%s handoff landed on host %s", kind, hostID)
	return &handoffResult{
		HostingHandoff: HostingHandoff{Kind: kind, HostID: hostID},
		page:           popup,
	}, nil
}

// collectWebIDs reads the domain list embedded in the web subsystem's
// landing page and classifies it against the target domain.
func (r *Resolver) collectWebIDs(ctx context.Context, popup browser.Page, targets *ResolvedTargets) error {
	records, err := ExtractDomainRecords(ctx, popup)
	if err != nil {
		return err
	}

	ids, fallback, err := classifyDomains(records, r.cfg.Domain)
	if err != nil {
		return err
	}
	if fallback {
		r.warn("no exact entry for %s, promoting first subdomain (id %s) to primary", r.cfg.Domain, ids[0])
	}

	targets.WebDomainIDs = ids
	targets.PrimaryDomainID = ids[0]
	targets.FallbackPrimary = fallback
	return nil
}

// collectMailID finds the target domain's row in the mail account
// listing and reads the account id off its checkbox. Exact match only;
// a subdomain's mail account is a different account, so unlike the web
// side there is no fallback.
func (r *Resolver) collectMailID(ctx context.Context, popup browser.Page, targets *ResolvedTargets) error {
	listURL := fmt.Sprintf("https://%s.%s%s", targets.MailHostID, r.cfg.HostingDomain, mailListPath)
	if err := popup.Navigate(ctx, listURL); err != nil {
		return errors.Wrap(errors.CodeBrowser, "open mail account listing", err)
	}
	if err := popup.WaitIdle(ctx, r.cfg.IdleTimeout); err != nil {
		return errors.Wrap(errors.CodeBrowser, "mail listing never settled", err)
	}

	checkbox := browser.RowWithExactText(r.cfg.Domain, `//input[@type='checkbox']`)
	n, err := popup.Count(ctx, checkbox)
	if err != nil {
		return errors.Wrap(errors.CodeBrowser, "search mail listing", err)
	}
	if n == 0 {
		return errors.NotFound(errors.CodeMailIDNotFound, r.cfg.Domain)
	}

	value, ok, err := popup.Attribute(ctx, firstMatch(checkbox), "value")
	if err != nil {
		return errors.Wrap(errors.CodeBrowser, "read mail account id", err)
	}
	if !ok || value == "" {
		return errors.WrapTarget(errors.CodeMailIDNotFound, r.cfg.Domain, "row found but checkbox carries no id", nil)
	}

	targets.MailID = value
	return nil
}

// productDetailLink matches the detail link inside the product's
// listing row.
func productDetailLink(productID string) string {
	return fmt.Sprintf(`//tr[contains(., %s)]//a[contains(@onclick, 'showProductDetail')]`,
		browser.XPathString(productID))
}

// firstMatch narrows an XPath to its first hit.
func firstMatch(xpath string) string {
	return "(" + xpath + ")[1]"
}

// firstHostLabel returns the first dot-separated label of addr's
// hostname. The subsystems encode the host id there: the popup for
// host a2f4 lands on https://a2f4.webhosting.systems/...
func firstHostLabel(addr string) (string, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", addr, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no hostname in %q", addr)
	}
	return strings.SplitN(host, ".", 2)[0], nil
}
