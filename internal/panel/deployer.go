package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/config"
	"github.com/panelcert/panelcert/internal/errors"
	"github.com/panelcert/panelcert/internal/logger"
)

// Form selectors on the certificate-add form.
const (
	certNameInput  = `input[name="name"]`
	certKeyInput   = `textarea[name="uploadText[privateKeyText]"]`
	certChainInput = `textarea[name="uploadText[certificateText]"]`
	certSubmitBtn  = `#btn-uploadText-sendText`
)

// addCertLabel is the control that opens the add form when a navigation
// lands on the certificate list instead.
const addCertLabel = "Add SSL/TLS Certificate"

// uploadConfirmation is the success banner after an upload. Rendering
// it is known to be unreliable even on true success, so waiting for it
// is best-effort.
const uploadConfirmation = "Information: The SSL/TLS certificate was issued."

// secureMailButton binds the selected certificate to the mail transport
// of the current instance.
const secureMailButton = `#buttonMailCertificate`

// dropdownOptionClass marks entries of the subsystem's custom dropdown
// widget; native select semantics do not apply to it.
const dropdownOptionClass = "pul-menu__base-item-content"

// Certificate selector labels for the rebinding dropdowns.
const (
	hostingCertLabel = "Certificate"
	webmailCertLabel = "SSL/TLS certificate for webmail"
	mailCertLabel    = "SSL/TLS certificate for mail"
)

// Deployer applies one certificate bundle to every resolved target.
// Steps run in fixed order; any step failure is fatal and wrapped as
// DEPLOY_STEP naming the step, so a partial application is always
// attributable from the error alone.
type Deployer struct {
	page    browser.Page
	cfg     *config.Config
	targets *ResolvedTargets
	bundle  *CertificateBundle

	// warn records a non-fatal finding on the run summary.
	warn func(format string, args ...interface{})
}

// NewDeployer creates a Deployer driving page. The resolver has already
// closed its popups; the session cookies are browser-global, so every
// subsystem URL is reachable from the primary page directly.
func NewDeployer(page browser.Page, cfg *config.Config, targets *ResolvedTargets, bundle *CertificateBundle, warn func(string, ...interface{})) *Deployer {
	if warn == nil {
		warn = logger.Warn
	}
	return &Deployer{page: page, cfg: cfg, targets: targets, bundle: bundle, warn: warn}
}

// Deploy runs the full rollout: upload to both subsystems, then rebind
// the web vhosts, the two mail transports, and the webmail/mail
// certificate selectors.
func (d *Deployer) Deploy(ctx context.Context) error {
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"upload web certificate", d.uploadWeb},
		{"upload mail certificate", d.uploadMail},
		{"secure web mail transport", d.secureWebMail},
		{"rebind hosting settings", d.rebindHosting},
		{"secure mail transport", d.secureMailTransport},
		{"rebind mail settings", d.rebindMailSettings},
	}

	for i, step := range steps {
		logger.Info("Step %d/%d: %s", i+1, len(steps), step.name)
		if err := step.run(ctx); err != nil {
			if errors.Is(err, errors.ErrDeployStep) {
				return err
			}
			return errors.WrapTarget(errors.CodeDeployStep, step.name, "step failed", err)
		}
	}

	logger.Info("Deployment complete: %s", d.bundle.Name)
	return nil
}

func (d *Deployer) uploadWeb(ctx context.Context) error {
	return d.uploadCertificate(ctx, d.webURL("/smb/ssl-certificate/add/id/"+d.targets.PrimaryDomainID))
}

func (d *Deployer) uploadMail(ctx context.Context) error {
	return d.uploadCertificate(ctx, d.mailURL("/smb/ssl-certificate/add/id/"+d.targets.MailID))
}

// uploadCertificate fills and submits the certificate-add form at
// addURL. The subsystem sometimes bounces the add URL to the list view;
// in that case the add control is triggered first.
func (d *Deployer) uploadCertificate(ctx context.Context, addURL string) error {
	if err := d.open(ctx, addURL); err != nil {
		return err
	}

	cur, err := d.page.URL(ctx)
	if err != nil {
		return err
	}
	if strings.Contains(cur, "/list") {
		logger.Debug("Landed on certificate list, opening add form")
		if err := d.page.Click(ctx, browser.ByExactText(addCertLabel)); err != nil {
			return fmt.Errorf("open add form: %w", err)
		}
		if err := d.page.WaitIdle(ctx, d.cfg.IdleTimeout); err != nil {
			return err
		}
	}

	if err := d.page.Fill(ctx, certNameInput, d.bundle.Name); err != nil {
		return fmt.Errorf("fill certificate name: %w", err)
	}
	if err := d.page.Fill(ctx, certKeyInput, d.bundle.PrivateKey); err != nil {
		return fmt.Errorf("fill private key: %w", err)
	}
	if err := d.page.Fill(ctx, certChainInput, d.bundle.Certificate); err != nil {
		return fmt.Errorf("fill certificate: %w", err)
	}
	if err := d.page.Click(ctx, certSubmitBtn); err != nil {
		return fmt.Errorf("submit upload form: %w", err)
	}

	// Best-effort: absence of the banner does not imply failure.
	confirmation := browser.ByExactText(uploadConfirmation)
	if err := d.page.WaitVisible(ctx, confirmation, d.cfg.ConfirmTimeout); err != nil {
		d.warn("no upload confirmation within %s for %s, continuing", d.cfg.ConfirmTimeout, d.bundle.Name)
	}
	return nil
}

func (d *Deployer) secureWebMail(ctx context.Context) error {
	return d.secureMail(ctx, d.webURL("/smb/ssl-certificate/list/id/"+d.targets.PrimaryDomainID))
}

func (d *Deployer) secureMailTransport(ctx context.Context) error {
	return d.secureMail(ctx, d.mailURL("/smb/ssl-certificate/list/id/"+d.targets.MailID))
}

// secureMail selects the bundle's row on the certificate list at
// listURL and triggers the mail-transport binding.
func (d *Deployer) secureMail(ctx context.Context, listURL string) error {
	if err := d.open(ctx, listURL); err != nil {
		return err
	}

	row := browser.RowContaining(d.bundle.Name, `//input[@type='checkbox']`)
	if err := d.page.Check(ctx, row); err != nil {
		return fmt.Errorf("select certificate row %s: %w", d.bundle.Name, err)
	}
	if err := d.page.Click(ctx, secureMailButton); err != nil {
		return fmt.Errorf("trigger mail binding: %w", err)
	}
	return d.page.WaitIdle(ctx, d.cfg.IdleTimeout)
}

// rebindHosting points every resolved web vhost at the new certificate,
// primary first.
func (d *Deployer) rebindHosting(ctx context.Context) error {
	for _, id := range d.targets.WebDomainIDs {
		logger.Info("Rebinding hosting settings for domain id %s", id)
		if err := d.open(ctx, d.webURL("/smb/web/view/"+id+"/hosting-settings")); err != nil {
			return err
		}
		if err := d.selectDropdown(ctx, hostingCertLabel, d.bundle.Name); err != nil {
			return fmt.Errorf("domain id %s: %w", id, err)
		}
		if err := d.save(ctx); err != nil {
			return fmt.Errorf("domain id %s: %w", id, err)
		}
	}
	return nil
}

// rebindMailSettings points both the webmail and the mail certificate
// selectors at the new certificate.
func (d *Deployer) rebindMailSettings(ctx context.Context) error {
	url := d.mailURL(fmt.Sprintf("/smb/mail-settings/edit/id/%s/domainId/%s", d.targets.MailID, d.targets.MailID))
	if err := d.open(ctx, url); err != nil {
		return err
	}
	if err := d.selectDropdown(ctx, webmailCertLabel, d.bundle.Name); err != nil {
		return err
	}
	if err := d.selectDropdown(ctx, mailCertLabel, d.bundle.Name); err != nil {
		return err
	}
	return d.save(ctx)
}

// selectDropdown drives the subsystem's custom dropdown: activate the
// labeled control, then pick the option whose text contains value. The
// deterministic naming scheme guarantees at most one real match, so the
// first hit wins.
func (d *Deployer) selectDropdown(ctx context.Context, label, value string) error {
	if err := d.page.Click(ctx, browser.LabelByText(label)); err != nil {
		return fmt.Errorf("open %q dropdown: %w", label, err)
	}

	option := fmt.Sprintf(`(//*[contains(@class, '%s')][contains(normalize-space(.), %s)])[1]`,
		dropdownOptionClass, browser.XPathString(value))
	if err := d.page.Click(ctx, option); err != nil {
		return fmt.Errorf("pick %q in %q dropdown: %w", value, label, err)
	}
	return nil
}

// save submits the current settings form and waits for the subsystem to
// settle.
func (d *Deployer) save(ctx context.Context) error {
	if err := d.page.Click(ctx, browser.ButtonByName("Save")); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return d.page.WaitIdle(ctx, d.cfg.IdleTimeout)
}

// open navigates and waits for quiescence.
func (d *Deployer) open(ctx context.Context, url string) error {
	if err := d.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return d.page.WaitIdle(ctx, d.cfg.IdleTimeout)
}

func (d *Deployer) webURL(path string) string {
	return fmt.Sprintf("https://%s.%s%s", d.targets.WebHostID, d.cfg.HostingDomain, path)
}

func (d *Deployer) mailURL(path string) string {
	return fmt.Sprintf("https://%s.%s%s", d.targets.MailHostID, d.cfg.HostingDomain, path)
}
