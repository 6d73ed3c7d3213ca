package panel

import (
	"strings"

	"github.com/panelcert/panelcert/internal/errors"
)

// SubsystemKind names one of the two hosting subsystems reachable via
// SSO handoff from the panel's product detail page.
type SubsystemKind string

const (
	SubsystemWeb  SubsystemKind = "web"
	SubsystemMail SubsystemKind = "mail"
)

// HostingHandoff describes one completed SSO handoff: which subsystem
// it opened and the host id carved from the popup's final hostname.
type HostingHandoff struct {
	Kind   SubsystemKind
	HostID string
}

// DomainRecord is one entry of the web subsystem's domain list as
// carried in the embedded bootstrap payload. The panel serializes the
// numeric id inconsistently (number or string), so DomainID normalizes
// both to a string.
type DomainRecord struct {
	DisplayName string   `json:"displayName"`
	DomainID    StringID `json:"domainId"`
}

// ResolvedTargets collects every identifier the deployment stage needs.
// All of them are opaque values the panel invents; none appear in any
// stable URL or document, which is why resolution is a pipeline stage
// of its own.
type ResolvedTargets struct {
	WebHostID  string `json:"web_host_id"`
	MailHostID string `json:"mail_host_id"`

	// PrimaryDomainID is the id the hosting-settings rebind targets.
	// Always the first element of WebDomainIDs.
	PrimaryDomainID string `json:"primary_domain_id"`

	// WebDomainIDs lists every id receiving the web certificate,
	// primary first, subdomains after in listing order.
	WebDomainIDs []string `json:"web_domain_ids"`

	// MailID identifies the mail account row. Unlike the web side there
	// is no fallback: mail rebinding is wrong against any other account.
	MailID string `json:"mail_id"`

	// FallbackPrimary is set when no exact domain match existed and the
	// first subdomain match was promoted to primary.
	FallbackPrimary bool `json:"fallback_primary"`
}

// classifyDomains partitions the domain list against the target domain:
// an exact display-name match is primary, names ending in "."+domain
// are subdomains, everything else is ignored. When no exact match
// exists but subdomains do, the first subdomain is promoted to primary.
// No match at all is a DOMAIN_NOT_FOUND failure.
func classifyDomains(records []DomainRecord, domain string) (ids []string, fallback bool, err error) {
	var primary string
	var subs []string

	suffix := "." + domain
	for _, rec := range records {
		switch {
		case rec.DisplayName == domain:
			primary = string(rec.DomainID)
		case strings.HasSuffix(rec.DisplayName, suffix):
			subs = append(subs, string(rec.DomainID))
		}
	}

	if primary == "" {
		if len(subs) == 0 {
			return nil, false, errors.NotFound(errors.CodeDomainNotFound, domain)
		}
		// Promote the first subdomain. The rebind still lands on a host
		// serving the domain's tree, just not the root vhost.
		primary = subs[0]
		subs = subs[1:]
		fallback = true
	}

	ids = append([]string{primary}, subs...)
	return ids, fallback, nil
}
