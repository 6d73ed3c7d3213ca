package panel

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/panelcert/panelcert/internal/errors"
)

// certNamePrefix brands every uploaded certificate so panel listings
// show at a glance which entries this agent owns.
const certNamePrefix = "acme-"

// CertificateBundle is the material one run uploads: PEM key and chain
// plus the name the panel will list it under.
type CertificateBundle struct {
	Name        string
	PrivateKey  string
	Certificate string
}

// CertName derives the panel-visible certificate name for a deployment
// of domain on the given day. The date component uses UTC, so every
// invocation within one UTC day produces the same name. Later steps
// find the uploaded certificate by this exact name, which is why the
// derivation must be deterministic within a run.
func CertName(domain string, at time.Time) string {
	return certNamePrefix + domain + at.UTC().Format("20060102")
}

// LoadBundle reads the key and certificate files and names the bundle
// for a deployment of domain at the given time. Unreadable files are
// configuration errors: nothing has touched the panel yet.
func LoadBundle(keyFile, certFile, domain string, at time.Time) (*CertificateBundle, error) {
	key, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfig, "read private key", err)
	}
	cert, err := os.ReadFile(certFile)
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfig, "read certificate", err)
	}

	return &CertificateBundle{
		Name:        CertName(domain, at),
		PrivateKey:  strings.TrimSpace(string(key)) + "\n",
		Certificate: strings.TrimSpace(string(cert)) + "\n",
	}, nil
}

// Inspect validates the bundle against the target domain without
// contacting anything: PEM structure, key/certificate match, name
// coverage, and expiry. It returns one message per problem found; an
// empty slice means the bundle is deployable.
func (b *CertificateBundle) Inspect(domain string, at time.Time) []string {
	var problems []string

	block, _ := pem.Decode([]byte(b.Certificate))
	if block == nil || block.Type != "CERTIFICATE" {
		return append(problems, "certificate file is not PEM-encoded certificate data")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return append(problems, fmt.Sprintf("certificate does not parse: %v", err))
	}

	if _, err := tls.X509KeyPair([]byte(b.Certificate), []byte(b.PrivateKey)); err != nil {
		problems = append(problems, fmt.Sprintf("private key does not match certificate: %v", err))
	}

	if err := cert.VerifyHostname(domain); err != nil {
		problems = append(problems, fmt.Sprintf("certificate does not cover %s: %v", domain, err))
	}

	if at.After(cert.NotAfter) {
		problems = append(problems, fmt.Sprintf("certificate expired %s", cert.NotAfter.Format(time.RFC3339)))
	} else if at.Add(14 * 24 * time.Hour).After(cert.NotAfter) {
		problems = append(problems, fmt.Sprintf("certificate expires soon: %s", cert.NotAfter.Format(time.RFC3339)))
	}

	return problems
}
