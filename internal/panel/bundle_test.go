package panel

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelcert/panelcert/internal/errors"
)

func TestCertName(t *testing.T) {
	day := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		domain string
		at     time.Time
		want   string
	}{
		{
			name:   "domain plus utc date",
			domain: "example.com",
			at:     day,
			want:   "acme-example.com20260824",
		},
		{
			name:   "same day same name",
			domain: "example.com",
			at:     day.Add(8 * time.Hour),
			want:   "acme-example.com20260824",
		},
		{
			name:   "next day differs",
			domain: "example.com",
			at:     day.AddDate(0, 0, 1),
			want:   "acme-example.com20260825",
		},
		{
			name:   "date component is utc not local",
			domain: "example.com",
			at:     time.Date(2026, 8, 24, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*3600)),
			want:   "acme-example.com20260825",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CertName(tt.domain, tt.at))
		})
	}
}

func TestLoadBundle(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key.pem")
	certFile := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(keyFile, []byte("KEY MATERIAL\n\n"), 0o600))
	require.NoError(t, os.WriteFile(certFile, []byte("CERT MATERIAL"), 0o644))

	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	b, err := LoadBundle(keyFile, certFile, "example.com", at)
	require.NoError(t, err)

	assert.Equal(t, "acme-example.com20260824", b.Name)
	assert.Equal(t, "KEY MATERIAL\n", b.PrivateKey)
	assert.Equal(t, "CERT MATERIAL\n", b.Certificate)
}

func TestLoadBundleMissingFile(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(certFile, []byte("x"), 0o644))

	_, err := LoadBundle(filepath.Join(dir, "absent.pem"), certFile, "example.com", time.Now())
	assert.True(t, errors.Is(err, errors.ErrConfiguration), "got %v", err)
}

func TestInspect(t *testing.T) {
	now := time.Now()
	keyPEM, certPEM := selfSigned(t, "example.com", now.Add(90*24*time.Hour))
	otherKeyPEM, _ := selfSigned(t, "example.com", now.Add(90*24*time.Hour))

	tests := []struct {
		name    string
		bundle  CertificateBundle
		domain  string
		at      time.Time
		wantAny string // substring expected among the problems; empty means clean
	}{
		{
			name:   "valid bundle",
			bundle: CertificateBundle{PrivateKey: keyPEM, Certificate: certPEM},
			domain: "example.com",
			at:     now,
		},
		{
			name:   "subdomain covered by wildcard",
			bundle: CertificateBundle{PrivateKey: keyPEM, Certificate: certPEM},
			domain: "blog.example.com",
			at:     now,
		},
		{
			name:    "not pem",
			bundle:  CertificateBundle{PrivateKey: keyPEM, Certificate: "garbage"},
			domain:  "example.com",
			at:      now,
			wantAny: "not PEM",
		},
		{
			name:    "key mismatch",
			bundle:  CertificateBundle{PrivateKey: otherKeyPEM, Certificate: certPEM},
			domain:  "example.com",
			at:      now,
			wantAny: "does not match",
		},
		{
			name:    "wrong domain",
			bundle:  CertificateBundle{PrivateKey: keyPEM, Certificate: certPEM},
			domain:  "other.org",
			at:      now,
			wantAny: "does not cover",
		},
		{
			name:    "expired",
			bundle:  CertificateBundle{PrivateKey: keyPEM, Certificate: certPEM},
			domain:  "example.com",
			at:      now.Add(120 * 24 * time.Hour),
			wantAny: "expired",
		},
		{
			name:    "expiring soon",
			bundle:  CertificateBundle{PrivateKey: keyPEM, Certificate: certPEM},
			domain:  "example.com",
			at:      now.Add(85 * 24 * time.Hour),
			wantAny: "expires soon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := tt.bundle.Inspect(tt.domain, tt.at)
			if tt.wantAny == "" {
				assert.Empty(t, problems)
				return
			}
			require.NotEmpty(t, problems)
			found := false
			for _, p := range problems {
				if strings.Contains(p, tt.wantAny) {
					found = true
				}
			}
			assert.True(t, found, "no problem mentions %q in %v", tt.wantAny, problems)
		})
	}
}

// selfSigned issues a throwaway certificate for domain and *.domain.
func selfSigned(t *testing.T, domain string, notAfter time.Time) (keyPEM, certPEM string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: domain},
		DNSNames:     []string{domain, "*." + domain},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
	return keyPEM, certPEM
}
