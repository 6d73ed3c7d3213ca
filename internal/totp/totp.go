// Package totp generates time-based one-time codes from the shared
// secret enrolled with the control panel's second-factor setup.
package totp

import (
	"strings"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/panelcert/panelcert/internal/errors"
)

// Code computes the 6-digit code for the given base32 shared secret at
// time t, using the standard 30-second window. A wrong code will not
// resolve by retrying inside the same window, so callers treat failures
// downstream of this as fatal.
func Code(secret string, t time.Time) (string, error) {
	normalized := normalize(secret)
	if normalized == "" {
		return "", errors.Config("second-factor shared secret is empty")
	}

	code, err := totp.GenerateCode(normalized, t)
	if err != nil {
		return "", errors.Wrap(errors.CodeConfig, "generate second-factor code", err)
	}
	return code, nil
}

// Now returns the code for the current time.
func Now(secret string) (string, error) {
	return Code(secret, time.Now())
}

// normalize strips the spacing and casing variations that panels display
// secrets with ("jbsw y3dp ehpk 3pxp").
func normalize(secret string) string {
	s := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	return strings.TrimSpace(s)
}
