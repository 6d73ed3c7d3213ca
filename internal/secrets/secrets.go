// Package secrets resolves sensitive inputs from the environment with an
// OS keyring fallback, so operators can keep the panel password and the
// second-factor shared secret out of process environments and crontabs.
//
// Lookup order for each secret:
//  1. the named environment variable
//  2. the OS keyring (service "panelcert"), via zalando/go-keyring
//
// Non-sensitive settings are plain environment variables and do not go
// through this package.
package secrets

import (
	"os"

	"github.com/zalando/go-keyring"
)

// Service is the keyring service name under which secrets are stored.
const Service = "panelcert"

// Lookup resolves a secret, trying the environment variable first and the
// OS keyring second. Returns the value and where it came from ("env",
// "keyring", or "" when not found). Keyring errors other than a missing
// entry are returned to the caller; a locked or unavailable keyring
// should not be silently treated as an absent secret.
func Lookup(envVar, keyringUser string) (value, source string, err error) {
	if v := os.Getenv(envVar); v != "" {
		return v, "env", nil
	}

	v, err := keyring.Get(Service, keyringUser)
	if err == keyring.ErrNotFound {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return v, "keyring", nil
}

// Store writes a secret to the OS keyring under the panelcert service.
func Store(keyringUser, value string) error {
	return keyring.Set(Service, keyringUser, value)
}

// Delete removes a secret from the OS keyring.
func Delete(keyringUser string) error {
	return keyring.Delete(Service, keyringUser)
}
