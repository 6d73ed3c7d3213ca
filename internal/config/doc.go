// Package config manages the panelcert run configuration.
//
// Configuration is environment-first: every setting has a PANELCERT_*
// variable, and an optional YAML file at ~/.config/panelcert/config.yaml
// supplies defaults for non-secret settings. Environment variables always
// win over the file; the panel password and the second-factor shared
// secret additionally fall back to the OS keyring (see internal/secrets).
//
// Example config.yaml:
//
//	customer: "123456"
//	product_id: "whp1000"
//	domain: example.com
//	panel_url: https://www.customercontrolpanel.de
//	hosting_domain: webhosting.systems
//	key_file: /data/key.pem
//	cert_file: /data/cert.pem
//	headless: true
//
// # Required settings
//
// customer, password, totp_secret, product_id, and domain are required.
// Validate reports the first missing one as a CONFIG error before any
// network activity is attempted. Everything else has a default.
//
// # Thread Safety
//
// Config is read once at startup and never mutated afterwards; it is not
// safe for concurrent mutation.
package config
