// Package errors provides standardized error types for the panelcert agent.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the application.
//
// # Error Types
//
// RunError is the primary error type, containing:
//   - Code: Categorizes the failure (AUTH, DOMAIN_NOT_FOUND, etc.)
//   - Message: Human-readable error description
//   - Target: The domain, product, or step involved (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common failure scenarios have pre-defined sentinel errors:
//
//	errors.ErrAuthentication   // login or second factor rejected
//	errors.ErrProductNotFound  // product row absent from the listing
//	errors.ErrDomainNotFound   // neither exact nor subdomain match
//	errors.ErrMailIDNotFound   // mail account row absent (no fallback)
//
// # Usage
//
// Creating domain-specific errors:
//
//	// Required input missing, before any network activity
//	return errors.Config("PANELCERT_DOMAIN is not set")
//
//	// Wrapping an underlying error with a failure code
//	return errors.Wrap(errors.CodeDeployStep, "upload web certificate", err)
//
// Checking:
//
//	if errors.Is(err, errors.ErrHandoffTimeout) {
//	    // the SSO popup never finished loading
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes run failures for programmatic handling.
type ErrorCode string

// Error codes for each stage of a run. Every code is fatal to the run;
// there is no retryable category.
const (
	CodeConfig          ErrorCode = "CONFIG"            // missing or invalid input, no network activity attempted
	CodeAuth            ErrorCode = "AUTH"              // login or second-factor failure
	CodeProductNotFound ErrorCode = "PRODUCT_NOT_FOUND" // product row absent from product listing
	CodeHandoffTimeout  ErrorCode = "HANDOFF_TIMEOUT"   // SSO popup did not finish loading in time
	CodePayloadParse    ErrorCode = "PAYLOAD_PARSE"     // embedded script payload missing or unparseable
	CodeSchemaMismatch  ErrorCode = "SCHEMA_MISMATCH"   // payload parsed but no known shape held the domain list
	CodeMailIDNotFound  ErrorCode = "MAIL_ID_NOT_FOUND" // mail account row absent from mail listing
	CodeDomainNotFound  ErrorCode = "DOMAIN_NOT_FOUND"  // neither exact nor subdomain match in web listing
	CodeDeployStep      ErrorCode = "DEPLOY_STEP"       // failure during upload or rebinding
	CodeBrowser         ErrorCode = "BROWSER"           // browser session could not be established or driven
	CodeInternal        ErrorCode = "INTERNAL"          // unexpected error
)

// RunError represents a structured error with context about the run stage
// that produced it.
type RunError struct {
	Code    ErrorCode // Failure category
	Message string    // Human-readable message
	Target  string    // Domain, product id, or step name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Target != "" && e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Code, e.Target, e.Message, e.Err)
	}
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %s", e.Code, e.Target, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error chain traversal.
func (e *RunError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *RunError) Is(target error) bool {
	t, ok := target.(*RunError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for the failure taxonomy.
// Use these with errors.Is() for error checking.
var (
	// ErrConfiguration indicates a required input is missing or invalid.
	ErrConfiguration = &RunError{Code: CodeConfig, Message: "configuration error"}

	// ErrAuthentication indicates the login or second-factor step failed.
	ErrAuthentication = &RunError{Code: CodeAuth, Message: "authentication failed"}

	// ErrProductNotFound indicates no product row matched the configured id.
	ErrProductNotFound = &RunError{Code: CodeProductNotFound, Message: "product not found"}

	// ErrHandoffTimeout indicates the SSO popup did not finish loading.
	ErrHandoffTimeout = &RunError{Code: CodeHandoffTimeout, Message: "handoff timed out"}

	// ErrPayloadParse indicates the embedded payload markers were absent
	// or the extracted substring was not valid JSON.
	ErrPayloadParse = &RunError{Code: CodePayloadParse, Message: "payload parse failed"}

	// ErrSchemaMismatch indicates the payload parsed but held no domain
	// list at any known nesting depth.
	ErrSchemaMismatch = &RunError{Code: CodeSchemaMismatch, Message: "payload schema mismatch"}

	// ErrMailIDNotFound indicates the mail account listing had no row for
	// the target domain. Intentionally has no fallback.
	ErrMailIDNotFound = &RunError{Code: CodeMailIDNotFound, Message: "mail account not found"}

	// ErrDomainNotFound indicates the web listing had neither an exact nor
	// a subdomain match for the target domain.
	ErrDomainNotFound = &RunError{Code: CodeDomainNotFound, Message: "domain not found"}

	// ErrDeployStep indicates a failure while uploading or rebinding.
	ErrDeployStep = &RunError{Code: CodeDeployStep, Message: "deployment step failed"}

	// ErrBrowser indicates the browser session failed.
	ErrBrowser = &RunError{Code: CodeBrowser, Message: "browser error"}
)

// Config creates a configuration error with a custom message.
func Config(msg string) error {
	return &RunError{
		Code:    CodeConfig,
		Message: msg,
	}
}

// Authentication creates an authentication error wrapping err.
func Authentication(msg string, err error) error {
	return &RunError{
		Code:    CodeAuth,
		Message: msg,
		Err:     err,
	}
}

// NotFound creates an error for an absent row or listing entry. The code
// selects which listing was searched; target names what was searched for.
func NotFound(code ErrorCode, target string) error {
	return &RunError{
		Code:    code,
		Message: "no matching row",
		Target:  target,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &RunError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapTarget creates an error with target context and underlying error.
func WrapTarget(code ErrorCode, target, msg string, err error) error {
	return &RunError{
		Code:    code,
		Message: msg,
		Target:  target,
		Err:     err,
	}
}

// SchemaMismatch creates a schema error carrying the observed top-level
// keys of the payload for diagnostics.
func SchemaMismatch(keys []string) error {
	return &RunError{
		Code:    CodeSchemaMismatch,
		Message: fmt.Sprintf("no domain list at any known depth, top-level keys: %v", keys),
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
