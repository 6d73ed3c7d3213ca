// Package browser defines the capability set the deployment pipeline
// needs from a driven web browser, and provides the one real
// implementation (chromedp) plus mocks for tests.
//
// The pipeline never talks to chromedp directly; it programs against
// Page and Browser so the discovery and deployment logic is testable
// against MockPage without a Chrome install.
//
// Selectors are CSS by default; strings starting with "//" or "(" are
// treated as XPath. The builders in sel.go cover the label, placeholder,
// role, and text lookups the control panel requires.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrPopupTimeout is returned by ExpectPopup when the triggered surface
// never appears or never finishes loading within the bound.
var ErrPopupTimeout = errors.New("timed out waiting for popup")

// Page is one navigable surface (a tab). All blocking operations take a
// context; waits additionally take an explicit bound.
type Page interface {
	// Navigate loads the url and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// URL returns the page's current address.
	URL(ctx context.Context) (string, error)

	// Content returns the full serialized document.
	Content(ctx context.Context) (string, error)

	// Click clicks the first element matching the selector.
	Click(ctx context.Context, sel string) error

	// Fill replaces the value of the first matching input or textarea.
	Fill(ctx context.Context, sel string, value string) error

	// Check checks the first matching checkbox.
	Check(ctx context.Context, sel string) error

	// Attribute reads an attribute of the first matching element. The
	// bool reports whether the attribute exists.
	Attribute(ctx context.Context, sel, name string) (string, bool, error)

	// Count returns how many elements match the selector.
	Count(ctx context.Context, sel string) (int, error)

	// Evaluate runs a script in the page and unmarshals its result into
	// out (pass nil to discard).
	Evaluate(ctx context.Context, expr string, out interface{}) error

	// WaitVisible waits until an element matching the selector is
	// visible, bounded by timeout.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error

	// WaitURLContains waits until the page address contains substr.
	WaitURLContains(ctx context.Context, substr string, timeout time.Duration) error

	// WaitIdle waits for network quiescence, bounded by timeout.
	WaitIdle(ctx context.Context, timeout time.Duration) error

	// Screenshot captures the current viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close closes this surface. The primary page is closed by the
	// Browser; popups are closed by whoever opened them.
	Close() error
}

// Browser owns a browser process and its primary page.
type Browser interface {
	// Page returns the primary surface.
	Page() Page

	// ExpectPopup runs trigger and waits for the new surface it opens,
	// bounded by timeout. Returns ErrPopupTimeout when no surface
	// appears in time. The caller owns the returned Page and must close
	// it.
	ExpectPopup(ctx context.Context, timeout time.Duration, trigger func() error) (Page, error)

	// Close tears down the browser and every remaining surface.
	Close() error
}
