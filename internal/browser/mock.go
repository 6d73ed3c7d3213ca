package browser

import (
	"context"
	"time"
)

// FillCall records arguments passed to Fill.
type FillCall struct {
	Sel   string
	Value string
}

// MockPage is a test double for Page.
type MockPage struct {
	// Function mocks - set these to customize behavior
	NavigateFunc        func(url string) error
	URLFunc             func() (string, error)
	ContentFunc         func() (string, error)
	ClickFunc           func(sel string) error
	FillFunc            func(sel, value string) error
	CheckFunc           func(sel string) error
	AttributeFunc       func(sel, name string) (string, bool, error)
	CountFunc           func(sel string) (int, error)
	EvaluateFunc        func(expr string, out interface{}) error
	WaitVisibleFunc     func(sel string, timeout time.Duration) error
	WaitURLContainsFunc func(substr string, timeout time.Duration) error
	WaitIdleFunc        func(timeout time.Duration) error
	ScreenshotFunc      func() ([]byte, error)

	// Call tracking - check these to verify interactions
	Navigations      []string
	Clicks           []string
	Fills            []FillCall
	Checks           []string
	AttributeCalls   []string
	EvaluateCalls    []string
	WaitVisibleCalls []string
	WaitIdleCalls    int
	ScreenshotCalls  int
	Closed           bool
}

var _ Page = (*MockPage)(nil)

// NewMockPage creates a MockPage with default no-op implementations.
func NewMockPage() *MockPage {
	return &MockPage{}
}

func (m *MockPage) Navigate(_ context.Context, url string) error {
	m.Navigations = append(m.Navigations, url)
	if m.NavigateFunc != nil {
		return m.NavigateFunc(url)
	}
	return nil
}

func (m *MockPage) URL(_ context.Context) (string, error) {
	if m.URLFunc != nil {
		return m.URLFunc()
	}
	if len(m.Navigations) > 0 {
		return m.Navigations[len(m.Navigations)-1], nil
	}
	return "about:blank", nil
}

func (m *MockPage) Content(_ context.Context) (string, error) {
	if m.ContentFunc != nil {
		return m.ContentFunc()
	}
	return "", nil
}

func (m *MockPage) Click(_ context.Context, sel string) error {
	m.Clicks = append(m.Clicks, sel)
	if m.ClickFunc != nil {
		return m.ClickFunc(sel)
	}
	return nil
}

func (m *MockPage) Fill(_ context.Context, sel, value string) error {
	m.Fills = append(m.Fills, FillCall{Sel: sel, Value: value})
	if m.FillFunc != nil {
		return m.FillFunc(sel, value)
	}
	return nil
}

func (m *MockPage) Check(_ context.Context, sel string) error {
	m.Checks = append(m.Checks, sel)
	if m.CheckFunc != nil {
		return m.CheckFunc(sel)
	}
	return nil
}

func (m *MockPage) Attribute(_ context.Context, sel, name string) (string, bool, error) {
	m.AttributeCalls = append(m.AttributeCalls, sel)
	if m.AttributeFunc != nil {
		return m.AttributeFunc(sel, name)
	}
	return "", false, nil
}

func (m *MockPage) Count(_ context.Context, sel string) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(sel)
	}
	return 0, nil
}

func (m *MockPage) Evaluate(_ context.Context, expr string, out interface{}) error {
	m.EvaluateCalls = append(m.EvaluateCalls, expr)
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(expr, out)
	}
	return nil
}

func (m *MockPage) WaitVisible(_ context.Context, sel string, timeout time.Duration) error {
	m.WaitVisibleCalls = append(m.WaitVisibleCalls, sel)
	if m.WaitVisibleFunc != nil {
		return m.WaitVisibleFunc(sel, timeout)
	}
	return nil
}

func (m *MockPage) WaitURLContains(_ context.Context, substr string, timeout time.Duration) error {
	if m.WaitURLContainsFunc != nil {
		return m.WaitURLContainsFunc(substr, timeout)
	}
	return nil
}

func (m *MockPage) WaitIdle(_ context.Context, timeout time.Duration) error {
	m.WaitIdleCalls++
	if m.WaitIdleFunc != nil {
		return m.WaitIdleFunc(timeout)
	}
	return nil
}

func (m *MockPage) Screenshot(_ context.Context) ([]byte, error) {
	m.ScreenshotCalls++
	if m.ScreenshotFunc != nil {
		return m.ScreenshotFunc()
	}
	return []byte("png"), nil
}

func (m *MockPage) Close() error {
	m.Closed = true
	return nil
}

// MockBrowser is a test double for Browser.
type MockBrowser struct {
	MainPage *MockPage

	// ExpectPopupFunc customizes popup behavior. When nil, Popups are
	// returned in order, and trigger is still invoked.
	ExpectPopupFunc func(trigger func() error) (Page, error)
	Popups          []*MockPage

	PopupCalls int
	CloseCalls int

	popupIndex int
}

var _ Browser = (*MockBrowser)(nil)

// NewMockBrowser creates a MockBrowser with a fresh primary page.
func NewMockBrowser(popups ...*MockPage) *MockBrowser {
	return &MockBrowser{
		MainPage: NewMockPage(),
		Popups:   popups,
	}
}

func (m *MockBrowser) Page() Page {
	return m.MainPage
}

func (m *MockBrowser) ExpectPopup(_ context.Context, _ time.Duration, trigger func() error) (Page, error) {
	m.PopupCalls++
	if m.ExpectPopupFunc != nil {
		return m.ExpectPopupFunc(trigger)
	}
	if err := trigger(); err != nil {
		return nil, err
	}
	if m.popupIndex >= len(m.Popups) {
		return nil, ErrPopupTimeout
	}
	popup := m.Popups[m.popupIndex]
	m.popupIndex++
	return popup, nil
}

func (m *MockBrowser) Close() error {
	m.CloseCalls++
	return nil
}
