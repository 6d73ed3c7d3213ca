package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// userAgent presented to the panel. The panel serves a degraded UI to
// unknown agents, so a current desktop Chrome string is required.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures the Chrome driver.
type Options struct {
	// ExecPath is the Chrome/Chromium executable. Empty lets chromedp
	// find one.
	ExecPath string

	// Headless runs without a visible window.
	Headless bool

	// SlowMo is an optional pause before every interaction, pacing the
	// agent below the panel's bot heuristics.
	SlowMo time.Duration
}

// Chrome drives a Chrome process via the DevTools protocol. It
// implements Browser.
type Chrome struct {
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	page        *chromePage
	slowMo      time.Duration
}

var _ Browser = (*Chrome)(nil)

// NewChrome launches a browser and opens the primary page.
func NewChrome(ctx context.Context, opts Options) (*Chrome, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{},
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	b := &Chrome{
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      tabCancel,
		slowMo:      opts.SlowMo,
	}

	page, err := newChromePage(tabCtx, nil, opts.SlowMo)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	b.page = page

	return b, nil
}

// Page returns the primary surface.
func (b *Chrome) Page() Page {
	return b.page
}

// ExpectPopup runs trigger and adopts the page it opens.
func (b *Chrome) ExpectPopup(ctx context.Context, timeout time.Duration, trigger func() error) (Page, error) {
	ch := chromedp.WaitNewTarget(b.ctx, func(info *target.Info) bool {
		return info.Type == "page"
	})

	if err := trigger(); err != nil {
		return nil, err
	}

	select {
	case id := <-ch:
		popupCtx, popupCancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(id))
		page, err := newChromePage(popupCtx, popupCancel, b.slowMo)
		if err != nil {
			popupCancel()
			return nil, fmt.Errorf("attach popup: %w", err)
		}
		return page, nil
	case <-time.After(timeout):
		return nil, ErrPopupTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close tears down the whole browser.
func (b *Chrome) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

// chromePage implements Page for one target.
type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc // nil for the primary page, owned by Chrome
	slowMo time.Duration
	idle   *idleTracker
}

var _ Page = (*chromePage)(nil)

// newChromePage enables network events on the target and attaches the
// idle tracker. This is also what forces chromedp to actually start the
// target, so errors here surface launch failures.
func newChromePage(ctx context.Context, cancel context.CancelFunc, slowMo time.Duration) (*chromePage, error) {
	p := &chromePage{
		ctx:    ctx,
		cancel: cancel,
		slowMo: slowMo,
		idle:   newIdleTracker(),
	}
	p.idle.attach(ctx)
	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		return nil, err
	}
	return p, nil
}

// byOpt selects CSS or XPath matching for a selector.
func byOpt(sel string) chromedp.QueryOption {
	if IsXPath(sel) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (p *chromePage) pace() {
	if p.slowMo > 0 {
		time.Sleep(p.slowMo)
	}
}

// run executes actions against this page's target. The caller's deadline
// is honored by deriving from the page context, which is what carries
// the target binding chromedp needs.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.ctx
	if ctx != nil {
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithDeadline(p.ctx, deadline)
			defer cancel()
		}
	}
	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	p.pace()
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	var url string
	if err := p.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) Click(ctx context.Context, sel string) error {
	p.pace()
	return p.run(ctx, chromedp.Click(sel, byOpt(sel)))
}

func (p *chromePage) Fill(ctx context.Context, sel, value string) error {
	p.pace()
	return p.run(ctx,
		chromedp.WaitVisible(sel, byOpt(sel)),
		chromedp.SetValue(sel, value, byOpt(sel)),
	)
}

func (p *chromePage) Check(ctx context.Context, sel string) error {
	p.pace()
	// Click only when unchecked; a second click would uncheck.
	var checked bool
	err := p.run(ctx, chromedp.EvaluateAsDevTools(
		fmt.Sprintf(`(() => { const el = %s; return el ? el.checked : false; })()`, queryExpr(sel)), &checked))
	if err != nil {
		return err
	}
	if checked {
		return nil
	}
	return p.run(ctx, chromedp.Click(sel, byOpt(sel)))
}

func (p *chromePage) Attribute(ctx context.Context, sel, name string) (string, bool, error) {
	var value string
	var ok bool
	if err := p.run(ctx, chromedp.AttributeValue(sel, name, &value, &ok, byOpt(sel))); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

func (p *chromePage) Count(ctx context.Context, sel string) (int, error) {
	var count int
	expr := fmt.Sprintf(`document.querySelectorAll(%q).length`, sel)
	if IsXPath(sel) {
		expr = fmt.Sprintf(
			`document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength`,
			jsString(sel))
	}
	if err := p.run(ctx, chromedp.Evaluate(expr, &count)); err != nil {
		return 0, err
	}
	return count, nil
}

func (p *chromePage) Evaluate(ctx context.Context, expr string, out interface{}) error {
	if out == nil {
		return p.run(ctx, chromedp.Evaluate(expr, nil))
	}
	return p.run(ctx, chromedp.Evaluate(expr, out))
}

func (p *chromePage) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	return chromedp.Run(waitCtx, chromedp.WaitVisible(sel, byOpt(sel)))
}

func (p *chromePage) WaitURLContains(ctx context.Context, substr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		url, err := p.URL(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(url, substr) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("url %q never contained %q within %s", url, substr, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idlePoll):
		}
	}
}

func (p *chromePage) WaitIdle(ctx context.Context, timeout time.Duration) error {
	if ctx == nil {
		ctx = p.ctx
	}
	return p.idle.wait(ctx, timeout)
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *chromePage) Close() error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// queryExpr returns a JS expression selecting the first match of sel.
func queryExpr(sel string) string {
	if IsXPath(sel) {
		return fmt.Sprintf(
			`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`,
			jsString(sel))
	}
	return fmt.Sprintf(`document.querySelector(%s)`, jsString(sel))
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	return fmt.Sprintf("%q", s)
}
