package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// idleQuiet is the window with no network activity after which a page
// counts as quiescent. Matches the usual "networkidle" definition.
const idleQuiet = 500 * time.Millisecond

// idlePoll is how often WaitIdle re-checks the tracker.
const idlePoll = 100 * time.Millisecond

// idleTracker follows CDP network events for one target and answers
// whether the network has been quiet long enough.
type idleTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		inflight: make(map[network.RequestID]struct{}),
		last:     time.Now(),
	}
}

// attach subscribes the tracker to the target behind ctx. network.Enable
// must have been run on the target for events to flow.
func (t *idleTracker) attach(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			t.begin(e.RequestID)
		case *network.EventLoadingFinished:
			t.end(e.RequestID)
		case *network.EventLoadingFailed:
			t.end(e.RequestID)
		}
	})
}

func (t *idleTracker) begin(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight[id] = struct{}{}
	t.last = time.Now()
}

func (t *idleTracker) end(id network.RequestID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)
	t.last = time.Now()
}

// idleAt reports whether the network is quiescent at now: nothing in
// flight and no activity for at least quiet.
func (t *idleTracker) idleAt(now time.Time, quiet time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && now.Sub(t.last) >= quiet
}

// wait blocks until the tracker is quiescent or the timeout elapses.
func (t *idleTracker) wait(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(idlePoll)
	defer ticker.Stop()

	for {
		if t.idleAt(time.Now(), idleQuiet) {
			return nil
		}
		if time.Now().After(deadline) {
			return context.DeadlineExceeded
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
