package browser

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestIdleTracker(t *testing.T) {
	base := time.Now()

	tests := []struct {
		name  string
		setup func(*idleTracker)
		at    time.Time
		want  bool
	}{
		{
			name:  "fresh tracker not yet quiet",
			setup: func(tr *idleTracker) { tr.last = base },
			at:    base.Add(100 * time.Millisecond),
			want:  false,
		},
		{
			name:  "quiet after window elapses",
			setup: func(tr *idleTracker) { tr.last = base },
			at:    base.Add(idleQuiet + time.Millisecond),
			want:  true,
		},
		{
			name: "request in flight is never idle",
			setup: func(tr *idleTracker) {
				tr.begin(network.RequestID("r1"))
				tr.last = base
			},
			at:   base.Add(time.Minute),
			want: false,
		},
		{
			name: "finished request allows idle",
			setup: func(tr *idleTracker) {
				tr.begin(network.RequestID("r1"))
				tr.end(network.RequestID("r1"))
				tr.last = base
			},
			at:   base.Add(idleQuiet * 2),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newIdleTracker()
			tt.setup(tr)
			if got := tr.idleAt(tt.at, idleQuiet); got != tt.want {
				t.Errorf("idleAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdleTrackerWaitTimeout(t *testing.T) {
	tr := newIdleTracker()
	tr.begin(network.RequestID("stuck"))

	start := time.Now()
	err := tr.wait(context.Background(), 300*time.Millisecond)
	if err != context.DeadlineExceeded {
		t.Fatalf("wait() = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) < 300*time.Millisecond {
		t.Error("wait() returned before the bound elapsed")
	}
}

func TestIdleTrackerWaitSucceeds(t *testing.T) {
	tr := newIdleTracker()
	tr.last = time.Now().Add(-idleQuiet * 2)

	if err := tr.wait(context.Background(), time.Second); err != nil {
		t.Fatalf("wait() on quiet tracker: %v", err)
	}
}
