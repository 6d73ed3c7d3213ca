package platform

import (
	"fmt"
	"runtime"
	"strings"
	"testing"
)

func TestDetectBrowser(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("PATH-based detection test is not deterministic on macOS")
	}

	tests := []struct {
		name      string
		available map[string]string
		want      string
		wantErr   bool
	}{
		{
			name:      "prefers google-chrome-stable",
			available: map[string]string{"google-chrome-stable": "/usr/bin/google-chrome-stable", "chromium": "/usr/bin/chromium"},
			want:      "/usr/bin/google-chrome-stable",
		},
		{
			name:      "falls back to chromium",
			available: map[string]string{"chromium": "/usr/bin/chromium"},
			want:      "/usr/bin/chromium",
		},
		{
			name:      "nothing installed",
			available: map[string]string{},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath := func(file string) (string, error) {
				if path, ok := tt.available[file]; ok {
					return path, nil
				}
				return "", fmt.Errorf("%s: not found", file)
			}

			got, err := DetectBrowser(lookPath)
			if tt.wantErr {
				if err == nil {
					t.Fatal("DetectBrowser() expected error")
				}
				if !strings.Contains(err.Error(), "no Chrome") {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectBrowser() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectBrowser() = %q, want %q", got, tt.want)
			}
		})
	}
}
