// Package platform provides platform-specific detection of a Chrome or
// Chromium executable for the browser driver.
package platform

import (
	"fmt"
	"os"
	"runtime"
)

// browserCandidates lists executable names tried on PATH, most specific
// first. Chromium ships under different names across distributions.
var browserCandidates = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium-browser",
	"chromium",
	"headless-shell",
}

// darwinBrowserPaths lists absolute locations tried on macOS.
var darwinBrowserPaths = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// LookPathFunc matches exec.LookPath; injectable for tests.
type LookPathFunc func(file string) (string, error)

// Candidates returns the executable names probed on PATH.
func Candidates() []string {
	return append([]string(nil), browserCandidates...)
}

// DetectBrowser returns the path of a usable Chrome/Chromium executable.
// Absolute install locations are checked first on macOS, then PATH
// candidates on every platform.
func DetectBrowser(lookPath LookPathFunc) (string, error) {
	if runtime.GOOS == "darwin" {
		for _, p := range darwinBrowserPaths {
			if pathExists(p) {
				return p, nil
			}
		}
	}

	for _, name := range browserCandidates {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no Chrome or Chromium executable found (tried %v)", browserCandidates)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
