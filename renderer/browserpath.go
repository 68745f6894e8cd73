package renderer

import (
	"os"
	"runtime"
)

var browserCandidates = map[string][]string{
	"linux": {
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	},
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	},
	"windows": {
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
	},
}

// BrowserPath returns configured if set, otherwise the first existing
// browser install for this OS, otherwise "" (engine default).
func BrowserPath(configured string) string {
	return browserPath(configured, runtime.GOOS, fileExists)
}

func browserPath(configured, goos string, exists func(string) bool) string {
	if configured != "" {
		return configured
	}
	for _, candidate := range browserCandidates[goos] {
		if exists(candidate) {
			return candidate
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
