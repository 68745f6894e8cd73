package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetVersionInfoLdflags(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abcdef1234567"
	BuildTime = "2026-01-15T10:30:00Z"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("expected release build")
	}
	if info.GitCommit != "abcdef1" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected build date parsed, got %v", info.BuildDate)
	}
}

func TestInfoShortAndString(t *testing.T) {
	info := &Info{Version: "1.2.0", GitCommit: "abc1234", IsDirty: true, GoVersion: "go1.26.0"}
	if got := info.Short(); got != "1.2.0-abc1234-dirty" {
		t.Errorf("unexpected short version %q", got)
	}
	s := info.String()
	if !strings.HasPrefix(s, "diagramd 1.2.0-abc1234-dirty go1.26.0") {
		t.Errorf("unexpected string %q", s)
	}
	if strings.Contains(s, "built") {
		t.Errorf("expected no build date, got %q", s)
	}
}
