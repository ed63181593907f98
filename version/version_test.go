package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"
)

func saveAndRestore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGet(t *testing.T) {
	defer saveAndRestore()()

	tests := []struct {
		name        string
		version     string
		commit      string
		buildTime   string
		wantRelease bool
	}{
		{"dev build", "dev", "", "", false},
		{"tagged release", "1.2.0", "abc1234", "2026-03-01T10:00:00Z", true},
		{"dirty tag", "1.2.0-dirty", "abc1234", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			Version, GitCommit, BuildTime = tc.version, tc.commit, tc.buildTime
			info := Get()
			if info.Version != tc.version {
				t.Errorf("Version = %q, want %q", info.Version, tc.version)
			}
			if info.IsRelease != tc.wantRelease {
				t.Errorf("IsRelease = %v, want %v", info.IsRelease, tc.wantRelease)
			}
			if tc.buildTime != "" && info.BuildDate.Format(time.RFC3339) != tc.buildTime {
				t.Errorf("BuildDate = %v, want %s", info.BuildDate, tc.buildTime)
			}
		})
	}
}

func TestApplyVCS(t *testing.T) {
	info := Info{}
	applyVCS(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	})
	if info.GitCommit != "0123456" {
		t.Errorf("GitCommit = %q, want truncated revision", info.GitCommit)
	}
	if !info.IsDirty {
		t.Error("expected dirty build")
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("BuildDate = %v", info.BuildDate)
	}

	pinned := Info{GitCommit: "feedbee"}
	applyVCS(&pinned, []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789"}})
	if pinned.GitCommit != "feedbee" {
		t.Errorf("ldflags commit overwritten: %q", pinned.GitCommit)
	}
}

func TestShortAndString(t *testing.T) {
	info := Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true, GoVersion: "go1.26.0"}
	if got := info.short(); got != "1.0.0-abc1234-dirty" {
		t.Errorf("short() = %q", got)
	}
	if got := info.String(); !strings.HasPrefix(got, "flowview 1.0.0-abc1234-dirty go1.26.0") {
		t.Errorf("String() = %q", got)
	}
	if !strings.HasPrefix(UserAgent(), "flowview/") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
