package version

import (
	"runtime/debug"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	t.Parallel()

	var info Info
	fromBuildInfo(&info, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})
	if got := info.String(); got != "v0.3.1 (0123456789ab+dirty)" {
		t.Fatalf("String() = %q", got)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Fatalf("build time: %q", info.BuildTime)
	}
}

func TestLdflagsWin(t *testing.T) {
	t.Parallel()

	info := Info{Version: "v1.0.0", Commit: "abc"}
	fromBuildInfo(&info, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fff"}},
	})
	if info.Version != "v1.0.0" || info.Commit != "abc" {
		t.Fatalf("ldflags values overwritten: %+v", info)
	}
	if got := (Info{Version: "devel"}).String(); got != "devel" {
		t.Fatalf("String() = %q", got)
	}
}
