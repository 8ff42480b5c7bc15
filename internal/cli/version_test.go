package cli

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/aidanlsb/fleetdb/internal/buildinfo"
)

func TestCurrentVersionInfo(t *testing.T) {
	prevRead := readBuildInfo
	prevVersion, prevCommit := buildinfo.Version, buildinfo.Commit
	t.Cleanup(func() {
		readBuildInfo = prevRead
		buildinfo.Version, buildinfo.Commit = prevVersion, prevCommit
	})

	t.Run("from build info", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				GoVersion: "go1.25.4",
				Main:      debug.Module{Path: "github.com/aidanlsb/fleetdb", Version: "v0.4.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.time", Value: "2026-02-14T17:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			}, true
		}

		info := currentVersionInfo()
		if info.Version != "v0.4.0" || info.Commit != "abc123" || !info.Modified {
			t.Fatalf("info = %+v", info)
		}
		if info.GoVersion != "go1.25.4" || info.CommitTime != "2026-02-14T17:00:00Z" {
			t.Fatalf("info = %+v", info)
		}
	})

	t.Run("ldflags fallback", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
		buildinfo.Version, buildinfo.Commit = "v0.5.0", "def456"

		info := currentVersionInfo()
		if info.Version != "v0.5.0" || info.Commit != "def456" {
			t.Fatalf("info = %+v", info)
		}
		if info.ModulePath != defaultModulePath || info.GoVersion != runtime.Version() {
			t.Fatalf("info = %+v", info)
		}
	})

	t.Run("devel", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
		}
		buildinfo.Version, buildinfo.Commit = "", ""

		if info := currentVersionInfo(); info.Version != "devel" {
			t.Fatalf("Version = %q, want devel", info.Version)
		}
	})
}
