// Package version reports how the pebble binary was built.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time, e.g.
//
//	-ldflags "-X github.com/example/pebble/internal/version.Version=v0.3.0"
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// readBuildInfo is swapped out in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info describes the running build.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	Modified  bool
}

// Get merges the ldflags values with the VCS stamp the Go toolchain embeds.
// Values set through ldflags win.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String renders i as "pebble v0.3.0 (commit 0123456+dirty, built 2026-05-04T09:00:00Z)".
func (i Info) String() string {
	commit := "unknown"
	if i.Commit != "" {
		commit = i.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
	}
	if i.Modified {
		commit += "+dirty"
	}
	built := i.BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("pebble %s (commit %s, built %s)", i.Version, commit, built)
}

// String describes the running build.
func String() string {
	return Get().String()
}
