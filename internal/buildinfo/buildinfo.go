package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Set via -ldflags "-X .../internal/buildinfo.Version=..." in release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	v, c, d := resolve(debug.ReadBuildInfo)
	return fmt.Sprintf("buildhealth %s (commit=%s, date=%s)", v, c, d)
}

// resolve falls back to the module and VCS stamps for `go install` builds.
func resolve(read func() (*debug.BuildInfo, bool)) (version, commit, date string) {
	version, commit, date = Version, Commit, Date
	if version != "dev" {
		return version, commit, date
	}

	info, ok := read()
	if !ok || info == nil {
		return version, commit, date
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "none" && s.Value != "" {
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			}
		case "vcs.time":
			if date == "unknown" && s.Value != "" {
				date = s.Value
			}
		}
	}
	return version, commit, date
}
