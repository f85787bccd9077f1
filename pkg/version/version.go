package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	devVersion = "dev"
	unknown    = "unknown"
	shortSHA   = 12
)

// Set via ldflags; unset values fall back to the build info stamped by the toolchain
var (
	Version   = devVersion
	BuildTime = unknown
	Commit    = unknown
)

var readBuildInfo = debug.ReadBuildInfo

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	Commit    string `json:"commit"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get returns the current version info
func Get() Info {
	info := Info{
		Version:   Version,
		BuildTime: BuildTime,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if bi, ok := readBuildInfo(); ok {
		applyBuildInfo(&info, bi)
	}
	return info
}

// applyBuildInfo fills fields left at their defaults from bi. Values set with
// ldflags always win.
func applyBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == devVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}

	stampedCommit := info.Commit != unknown
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if !stampedCommit {
				info.Commit = s.Value
				if len(info.Commit) > shortSHA {
					info.Commit = info.Commit[:shortSHA]
				}
			}
		case "vcs.time":
			if info.BuildTime == unknown {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			if !stampedCommit {
				info.Modified = s.Value == "true"
			}
		}
	}
}

// String returns a formatted version string
func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("reposnap %s (commit: %s, built: %s, %s %s/%s)",
		i.Version, commit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

// Short returns the version alone, as reported by /healthz
func Short() string {
	return Get().Version
}

// Full returns a full version string
func Full() string {
	return Get().String()
}
