// Package misc keeps program identity: name, version and source revision.
package misc

import (
	"runtime/debug"
)

// Set at build time with -ldflags "-X jssc/misc.version=... -X jssc/misc.gitHash=...".
var (
	version = ""
	gitHash = ""
)

const appName = "jssc"

func GetAppName() string {
	return appName
}

// GetVersion returns version set at build time, falling back to the module
// version recorded by the go tool.
func GetVersion() string {
	if version != "" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns source revision set at build time or recorded by the go
// tool from VCS.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
