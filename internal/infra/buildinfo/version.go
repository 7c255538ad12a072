package buildinfo

import (
	"fmt"
	"runtime"
)

// Build-time variables (set via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info contains build information. It is served by GET /version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns a formatted version string.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", Version, Commit, BuildTime, runtime.Version())
}
