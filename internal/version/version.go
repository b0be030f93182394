package version

import (
	"fmt"
	"runtime"
)

// Build metadata injected by goreleaser or makefile
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// GetVersion returns the bare version string
func GetVersion() string {
	return Version
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() string {
	if Version == "dev" {
		return fmt.Sprintf("Flowlog dev (%s/%s, %s)", runtime.GOOS, runtime.GOARCH, runtime.Version())
	}
	return fmt.Sprintf("Flowlog %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// GetShortVersion returns a short version string for display
func GetShortVersion() string {
	return "Flowlog " + Version
}
