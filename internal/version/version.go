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

func GetVersion() string {
	return Version
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() string {
	if Version == "dev" {
		return fmt.Sprintf("checkin dev (%s, %s)", runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("checkin %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// GetShortVersion is shown in the TUI top bar.
func GetShortVersion() string {
	return "checkin " + Version
}
