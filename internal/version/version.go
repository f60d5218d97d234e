// Package version carries build metadata injected with -ldflags:
//
//	-X github.com/awsl-project/hostlink/internal/version.Version=1.2.0
package version

import "runtime"

// These variables are set at build time via -ldflags
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info returns "version (commit)".
func Info() string {
	return Version + " (" + Commit + ")"
}

// Full includes build time and the Go toolchain/platform.
func Full() string {
	return Version + " (commit: " + Commit + ", built: " + BuildTime + ", " +
		runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
