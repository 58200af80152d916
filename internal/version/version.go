// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/banshee-data/heatmap.report/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	// Version is the release tag of the heatmap tools
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns a one-line description of the build for the named tool.
func String(tool string) string {
	return fmt.Sprintf("%s %s (git %s, built %s)", tool, Version, GitSHA, BuildTime)
}
