// Package version exposes build metadata stamped in via -ldflags.
package version

import "fmt"

// Set at build time with:
//
//	-ldflags "-X quizgen/internal/version.Version=... -X quizgen/internal/version.Commit=... -X quizgen/internal/version.BuildTime=..."
var (
	Version   = "dev"
	Commit    = "dev"
	BuildTime = "unknown"
)

// String renders the stamped metadata as a single human-readable line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}
