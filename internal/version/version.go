// Package version carries build identifiers injected with -ldflags.
package version

import "fmt"

// These are populated at build time:
//
//	go build -ldflags "-X coin-guardian/internal/version.Version=v1.2.3 -X coin-guardian/internal/version.CommitHash=abc123"
var (
	Version    = "devel"
	CommitHash = "none"
)

// GetVersionString returns a human-readable version.
func GetVersionString() string {
	if Version == "devel" {
		return fmt.Sprintf("devel (commit %s)", CommitHash)
	}
	return fmt.Sprintf("%s (commit %s)", Version, CommitHash)
}
