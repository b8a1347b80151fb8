// Package version carries the engine version stamped into recordings,
// scan results, and HTTP responses.
package version

// Version information - these will be set at build time via ldflags
var (
	Engine    = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
