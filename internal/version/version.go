// Package version exposes build metadata stamped in via ldflags.
package version

// Set at build time with
// -ldflags "-X github.com/lenslate/lenslate/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit, and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}
