package version

// Set at build time with -ldflags "-X github.com/compozy/subsync/pkg/version.Version=..."
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary returns the version with its short commit when one was stamped.
func Summary() string {
	if CommitHash == "" || CommitHash == "unknown" {
		return Version
	}
	commit := CommitHash
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return Version + " (" + commit + ")"
}
