// Package version holds the build's version information.
package version

// Overridden at build time:
// go build -ldflags "-X ecoscan/internal/version.Version=1.0.0 -X ecoscan/internal/version.Commit=abc123"
var (
	// Version is the semantic version of ecoscan
	Version = "0.4.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns a short version string.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "ecoscan version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}

// BuildInfo is the machine-readable form of the version.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	Parser    string `json:"parser" yaml:"parser"`
}

// Get returns the build info. parser names the analysis backend that was
// compiled in.
func Get(parser string) BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		Parser:    parser,
	}
}
