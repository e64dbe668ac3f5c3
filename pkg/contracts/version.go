package contracts

import "runtime"

// Version is the current application version. BuildTime and GitCommit are
// stamped at build via -ldflags.
const (
	Version    = "0.1.0-alpha.1"
	APIVersion = "v1-alpha"
)

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the payload served by the version endpoint.
type VersionInfo struct {
	Version      string `json:"version"`
	APIVersion   string `json:"api_version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

// GetVersionInfo reports the compiled-in version plus runtime platform facts.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		APIVersion:   APIVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}
