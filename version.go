package ttsrouter

import "runtime"

// Version is the semantic version of the router.
const Version = "2.0.0"

// Build metadata, overridden at release time:
//
//	go build -ldflags "-X github.com/TTS-AGI/tts-router-v2.gitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/TTS-AGI/tts-router-v2.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	gitCommit = "unknown"
	buildTime = "unknown"
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
}

// GetVersionInfo reports the build's version metadata. GoVersion always
// comes from the runtime.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}
