package ttsrouter

import (
	"runtime"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	// Without ldflags the build metadata carries its defaults.
	if info.GitCommit == "" || info.BuildTime == "" {
		t.Error("build metadata fields must never be empty")
	}
}
