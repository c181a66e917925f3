package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version of the ospsuite import toolkit
	Version = "0.3.0"

	// DataFormatVersion versions the exported repository and PK-analysis CSV layouts
	DataFormatVersion = "v1"
)

// Set with -ldflags "-X github.com/Yuri05/OSPSuite.Core/pkg/contracts.GitCommit=..."
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary
type VersionInfo struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	DataFormat string `json:"data_format"`
}

// GetVersionInfo collects the build details of the running binary
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:    Version,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		DataFormat: DataFormatVersion,
	}
}

// GetVersionString returns "ospsuite-import v<version>"
func GetVersionString() string {
	return "ospsuite-import v" + Version
}

// GetFullVersionString appends the build details to GetVersionString
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (commit %s, built %s, %s, %s, data format %s)",
		GetVersionString(), info.GitCommit, info.BuildTime, info.GoVersion, info.Platform, info.DataFormat)
}
