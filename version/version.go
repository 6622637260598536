// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/jackzampolin/promptdice/version.GitRelease=v0.3.1"
package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

var (
	// GitRelease is the release tag the binary was built from.
	GitRelease = "v0.1.0-dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit date the binary was built from.
	GitCommitDate = "unknown"
	// GoInfo describes the toolchain and platform.
	GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
)

// Info is the build metadata reported by `promptdice version` and /health.
type Info struct {
	Release    string `json:"release" yaml:"release"`
	Commit     string `json:"commit" yaml:"commit"`
	CommitDate string `json:"commit_date" yaml:"commit_date"`
	Go         string `json:"go" yaml:"go"`
	Prerelease bool   `json:"prerelease" yaml:"prerelease"`
}

// Get returns the current build metadata. An unparseable release is an
// error; the tag is expected to follow semantic versioning.
func Get() (Info, error) {
	info := Info{
		Release:    GitRelease,
		Commit:     GitCommit,
		CommitDate: GitCommitDate,
		Go:         GoInfo,
	}
	sv, err := semver.NewVersion(GitRelease)
	if err != nil {
		return info, fmt.Errorf("invalid release %q: %w", GitRelease, err)
	}
	info.Prerelease = sv.Prerelease() != ""
	return info, nil
}
