// Package buildinfo reports the genia version from linker flags or Go build metadata.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// version is set at release time:
//
//	go build -ldflags "-X github.com/genia-lsp/genia/internal/buildinfo.version=v1.2.0"
var version string

// Info is the build description printed by `genia version`.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Version returns the version string for the current build.
//
// Resolution order: the linker-injected version, the module version of a
// `go install` from a tag, then a dev pseudo-version ("dev-<hash>[-dirty]"
// or plain "dev"). "unknown" is returned when build info cannot be read.
func Version() string {
	if version != "" {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion(info)
}

// Current returns the full build description.
func Current() Info {
	return Info{
		Version:   Version(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// UserAgent is sent on outgoing provider requests.
func UserAgent() string {
	return "genia/" + Version()
}

// devVersion builds "dev-<hash>[-dirty]" from VCS settings.
func devVersion(info *debug.BuildInfo) string {
	var revision string
	var modified bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}

	v := fmt.Sprintf("dev-%s", revision)
	if modified {
		v += "-dirty"
	}
	return v
}
