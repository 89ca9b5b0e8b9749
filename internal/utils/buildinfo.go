package utils

import (
	"runtime/debug"
)

const (
	develVersion   = "(devel)"
	unknownVersion = "dev"
)

// Version is set at link time with -ldflags "-X github.com/tyemirov/treeforge/internal/utils.Version=v1.2.3".
var Version string

// GetApplicationVersion reports the linked version, then the module version
// recorded by go install, then the VCS revision of a local build.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	return revisionFromSettings(buildInfo.Settings)
}

func revisionFromSettings(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}
	return unknownVersion + "-" + revision
}
