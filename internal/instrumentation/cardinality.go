package instrumentation

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Cardinality management helpers for metrics.
// These functions reduce caller-controlled label values to small fixed sets.

// VersionClass groups remote versions for metric labels.
type VersionClass string

const (
	// VersionClassDefault is the repository's default branch or an empty version.
	VersionClassDefault VersionClass = "default"

	// VersionClassRelease is a semantic version without a prerelease part.
	VersionClassRelease VersionClass = "release"

	// VersionClassPrerelease is a semantic version with a prerelease part (alpha, beta, rc).
	VersionClassPrerelease VersionClass = "prerelease"

	// VersionClassOther is any other tag or branch name.
	VersionClassOther VersionClass = "other"
)

// ClassifyVersion classifies a remote version (tag or branch) for metrics.
//
//	ClassifyVersion("")               // "default"
//	ClassifyVersion("main")           // "default"
//	ClassifyVersion("v0.20.0")        // "release"
//	ClassifyVersion("v0.21.0-beta.1") // "prerelease"
//	ClassifyVersion("feature/x")      // "other"
func ClassifyVersion(version string) string {
	switch strings.ToLower(strings.TrimSpace(version)) {
	case "", "main", "master":
		return string(VersionClassDefault)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return string(VersionClassOther)
	}
	if v.Prerelease() != "" {
		return string(VersionClassPrerelease)
	}
	return string(VersionClassRelease)
}

// UnknownToolLabel replaces tool names that are not registered.
const UnknownToolLabel = "unknown"

// ToolLabel returns name when it is one of known, and UnknownToolLabel
// otherwise, so arbitrary names sent by clients never become label values.
func ToolLabel(name string, known []string) string {
	for _, k := range known {
		if k == name {
			return name
		}
	}
	return UnknownToolLabel
}
