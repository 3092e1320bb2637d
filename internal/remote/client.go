package remote

import (
	"context"
	"errors"
)

// Defaults for remote lookups.
const (
	DefaultRepository = "loft-sh/vcluster"
	DefaultVersion    = "main"
	DefaultFile       = "chart/values.yaml"
)

// ErrNotFound is returned when a version or file does not exist remotely.
var ErrNotFound = errors.New("not found")

// Client fetches vcluster configuration content from a source repository.
// Implementations may cache; callers must not rely on it.
type Client interface {
	// GetTags lists the repository's version tags, newest first as
	// reported by the remote.
	GetTags(ctx context.Context) ([]string, error)

	// GetYAMLContent returns the raw text of file at version (tag or branch).
	GetYAMLContent(ctx context.Context, file, version string) (string, error)
}
