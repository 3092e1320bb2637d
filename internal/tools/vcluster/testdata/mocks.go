// Package testdata provides test doubles for the vcluster tools.
package testdata

import (
	"context"
	"fmt"
	"sync"

	"github.com/giantswarm/mcp-vcluster/internal/remote"
)

// SpyClient is a remote.Client that serves canned data and counts calls.
type SpyClient struct {
	Tags    []string
	TagsErr error
	// Files maps "version:file" to content.
	Files      map[string]string
	ContentErr error

	mu           sync.Mutex
	tagCalls     int
	contentCalls int
	requested    []string
}

var _ remote.Client = (*SpyClient)(nil)

// Key builds the Files key for version and file.
func Key(version, file string) string {
	return version + ":" + file
}

// GetTags returns Tags or TagsErr.
func (s *SpyClient) GetTags(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagCalls++
	if s.TagsErr != nil {
		return nil, s.TagsErr
	}
	return append([]string(nil), s.Tags...), nil
}

// GetYAMLContent returns the content stored for version and file.
func (s *SpyClient) GetYAMLContent(_ context.Context, file, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentCalls++
	s.requested = append(s.requested, Key(version, file))
	if s.ContentErr != nil {
		return "", s.ContentErr
	}
	content, ok := s.Files[Key(version, file)]
	if !ok {
		return "", fmt.Errorf("%s at %s: %w", file, version, remote.ErrNotFound)
	}
	return content, nil
}

// Calls returns the number of GetTags and GetYAMLContent calls.
func (s *SpyClient) Calls() (tags, content int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tagCalls, s.contentCalls
}

// Requested returns the "version:file" keys fetched so far.
func (s *SpyClient) Requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requested...)
}
