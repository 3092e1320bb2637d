package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/giantswarm/mcp-vcluster/internal/document"
	"github.com/giantswarm/mcp-vcluster/internal/remote"
)

// Provenance values reported in Resolution.Source.
const (
	SourceInline = "inline"
	SourceRemote = "remote"
)

var (
	// ErrNoSource means neither inline content nor a remote reference was given.
	ErrNoSource = errors.New("no content source: provide content or a remote version/file")

	// ErrNoRemoteClient means a remote reference was given but no client is configured.
	ErrNoRemoteClient = errors.New("no remote client configured")
)

// ContentResolutionError is returned when no document could be produced.
// Its message is the cause's message, unchanged.
type ContentResolutionError struct {
	Err error
}

func (e *ContentResolutionError) Error() string {
	return e.Err.Error()
}

func (e *ContentResolutionError) Unwrap() error {
	return e.Err
}

// IsContentResolutionError reports whether err is or wraps a ContentResolutionError.
func IsContentResolutionError(err error) bool {
	var target *ContentResolutionError
	return errors.As(err, &target)
}

// Source names where a document comes from. Content wins over Version/File.
type Source struct {
	Version string
	File    string
	Content string
}

// HasInline reports whether s carries non-blank inline content.
func (s Source) HasInline() bool {
	return strings.TrimSpace(s.Content) != ""
}

// HasRemote reports whether s names a remote version or file.
func (s Source) HasRemote() bool {
	return s.Version != "" || s.File != ""
}

// Empty reports whether s names no source at all.
func (s Source) Empty() bool {
	return !s.HasInline() && !s.HasRemote()
}

// Resolution is a parsed document and where it came from.
type Resolution struct {
	Document *document.Document
	Source   string
	// Version and File are set for remote resolutions only.
	Version string
	File    string
}

// Resolve produces the document named by src. The client is only used when
// src has no inline content, and may be nil in that case.
func Resolve(ctx context.Context, src Source, client remote.Client) (*Resolution, error) {
	if src.HasInline() {
		doc, err := document.Parse(src.Content)
		if err != nil {
			return nil, &ContentResolutionError{Err: err}
		}
		return &Resolution{Document: doc, Source: SourceInline}, nil
	}

	if !src.HasRemote() {
		return nil, &ContentResolutionError{Err: ErrNoSource}
	}
	if client == nil {
		return nil, &ContentResolutionError{Err: ErrNoRemoteClient}
	}

	file := src.File
	if file == "" {
		file = remote.DefaultFile
	}
	version := src.Version
	if version == "" {
		version = remote.DefaultVersion
	}

	content, err := client.GetYAMLContent(ctx, file, version)
	if err != nil {
		return nil, &ContentResolutionError{Err: err}
	}
	doc, err := document.Parse(content)
	if err != nil {
		return nil, &ContentResolutionError{Err: err}
	}

	return &Resolution{
		Document: doc,
		Source:   SourceRemote,
		Version:  version,
		File:     file,
	}, nil
}
