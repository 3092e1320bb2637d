package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/logging"
)

// Default GitHub endpoints.
const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"
)

const (
	tagsPerPage     = 100
	maxTagPages     = 10
	maxContentBytes = 4 << 20
)

// Config configures a GitHubClient.
type Config struct {
	// Repository is the "owner/name" slug. Defaults to DefaultRepository.
	Repository string
	// APIURL and RawURL default to the public GitHub endpoints.
	APIURL string
	RawURL string
	// Token is an optional GitHub token used for both endpoints.
	Token string
	// Timeout bounds a single HTTP attempt. Defaults to 30s.
	Timeout time.Duration
	// RetryMax is the number of retries for failed requests. Defaults to 3.
	RetryMax int
	// Cache configures the response cache.
	Cache CacheConfig
	// Observer receives request outcomes. Optional.
	Observer RequestObserver
	Logger   *slog.Logger
}

// RequestObserver is notified after every remote operation.
type RequestObserver interface {
	ObserveRemoteRequest(ctx context.Context, operation, status string, duration time.Duration)
}

// GitHubClient reads tags and raw files of a GitHub repository.
type GitHubClient struct {
	repo     string
	apiURL   string
	rawURL   string
	http     *http.Client
	cache    *responseCache
	group    singleflight.Group
	observer RequestObserver
	logger   *slog.Logger
}

var _ Client = (*GitHubClient)(nil)

// NewGitHubClient builds a client from cfg.
func NewGitHubClient(cfg Config) (*GitHubClient, error) {
	if cfg.Repository == "" {
		cfg.Repository = DefaultRepository
	}
	if parts := strings.Split(cfg.Repository, "/"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("repository must be in owner/name form, got %q", cfg.Repository)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.RawURL == "" {
		cfg.RawURL = DefaultRawURL
	}
	for _, u := range []string{cfg.APIURL, cfg.RawURL} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return nil, fmt.Errorf("invalid endpoint URL %q: %w", u, err)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithOperation(logger, "remote").With(logging.Repository(cfg.Repository))

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = logging.NewSlogAdapter(logger)
	httpClient := rc.StandardClient()

	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}

	logger.Debug("remote client configured",
		logging.Host(cfg.APIURL),
		slog.String("token", logging.SanitizeToken(cfg.Token)))

	return &GitHubClient{
		repo:     cfg.Repository,
		apiURL:   strings.TrimRight(cfg.APIURL, "/"),
		rawURL:   strings.TrimRight(cfg.RawURL, "/"),
		http:     httpClient,
		cache:    newResponseCache(cfg.Cache),
		observer: cfg.Observer,
		logger:   logger,
	}, nil
}

// Repository returns the owner/name slug the client reads from.
func (c *GitHubClient) Repository() string {
	return c.repo
}

// Close releases the response cache.
func (c *GitHubClient) Close() {
	c.cache.Close()
}

// GetTags implements Client.
func (c *GitHubClient) GetTags(ctx context.Context) ([]string, error) {
	key := "tags"
	v, err := c.cached(ctx, "get_tags", key, func(ctx context.Context) (any, error) {
		return c.fetchTags(ctx)
	})
	if err != nil {
		return nil, err
	}
	tags := v.([]string)
	out := make([]string, len(tags))
	copy(out, tags)
	return out, nil
}

// GetYAMLContent implements Client.
func (c *GitHubClient) GetYAMLContent(ctx context.Context, file, version string) (string, error) {
	if file == "" {
		file = DefaultFile
	}
	if version == "" {
		version = DefaultVersion
	}
	file = strings.TrimLeft(file, "/")
	if strings.Contains(file, "..") {
		return "", fmt.Errorf("invalid file path %q", file)
	}

	key := "content:" + version + ":" + file
	attrs := instrumentation.NewSpanAttributeBuilder().WithVersion(version).WithFile(file).Build()
	v, err := c.cached(ctx, "get_content", key, func(ctx context.Context) (any, error) {
		return c.fetchContent(ctx, file, version)
	}, attrs...)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// cached serves key from the cache or runs fetch once for all concurrent
// callers asking for the same key. The shared fetch is detached from the
// cancellation of whichever caller started it; each caller still stops
// waiting when its own ctx is done.
func (c *GitHubClient) cached(ctx context.Context, operation, key string, fetch func(context.Context) (any, error), attrs ...attribute.KeyValue) (any, error) {
	ctx, span := instrumentation.StartRemoteSpan(ctx, operation, c.repo, attrs...)
	defer span.End()

	if v, ok := c.cache.Get(key); ok {
		instrumentation.AddSpanEvent(span, "cache_hit")
		instrumentation.SetSpanSuccess(span)
		c.observe(ctx, operation, "cache_hit", 0)
		return v, nil
	}

	start := time.Now()
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, v)
		return v, nil
	})

	var (
		v      any
		err    error
		shared bool
	)
	select {
	case r := <-ch:
		v, err, shared = r.Val, r.Err, r.Shared
	case <-ctx.Done():
		err = ctx.Err()
	}
	duration := time.Since(start)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	if shared {
		instrumentation.AddSpanEvent(span, "shared_fetch")
	}
	c.observe(ctx, operation, status, duration)
	c.logger.Debug("remote request completed",
		logging.Operation(operation),
		logging.Status(status),
		logging.Duration(duration),
		slog.Bool("shared", shared))
	return v, err
}

func (c *GitHubClient) observe(ctx context.Context, operation, status string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRemoteRequest(ctx, operation, status, d)
	}
}

type tagResponse struct {
	Name string `json:"name"`
}

func (c *GitHubClient) fetchTags(ctx context.Context) ([]string, error) {
	var tags []string
	for page := 1; page <= maxTagPages; page++ {
		u := fmt.Sprintf("%s/repos/%s/tags?per_page=%d&page=%d", c.apiURL, c.repo, tagsPerPage, page)
		body, err := c.get(ctx, u, "application/vnd.github+json")
		if err != nil {
			return nil, fmt.Errorf("failed to list tags of %s: %w", c.repo, err)
		}

		var batch []tagResponse
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode tags of %s: %w", c.repo, err)
		}
		for _, t := range batch {
			tags = append(tags, t.Name)
		}
		if len(batch) < tagsPerPage {
			break
		}
	}
	return tags, nil
}

func (c *GitHubClient) fetchContent(ctx context.Context, file, version string) (string, error) {
	u := fmt.Sprintf("%s/%s/%s/%s", c.rawURL, c.repo, url.PathEscape(version), file)
	body, err := c.get(ctx, u, "")
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s@%s: %w", file, version, err)
	}
	return string(body), nil
}

func (c *GitHubClient) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxContentBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", maxContentBytes)
	}
	return body, nil
}
