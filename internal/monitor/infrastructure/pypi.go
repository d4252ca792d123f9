// Package infrastructure contains the registry-facing adapters for the
// monitor: concrete clients behind the application layer's ports.
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/libwatch/internal/log"
)

// PyPIClient resolves the latest published version of a package from the
// PyPI JSON API. Responses are cached per package for a configurable TTL so
// repeated invocations inside the window don't hammer the registry.
type PyPIClient struct {
	baseURL string
	http    *http.Client
	cache   *gocache.Cache
}

// PyPIConfig configures a PyPIClient.
type PyPIConfig struct {
	// BaseURL is the JSON API root, e.g. https://pypi.org/pypi.
	BaseURL string

	// Timeout bounds each HTTP request. Defaults to 10 seconds.
	Timeout time.Duration

	// CacheTTL is how long a resolved version stays fresh. Zero disables
	// caching.
	CacheTTL time.Duration
}

// NewPyPIClient creates a client for the PyPI JSON API.
func NewPyPIClient(cfg PyPIConfig) *PyPIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var cache *gocache.Cache
	if cfg.CacheTTL > 0 {
		cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &PyPIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
	}
}

// releaseInfo is the slice of the PyPI project document we consume.
type releaseInfo struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
}

// LatestVersion returns the version string PyPI currently reports for the
// package. The string is returned verbatim; grading it is the caller's
// concern.
func (c *PyPIClient) LatestVersion(ctx context.Context, library string) (string, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(library); ok {
			log.Debug(log.CatRegistry, "Version cache hit", "library", library)
			return cached.(string), nil
		}
	}

	endpoint := fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(library))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debug(log.CatRegistry, "Fetching latest version", "library", library, "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying registry: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("package not found on registry")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var info releaseInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&info); err != nil {
		return "", fmt.Errorf("decoding registry response: %w", err)
	}
	if info.Info.Version == "" {
		return "", fmt.Errorf("registry response missing version")
	}

	if c.cache != nil {
		c.cache.Set(library, info.Info.Version, gocache.DefaultExpiration)
	}
	return info.Info.Version, nil
}
