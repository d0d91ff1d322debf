package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/dnscache"

	"github.com/oshokin/app-bundler/internal/logger"
)

var (
	// ErrMissingResource indicates the exact requested URL does not exist remotely.
	ErrMissingResource = errors.New("requested resource does not exist on the server")
	// ErrNetworkFailure indicates connectivity could not be established at all.
	ErrNetworkFailure = errors.New("unable to reach the network")

	// errNoResolvedAddress is returned when none of the resolved IPs accepted a connection.
	errNoResolvedAddress = errors.New("unable to dial any resolved address")
	// errBadHTTPStatus is returned for unexpected, non-missing HTTP statuses.
	errBadHTTPStatus = errors.New("unexpected http status")
)

const (
	// defaultTimeout bounds a whole download; artifacts can be large.
	defaultTimeout = 5 * time.Minute
	// defaultUserAgent identifies the bundler to artifact hosts.
	defaultUserAgent = "app-bundler/1.0"
	// dnsRefreshInterval is how often cached DNS entries are refreshed.
	dnsRefreshInterval = 5 * time.Minute
	// defaultDirectoryMode is used when creating download directories.
	defaultDirectoryMode os.FileMode = 0o755
	// fallbackFilename is used when a URL path carries no usable base name.
	fallbackFilename = "download.bin"
)

// Downloader obtains a remote resource and returns the local path of its bytes.
// The role string names what is being fetched for log and error messages.
type Downloader interface {
	File(ctx context.Context, fileURL, destDir, role string) (string, error)
}

// Client downloads files over HTTP with DNS caching and deterministic
// target paths. A file already present at the target path is not
// re-downloaded, so cache-hit behavior lives entirely in this client.
type Client struct {
	// httpClient performs the actual requests.
	httpClient *http.Client
	// userAgent is sent with every request.
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(client *Client) {
		client.userAgent = userAgent
	}
}

// NewClient creates a download client backed by a DNS-caching transport.
func NewClient(opts ...Option) *Client {
	resolver := &dnscache.Resolver{}

	go func() {
		ticker := time.NewTicker(dnsRefreshInterval)
		defer ticker.Stop()

		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			//nolint:exhaustruct // Remaining transport fields keep their defaults.
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}

					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}

					for _, ip := range ips {
						conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if dialErr == nil {
							return conn, nil
						}
					}

					return nil, errNoResolvedAddress
				},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// File fetches fileURL into destDir and returns the local path.
// The target filename is derived from the URL path. An existing non-empty
// target is returned as-is without touching the network.
func (c *Client) File(ctx context.Context, fileURL, destDir, role string) (string, error) { //nolint:funlen // Single linear download flow.
	target := filepath.Join(destDir, targetFilename(fileURL))

	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		logger.DebugKV(ctx, "Reusing previously downloaded file",
			"role", role, "path", target)

		return target, nil
	}

	if err := os.MkdirAll(destDir, defaultDirectoryMode); err != nil {
		return "", fmt.Errorf("create download directory for %s: %w", role, err)
	}

	logger.InfoKV(ctx, "Downloading file", "role", role, "url", fileURL)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", role, err)
	}

	request.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("%s (%v): %w", fileURL, err, ErrNetworkFailure)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	switch {
	case response.StatusCode == http.StatusOK:
		// Fall through to the copy below.
	case response.StatusCode == http.StatusNotFound,
		response.StatusCode == http.StatusGone:
		return "", fmt.Errorf("%s: %w", fileURL, ErrMissingResource)
	default:
		return "", fmt.Errorf("%s, %s: %w", fileURL, response.Status, errBadHTTPStatus)
	}

	// Download into a temp file first so the target never holds partial content.
	temporary, err := os.CreateTemp(destDir, filepath.Base(target)+".download-*")
	if err != nil {
		return "", fmt.Errorf("create temporary file for %s: %w", role, err)
	}

	if _, err = io.Copy(temporary, response.Body); err != nil {
		_ = temporary.Close()
		_ = os.Remove(temporary.Name())

		return "", fmt.Errorf("%s (%v): %w", fileURL, err, ErrNetworkFailure)
	}

	if err = temporary.Close(); err != nil {
		_ = os.Remove(temporary.Name())

		return "", fmt.Errorf("close temporary file for %s: %w", role, err)
	}

	if err = os.Rename(temporary.Name(), target); err != nil {
		_ = os.Remove(temporary.Name())

		return "", fmt.Errorf("move downloaded %s into place: %w", role, err)
	}

	logger.InfoKV(ctx, "Downloaded file", "role", role, "path", target)

	return target, nil
}

// targetFilename derives a local filename from the URL path.
func targetFilename(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil || parsed.Path == "" {
		return fallbackFilename
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return fallbackFilename
	}

	return name
}
