package download

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

const (
	// breakerFailureThreshold is the consecutive-failure count that trips a breaker.
	breakerFailureThreshold = 5
	// breakerInitialInterval is the first reset delay after a breaker trips.
	breakerInitialInterval = 30 * time.Second
	// breakerMaxInterval caps the reset delay growth.
	breakerMaxInterval = 5 * time.Minute
)

// BreakerClient wraps a Downloader with per-host circuit breakers so a dead
// artifact host fails fast instead of stalling every app in the build loop.
type BreakerClient struct {
	// downloader performs the actual downloads.
	downloader Downloader
	// breakers tracks one circuit breaker per host.
	breakers map[string]*circuit.Breaker
	// mu protects the breakers map.
	mu sync.RWMutex
}

// NewBreakerClient wraps the provided downloader.
func NewBreakerClient(downloader Downloader) *BreakerClient {
	return &BreakerClient{
		downloader: downloader,
		breakers:   make(map[string]*circuit.Breaker),
	}
}

// File downloads through the host's circuit breaker.
// An open breaker is reported as a network failure for the host.
func (b *BreakerClient) File(ctx context.Context, fileURL, destDir, role string) (string, error) {
	host := hostOf(fileURL)
	breaker := b.breaker(host)

	if !breaker.Ready() {
		return "", fmt.Errorf("circuit breaker open for host %s: %w", host, ErrNetworkFailure)
	}

	var localPath string

	err := breaker.Call(func() error {
		var callErr error
		localPath, callErr = b.downloader.File(ctx, fileURL, destDir, role)

		return callErr
	}, 0)
	if err != nil {
		return "", err
	}

	return localPath, nil
}

// breaker returns or creates the circuit breaker for a host.
func (b *BreakerClient) breaker(host string) *circuit.Breaker {
	b.mu.RLock()
	breaker, exists := b.breakers[host]
	b.mu.RUnlock()

	if exists {
		return breaker
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if breaker, exists = b.breakers[host]; exists {
		return breaker
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = breakerInitialInterval
	expBackoff.MaxInterval = breakerMaxInterval
	expBackoff.Reset()

	//nolint:exhaustruct // Remaining breaker options keep their defaults.
	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(breakerFailureThreshold),
	})

	b.breakers[host] = breaker

	return breaker
}

// hostOf extracts the breaker grouping key from a URL.
func hostOf(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil || parsed.Host == "" {
		return fileURL
	}

	return parsed.Host
}
