package download

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingDownloader counts calls and returns a canned result.
type recordingDownloader struct {
	calls int
	path  string
	err   error
}

func (d *recordingDownloader) File(_ context.Context, _, _, _ string) (string, error) {
	d.calls++
	return d.path, d.err
}

// TestBreakerClientPassThrough proxies successful downloads untouched.
func TestBreakerClientPassThrough(t *testing.T) {
	t.Parallel()

	inner := &recordingDownloader{path: "/tmp/stub.zip"}
	client := NewBreakerClient(inner)

	localPath, err := client.File(
		context.Background(), "https://example.com/stub.zip", "/tmp", "stub binary")
	require.NoError(t, err)
	require.Equal(t, "/tmp/stub.zip", localPath)
	require.Equal(t, 1, inner.calls)
}

// TestBreakerClientPropagatesErrors keeps the error taxonomy intact through the breaker.
func TestBreakerClientPropagatesErrors(t *testing.T) {
	t.Parallel()

	inner := &recordingDownloader{err: fmt.Errorf("x: %w", ErrMissingResource)}
	client := NewBreakerClient(inner)

	_, err := client.File(
		context.Background(), "https://example.com/stub.zip", "/tmp", "stub binary")
	require.ErrorIs(t, err, ErrMissingResource)
}

// TestBreakerClientOpensAfterFailures reports an open breaker as a network failure.
func TestBreakerClientOpensAfterFailures(t *testing.T) {
	t.Parallel()

	inner := &recordingDownloader{err: errors.New("connection refused")}
	client := NewBreakerClient(inner)
	ctx := context.Background()

	for i := 0; i < breakerFailureThreshold; i++ {
		_, err := client.File(ctx, "https://dead.example.com/stub.zip", "/tmp", "stub binary")
		require.Error(t, err)
	}

	_, err := client.File(ctx, "https://dead.example.com/stub.zip", "/tmp", "stub binary")
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.Equal(t, breakerFailureThreshold, inner.calls)

	// Other hosts keep their own breaker.
	_, err = client.File(ctx, "https://alive.example.com/stub.zip", "/tmp", "stub binary")
	require.Error(t, err)
	require.Equal(t, breakerFailureThreshold+1, inner.calls)
}

// TestHostOf extracts breaker keys from URLs.
func TestHostOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, "example.com", hostOf("https://example.com/a/b.zip"))
	require.Equal(t, "not a url", hostOf("not a url"))
}
