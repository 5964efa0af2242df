package mjpeg

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Transport supplies the raw multipart byte stream. Connection-level failures
// (DNS, refused, timeout) are returned from Open and never reach the demuxer.
// Cancelling the context aborts the connection and unblocks body reads.
type Transport interface {
	Open(ctx context.Context, url string, headers map[string]string) (contentType string, body io.ReadCloser, err error)
}

// HTTPTransport is the default Transport over net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport builds a transport whose dial and response-header waits
// are bounded by connectTimeout. Body reads are not bounded here; the
// session's stall timer covers those.
func NewHTTPTransport(connectTimeout time.Duration) *HTTPTransport {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &HTTPTransport{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				TLSHandshakeTimeout:   connectTimeout,
				ResponseHeaderTimeout: connectTimeout,
			},
		},
	}
}

func (t *HTTPTransport) Open(ctx context.Context, url string, headers map[string]string) (string, io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return "", nil, fmt.Errorf("%w: unexpected status %s", ErrConnection, resp.Status)
	}

	return resp.Header.Get("Content-Type"), resp.Body, nil
}
