package perplexity

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// TransportResponse is the raw outcome of a single HTTP exchange.
type TransportResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Transport sends one HTTP request and returns the status and body, or a
// transport-level error when no status was obtained. Implementations must
// honor ctx for cancellation and apply the configured per-call timeout.
type Transport interface {
	Send(ctx context.Context, method, url string, header http.Header, body []byte) (*TransportResponse, error)
}

type httpTransport struct {
	client    *http.Client
	userAgent string
}

func newHTTPTransport(cfg Config) (*httpTransport, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()

	if !cfg.VerifySSL {
		if base.TLSClientConfig == nil {
			base.TLSClientConfig = &tls.Config{} // #nosec G402 -- verification toggle is an explicit config option
		}
		base.TLSClientConfig.InsecureSkipVerify = true
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, configError("invalid proxy url %q: %v", cfg.Proxy, err)
		}
		base.Proxy = http.ProxyURL(proxyURL)
	}

	return &httpTransport{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: base,
		},
		userAgent: cfg.UserAgent,
	}, nil
}

func (t *httpTransport) Send(ctx context.Context, method, rawURL string, header http.Header, body []byte) (*TransportResponse, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &TransportResponse{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Header:     resp.Header,
	}, nil
}
