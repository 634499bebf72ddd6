package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/gifmask/internal/dom"
)

// defaultUserAgent is sent when no custom User-Agent is configured.
// We use a common browser string because some chat front ends serve a
// degraded page to unknown clients.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

// defaultMaxBodySize limits response bodies to 10MB. Chat pages are large
// but bounded; anything past this is not a page we can filter.
const defaultMaxBodySize = 10 * 1024 * 1024

// Fetcher downloads pages over plain HTTP and parses them into documents.
//
// Design decision: We require no external client because the transport is
// part of what this type configures (SOCKS5 routing, redirect limits,
// timeouts). Tests can still swap the whole client with WithHTTPClient.
type Fetcher struct {
	// client performs the requests. Built in NewFetcher unless injected.
	client *http.Client

	// proxyAddress is an optional SOCKS5 proxy in "host:port" format.
	proxyAddress string

	// timeout is the per-request timeout.
	timeout time.Duration

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// logger receives debug records for each fetch.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithSOCKS5 routes all requests through a SOCKS5 proxy.
// The address must be in "host:port" format (e.g., "127.0.0.1:9050").
func WithSOCKS5(address string) Option {
	return func(f *Fetcher) {
		f.proxyAddress = address
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithHTTPClient injects a pre-built HTTP client and skips transport
// construction. Used by tests and callers with their own transport needs.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the logger used for fetch debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher with the given options.
//
// When a SOCKS5 proxy is configured, the dialer is created here so an
// invalid proxy address fails at construction, not on the first request.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:     30 * time.Second,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		transport := &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		}

		if f.proxyAddress != "" {
			if !isValidProxyAddress(f.proxyAddress) {
				return nil, ErrInvalidProxyAddress
			}
			// nil auth because SOCKS5 proxies for this use case (Tor,
			// local forwarders) typically run without authentication.
			dialer, err := proxy.SOCKS5("tcp", f.proxyAddress, nil, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
			}
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}

		f.client = &http.Client{
			Transport: transport,
			Timeout:   f.timeout,
			// Limit redirects to prevent loops
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	return f, nil
}

// Fetch downloads rawURL and parses the response body as HTML.
// The returned document records the final URL after redirects.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*dom.Document, error) {
	pageURL, err := normalizePageURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("server returned status %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := dom.Parse(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	// resp.Request points at the last request in the redirect chain.
	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	doc.SetPageURL(finalURL)

	f.logger.Debug("fetched page", "url", finalURL, "status", resp.StatusCode)

	return doc, nil
}

// Fetch downloads a single page with a one-shot Fetcher.
func Fetch(ctx context.Context, rawURL string, opts ...Option) (*dom.Document, error) {
	f, err := NewFetcher(opts...)
	if err != nil {
		return nil, err
	}
	return f.Fetch(ctx, rawURL)
}

// normalizePageURL validates rawURL and fills in a missing scheme.
// Bare host names default to https because that is what chat services run.
func normalizePageURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrEmptyURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", trimmed, err)
	}

	// "chat.example.com/channels/1" parses as a bare path.
	if u.Scheme == "" && u.Host == "" {
		u, err = url.Parse("https://" + trimmed)
		if err != nil {
			return "", fmt.Errorf("invalid page URL %q: %w", trimmed, err)
		}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w, got %q", ErrUnsupportedScheme, u.Scheme)
	}

	return u.String(), nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	// Port must be a number between 1 and 65535
	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}
