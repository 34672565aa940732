package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
)

// DefaultMusicDataURL is the public prober music list.
const DefaultMusicDataURL = "https://www.diving-fish.com/api/maimaidxprober/music_data"

const defaultTTL = 6 * time.Hour

// Client downloads the music data list through an HTTP cache.
type Client struct {
	url  string
	ttl  time.Duration
	base http.RoundTripper
	http *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithURL overrides the music data URL.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// WithTTL sets how long a fetched document is served from cache regardless
// of what the origin says.
func WithTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithTransport sets the transport underneath the cache.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.base = rt
		}
	}
}

// NewClient creates a Client backed by an in-memory httpcache.
func NewClient(opts ...Option) *Client {
	c := &Client{url: DefaultMusicDataURL, ttl: defaultTTL, base: http.DefaultTransport}
	for _, opt := range opts {
		opt(c)
	}

	ttl := int(c.ttl / time.Second)
	tr := httpcache.NewTransport(httpcache.NewMemoryCache())
	// The origin's own cache headers are replaced so the TTL is ours.
	tr.Transport = &headerOverrideTransport{
		wrapped: c.base,
		response: func(resp *http.Response) {
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", ttl))
		},
	}
	c.http = &http.Client{Transport: tr, Timeout: 30 * time.Second}
	return c
}

// Fetch downloads and parses the music data list.
func (c *Client) Fetch(ctx context.Context) ([]Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, c.url, resp.Status)
	}
	// Read to EOF: httpcache only stores a body once it has been fully consumed.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return Parse(bytes.NewReader(body))
}

type headerOverrideTransport struct {
	wrapped  http.RoundTripper
	response func(*http.Response)
}

func (t *headerOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.wrapped.RoundTrip(req.Clone(req.Context()))
	if err != nil {
		return nil, err
	}
	if t.response != nil && resp.StatusCode == http.StatusOK {
		t.response(resp)
	}
	return resp, nil
}
