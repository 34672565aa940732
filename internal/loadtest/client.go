package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// apiClient is a small JSON client for the maidx API.
type apiClient struct {
	base   string
	region string
	http   *http.Client
}

func newAPIClient(base, region string, timeout time.Duration) *apiClient {
	return &apiClient{base: base, region: region, http: &http.Client{Timeout: timeout}}
}

// statusError is a non-2xx response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, header http.Header, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, &statusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *apiClient) query() string {
	return "region=" + url.QueryEscape(c.region)
}

func (c *apiClient) health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
	return err
}

func (c *apiClient) upload(ctx context.Context, u Upload) (uploadReport, error) {
	var rep uploadReport
	h := http.Header{}
	h.Set("Idempotency-Key", u.UploadID)
	path := "/players/" + url.PathEscape(u.Player) + "/records?" + c.query()
	_, err := c.do(ctx, http.MethodPost, path, u.Scores, h, &rep)
	return rep, err
}

func (c *apiClient) rank(ctx context.Context, player string) (Entry, error) {
	var e Entry
	_, err := c.do(ctx, http.MethodGet, "/rank/"+url.PathEscape(player)+"?"+c.query(), nil, nil, &e)
	return e, err
}

func (c *apiClient) b50Total(ctx context.Context, player string) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	_, err := c.do(ctx, http.MethodGet, "/players/"+url.PathEscape(player)+"/b50?"+c.query(), nil, nil, &out)
	return out.Total, err
}

func (c *apiClient) leaderboard(ctx context.Context, n int) ([]Entry, error) {
	var out []Entry
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/leaderboard?%s&limit=%d", c.query(), n), nil, nil, &out)
	return out, err
}

func (c *apiClient) queueLength(ctx context.Context) (int, error) {
	var out struct {
		QueueLength int `json:"queueLength"`
	}
	_, err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &out)
	return out.QueueLength, err
}
