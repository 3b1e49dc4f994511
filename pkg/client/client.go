// Package client is a reusable client for the imagery provider's developer
// API. Construction uses functional options; non-2xx responses surface as
// *APIError values classified by sentinel errors, and transport failures are
// wrapped with ErrNetwork. Nothing is retried unless a RetryPolicy says so.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/robert-malhotra/go-imagery-client/pkg/imagery"
)

// DefaultBaseURL is the imagery provider's developer API root.
const DefaultBaseURL = "https://hivemapper.com/api/developer"

// polyEndpoint accepts a polygon body and returns the frames captured in it.
const polyEndpoint = "/imagery/poly"

// Client is a reusable imagery API client.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	defaultHeaders http.Header
	retryPolicy    RetryPolicy
	logger         Logger
}

// New constructs a Client with provided options.
func New(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient:     &http.Client{},
		defaultHeaders: make(http.Header),
		retryPolicy:    NoRetryPolicy,
	}
	c.defaultHeaders.Set("Accept", "application/json")
	c.defaultHeaders.Set("Content-Type", "application/json")
	c.defaultHeaders.Set("User-Agent", "go-imagery-client/0.1")

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.baseURL == nil {
		u, err := url.Parse(DefaultBaseURL)
		if err != nil {
			return nil, err
		}
		c.baseURL = u
	}
	if c.httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	return c, nil
}

// queryResponse is the provider's envelope for polygon queries.
type queryResponse struct {
	Frames []imagery.Frame `json:"frames"`
}

// QueryPolygon submits one polygon for one capture day and returns the frames
// the provider holds for it. The day is truncated to its date.
func (c *Client) QueryPolygon(ctx context.Context, geom orb.Geometry, day time.Time) ([]imagery.Frame, error) {
	query := url.Values{}
	query.Set("day", day.Format("2006-01-02"))

	var out queryResponse
	if err := c.doJSON(ctx, http.MethodPost, polyEndpoint, query, geojson.NewGeometry(geom), &out); err != nil {
		return nil, err
	}
	return out.Frames, nil
}

func (c *Client) buildURL(endpoint string, query url.Values) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := *c.baseURL
	u.Path = path.Join(c.baseURL.Path, endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(endpoint, query), reader)
	if err != nil {
		return nil, err
	}

	for key, values := range c.defaultHeaders {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.logger != nil {
		c.logger.Debugf("client: %s %s", req.Method, req.URL)
	}

	resp, err := c.retry(ctx, func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, readErr)
	}

	apiErr := &APIError{Status: resp.StatusCode, Raw: data}
	if err := json.Unmarshal(data, apiErr); err != nil {
		// Fallback to plain message.
		apiErr.Detail = strings.TrimSpace(string(data))
	}
	if c.logger != nil {
		c.logger.Errorf("client: request failed status=%d", resp.StatusCode)
	}
	return nil, apiErr
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
