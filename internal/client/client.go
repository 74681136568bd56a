// Package client reads a running sysmon dashboard over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/magicaleks/sysmon/internal/view"
)

const (
	DefaultBaseURL  = "http://localhost:5000"
	applicationJSON = "application/json"
)

type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New returns a client for the dashboard mounted at baseURL, e.g.
// http://host:8080/systemmonitor in proxy mode. logger may be nil.
func New(baseURL string, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	if logger != nil {
		rc.Logger = logger
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    rc,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Snapshot fetches one sample from the data endpoint.
func (c *Client) Snapshot(ctx context.Context) (*view.Data, error) {
	resp, err := c.get(ctx, "/data")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data view.Data
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &data, nil
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data := decodeResponse[struct{}](resp.Body)
	if !data.Ok {
		return fmt.Errorf("health: %s", nonEmpty(data.Error, "response is not ok"))
	}
	return nil
}

type apiResponse[T any] struct {
	Ok    bool   `json:"ok"`
	Data  *T     `json:"data"`
	Error string `json:"error"`
}

func decodeResponse[T any](body io.Reader) apiResponse[T] {
	var resp apiResponse[T]
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return apiResponse[T]{Ok: false}
	}
	return resp
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", applicationJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data := decodeResponse[struct{}](resp.Body)
		return nil, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, nonEmpty(data.Error, http.StatusText(resp.StatusCode)))
	}
	return resp, nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
