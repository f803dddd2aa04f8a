package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/flipseven-go/internal/api/apierr"
	"github.com/mcoot/flipseven-go/internal/api/request"
	"github.com/mcoot/flipseven-go/internal/api/response"
)

// Client talks to a running flipseven server's JSON API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// A simulated game is played inside the request
			Timeout: 60 * time.Second,
		},
	}
}

// RemoteError is an error reported by the server in its JSON error body
type RemoteError struct {
	Status int
	apierr.APIError
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Health fetches the server status
func (c *Client) Health(ctx context.Context) (HealthResult, error) {
	var result HealthResult
	err := c.Do(ctx, http.MethodGet, "/api/v1/health", nil, &result)
	return result, err
}

// Lobby fetches the state of the TCP lobby
func (c *Client) Lobby(ctx context.Context) (response.Lobby, error) {
	var result response.Lobby
	err := c.Do(ctx, http.MethodGet, "/api/v1/lobby", nil, &result)
	return result, err
}

// SimulateGame has the server play a bot game to completion
func (c *Client) SimulateGame(ctx context.Context, req request.SimulateGameRequest) (response.GameSummary, error) {
	var result response.GameSummary
	err := c.Do(ctx, http.MethodPost, "/api/v1/games", req, &result)
	return result, err
}

// Do performs an HTTP request, decoding a JSON result into result if non-nil
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp apierr.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return &RemoteError{Status: resp.StatusCode, APIError: errResp.Error}
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
