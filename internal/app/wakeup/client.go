package wakeup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dashseed/internal/auth"
)

// SeedCallTimeout bounds the follow-up seed request.
const SeedCallTimeout = 300 * time.Second

const maxSeedResponseBytes = 1 << 20

// SeedCallError reports a non-2xx answer from the seed endpoint.
type SeedCallError struct {
	StatusCode int
	Body       []byte
}

func (e *SeedCallError) Error() string {
	return fmt.Sprintf("seed endpoint returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client calls the seed endpoint of a running server.
type Client struct {
	baseURL    string
	tokens     *auth.Issuer
	httpClient *http.Client
}

// NewClient returns a Client for baseURL. tokens may be nil when the endpoint is open.
func NewClient(baseURL string, tokens *auth.Issuer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: SeedCallTimeout,
		},
	}
}

// TriggerSeed requests a seeding run and returns the raw JSON answer.
func (c *Client) TriggerSeed(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/seed", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens.Enabled() {
		token, err := c.tokens.Issue(time.Now())
		if err != nil {
			return nil, fmt.Errorf("issue seed token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSeedResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		callErr := &SeedCallError{StatusCode: resp.StatusCode, Body: body}
		if !json.Valid(body) {
			return nil, callErr
		}
		return json.RawMessage(body), callErr
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("seed endpoint returned %s with a non-JSON body", resp.Status)
	}
	return json.RawMessage(body), nil
}
