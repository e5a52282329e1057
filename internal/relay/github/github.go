// Package github dispatches repository_dispatch events to the GitHub API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evolveua/queuevault/internal/common"
)

// Dispatcher sends one event downstream. The relay server depends on this
// interface so tests can observe dispatches without real HTTP.
type Dispatcher interface {
	Dispatch(ctx context.Context, eventType string, clientPayload map[string]any) error
}

type dispatchRequest struct {
	EventType     string         `json:"event_type"`
	ClientPayload map[string]any `json:"client_payload"`
}

// Client talks to the GitHub repository_dispatch endpoint for one repository.
type Client struct {
	base  string
	repo  string
	token string
	http  *http.Client
}

func New(base, repo, token string) *Client {
	return &Client{
		base:  base,
		repo:  repo,
		token: token,
		http:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Dispatch posts a repository_dispatch event. GitHub answers 204 on success;
// any other status is surfaced as common.ErrDownstream.
func (c *Client) Dispatch(ctx context.Context, eventType string, clientPayload map[string]any) error {
	body, err := json.Marshal(dispatchRequest{EventType: eventType, ClientPayload: clientPayload})
	if err != nil {
		return fmt.Errorf("encode dispatch: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/dispatches", c.base, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build dispatch request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github unreachable: %w", common.ErrDownstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github dispatch status %d: %s: %w", resp.StatusCode, snippet, common.ErrDownstream)
	}
	return nil
}
