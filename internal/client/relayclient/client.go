// Package relayclient submits signed events to the edge relay. A submit is
// all-or-nothing: any network failure or non-2xx status is a hard downstream
// error, and the caller is expected to roll back whatever optimistic local
// write it made. There is no automatic retry.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evolveua/queuevault/internal/common"
	"github.com/evolveua/queuevault/internal/signing"
)

// Submitter is the outbound side of the signed relay protocol.
type Submitter interface {
	Submit(ctx context.Context, eventType string, data any) error
}

type Client struct {
	endpoint string
	secret   []byte
	http     *http.Client
	now      func() time.Time
}

// New builds a client for the relay at baseURL+route (e.g.
// "https://relay.example.dev" + "/api/github").
func New(baseURL, route, secret string) *Client {
	return &Client{
		endpoint: baseURL + route,
		secret:   []byte(secret),
		http:     &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
	}
}

// Submit signs {type, data, timestamp} with the shared secret and POSTs the
// signed object. The signature field is appended after signing and is not
// part of the signing input.
func (c *Client) Submit(ctx context.Context, eventType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}

	payload := signing.Payload{
		Type:      eventType,
		Data:      raw,
		Timestamp: c.now().UnixMilli(),
	}

	sig, err := signing.Sign(payload, c.secret)
	if err != nil {
		return fmt.Errorf("sign event: %w", err)
	}

	body, err := json.Marshal(signing.SignedPayload{Payload: payload, Signature: sig})
	if err != nil {
		return fmt.Errorf("encode signed event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay unreachable: %w", common.ErrDownstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		return fmt.Errorf("relay responded %d (%s): %w", resp.StatusCode, msg, common.ErrDownstream)
	}

	return nil
}

func readErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&body); err != nil || body.Error == "" {
		return "no detail"
	}
	return body.Error
}
