package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"safespace.app/backend/internal/stream"
)

var (
	ErrRateLimited = errors.New("relay: rate limited")
	ErrUnavailable = errors.New("relay: service unavailable")
)

// StatusError is any other non-2xx answer from the relay.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay: status %d: %s", e.Status, e.Message)
}

// Refused reports whether err means the relay answered with a non-2xx status,
// as opposed to the call itself failing.
func Refused(err error) bool {
	var se *StatusError
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) || errors.As(err, &se)
}

// InternalTokenHeader carries the token that marks a relay call as coming
// from the app's own services.
const InternalTokenHeader = "X-Relay-Internal-Token"

// Client calls the relay endpoint over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	header     http.Header
}

func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{url: url, httpClient: httpClient, header: http.Header{}}
}

// WithHeader sets a header sent on every relay call.
func (c *Client) WithHeader(key, value string) *Client {
	c.header.Set(key, value)
	return c
}

// Stream posts the turns and returns the event-stream body. The caller owns
// the returned body and must close it.
func (c *Client) Stream(ctx context.Context, mode string, turns []Turn) (io.ReadCloser, error) {
	payload, err := json.Marshal(Request{Messages: turns, Type: mode})
	if err != nil {
		return nil, fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusPaymentRequired:
		return nil, ErrUnavailable
	}

	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	return nil, &StatusError{Status: resp.StatusCode, Message: body.Error}
}

// Complete streams a reply and returns the full text once the stream ends.
func (c *Client) Complete(ctx context.Context, mode string, turns []Turn, onDelta func(string)) (string, error) {
	body, err := c.Stream(ctx, mode, turns)
	if err != nil {
		return "", err
	}
	defer body.Close()
	return stream.Consume(body, onDelta)
}
