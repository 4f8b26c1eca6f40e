// Package linear talks to the Linear GraphQL API.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielolaszy/quill/internal/logging"
)

// DefaultEndpoint is the Linear GraphQL endpoint.
const DefaultEndpoint = "https://api.linear.app/graphql"

// Client sends GraphQL operations to Linear on behalf of one API key.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint points the client at another GraphQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient returns a client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	logging.Debug("linear client configured",
		"endpoint", c.endpoint,
		"api_key", logging.MaskSensitive(apiKey))
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// Do posts one GraphQL operation and decodes the data member into out.
//
// A non-2xx status, a non-empty errors array or a missing data member is an
// error, whatever the other parts of the envelope say.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal linear request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create linear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach linear: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read linear response: %w", err)
	}

	var envelope graphQLResponse
	decodeErr := json.Unmarshal(respBody, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && len(envelope.Errors) > 0 {
			return fmt.Errorf("linear API returned status %d: %s", resp.StatusCode, joinErrors(envelope.Errors))
		}
		return fmt.Errorf("linear API returned status %d: %s", resp.StatusCode, logging.Truncate(string(respBody), 200))
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to parse linear response: %w", decodeErr)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("linear API returned errors: %s", joinErrors(envelope.Errors))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("linear API returned no data")
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode linear data: %w", err)
	}
	return nil
}

func joinErrors(errs []graphQLError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}
