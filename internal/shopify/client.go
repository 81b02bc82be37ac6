// Package shopify is a minimal Admin GraphQL API client covering the product
// mutations the importer issues.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no shop or access token was provided.
var ErrNotConfigured = errors.New("shopify admin api not configured")

// Config holds the Admin API coordinates.
type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	// Endpoint overrides the URL derived from ShopDomain and APIVersion.
	Endpoint string
}

// Client posts GraphQL documents to the Admin API. Safe for concurrent use.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

// NewClient builds a Client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" && cfg.ShopDomain != "" {
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopHost(cfg.ShopDomain), cfg.APIVersion)
	}
	return &Client{
		endpoint:    endpoint,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the GraphQL URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func shopHost(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimSuffix(domain, "/")
	if !strings.Contains(domain, ".") {
		domain += ".myshopify.com"
	}
	return domain
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQLError is a top-level error entry of a GraphQL response.
type GraphQLError struct {
	Message string `json:"message"`
}

// StatusError reports a non-200 answer from the Admin API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql request failed: %d - %s", e.StatusCode, e.Body)
}

// RequestError reports top-level GraphQL errors.
type RequestError struct {
	Errors []GraphQLError
}

func (e *RequestError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Do executes query with variables and decodes the data member into out.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.endpoint == "" || c.accessToken == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	return c.post(ctx, payload, out)
}

func (c *Client) post(ctx context.Context, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graphql response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(body, 500)}
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return &RequestError{Errors: envelope.Errors}
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
