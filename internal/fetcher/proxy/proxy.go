// Package proxy routes page fetches through a third-party scraping proxy that
// takes the target URL and an API key as query parameters.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrMissingAPIKey is returned, without any network call, when no key is configured.
var ErrMissingAPIKey = errors.New("scraping proxy api key not configured")

// Getter performs the actual GET against the proxy endpoint.
type Getter interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Config holds the proxy coordinates.
type Config struct {
	BaseURL string
	APIKey  string
}

// Fetcher rewrites target URLs into proxy requests.
type Fetcher struct {
	cfg    Config
	getter Getter
}

// New builds a Fetcher delegating transport to getter.
func New(cfg Config, getter Getter) *Fetcher {
	return &Fetcher{cfg: cfg, getter: getter}
}

// Fetch retrieves target through the proxy.
func (f *Fetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	endpoint, err := f.Endpoint(target)
	if err != nil {
		return nil, err
	}
	body, err := f.getter.Fetch(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("proxy fetch: %w", err)
	}
	return body, nil
}

// Endpoint builds "<base>?api_key=<key>&url=<target>".
func (f *Fetcher) Endpoint(target string) (string, error) {
	if f.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	base, err := url.Parse(f.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse proxy base url: %w", err)
	}
	q := base.Query()
	q.Set("api_key", f.cfg.APIKey)
	q.Set("url", target)
	base.RawQuery = q.Encode()
	return base.String(), nil
}
