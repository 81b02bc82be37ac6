package scraper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/metrics"
)

// ErrChallenged marks a success response whose body is an anti-bot page.
var ErrChallenged = errors.New("bot challenge page")

// ChallengeDetector inspects a fetched body for anti-bot interstitials.
type ChallengeDetector interface {
	Challenged(body []byte) bool
}

// FallbackFetcher tries a direct fetch first and the proxy once if it fails.
type FallbackFetcher struct {
	direct   Fetcher
	proxy    Fetcher
	detector ChallengeDetector
	logger   *zap.Logger
}

// FallbackOption customizes a FallbackFetcher.
type FallbackOption func(*FallbackFetcher)

// WithChallengeDetector treats bodies flagged by d as failed fetches.
func WithChallengeDetector(d ChallengeDetector) FallbackOption {
	return func(f *FallbackFetcher) {
		f.detector = d
	}
}

// NewFallbackFetcher builds a FallbackFetcher.
func NewFallbackFetcher(direct, proxy Fetcher, logger *zap.Logger, opts ...FallbackOption) *FallbackFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &FallbackFetcher{direct: direct, proxy: proxy, logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FallbackFetcher) fetch(ctx context.Context, via Fetcher, rawURL string) ([]byte, error) {
	body, err := via.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if f.detector != nil && f.detector.Challenged(body) {
		return nil, ErrChallenged
	}
	return body, nil
}

// Fetch returns the markup from the first path that succeeds. When both fail
// the error wraps ErrSiteProtected and both causes.
func (f *FallbackFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, directErr := f.fetch(ctx, f.direct, rawURL)
	metrics.ObserveFetch("direct", metrics.Outcome(directErr))
	if directErr == nil {
		return body, nil
	}
	f.logger.Warn("direct fetch failed, trying proxy", zap.String("url", rawURL), zap.Error(directErr))

	if ctx.Err() != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ctx.Err())
	}

	body, proxyErr := f.fetch(ctx, f.proxy, rawURL)
	metrics.ObserveFetch("proxy", metrics.Outcome(proxyErr))
	if proxyErr == nil {
		f.logger.Info("proxy fetch succeeded", zap.String("url", rawURL))
		return body, nil
	}
	f.logger.Warn("proxy fetch failed", zap.String("url", rawURL), zap.Error(proxyErr))

	return nil, fmt.Errorf("%w: %w", ErrSiteProtected, errors.Join(directErr, proxyErr))
}
