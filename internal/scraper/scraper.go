// Package scraper turns a product page into a canonical product record: it
// obtains the markup, picks an extraction strategy for the site family and
// normalizes whatever that strategy found.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/metrics"
	"github.com/yonox270/yonoox/internal/product"
)

var (
	// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrSiteProtected is returned when every fetch path failed; the caller
	// should ask for the page markup instead.
	ErrSiteProtected = errors.New("site protected")
)

// Fetcher retrieves raw page markup.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Page is the parsed markup of one product page.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

// Scraper runs the fetch, classify, extract and normalize pipeline.
type Scraper struct {
	fetcher    Fetcher
	strategies map[StrategyTag]Strategy
	logger     *zap.Logger
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithStrategies replaces the tag to strategy table.
func WithStrategies(table map[StrategyTag]Strategy) Option {
	return func(s *Scraper) {
		s.strategies = table
	}
}

// New builds a Scraper.
func New(fetcher Fetcher, logger *zap.Logger, opts ...Option) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scraper{
		fetcher:    fetcher,
		strategies: DefaultStrategies(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseURL accepts only absolute http and https URLs.
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// Scrape extracts a product from rawURL. When html is non-empty it is parsed
// directly and no network fetch happens. The returned record may be low
// confidence; check Product.LowConfidence.
func (s *Scraper) Scrape(ctx context.Context, rawURL, html string) (product.Product, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return product.Product{}, err
	}

	markup := []byte(html)
	if html == "" {
		markup, err = s.fetcher.Fetch(ctx, u.String())
		if err != nil {
			return product.Product{}, err
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return product.Product{}, fmt.Errorf("parse markup: %w", err)
	}
	page := &Page{URL: u, Doc: doc}

	tag := Classify(u, doc)
	raw, ok := s.extract(tag, page)
	if !ok || usableTitle(raw.Title) == "" {
		s.logger.Debug("strategy produced no usable record, using universal",
			zap.String("strategy", string(tag)),
			zap.String("url", u.String()),
		)
		tag = TagUniversal
		raw, _ = s.extract(TagUniversal, page)
	}

	p := product.Normalize(raw)
	outcome := metrics.OutcomeSuccess
	if p.LowConfidence() {
		outcome = "low_confidence"
	}
	metrics.ObserveScrape(string(tag), outcome)
	s.logger.Info("product scraped",
		zap.String("url", u.String()),
		zap.String("strategy", string(tag)),
		zap.String("title", p.Title),
		zap.Bool("manual", html != ""),
	)
	return p, nil
}

func (s *Scraper) extract(tag StrategyTag, page *Page) (raw product.RawFields, ok bool) {
	strategy, found := s.strategies[tag]
	if !found {
		strategy = StrategyFunc(Universal)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("strategy panicked", zap.String("strategy", string(tag)), zap.Any("panic", r))
			raw, ok = product.RawFields{}, false
		}
	}()
	return strategy.Extract(page)
}

func usableTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == product.SentinelTitle {
		return ""
	}
	return title
}
