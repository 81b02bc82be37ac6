package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/product"
)

type stubFetcher struct {
	body  string
	err   error
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

func TestScrapeMarketplaceScenario(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{body: `<span id="productTitle">Widget</span>
<span class="a-price-whole">19</span><span class="a-price-fraction">99</span>`}
	s := New(fetcher, zap.NewNop())

	got, err := s.Scrape(context.Background(), "https://www.amazon.fr/dp/B0TEST", "")
	require.NoError(t, err)
	require.Equal(t, "Widget", got.Title)
	require.Equal(t, "19.99", got.Price)
	require.Equal(t, "Amazon", got.Vendor)
	require.Equal(t, "EUR", got.Currency)
	require.Equal(t, []string{"https://www.amazon.fr/dp/B0TEST"}, fetcher.calls)
}

func TestScrapeManualMarkupSkipsFetch(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{err: errors.New("must not be called")}
	s := New(fetcher, nil)

	got, err := s.Scrape(context.Background(), "https://www.boutique.fr/p/1",
		`<h1>Vase</h1><p class="price">35,00 €</p>`)
	require.NoError(t, err)
	require.Equal(t, "Vase", got.Title)
	require.Equal(t, "35.00", got.Price)
	require.Equal(t, "boutique", got.Vendor)
	require.Empty(t, fetcher.calls)
}

func TestScrapeFallsBackToUniversal(t *testing.T) {
	t.Parallel()

	// Amazon host but no marketplace markup: the marketplace strategy is absent.
	s := New(nil, nil)
	got, err := s.Scrape(context.Background(), "https://www.amazon.com/x", `<h1>Generic</h1>`)
	require.NoError(t, err)
	require.Equal(t, "Generic", got.Title)
	require.Equal(t, "amazon", got.Vendor)
}

func TestScrapeSentinelTitleTriggersFallback(t *testing.T) {
	t.Parallel()

	sentinel := StrategyFunc(func(*Page) (product.RawFields, bool) {
		return product.RawFields{Title: product.SentinelTitle, Price: "1"}, true
	})
	table := DefaultStrategies()
	table[TagBrandStorefront] = sentinel

	s := New(nil, nil, WithStrategies(table))
	got, err := s.Scrape(context.Background(), "https://nike.com/x", `<h1>Real</h1>`)
	require.NoError(t, err)
	require.Equal(t, "Real", got.Title)
}

func TestScrapeRecoversStrategyPanic(t *testing.T) {
	t.Parallel()

	table := DefaultStrategies()
	table[TagMarketplace] = StrategyFunc(func(*Page) (product.RawFields, bool) {
		panic("selector exploded")
	})

	s := New(nil, nil, WithStrategies(table))
	got, err := s.Scrape(context.Background(), "https://amazon.com/x", `<h1>Still here</h1>`)
	require.NoError(t, err)
	require.Equal(t, "Still here", got.Title)
}

func TestScrapeLowConfidence(t *testing.T) {
	t.Parallel()

	s := New(nil, nil)
	got, err := s.Scrape(context.Background(), "https://example.com/x", `<p>nothing useful</p>`)
	require.NoError(t, err)
	require.True(t, got.LowConfidence())
	require.Equal(t, "0", got.Price)
}

func TestScrapeInvalidURL(t *testing.T) {
	t.Parallel()

	s := New(&stubFetcher{}, nil)
	for _, raw := range []string{"", "ftp://example.com/x", "example.com/x", "https://", "http://%zz"} {
		_, err := s.Scrape(context.Background(), raw, "")
		require.ErrorIs(t, err, ErrInvalidURL, "input %q", raw)
	}
}

func TestScrapeBothFetchPathsFail(t *testing.T) {
	t.Parallel()

	direct := &stubFetcher{err: errors.New("403 Forbidden")}
	proxy := &stubFetcher{err: errors.New("proxy timeout")}
	s := New(NewFallbackFetcher(direct, proxy, zap.NewNop()), zap.NewNop())

	_, err := s.Scrape(context.Background(), "https://www.amazon.fr/dp/B0", "")
	require.ErrorIs(t, err, ErrSiteProtected)
	require.Len(t, direct.calls, 1)
	require.Len(t, proxy.calls, 1)
}
