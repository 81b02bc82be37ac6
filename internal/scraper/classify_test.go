package scraper

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestClassify(t *testing.T) {
	t.Parallel()

	shopifyMeta := `<html><head><meta name="shopify-checkout-api-token" content="x"></head></html>`

	tests := []struct {
		name string
		url  string
		html string
		want StrategyTag
	}{
		{name: "marketplace", url: "https://www.amazon.fr/dp/B0", want: TagMarketplace},
		{name: "marketplace upper case host", url: "https://WWW.AMAZON.COM/dp/B0", want: TagMarketplace},
		{name: "brand", url: "https://www.nike.com/t/air", want: TagBrandStorefront},
		{name: "platform host", url: "https://demo.myshopify.com/products/x", want: TagPlatformStorefront},
		{name: "platform marker", url: "https://boutique.fr/products/x", html: shopifyMeta, want: TagPlatformStorefront},
		{name: "host rule beats marker", url: "https://amazon.de/x", html: shopifyMeta, want: TagMarketplace},
		{name: "universal", url: "https://boutique.fr/p/1", html: "<html></html>", want: TagUniversal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Classify(mustURL(t, tt.url), mustDoc(t, tt.html)))
		})
	}
}
