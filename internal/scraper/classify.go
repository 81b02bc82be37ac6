package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StrategyTag names the extraction strategy chosen for a page.
type StrategyTag string

// Known strategy tags.
const (
	TagMarketplace        StrategyTag = "marketplace"
	TagBrandStorefront    StrategyTag = "brand_storefront"
	TagPlatformStorefront StrategyTag = "platform_storefront"
	TagUniversal          StrategyTag = "universal"
)

type classifierRule struct {
	tag     StrategyTag
	matches func(host string, doc *goquery.Document) bool
}

func hostContains(marker string) func(string, *goquery.Document) bool {
	return func(host string, _ *goquery.Document) bool {
		return strings.Contains(host, marker)
	}
}

// classifierRules is evaluated in order; the first match wins.
var classifierRules = []classifierRule{
	{tag: TagMarketplace, matches: hostContains("amazon")},
	{tag: TagBrandStorefront, matches: hostContains("nike")},
	{tag: TagPlatformStorefront, matches: func(host string, doc *goquery.Document) bool {
		if strings.Contains(host, "shopify") {
			return true
		}
		return doc != nil && doc.Find(`meta[name="shopify-checkout-api-token"]`).Length() > 0
	}},
}

// Classify picks the strategy for a page from its host, then its markup.
func Classify(u *url.URL, doc *goquery.Document) StrategyTag {
	host := ""
	if u != nil {
		host = strings.ToLower(u.Hostname())
	}
	for _, rule := range classifierRules {
		if rule.matches(host, doc) {
			return rule.tag
		}
	}
	return TagUniversal
}
