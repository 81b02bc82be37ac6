package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yonox270/yonoox/internal/product"
)

// Strategy extracts raw product fields from a page. ok=false means the
// strategy found nothing it trusts.
type Strategy interface {
	Extract(page *Page) (raw product.RawFields, ok bool)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(page *Page) (product.RawFields, bool)

// Extract calls fn.
func (fn StrategyFunc) Extract(page *Page) (product.RawFields, bool) {
	return fn(page)
}

// DefaultStrategies returns the built-in tag to strategy table.
func DefaultStrategies() map[StrategyTag]Strategy {
	return map[StrategyTag]Strategy{
		TagMarketplace:        StrategyFunc(Marketplace),
		TagBrandStorefront:    StrategyFunc(BrandStorefront),
		TagPlatformStorefront: StrategyFunc(PlatformStorefront),
		TagUniversal:          StrategyFunc(Universal),
	}
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
