package scraper

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yonox270/yonoox/internal/product"
)

// PlatformStorefront reads the schema.org Product node from the page's
// JSON-LD blocks. Shopify themes emit one; other storefronts often do too.
func PlatformStorefront(page *Page) (product.RawFields, bool) {
	var (
		raw   product.RawFields
		found bool
	)
	page.Doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var doc any
		if err := json.Unmarshal([]byte(s.Text()), &doc); err != nil {
			return true
		}
		node := findProductNode(doc)
		if node == nil {
			return true
		}
		raw, found = productFromJSONLD(node), true
		return false
	})
	return raw, found
}

func findProductNode(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if node := findProductNode(item); node != nil {
				return node
			}
		}
	case map[string]any:
		if isProductType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findProductNode(graph)
		}
	}
	return nil
}

func isProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Product"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func productFromJSONLD(node map[string]any) product.RawFields {
	offer := firstObject(node["offers"])
	currency := stringValue(offer["priceCurrency"])
	if currency == "" {
		currency = product.DefaultCurrency
	}
	return product.RawFields{
		Title:       stringValue(node["name"]),
		Price:       stringValue(offer["price"]),
		Description: stringValue(node["description"]),
		Images:      imageURLs(node["image"]),
		Currency:    currency,
		Vendor:      brandName(node["brand"]),
	}
}

// firstObject accepts an object or an array of objects.
func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return map[string]any{}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func imageURLs(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case map[string]any:
		return imageURLs(t["url"])
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, imageURLs(item)...)
		}
		return out
	}
	return nil
}

func brandName(v any) string {
	if m, ok := v.(map[string]any); ok {
		return stringValue(m["name"])
	}
	return stringValue(v)
}
