package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yonox270/yonoox/internal/product"
)

const brandCDNHost = "static.nike.com"

// BrandStorefront extracts Nike-style product pages.
func BrandStorefront(page *Page) (product.RawFields, bool) {
	doc := page.Doc
	title := firstNonEmpty(firstText(doc, "h1"), metaContent(doc, "og:title"))
	if title == "" {
		return product.RawFields{}, false
	}

	price := firstNonEmpty(
		strings.TrimSpace(doc.Find(`[data-test="product-price"]`).Text()),
		strings.TrimSpace(doc.Find(".product-price").Text()),
	)
	description := firstNonEmpty(
		strings.TrimSpace(doc.Find(".description-preview").Text()),
		metaContent(doc, "og:description"),
	)

	var images []string
	doc.Find(`img[src*="` + brandCDNHost + `"]`).Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src != "" && !strings.Contains(src, "logo") {
			images = append(images, src)
		}
	})

	return product.RawFields{
		Title:       title,
		Price:       price,
		Description: description,
		Images:      images,
		Currency:    product.DefaultCurrency,
		Vendor:      "Nike",
	}, true
}
