package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yonox270/yonoox/internal/product"
)

// Universal is the best-effort fallback. It always returns a record.
func Universal(page *Page) (product.RawFields, bool) {
	doc := page.Doc

	title := firstNonEmpty(firstText(doc, "h1"), metaContent(doc, "og:title"), product.SentinelTitle)

	itemPrice, _ := doc.Find(`[itemprop="price"]`).Attr("content")
	price := firstNonEmpty(firstText(doc, `[class*="price"]`), strings.TrimSpace(itemPrice))

	description := firstNonEmpty(firstText(doc, `[class*="description"]`), metaContent(doc, "og:description"))

	var images []string
	doc.Find(`img[src*="product"], img[class*="product"]`).Each(func(_ int, img *goquery.Selection) {
		src := firstNonEmpty(img.AttrOr("src", ""), img.AttrOr("data-src", ""))
		if src != "" && !strings.Contains(src, "logo") {
			images = append(images, product.AbsoluteImageURL(src))
		}
	})
	if len(images) == 0 {
		if og := metaContent(doc, "og:image"); og != "" {
			images = append(images, og)
		}
	}

	return product.RawFields{
		Title:       title,
		Price:       price,
		Description: description,
		Images:      images,
		Currency:    product.DefaultCurrency,
		Vendor:      VendorFromHost(page.URL),
	}, true
}

// VendorFromHost derives a vendor label such as "boutique" from
// "www.boutique.fr".
func VendorFromHost(u *url.URL) string {
	if u == nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimSuffix(host, ".com")
	host = strings.TrimSuffix(host, ".fr")
	return host
}
