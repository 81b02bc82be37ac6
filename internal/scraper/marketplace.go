package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yonox270/yonoox/internal/product"
)

// thumbnailToken matches the size token Amazon embeds in gallery URLs,
// e.g. "._AC_US40_." in "41abc._AC_US40_.jpg".
var thumbnailToken = regexp.MustCompile(`\._.*_\.`)

// Marketplace extracts Amazon-style product pages.
func Marketplace(page *Page) (product.RawFields, bool) {
	doc := page.Doc
	title := firstText(doc, "#productTitle")

	price := marketplacePrice(doc)

	description := firstNonEmpty(
		firstText(doc, "#feature-bullets"),
		firstText(doc, "#productDescription"),
	)

	var images []string
	doc.Find("#altImages img, #imageBlock img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" || strings.Contains(src, "play-icon") {
			return
		}
		images = append(images, thumbnailToken.ReplaceAllString(src, "."))
	})

	if title == "" || price == "" {
		return product.RawFields{}, false
	}
	return product.RawFields{
		Title:       title,
		Price:       price,
		Description: description,
		Images:      images,
		Currency:    product.DefaultCurrency,
		Vendor:      "Amazon",
	}, true
}

func marketplacePrice(doc *goquery.Document) string {
	whole := strings.TrimRight(firstText(doc, ".a-price-whole"), ".,")
	fraction := firstText(doc, ".a-price-fraction")
	switch {
	case whole != "" && fraction != "":
		return whole + "." + fraction
	case whole != "":
		return whole
	}
	return firstText(doc, ".a-price .a-offscreen")
}
