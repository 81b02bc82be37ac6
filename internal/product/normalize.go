package product

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize turns strategy output into a canonical Product.
func Normalize(raw RawFields) Product {
	price := SanitizePrice(raw.Price)
	if price == "" {
		price = "0"
	}
	currency := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return Product{
		Title:       strings.TrimSpace(raw.Title),
		Price:       price,
		Description: TruncateDescription(raw.Description),
		Images:      NormalizeImages(raw.Images),
		Currency:    currency,
		Vendor:      strings.TrimSpace(raw.Vendor),
	}
}

// SanitizePrice reduces a displayed price to digits with at most one '.'
// decimal separator. The last '.' or ',' is the decimal separator unless it is
// followed by exactly three digits after a non-zero integer part, in which case
// every separator is treated as digit grouping.
func SanitizePrice(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	kept := strings.TrimRight(b.String(), ".,")
	if kept == "" {
		return ""
	}

	last := strings.LastIndexAny(kept, ".,")
	if last < 0 {
		return kept
	}
	intPart := digitsOnly(kept[:last])
	fracPart := kept[last+1:]

	if len(fracPart) == 3 && strings.TrimLeft(intPart, "0") != "" {
		return intPart + fracPart
	}
	if intPart == "" {
		intPart = "0"
	}
	return intPart + "." + fracPart
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// TruncateDescription collapses whitespace and caps the text at
// MaxDescriptionRunes characters.
func TruncateDescription(raw string) string {
	text := strings.Join(strings.FieldsFunc(raw, unicode.IsSpace), " ")
	if utf8.RuneCountInString(text) <= MaxDescriptionRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxDescriptionRunes])
}

// NormalizeImages rewrites protocol-relative URLs to https, drops blanks and
// duplicates and keeps at most MaxImages entries in source order.
func NormalizeImages(raw []string) []string {
	images := make([]string, 0, MaxImages)
	seen := make(map[string]struct{}, len(raw))
	for _, src := range raw {
		src = AbsoluteImageURL(strings.TrimSpace(src))
		if src == "" {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		images = append(images, src)
		if len(images) == MaxImages {
			break
		}
	}
	return images
}

// AbsoluteImageURL turns "//host/x.jpg" into "https://host/x.jpg".
func AbsoluteImageURL(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}
