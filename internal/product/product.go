// Package product defines the canonical product record shared by the scrape and
// import pipelines, together with the normalization rules applied to every
// extraction result.
package product

// SentinelTitle marks an extraction that produced no usable title.
const SentinelTitle = "Produit"

// DefaultCurrency is used when a page does not advertise one.
const DefaultCurrency = "EUR"

// Limits enforced by Normalize.
const (
	MaxDescriptionRunes = 500
	MaxImages           = 5
)

// Product is the normalized, platform-agnostic record returned to the UI for
// review and later consumed by the importer.
type Product struct {
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Currency    string   `json:"currency"`
	Vendor      string   `json:"vendor"`
}

// LowConfidence reports whether the record carries the sentinel title, meaning
// the caller should ask the user for the page markup instead.
func (p Product) LowConfidence() bool {
	return p.Title == "" || p.Title == SentinelTitle
}

// RawFields is what a single extraction strategy produces before normalization.
type RawFields struct {
	Title       string
	Price       string
	Description string
	Images      []string
	Currency    string
	Vendor      string
}
