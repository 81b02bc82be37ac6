// Package importer creates a Shopify product from a canonical product record.
package importer

import (
	"context"
	"fmt"
	"html"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/metrics"
	"github.com/yonox270/yonoox/internal/product"
	"github.com/yonox270/yonoox/internal/shopify"
)

// Import step labels used in logs and metrics.
const (
	StepCreate  = "product_create"
	StepVariant = "variant_price"
	StepMedia   = "media"
)

// Executor issues the remote mutations. *shopify.Client implements it.
type Executor interface {
	CreateProduct(ctx context.Context, input shopify.ProductInput) (shopify.CreatedProduct, []shopify.FieldError, error)
	UpdateVariantPrices(ctx context.Context, productID string, variants []shopify.VariantPrice) ([]shopify.FieldError, error)
	CreateMedia(ctx context.Context, productID string, media []shopify.MediaInput) ([]shopify.FieldError, error)
}

// Config sets the labels written on imported products.
type Config struct {
	DefaultVendor string
	ProductType   string
}

// Result is the outcome of one import.
type Result struct {
	Success bool                    `json:"success"`
	Product *shopify.CreatedProduct `json:"product,omitempty"`
	Errors  []shopify.FieldError    `json:"errors,omitempty"`
}

// Importer maps products onto the Admin API mutations.
type Importer struct {
	exec   Executor
	cfg    Config
	logger *zap.Logger
}

// New builds an Importer.
func New(exec Executor, cfg Config, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{exec: exec, cfg: cfg, logger: logger}
}

// Import creates the product, sets its price and attaches its images. Only the
// creation step decides the result; later failures are logged and counted.
// Calling Import twice creates two products.
func (im *Importer) Import(ctx context.Context, p product.Product) (Result, error) {
	vendor := p.Vendor
	if vendor == "" {
		vendor = im.cfg.DefaultVendor
	}
	created, userErrs, err := im.exec.CreateProduct(ctx, shopify.ProductInput{
		Title:           p.Title,
		DescriptionHTML: html.EscapeString(p.Description),
		Vendor:          vendor,
		ProductType:     im.cfg.ProductType,
	})
	if err != nil {
		metrics.ObserveImportStep(StepCreate, metrics.OutcomeFailure)
		return Result{}, fmt.Errorf("create product: %w", err)
	}
	if len(userErrs) > 0 {
		metrics.ObserveImportStep(StepCreate, "rejected")
		im.logger.Info("product creation rejected",
			zap.String("title", p.Title),
			zap.Any("user_errors", userErrs),
		)
		return Result{Success: false, Errors: userErrs}, nil
	}
	metrics.ObserveImportStep(StepCreate, metrics.OutcomeSuccess)

	log := im.logger.With(zap.String("product_id", created.ID))
	im.setPrice(ctx, log, created, p.Price)
	im.attachMedia(ctx, log, created.ID, p.Images)

	log.Info("product imported", zap.String("handle", created.Handle))
	return Result{Success: true, Product: &created}, nil
}

func (im *Importer) setPrice(ctx context.Context, log *zap.Logger, created shopify.CreatedProduct, price string) {
	if created.DefaultVariantID == "" {
		metrics.ObserveImportStep(StepVariant, "skipped")
		log.Warn("no default variant returned, price not set")
		return
	}
	variants := []shopify.VariantPrice{{ID: created.DefaultVariantID, Price: FormatPrice(price)}}
	userErrs, err := im.exec.UpdateVariantPrices(ctx, created.ID, variants)
	im.logStep(log, StepVariant, userErrs, err)
}

func (im *Importer) attachMedia(ctx context.Context, log *zap.Logger, productID string, images []string) {
	if len(images) == 0 {
		return
	}
	media := make([]shopify.MediaInput, 0, len(images))
	for _, src := range images {
		media = append(media, shopify.MediaInput{
			OriginalSource:   src,
			MediaContentType: shopify.MediaContentTypeImage,
		})
	}
	userErrs, err := im.exec.CreateMedia(ctx, productID, media)
	im.logStep(log, StepMedia, userErrs, err)
}

func (im *Importer) logStep(log *zap.Logger, step string, userErrs []shopify.FieldError, err error) {
	switch {
	case err != nil:
		metrics.ObserveImportStep(step, metrics.OutcomeFailure)
		log.Warn("import step failed", zap.String("step", step), zap.Error(err))
	case len(userErrs) > 0:
		metrics.ObserveImportStep(step, "rejected")
		log.Warn("import step rejected", zap.String("step", step), zap.Any("user_errors", userErrs))
	default:
		metrics.ObserveImportStep(step, metrics.OutcomeSuccess)
	}
}

// FormatPrice renders a displayed or sanitized price with two decimals.
// Unparseable input yields "0.00".
func FormatPrice(raw string) string {
	d, err := decimal.NewFromString(product.SanitizePrice(raw))
	if err != nil {
		return decimal.Zero.StringFixed(2)
	}
	return d.StringFixed(2)
}
