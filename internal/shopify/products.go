package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoProduct is returned when productCreate reports neither a product nor
// user errors.
var ErrNoProduct = errors.New("productCreate returned no product")

// ProductInput is the subset of ProductInput the importer sets.
type ProductInput struct {
	Title           string `json:"title"`
	DescriptionHTML string `json:"descriptionHtml"`
	Vendor          string `json:"vendor"`
	ProductType     string `json:"productType"`
}

// CreatedProduct identifies a product returned by productCreate.
type CreatedProduct struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	// DefaultVariantID is the variant Shopify creates with every product.
	DefaultVariantID string `json:"-"`
}

// FieldError is a user error attached to an input field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UnmarshalJSON accepts the API's field path array, joined with ".", or a
// plain string.
func (e *FieldError) UnmarshalJSON(data []byte) error {
	var wire struct {
		Field   json.RawMessage `json:"field"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	e.Message = wire.Message
	e.Field = ""
	if len(wire.Field) == 0 || string(wire.Field) == "null" {
		return nil
	}
	var path []string
	if err := json.Unmarshal(wire.Field, &path); err == nil {
		e.Field = strings.Join(path, ".")
		return nil
	}
	return json.Unmarshal(wire.Field, &e.Field)
}

// VariantPrice sets the price of one existing variant.
type VariantPrice struct {
	ID    string `json:"id"`
	Price string `json:"price"`
}

// MediaInput is an image attached by URL.
type MediaInput struct {
	OriginalSource   string `json:"originalSource"`
	MediaContentType string `json:"mediaContentType"`
}

// MediaContentTypeImage is the content type used for product photos.
const MediaContentTypeImage = "IMAGE"

const productCreateMutation = `mutation productCreate($input: ProductInput!) {
  productCreate(input: $input) {
    product {
      id
      title
      handle
      variants(first: 1) { nodes { id } }
    }
    userErrors { field message }
  }
}`

const variantsBulkUpdateMutation = `mutation productVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkUpdate(productId: $productId, variants: $variants) {
    productVariants { id price }
    userErrors { field message }
  }
}`

const createMediaMutation = `mutation productCreateMedia($productId: ID!, $media: [CreateMediaInput!]!) {
  productCreateMedia(productId: $productId, media: $media) {
    media { ... on MediaImage { id } }
    mediaUserErrors { field message }
  }
}`

// CreateProduct runs productCreate. User errors are returned, not wrapped in err.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (CreatedProduct, []FieldError, error) {
	var data struct {
		ProductCreate struct {
			Product *struct {
				ID       string `json:"id"`
				Title    string `json:"title"`
				Handle   string `json:"handle"`
				Variants struct {
					Nodes []struct {
						ID string `json:"id"`
					} `json:"nodes"`
				} `json:"variants"`
			} `json:"product"`
			UserErrors []FieldError `json:"userErrors"`
		} `json:"productCreate"`
	}
	if err := c.Do(ctx, productCreateMutation, map[string]any{"input": input}, &data); err != nil {
		return CreatedProduct{}, nil, err
	}

	result := data.ProductCreate
	if len(result.UserErrors) > 0 {
		return CreatedProduct{}, result.UserErrors, nil
	}
	if result.Product == nil || result.Product.ID == "" {
		return CreatedProduct{}, nil, ErrNoProduct
	}
	created := CreatedProduct{
		ID:     result.Product.ID,
		Title:  result.Product.Title,
		Handle: result.Product.Handle,
	}
	if nodes := result.Product.Variants.Nodes; len(nodes) > 0 {
		created.DefaultVariantID = nodes[0].ID
	}
	return created, nil, nil
}

// UpdateVariantPrices runs productVariantsBulkUpdate.
func (c *Client) UpdateVariantPrices(ctx context.Context, productID string, variants []VariantPrice) ([]FieldError, error) {
	var data struct {
		ProductVariantsBulkUpdate struct {
			UserErrors []FieldError `json:"userErrors"`
		} `json:"productVariantsBulkUpdate"`
	}
	vars := map[string]any{"productId": productID, "variants": variants}
	if err := c.Do(ctx, variantsBulkUpdateMutation, vars, &data); err != nil {
		return nil, err
	}
	return data.ProductVariantsBulkUpdate.UserErrors, nil
}

// CreateMedia runs productCreateMedia with every item in one call.
func (c *Client) CreateMedia(ctx context.Context, productID string, media []MediaInput) ([]FieldError, error) {
	var data struct {
		ProductCreateMedia struct {
			MediaUserErrors []FieldError `json:"mediaUserErrors"`
		} `json:"productCreateMedia"`
	}
	vars := map[string]any{"productId": productID, "media": media}
	if err := c.Do(ctx, createMediaMutation, vars, &data); err != nil {
		return nil, err
	}
	return data.ProductCreateMedia.MediaUserErrors, nil
}
