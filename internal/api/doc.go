// Package api hosts the HTTP server, middleware, and handlers used by the
// embedded admin UI and by Shopify. Notable routes:
//   - POST /api/scrape extracts a product from a URL or pasted markup.
//   - POST /api/import creates the reviewed product in the shop.
//   - POST /webhooks and /webhooks/customers/redact receive signed deliveries.
//   - GET /healthz / readyz for probes.
//   - GET /metrics for Prometheus scraping.
package api
