package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/importer"
	"github.com/yonox270/yonoox/internal/metrics"
	"github.com/yonox270/yonoox/internal/product"
	"github.com/yonox270/yonoox/internal/scraper"
)

// User-facing messages; the admin UI is French.
const (
	msgInvalidURL     = "URL invalide"
	msgInvalidJSON    = "JSON invalide"
	msgMissingProduct = "Produit manquant"
	msgSiteProtected  = "Site protégé. Utilisez le mode manuel."
	msgExtractFailed  = "Impossible d'extraire les données"
	msgManualHint     = "Site protégé. Utilisez le mode manuel en copiant le code source de la page."
	msgCreateFailed   = "Erreur création produit"
	msgMethodNotAllow = "Method not allowed"
	unexpectedPrefix  = "Erreur: "
)

const maxRequestBytes = 10 << 20

// ProductScraper extracts a product from a URL or pasted markup.
type ProductScraper interface {
	Scrape(ctx context.Context, rawURL, html string) (product.Product, error)
}

// ProductImporter creates a reviewed product in the shop.
type ProductImporter interface {
	Import(ctx context.Context, p product.Product) (importer.Result, error)
}

// Options carries the collaborators and settings of a Server.
type Options struct {
	Scraper        ProductScraper
	Importer       ProductImporter
	Webhooks       http.Handler
	RedactWebhook  http.Handler
	AllowedOrigins []string
	RequestTimeout time.Duration
	// Readiness reports optional integrations on /readyz.
	Readiness map[string]bool
	Logger    *zap.Logger
}

// Server wires HTTP handlers to the scrape and import pipelines.
type Server struct {
	router   chi.Router
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(corsMiddleware(opts.AllowedOrigins))
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(opts.RequestTimeout))

	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape", s.scrape)
		r.Post("/import", s.importProduct)
	})
	if opts.Webhooks != nil {
		r.Method(http.MethodPost, "/webhooks", opts.Webhooks)
	}
	if opts.RedactWebhook != nil {
		r.Method(http.MethodPost, "/webhooks/customers/redact", opts.RedactWebhook)
	}

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "integrations": s.opts.Readiness})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllow)
}

type scrapeRequest struct {
	URL  string `json:"url" validate:"required,http_url"`
	HTML string `json:"html"`
}

type scrapeResponse struct {
	Success bool            `json:"success"`
	Product product.Product `json:"product"`
}

type manualResponse struct {
	Error       string `json:"error"`
	NeedsManual bool   `json:"needsManual"`
	Message     string `json:"message,omitempty"`
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidURL)
		return
	}

	p, err := s.opts.Scraper.Scrape(r.Context(), req.URL, req.HTML)
	switch {
	case errors.Is(err, scraper.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, msgInvalidURL)
		return
	case errors.Is(err, scraper.ErrSiteProtected):
		s.logger.Warn("site protected", zap.String("url", req.URL), zap.Error(err))
		writeJSON(w, http.StatusForbidden, manualResponse{Error: msgSiteProtected, NeedsManual: true})
		return
	case err != nil:
		s.logger.Error("scrape failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, unexpectedPrefix+err.Error())
		return
	}

	if p.LowConfidence() {
		writeJSON(w, http.StatusUnprocessableEntity, manualResponse{
			Error:       msgExtractFailed,
			NeedsManual: true,
			Message:     msgManualHint,
		})
		return
	}
	writeJSON(w, http.StatusOK, scrapeResponse{Success: true, Product: p})
}

type importRequest struct {
	Product *product.Product `json:"product" validate:"required"`
}

type importErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

func (s *Server) importProduct(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingProduct)
		return
	}

	// The UI may have edited the record; enforce the same limits as a scrape.
	p := product.Normalize(product.RawFields(*req.Product))

	res, err := s.opts.Importer.Import(r.Context(), p)
	if err != nil {
		s.logger.Error("import failed", zap.String("title", p.Title), zap.Error(err))
		writeError(w, http.StatusInternalServerError, unexpectedPrefix+err.Error())
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, importErrorResponse{Error: msgCreateFailed, Details: res.Errors})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
