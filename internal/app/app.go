// Package app builds the long-lived services of the importer and runs the HTTP
// server, acting as the dependency injection container for the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/api"
	"github.com/yonox270/yonoox/internal/config"
	collyfetcher "github.com/yonox270/yonoox/internal/fetcher/colly"
	"github.com/yonox270/yonoox/internal/fetcher/detector"
	"github.com/yonox270/yonoox/internal/fetcher/proxy"
	"github.com/yonox270/yonoox/internal/importer"
	"github.com/yonox270/yonoox/internal/metrics"
	"github.com/yonox270/yonoox/internal/scraper"
	"github.com/yonox270/yonoox/internal/shopify"
	"github.com/yonox270/yonoox/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

// App holds the shared services built from one Config.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	scraper *scraper.Scraper
	server  *api.Server
}

// New wires fetchers, scraper, importer, webhook router and HTTP server.
func New(cfg config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	direct := collyfetcher.New(collyfetcher.Config{
		Timeout:    cfg.Fetch.Timeout,
		UserAgents: cfg.Fetch.UserAgents,
		Accept:     cfg.Fetch.Accept,
	})
	proxyTransport := collyfetcher.New(collyfetcher.Config{
		Timeout:    cfg.Proxy.Timeout,
		UserAgents: cfg.Fetch.UserAgents,
		Accept:     cfg.Fetch.Accept,
	})
	viaProxy := proxy.New(proxy.Config{BaseURL: cfg.Proxy.BaseURL, APIKey: cfg.Proxy.APIKey}, proxyTransport)

	fetcher := scraper.NewFallbackFetcher(direct, viaProxy, logger.Named("fetcher"),
		scraper.WithChallengeDetector(detector.NewHeuristic(cfg.Fetch.ChallengeBodyThreshold)))
	scr := scraper.New(fetcher, logger.Named("scraper"))

	client := shopify.NewClient(shopify.Config{
		ShopDomain:  cfg.Shopify.ShopDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
	})
	imp := importer.New(client, importer.Config{
		DefaultVendor: cfg.Import.DefaultVendor,
		ProductType:   cfg.Import.ProductType,
	}, logger.Named("importer"))

	hooks := webhook.NewHandler(webhook.NewVerifier(cfg.Shopify.APISecret), logger.Named("webhook"))

	server := api.NewServer(api.Options{
		Scraper:        scr,
		Importer:       imp,
		Webhooks:       hooks,
		RedactWebhook:  hooks.ForTopic(webhook.TopicCustomersRedact),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Readiness: map[string]bool{
			"proxy":   cfg.ProxyEnabled(),
			"shopify": cfg.Shopify.AccessToken != "",
			"webhook": cfg.Shopify.APISecret != "",
		},
		Logger: logger.Named("api"),
	})

	if !cfg.ProxyEnabled() {
		logger.Warn("scraping proxy api key not set, fallback fetch disabled")
	}
	if cfg.Shopify.APISecret == "" {
		logger.Warn("shopify api secret not set, every webhook will be rejected")
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		scraper: scr,
		server:  server,
	}
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Scraper returns the scrape pipeline.
func (a *App) Scraper() *scraper.Scraper {
	return a.scraper
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Serve listens on the configured port until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then shuts down gracefully.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

// Close flushes buffered log entries.
func (a *App) Close() {
	_ = a.logger.Sync()
}
