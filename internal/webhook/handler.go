package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/yonox270/yonoox/internal/metrics"
)

// Header names set by Shopify on every delivery.
const (
	HeaderTopic      = "X-Shopify-Topic"
	HeaderHMAC       = "X-Shopify-Hmac-Sha256"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
)

// Topics the app subscribes to.
const (
	TopicCustomersDataRequest = "customers/data_request"
	TopicCustomersRedact      = "customers/redact"
	TopicShopRedact           = "shop/redact"
	TopicAppUninstalled       = "app/uninstalled"
)

const maxBodyBytes = 1 << 20

// Event is one verified delivery.
type Event struct {
	Topic      string
	ShopDomain string
	Payload    map[string]any
}

// TopicHandler reacts to one topic. A returned error yields a 500.
type TopicHandler func(ctx context.Context, event Event) error

// Handler verifies deliveries and dispatches them by topic.
type Handler struct {
	verifier     *Verifier
	topics       map[string]TopicHandler
	forcedTopic  string
	unauthorized string
	logger       *zap.Logger
}

// Option customizes a Handler.
type Option func(*Handler)

// WithTopicHandler registers or replaces the handler for topic.
func WithTopicHandler(topic string, fn TopicHandler) Option {
	return func(h *Handler) {
		h.topics[topic] = fn
	}
}

// NewHandler builds a Handler routing on the topic header.
func NewHandler(verifier *Verifier, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		verifier:     verifier,
		unauthorized: "Unauthorized",
		logger:       logger,
	}
	h.topics = map[string]TopicHandler{
		TopicCustomersDataRequest: h.logPrivacyRequest("customer data request"),
		TopicCustomersRedact:      h.logPrivacyRequest("customer redact"),
		TopicShopRedact:           h.logPrivacyRequest("shop redact"),
		TopicAppUninstalled:       h.logUninstall,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ForTopic returns a copy of h that ignores the topic header and always
// dispatches to topic.
func (h *Handler) ForTopic(topic string) *Handler {
	clone := *h
	clone.forcedTopic = topic
	clone.unauthorized = "Invalid HMAC"
	return &clone
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get(HeaderTopic)
	if h.forcedTopic != "" {
		topic = h.forcedTopic
	}
	log := h.logger.With(zap.String("topic", topic))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		metrics.ObserveWebhook(topic, metrics.OutcomeFailure)
		log.Error("read webhook body", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}

	if !h.verifier.Verify(body, r.Header.Get(HeaderHMAC)) {
		metrics.ObserveWebhook(topic, "unauthorized")
		log.Warn("invalid webhook signature")
		writeText(w, http.StatusUnauthorized, h.unauthorized)
		return
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		metrics.ObserveWebhook(topic, metrics.OutcomeFailure)
		log.Error("decode webhook payload", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}

	// Any JSON value is accepted; ids are only read from objects.
	payload, _ := decoded.(map[string]any)
	event := Event{Topic: topic, ShopDomain: r.Header.Get(HeaderShopDomain), Payload: payload}
	if err := h.dispatch(r.Context(), event); err != nil {
		metrics.ObserveWebhook(topic, metrics.OutcomeFailure)
		log.Error("webhook handler failed", zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}

	metrics.ObserveWebhook(topic, metrics.OutcomeSuccess)
	writeText(w, http.StatusOK, "OK")
}

func (h *Handler) dispatch(ctx context.Context, event Event) error {
	fn, ok := h.topics[event.Topic]
	if !ok {
		h.logger.Info("unknown webhook topic",
			zap.String("topic", event.Topic),
			zap.String("shop_domain", event.ShopDomain),
		)
		return nil
	}
	if err := fn(ctx, event); err != nil {
		return fmt.Errorf("topic %s: %w", event.Topic, err)
	}
	return nil
}

// logPrivacyRequest acknowledges a GDPR topic. Nothing is exported or
// erased because the service stores no customer data.
// TODO: erase or export records here once imports are persisted per shop.
func (h *Handler) logPrivacyRequest(kind string) TopicHandler {
	return func(_ context.Context, event Event) error {
		h.logger.Info("privacy webhook received",
			zap.String("kind", kind),
			zap.String("topic", event.Topic),
			zap.String("shop_domain", event.ShopDomain),
			zap.Any("shop_id", event.Payload["shop_id"]),
			zap.Any("customer_id", nestedID(event.Payload, "customer")),
		)
		return nil
	}
}

func (h *Handler) logUninstall(_ context.Context, event Event) error {
	h.logger.Info("app uninstalled",
		zap.String("shop_domain", event.ShopDomain),
		zap.Any("shop_id", event.Payload["id"]),
	)
	return nil
}

func nestedID(payload map[string]any, key string) any {
	if m, ok := payload[key].(map[string]any); ok {
		return m["id"]
	}
	return nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
