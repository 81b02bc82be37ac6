package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "shpss_test"

func signedRequest(t *testing.T, topic, body, signature string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks", strings.NewReader(body))
	req.Header.Set(HeaderTopic, topic)
	req.Header.Set(HeaderShopDomain, "demo.myshopify.com")
	if signature == "" {
		signature = NewVerifier(testSecret).Sign([]byte(body))
	}
	req.Header.Set(HeaderHMAC, signature)
	return req
}

func TestHandlerRoutesKnownTopics(t *testing.T) {
	t.Parallel()

	for _, topic := range []string{
		TopicCustomersDataRequest, TopicCustomersRedact, TopicShopRedact, TopicAppUninstalled, "orders/create",
	} {
		topic := topic
		t.Run(topic, func(t *testing.T) {
			t.Parallel()
			core, logs := observer.New(zap.InfoLevel)
			h := NewHandler(NewVerifier(testSecret), zap.New(core))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, signedRequest(t, topic, `{"shop_id":1,"customer":{"id":7}}`, ""))

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "OK", rec.Body.String())
			require.Equal(t, 1, logs.Len())
		})
	}
}

func TestHandlerCustomersRedactOnlyLogs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	h := NewHandler(NewVerifier(testSecret), zap.New(core))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, TopicCustomersRedact, `{"shop_id":1,"customer":{"id":7}}`, ""))

	require.Equal(t, http.StatusOK, rec.Code)
	entries := logs.FilterMessage("privacy webhook received").All()
	require.Len(t, entries, 1)
	require.Equal(t, "customer redact", entries[0].ContextMap()["kind"])
}

func TestHandlerRejectsBadSignatureWithoutParsing(t *testing.T) {
	t.Parallel()

	called := false
	h := NewHandler(NewVerifier(testSecret), nil, WithTopicHandler(TopicShopRedact, func(context.Context, Event) error {
		called = true
		return nil
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, TopicShopRedact, `not even json`, "bm9wZQ=="))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Unauthorized", rec.Body.String())
	require.False(t, called)
}

func TestHandlerMalformedJSON(t *testing.T) {
	t.Parallel()

	h := NewHandler(NewVerifier(testSecret), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, TopicShopRedact, `{"shop_id":`, ""))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Error", rec.Body.String())
}

func TestHandlerAcceptsNonObjectJSON(t *testing.T) {
	t.Parallel()

	h := NewHandler(NewVerifier(testSecret), nil)
	for _, body := range []string{`[]`, `"x"`, `null`, `42`} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, signedRequest(t, TopicCustomersRedact, body, ""))

		require.Equal(t, http.StatusOK, rec.Code, body)
		require.Equal(t, "OK", rec.Body.String())
	}
}

func TestHandlerTopicError(t *testing.T) {
	t.Parallel()

	h := NewHandler(NewVerifier(testSecret), nil, WithTopicHandler(TopicAppUninstalled, func(context.Context, Event) error {
		return errors.New("cleanup failed")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, TopicAppUninstalled, `{}`, ""))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestForTopicIgnoresHeader(t *testing.T) {
	t.Parallel()

	var got Event
	h := NewHandler(NewVerifier(testSecret), nil, WithTopicHandler(TopicCustomersRedact, func(_ context.Context, e Event) error {
		got = e
		return nil
	})).ForTopic(TopicCustomersRedact)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, "something/else", `{"customer":{"id":7}}`, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, TopicCustomersRedact, got.Topic)
	require.Equal(t, "demo.myshopify.com", got.ShopDomain)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, signedRequest(t, "", `{}`, "bm9wZQ=="))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid HMAC", rec.Body.String())
}
