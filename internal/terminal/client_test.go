package terminal

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/shopgateway/internal/config"
	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(config.TerminalConfig{
		BaseURL:     baseURL,
		BearerToken: "trm_test_token",
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		RetryBase:   time.Millisecond,
		RetryMax:    5 * time.Millisecond,
	}, zaptest.NewLogger(t))
}

func requireTransportError(t *testing.T, err error) *errors.TransportError {
	t.Helper()
	var transportErr *errors.TransportError
	require.True(t, stderrors.As(err, &transportErr), "expected TransportError, got %v", err)
	return transportErr
}

func TestClient_Call_DecodesDataEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/product/prd_123", r.URL.Path)
		assert.Equal(t, "Bearer trm_test_token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"data":{"id":"prd_123","name":"Cron","description":"Dark roast","variants":[{"id":"var_1","name":"12oz","price":2200}]}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/")

	var product domain.Product
	err := client.Call(context.Background(), http.MethodGet, ItemPath(PathProducts, "prd_123"), nil, &product)
	require.NoError(t, err)
	assert.Equal(t, "Cron", product.Name)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, int64(2200), product.Variants[0].Price)
}

func TestClient_Call_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"productVariantID":"var_1","quantity":2}`, string(body))
		_, _ = io.WriteString(w, `{"data":{"items":[],"subtotal":0,"amount":{"subtotal":0}}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	body := map[string]interface{}{"productVariantID": "var_1", "quantity": 2}

	var cart domain.Cart
	require.NoError(t, client.Call(context.Background(), http.MethodPut, PathCartItem, body, &cart))
}

func TestClient_Call_RetriesGetOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"data":[]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var products []domain.Product
	require.NoError(t, client.Call(context.Background(), http.MethodGet, PathProducts, nil, &products))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Call_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Call(context.Background(), http.MethodGet, PathCart, nil, &domain.Cart{})
	transportErr := requireTransportError(t, err)
	assert.Equal(t, errors.ReasonStatus, transportErr.Reason)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Call_DoesNotRetryMutations(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Call(context.Background(), http.MethodPost, PathCartConvert, nil, &domain.Order{})
	transportErr := requireTransportError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Call_RetriesMutationWithIdempotencyKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "order-key-1", r.Header.Get(IdempotencyHeader))
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"data":"ord_123"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := WithIdempotencyKey(context.Background(), "order-key-1")

	var orderID string
	require.NoError(t, client.Call(ctx, http.MethodPost, PathOrders, map[string]string{}, &orderID))
	assert.Equal(t, "ord_123", orderID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Call_SurfacesUpstreamMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"validation","message":"Invalid product variant"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Call(context.Background(), http.MethodPut, PathCartItem, map[string]int{"quantity": 1}, nil)
	transportErr := requireTransportError(t, err)
	assert.Equal(t, http.StatusBadRequest, transportErr.StatusCode)
	assert.Equal(t, "Invalid product variant", transportErr.Message)
}

func TestClient_Call_DecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>maintenance</html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Call(context.Background(), http.MethodGet, PathProfile, nil, &domain.Profile{})
	transportErr := requireTransportError(t, err)
	assert.Equal(t, errors.ReasonDecode, transportErr.Reason)
}

func TestClient_Call_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := client.Call(ctx, http.MethodGet, PathCart, nil, &domain.Cart{})
	transportErr := requireTransportError(t, err)
	assert.Equal(t, errors.ReasonCancelled, transportErr.Reason)
}

func TestClient_Call_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(config.TerminalConfig{
		BaseURL:     server.URL,
		BearerToken: "trm_test_token",
		Timeout:     25 * time.Millisecond,
		MaxAttempts: 1,
	}, zaptest.NewLogger(t))

	err := client.Call(context.Background(), http.MethodGet, PathCart, nil, &domain.Cart{})
	transportErr := requireTransportError(t, err)
	assert.Equal(t, errors.ReasonTimeout, transportErr.Reason)
}

func TestClient_Call_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newTestClient(t, url)

	err := client.Call(context.Background(), http.MethodGet, PathProducts, nil, &[]domain.Product{})
	transportErr := requireTransportError(t, err)
	assert.Equal(t, errors.ReasonNetwork, transportErr.Reason)
	assert.Equal(t, errors.KindTransport, errors.KindOf(err))
}

func TestRetryPolicy_Backoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	assert.Equal(t, 200*time.Millisecond, policy.Backoff(1))
	assert.Equal(t, 400*time.Millisecond, policy.Backoff(2))
	assert.Equal(t, 800*time.Millisecond, policy.Backoff(3))
	assert.Equal(t, time.Second, policy.Backoff(4))
	assert.Equal(t, time.Second, policy.Backoff(40))
}

func TestRetryPolicy_JitterIsBounded(t *testing.T) {
	policy := NewRetryPolicy(3, 100*time.Millisecond, time.Second)

	for i := 0; i < 50; i++ {
		delay := policy.Backoff(1)
		assert.GreaterOrEqual(t, delay, 200*time.Millisecond)
		assert.Less(t, delay, 250*time.Millisecond)
	}
}

func TestItemPath_EscapesIDs(t *testing.T) {
	assert.Equal(t, "/address/shp_1", ItemPath(PathAddresses, "shp_1"))
	assert.Equal(t, "/card/a%2Fb", ItemPath(PathCards, "a/b"))
}
