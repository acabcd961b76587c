package operations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/shopgateway/internal/config"
	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/internal/service"
	"github.com/jafarshop/shopgateway/internal/terminal"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// fakeShop serves canned upstream responses keyed by "METHOD /path" and
// counts every request it receives.
type fakeShop struct {
	server *httptest.Server
	calls  atomic.Int32
	routes map[string]string
}

func newFakeShop(t *testing.T, routes map[string]string) *fakeShop {
	t.Helper()
	shop := &fakeShop{routes: routes}
	shop.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shop.calls.Add(1)
		body, ok := shop.routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":` + body + `}`))
	}))
	t.Cleanup(shop.server.Close)
	return shop
}

func newTestCatalog(t *testing.T, baseURL string, opts ...Option) *Registry {
	t.Helper()
	logger := zaptest.NewLogger(t)
	client := terminal.NewClient(config.TerminalConfig{
		BaseURL:     baseURL,
		BearerToken: "test-token",
		Timeout:     2 * time.Second,
		MaxAttempts: 1,
		RetryBase:   time.Millisecond,
		RetryMax:    time.Millisecond,
	}, logger)

	registry, err := NewCatalog(service.NewServices(client, logger), logger, opts...)
	require.NoError(t, err)
	return registry
}

func TestCatalog_Contents(t *testing.T) {
	registry := newTestCatalog(t, "http://127.0.0.1:1")

	ops := registry.Operations()
	assert.Len(t, ops, 19)

	var queries int
	for _, op := range ops {
		assert.True(t, json.Valid(op.InputSchema), op.Name)
		if op.Kind == domain.OperationQuery {
			queries++
		}
	}
	assert.Equal(t, 3, queries)

	assert.Len(t, registry.Resources(), 8)
	assert.Len(t, registry.Prompts(), 5)
}

func TestInvoke_NonPositiveQuantityMakesNoUpstreamCalls(t *testing.T) {
	shop := newFakeShop(t, map[string]string{})
	registry := newTestCatalog(t, shop.server.URL)
	ctx := context.Background()

	subscription := func(quantity int) map[string]any {
		return map[string]any{
			"productVariantID": "var_1",
			"quantity":         quantity,
			"addressID":        "shp_1",
			"cardID":           "crd_1",
			"schedule":         map[string]any{"type": "fixed"},
		}
	}

	tests := []struct {
		name string
		op   string
		args map[string]any
	}{
		{"add-to-cart zero", "add-to-cart", map[string]any{"productVariantID": "var_1", "quantity": 0}},
		{"add-to-cart negative", "add-to-cart", map[string]any{"productVariantID": "var_1", "quantity": -2}},
		{"add-to-cart fractional", "add-to-cart", map[string]any{"productVariantID": "var_1", "quantity": 1.5}},
		{"create-subscription zero", "create-subscription", subscription(0)},
		{"create-subscription negative", "create-subscription", subscription(-1)},
		{"create-order zero", "create-order", map[string]any{
			"variants":  map[string]any{"var_1": 0},
			"addressID": "shp_1",
			"cardID":    "crd_1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := registry.Invoke(ctx, tt.op, tt.args)
			assert.True(t, res.IsError)
			assert.Equal(t, errors.KindValidation, res.ErrorKind)
			assert.Equal(t, tt.op, res.Operation)
		})
	}

	assert.Equal(t, int32(0), shop.calls.Load())
}

func TestInvoke_ValidationFailures(t *testing.T) {
	shop := newFakeShop(t, map[string]string{})
	registry := newTestCatalog(t, shop.server.URL)
	ctx := context.Background()

	tests := []struct {
		name     string
		op       string
		args     map[string]any
		contains string
	}{
		{"missing required", "get-product-details", map[string]any{}, "productId"},
		{"wrong type", "add-to-cart", map[string]any{"productVariantID": "var_1", "quantity": "two"}, "quantity"},
		{"unknown field", "clear-cart", map[string]any{"force": true}, "force"},
		{"country too long", "create-address", map[string]any{
			"name": "Home", "street1": "1 Main St", "city": "Austin", "country": "USA", "zip": "78701",
		}, "country"},
		{"bad email", "update-profile", map[string]any{"email": "nope"}, "email"},
		{"unknown schedule", "create-subscription", map[string]any{
			"productVariantID": "var_1", "quantity": 1, "addressID": "shp_1", "cardID": "crd_1",
			"schedule": map[string]any{"type": "monthly"},
		}, "schedule.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := registry.Invoke(ctx, tt.op, tt.args)
			require.True(t, res.IsError)
			assert.Equal(t, errors.KindValidation, res.ErrorKind)
			assert.Contains(t, res.Text(), tt.contains)
			assert.True(t, strings.HasPrefix(res.Text(), "Error "))
		})
	}

	assert.Equal(t, int32(0), shop.calls.Load())
}

func TestInvoke_CreateSubscriptionSchedule(t *testing.T) {
	shop := newFakeShop(t, map[string]string{"POST /subscription": `"sub_1"`})
	registry := newTestCatalog(t, shop.server.URL)
	ctx := context.Background()

	args := func(schedule map[string]any) map[string]any {
		return map[string]any{
			"productVariantID": "var_1",
			"quantity":         1,
			"addressID":        "shp_1",
			"cardID":           "crd_1",
			"schedule":         schedule,
		}
	}

	t.Run("weekly without interval", func(t *testing.T) {
		res := registry.Invoke(ctx, "create-subscription", args(map[string]any{"type": "weekly"}))
		require.True(t, res.IsError)
		assert.Equal(t, errors.KindValidation, res.ErrorKind)
		assert.Contains(t, res.Text(), "schedule.interval")
		assert.Equal(t, int32(0), shop.calls.Load())
	})

	t.Run("fixed without interval", func(t *testing.T) {
		res := registry.Invoke(ctx, "create-subscription", args(map[string]any{"type": "fixed"}))
		require.False(t, res.IsError, res.Text())
		assert.Equal(t, "Subscription created successfully!", res.Text())
		assert.Equal(t, int32(1), shop.calls.Load())
	})

	t.Run("weekly with interval", func(t *testing.T) {
		res := registry.Invoke(ctx, "create-subscription", args(map[string]any{"type": "weekly", "interval": 2}))
		require.False(t, res.IsError, res.Text())
		assert.Equal(t, int32(2), shop.calls.Load())
	})
}

func TestQueries_WithoutConnectivity(t *testing.T) {
	// Reserve an address, then close it so connections are refused
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	registry := newTestCatalog(t, deadURL)
	ctx := context.Background()

	for _, op := range registry.Operations() {
		if op.Kind != domain.OperationQuery {
			continue
		}
		t.Run(op.Name, func(t *testing.T) {
			args := map[string]any{}
			if op.Name == "get-product-details" {
				args["productId"] = "prd_1"
			}

			var res Result
			require.NotPanics(t, func() { res = registry.Invoke(ctx, op.Name, args) })
			assert.True(t, res.IsError)
			assert.Equal(t, errors.KindTransport, res.ErrorKind)
		})
	}

	for _, info := range registry.Resources() {
		t.Run(info.Name, func(t *testing.T) {
			uri := strings.ReplaceAll(info.URITemplate, "{id}", "prd_1")

			var res Result
			require.NotPanics(t, func() { res = registry.ReadResource(ctx, uri) })
			assert.True(t, res.IsError)
			assert.Equal(t, errors.KindTransport, res.ErrorKind)
			assert.Equal(t, uri, res.Content[0].URI)
		})
	}
}

func TestInvoke_Checkout(t *testing.T) {
	shop := newFakeShop(t, map[string]string{
		"POST /cart/convert": `{
			"id":"ord_1",
			"shipping":{"name":"Ada","street1":"1 Main St","city":"Austin","country":"US","zip":"78701"},
			"amount":{"subtotal":1000,"shipping":500},
			"items":[{"id":"itm_1","amount":1000,"quantity":1,"productVariantID":"var_1"}]
		}`,
	})
	registry := newTestCatalog(t, shop.server.URL)

	res := registry.Invoke(context.Background(), "checkout", nil)
	require.False(t, res.IsError, res.Text())
	assert.Contains(t, res.Text(), "Order ID: ord_1")
	assert.Contains(t, res.Text(), "Total: $15.00")
}

func TestReadResource_Cart(t *testing.T) {
	shop := newFakeShop(t, map[string]string{
		"GET /cart": `{
			"items":[
				{"id":"itm_1","productVariantID":"var_1","quantity":2,"subtotal":500},
				{"id":"itm_2","productVariantID":"var_2","quantity":1,"subtotal":300}
			],
			"subtotal":800,
			"amount":{"subtotal":800,"shipping":200}
		}`,
	})
	registry := newTestCatalog(t, shop.server.URL)

	res := registry.ReadResource(context.Background(), "terminal://cart")
	require.False(t, res.IsError, res.Text())
	assert.Equal(t, "cart", res.Operation)
	assert.Contains(t, res.Text(), "Subtotal: $8.00")
	assert.Contains(t, res.Text(), "Total: $10.00")
	assert.Equal(t, "terminal://cart", res.Content[0].URI)
}

func TestReadResource_ProductTemplate(t *testing.T) {
	shop := newFakeShop(t, map[string]string{
		"GET /product/prd_1": `{"id":"prd_1","name":"Cron","description":"Dark","variants":[{"id":"var_1","name":"12oz","price":2200}]}`,
	})
	registry := newTestCatalog(t, shop.server.URL)

	res := registry.ReadResource(context.Background(), "terminal://product/prd_1")
	require.False(t, res.IsError, res.Text())
	assert.Contains(t, res.Text(), "# Cron")
	assert.Contains(t, res.Text(), "$22.00")
}

func TestInvoke_MalformedPayloadIsFormatError(t *testing.T) {
	shop := newFakeShop(t, map[string]string{
		"GET /product/prd_1": `{"id":"prd_1","description":"no name"}`,
	})
	registry := newTestCatalog(t, shop.server.URL)

	res := registry.Invoke(context.Background(), "get-product-details", map[string]any{"productId": "prd_1"})
	require.True(t, res.IsError)
	assert.Equal(t, errors.KindFormat, res.ErrorKind)
}

func TestNotFound(t *testing.T) {
	registry := newTestCatalog(t, "http://127.0.0.1:1")
	ctx := context.Background()

	res := registry.Invoke(ctx, "teleport-coffee", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, errors.KindNotFound, res.ErrorKind)

	res = registry.ReadResource(ctx, "terminal://nowhere")
	assert.True(t, res.IsError)
	assert.Equal(t, errors.KindNotFound, res.ErrorKind)

	res = registry.ReadResource(ctx, "not a uri")
	assert.Equal(t, errors.KindNotFound, res.ErrorKind)

	res = registry.GetPrompt(ctx, "brew", nil)
	assert.Equal(t, errors.KindNotFound, res.ErrorKind)
}

func TestGetPrompt(t *testing.T) {
	registry := newTestCatalog(t, "http://127.0.0.1:1")
	ctx := context.Background()

	res := registry.GetPrompt(ctx, "browse-products", map[string]string{"searchTerm": "espresso"})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "user", res.Content[0].Role)
	assert.Contains(t, res.Text(), `"espresso"`)

	res = registry.GetPrompt(ctx, "place-order", nil)
	require.False(t, res.IsError)
	assert.Contains(t, res.Text(), "select products")
}

func TestInvoke_RecoversFromPanics(t *testing.T) {
	registry := NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, registry.Register(Operation{
		Name:   "explode",
		Kind:   domain.OperationQuery,
		Action: "exploding",
		Handler: func(context.Context, json.RawMessage) (string, error) {
			panic("boom")
		},
	}))

	var res Result
	require.NotPanics(t, func() { res = registry.Invoke(context.Background(), "explode", nil) })
	assert.True(t, res.IsError)
	assert.Equal(t, errors.KindInternal, res.ErrorKind)
	assert.Equal(t, "Error exploding: internal error", res.Text())
}

func TestRegister_Rejects(t *testing.T) {
	registry := NewRegistry(zaptest.NewLogger(t))
	handler := func(context.Context, json.RawMessage) (string, error) { return "", nil }

	assert.Error(t, registry.Register(Operation{Kind: domain.OperationQuery, Handler: handler}))
	assert.Error(t, registry.Register(Operation{Name: "p", Kind: domain.OperationPrompt, Handler: handler}))
	assert.Error(t, registry.Register(Operation{Name: "bad", Kind: domain.OperationQuery, Handler: handler, Schema: `{"type":`}))

	require.NoError(t, registry.Register(Operation{Name: "ok", Kind: domain.OperationQuery, Handler: handler}))
	assert.Error(t, registry.Register(Operation{Name: "ok", Kind: domain.OperationQuery, Handler: handler}))
}

type memoryRecorder struct {
	mu          sync.Mutex
	invocations []*domain.Invocation
	err         error
}

func (m *memoryRecorder) Record(_ context.Context, inv *domain.Invocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invocations = append(m.invocations, inv)
	return m.err
}

func TestInvoke_RecordsInvocations(t *testing.T) {
	shop := newFakeShop(t, map[string]string{"DELETE /cart": `{}`})
	recorder := &memoryRecorder{}
	registry := newTestCatalog(t, shop.server.URL, WithRecorder(recorder))

	keyID := uuid.New()
	ctx := WithGatewayKeyID(context.Background(), keyID)

	res := registry.Invoke(ctx, "clear-cart", nil)
	require.False(t, res.IsError, res.Text())

	res = registry.Invoke(ctx, "add-to-cart", map[string]any{"productVariantID": "var_1", "quantity": 0})
	require.True(t, res.IsError)

	require.Len(t, recorder.invocations, 2)

	first := recorder.invocations[0]
	assert.Equal(t, "clear-cart", first.Operation)
	assert.Equal(t, domain.OperationCommand, first.Kind)
	assert.False(t, first.IsError)
	require.NotNil(t, first.GatewayKeyID)
	assert.Equal(t, keyID, *first.GatewayKeyID)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second := recorder.invocations[1]
	assert.True(t, second.IsError)
	assert.Equal(t, string(errors.KindValidation), second.ErrorKind)
}

func TestRecorder_UnmatchedLookupsUseFixedNames(t *testing.T) {
	recorder := &memoryRecorder{}
	registry := newTestCatalog(t, "http://127.0.0.1:1", WithRecorder(recorder))
	ctx := context.Background()

	uri := "terminal://" + strings.Repeat("x", 4096)
	res := registry.ReadResource(ctx, uri)
	require.True(t, res.IsError)
	assert.Equal(t, errors.KindNotFound, res.ErrorKind)
	assert.Contains(t, res.Text(), uri)

	registry.Invoke(ctx, "teleport-coffee", nil)
	registry.GetPrompt(ctx, "brew", nil)

	require.Len(t, recorder.invocations, 3)
	assert.Equal(t, "unknown-resource", recorder.invocations[0].Operation)
	assert.Equal(t, domain.OperationResource, recorder.invocations[0].Kind)
	assert.Equal(t, "unknown-operation", recorder.invocations[1].Operation)
	assert.Equal(t, "unknown-prompt", recorder.invocations[2].Operation)
	for _, inv := range recorder.invocations {
		assert.True(t, inv.IsError)
		assert.Equal(t, string(errors.KindNotFound), inv.ErrorKind)
	}
}

func TestInvoke_RecorderFailureDoesNotChangeResult(t *testing.T) {
	shop := newFakeShop(t, map[string]string{"DELETE /cart": `{}`})
	recorder := &memoryRecorder{err: assert.AnError}
	registry := newTestCatalog(t, shop.server.URL, WithRecorder(recorder))

	res := registry.Invoke(context.Background(), "clear-cart", nil)
	assert.False(t, res.IsError)
	assert.Equal(t, "Your cart has been cleared successfully.", res.Text())
}
