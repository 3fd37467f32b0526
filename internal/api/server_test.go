package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woosync/internal/config"
	"woosync/internal/connectors/woocommerce"
	"woosync/internal/database"
	"woosync/internal/logger"
	"woosync/internal/models"
	"woosync/internal/services/woocommerce/woocommercetest"
)

const webhookSecret = "whsec"

type testEnv struct {
	router *gin.Engine
	store  *woocommercetest.Server
}

func newTestEnv(t *testing.T, withRuns bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := woocommercetest.NewServer(t)
	cfg := &config.Config{
		StoreURL:        store.URL,
		APIPath:         woocommercetest.APIPath,
		ConsumerKey:     "ck_test",
		ConsumerSecret:  "cs_test",
		RequestTimeout:  5 * time.Second,
		WebhookSecret:   webhookSecret,
		SyncConcurrency: 3,
		SyncDelay:       0,
		Env:             "test",
	}

	var server *Server
	if withRuns {
		db, err := database.New("sqlite://" + filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		repo := database.NewRunRepository(db.DB)
		conn := woocommerce.NewFromConfig(cfg, logger.Nop(), repo)
		server = New(cfg, logger.Nop(), conn, repo)
	} else {
		conn := woocommerce.NewFromConfig(cfg, logger.Nop(), nil)
		server = New(cfg, logger.Nop(), conn, nil)
	}

	return &testEnv{router: server.GetRouter(), store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope.Data
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestProductRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodPost, "/api/v1/products", map[string]any{"name": "Mug", "sku": "MUG-1", "regular_price": "9.50"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Product](t, w)
	require.NotZero(t, created.ID)
	path := "/api/v1/products/" + strconv.FormatInt(created.ID, 10)

	w = env.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MUG-1", decode[models.Product](t, w).SKU)

	w = env.do(t, http.MethodGet, "/api/v1/products?sku=MUG-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Product](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/v1/products?sku=NOPE", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Product](t, w))

	w = env.do(t, http.MethodPut, path, map[string]any{"name": "Big Mug", "sku": "MUG-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Big Mug", decode[models.Product](t, w).Name)

	w = env.do(t, http.MethodGet, "/api/v1/products?page=1&per_page=10", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = env.do(t, http.MethodDelete, path+"?force=true", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductRouteErrors(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/api/v1/products/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/products", map[string]any{"sku": "NO-NAME"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"name"`)
	assert.Zero(t, env.store.Count("POST /products"))

	env.store.FailSKU("DOWN", http.StatusInternalServerError)
	w = env.do(t, http.MethodPost, "/api/v1/sync/product", map[string]any{"name": "X", "sku": "DOWN"}, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"store_status":500`)

	w = env.do(t, http.MethodPost, "/api/v1/products", []byte("{"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncBatchAndRunHistory(t *testing.T) {
	env := newTestEnv(t, true)
	existing := env.store.Seed(models.Product{Name: "Old", SKU: "B"})

	w := env.do(t, http.MethodPost, "/api/v1/sync", map[string]any{
		"products": []map[string]any{
			{"name": "A", "sku": "A", "regular_price": "1.00"},
			{"name": "B", "sku": "B"},
			{"sku": "C"},
		},
		"concurrency": 2,
		"delay_ms":    0,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decode[woocommerce.SyncReport](t, w)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{report.Outcomes[0].SKU, report.Outcomes[1].SKU, report.Outcomes[2].SKU})
	assert.True(t, report.Outcomes[0].Success)
	assert.Equal(t, existing.ID, report.Outcomes[1].Product.ID)
	assert.False(t, report.Outcomes[2].Success)
	assert.Equal(t, 2, report.Summary.Succeeded)
	assert.Equal(t, []string{"C"}, report.Summary.FailedSKUs)

	w = env.do(t, http.MethodGet, "/api/v1/sync/runs", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	runs := decode[[]models.SyncRun](t, w)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, models.SyncSourceAPI, runs[0].Source)

	w = env.do(t, http.MethodGet, "/api/v1/sync/runs/"+report.RunID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	run := decode[models.SyncRun](t, w)
	require.Len(t, run.Results, 3)
	assert.Equal(t, "C", run.Results[2].SKU)

	w = env.do(t, http.MethodGet, "/api/v1/sync/runs/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncBatchRejectsBadOverrides(t *testing.T) {
	env := newTestEnv(t, false)
	products := []map[string]any{{"name": "A", "sku": "A"}}

	w := env.do(t, http.MethodPost, "/api/v1/sync", map[string]any{"products": products, "concurrency": 0}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/sync", map[string]any{"products": products, "delay_ms": -5}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/sync", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, env.store.Requests())
}

func TestRunHistoryWithoutDatabase(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodGet, "/api/v1/sync/runs", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWooCommerceWebhook(t *testing.T) {
	env := newTestEnv(t, false)
	payload := []byte(`{"id":7,"name":"Lamp","sku":"LAMP","regular_price":"20"}`)

	w := env.do(t, http.MethodPost, "/api/v1/webhooks/woocommerce", payload, map[string]string{
		"X-WC-Webhook-Topic":     woocommerce.TopicProductCreated,
		"X-WC-Webhook-Signature": "bogus",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, env.store.Requests())

	w = env.do(t, http.MethodPost, "/api/v1/webhooks/woocommerce", payload, map[string]string{
		"X-WC-Webhook-Topic":     woocommerce.TopicProductCreated,
		"X-WC-Webhook-Signature": sign(payload),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[woocommerce.WebhookResult](t, w)
	assert.Equal(t, "upserted", result.Action)
	assert.NotEqual(t, int64(7), result.Product.ID)

	ping := []byte(`webhook_id=3`)
	w = env.do(t, http.MethodPost, "/api/v1/webhooks/woocommerce", ping, map[string]string{
		"X-WC-Webhook-Signature": sign(ping),
	})
	assert.Equal(t, http.StatusOK, w.Code)

	bad := []byte(`not json`)
	w = env.do(t, http.MethodPost, "/api/v1/webhooks/woocommerce", bad, map[string]string{
		"X-WC-Webhook-Topic":     woocommerce.TopicProductUpdated,
		"X-WC-Webhook-Signature": sign(bad),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, false)

	w := env.do(t, http.MethodOptions, "/api/v1/sync", nil, map[string]string{
		"Origin":                        "https://admin.example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, env.store.Requests())
}
