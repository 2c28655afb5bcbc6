package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"product-extractor/extractor"
	"product-extractor/internal/types"
	"product-extractor/metrics"
	"product-extractor/registry"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<html><head>
<script type="application/ld+json">{"@type":"Product","name":"Arc Floor Lamp","sku":"ARC-1",
 "offers":{"@type":"Offer","price":"129.00","priceCurrency":"EUR"}}</script>
</head><body></body></html>`

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := types.DefaultConfig()
	m := metrics.NewRegistry()
	service := extractor.NewService(config, logger, extractor.WithMetrics(m))
	t.Cleanup(service.Close)

	return SetupRouter(config, NewHandler(service, config, logger), m)
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), registry.DefaultVersion)
}

func TestExtract(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/extract", PageRequest{URL: "https://lamps.example.com/p/arc", HTML: productHTML})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    types.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, types.PlatformGeneric, resp.Data.Platform)
	assert.Equal(t, "Arc Floor Lamp", resp.Data.Title)
	assert.Equal(t, 129.0, resp.Data.Price)
	assert.Equal(t, "EUR", resp.Data.Currency)

	metricsResp := httptest.NewRecorder()
	router.ServeHTTP(metricsResp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metricsResp.Body.String(), `extractor_extractions_total{outcome="success",platform="generic"} 1`)
}

func TestExtract_ExplicitPlatform(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/extract", PageRequest{URL: "https://lamps.example.com/p/arc", HTML: productHTML, Platform: "shopify"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"platform":"shopify"`)

	w = postJSON(router, "/api/v1/extract", PageRequest{URL: "https://lamps.example.com/p/arc", HTML: productHTML, Platform: "etsy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtract_InvalidBody(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/extract", map[string]string{"url": "https://lamps.example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestExtractBatch(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(router, "/api/v1/extract/batch", BatchRequest{Pages: []PageRequest{
		{URL: "https://lamps.example.com/p/arc", HTML: productHTML},
		{URL: "https://www.ebay.com/itm/123456789012", HTML: "<html><body></body></html>"},
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    types.BatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, 2, resp.Data.Succeeded)
	assert.Equal(t, "Arc Floor Lamp", resp.Data.Items[0].Product.Title)
	assert.Equal(t, types.PlatformEbay, resp.Data.Items[1].Platform)

	w = postJSON(router, "/api/v1/extract/batch", BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectors(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/selectors", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"default"`)
	assert.Contains(t, w.Body.String(), registry.DefaultVersion)
}

func TestCORS(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/extract", nil)
	req.Header.Set("Origin", "chrome-extension://abcdefghijklmnop")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "chrome-extension://abcdefghijklmnop", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{"chrome-extension://*", "https://dashboard.example.com"}

	assert.True(t, isAllowedOrigin("chrome-extension://abc", allowed))
	assert.True(t, isAllowedOrigin("https://dashboard.example.com", allowed))
	assert.False(t, isAllowedOrigin("https://dashboard.example.com.evil", allowed))
	assert.False(t, isAllowedOrigin("", allowed))
}
