package importer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"product-extractor/internal/types"
	"product-extractor/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, m *metrics.Registry) *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := NewClient(types.ImportConfig{URL: url, APIKey: "test-key", Timeout: time.Second}, logger, m)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestImport_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))

		var p types.Product
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "Arc Floor Lamp", p.Title)
		assert.Equal(t, 129.0, p.Price)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"id":"prod_42"}`))
	}))
	defer server.Close()

	m := metrics.NewRegistry()
	result, err := newTestClient(server.URL, m).Import(context.Background(), &types.Product{
		Platform: types.PlatformShopify,
		Title:    "Arc Floor Lamp",
		Price:    129,
	})
	require.NoError(t, err)
	assert.Equal(t, "prod_42", result.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports.WithLabelValues("success")))
}

func TestImport_RetriesServerErrorsWithSameKey(t *testing.T) {
	var calls int32
	keys := make(chan string, 3)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"id":"prod_7"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, nil).Import(context.Background(), &types.Product{Title: "Kettle"})
	require.NoError(t, err)
	assert.Equal(t, "prod_7", result.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	first := <-keys
	assert.Equal(t, first, <-keys)
	assert.Equal(t, first, <-keys)
}

func TestImport_RetriesTruncatedResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			conn, buf, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			buf.WriteString("HTTP/1.1 201 Created\r\nContent-Type: application/json\r\nContent-Length: 100\r\n\r\n{\"success\":tr")
			buf.Flush()
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"id":"prod_7"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL, metrics.NewRegistry()).Import(context.Background(), &types.Product{Title: "Lamp", Price: 10})
	require.NoError(t, err)
	assert.Equal(t, "prod_7", result.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestImport_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":false,"message":"title is required"}`))
	}))
	defer server.Close()

	m := metrics.NewRegistry()
	_, err := newTestClient(server.URL, m).Import(context.Background(), &types.Product{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrImportFailed))
	assert.Contains(t, err.Error(), "title is required")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports.WithLabelValues("error")))
}

func TestImport_UnsuccessfulPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"duplicate sku"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, nil).Import(context.Background(), &types.Product{Title: "Kettle"})
	assert.True(t, errors.Is(err, types.ErrImportFailed))
}

func TestImportBatch_SkipsFailedItems(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"success":true,"id":"p"}`))
	}))
	defer server.Close()

	batch := &types.BatchResult{
		Items: []types.BatchItem{
			{URL: "https://a.example.com", Product: &types.Product{Title: "A"}},
			{URL: "https://b.example.com", Error: "page is unusable"},
			{URL: "https://c.example.com", Product: &types.Product{Title: "C"}},
		},
		Succeeded: 2,
		Failed:    1,
	}

	assert.Equal(t, 2, newTestClient(server.URL, nil).ImportBatch(context.Background(), batch))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
