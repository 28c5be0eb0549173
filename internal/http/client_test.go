package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabshop-io/stratus-client/internal/auth"
	stratushttp "github.com/fabshop-io/stratus-client/internal/http"
	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

func fastRetries() stratushttp.Option {
	return stratushttp.WithRetryConfig(2, 10*time.Millisecond, 50*time.Millisecond)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v2/project", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "test-key", request.Header.Get("app-key"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			response := map[string]string{"id": "proj-1", "name": "Plant 4"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, &auth.StaticKeyProvider{Key: "test-key"})

		req := &stratushttp.Request{
			Method: "GET",
			Path:   "/v2/project",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "proj-1", result["id"])
		assert.Equal(t, "Plant 4", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/package", request.URL.Path)
			assert.Equal(t, "2", request.URL.Query().Get("page"))
			assert.Equal(t, "1000", request.URL.Query().Get("pagesize"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil)

		req := &stratushttp.Request{
			Method: "GET",
			Path:   "/v1/package",
			Query:  url.Values{"page": []string{"2"}, "pagesize": []string{"1000"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "PATCH", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]interface{}

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "pkg-1", body["id"])

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil)

		req := &stratushttp.Request{
			Method: "PATCH",
			Path:   "/v2/package/properties",
			Body:   map[string]interface{}{"id": "pkg-1", "name": "renamed"},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("classifies error responses", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message":"not found"}`))
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/v1/package", nil)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		var apiErr *stratus.APIError

		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "not found")
		assert.True(t, stratus.IsNotFound(err))
	})

	t.Run("wraps connection failures", func(t *testing.T) {
		t.Parallel()

		client := stratushttp.NewClient("http://127.0.0.1:1", nil,
			stratushttp.WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Get(context.Background(), "/health", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, stratus.ErrConnectionFailed)
		assert.True(t, stratus.IsConnectionFailure(err))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryPolicy(t *testing.T) {
	t.Parallel()
	t.Run("retries GET on server errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)

				return
			}

			writer.WriteHeader(http.StatusOK)
			_, _ = writer.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil, fastRetries())

		resp, err := client.Get(context.Background(), "/v2/project", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("gives up after the attempt cap", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil, fastRetries())

		resp, err := client.Get(context.Background(), "/v2/project", nil)
		require.Error(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.True(t, stratus.IsTransient(err))
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil, fastRetries())

		resp, err := client.Get(context.Background(), "/v2/project", nil)
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})

	t.Run("honors Retry-After on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		logger := &MockLogger{}

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if atomic.AddInt32(&attempts, 1) == 1 {
				writer.Header().Set("Retry-After", "0")
				writer.WriteHeader(http.StatusTooManyRequests)

				return
			}

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil, fastRetries(), stratushttp.WithLogger(logger))

		resp, err := client.Get(context.Background(), "/v2/project", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))

		// The concrete wait is surfaced at warn level.
		require.NotEmpty(t, logger.logs)
		assert.Equal(t, "warn", logger.logs[0]["level"])
	})

	t.Run("exhausted rate limit surfaces RateLimitError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Retry-After", "7")
			writer.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil,
			stratushttp.WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Get(context.Background(), "/v2/project", nil)
		require.Error(t, err)

		var rateErr *stratus.RateLimitError

		require.ErrorAs(t, err, &rateErr)
		assert.Equal(t, 7*time.Second, rateErr.RetryAfter)
		assert.True(t, stratus.IsRateLimited(err))
	})

	t.Run("never retries mutations", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&attempts, 1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil, fastRetries())

		_, err := client.Patch(context.Background(), "/v2/package/properties", map[string]string{"id": "pkg-1"})
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	})
}

func TestClient_ResponseCache(t *testing.T) {
	t.Parallel()

	var gets, patches int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method == http.MethodPatch {
			atomic.AddInt32(&patches, 1)
			writer.WriteHeader(http.StatusOK)

			return
		}

		atomic.AddInt32(&gets, 1)
		_, _ = writer.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	manager := stratus.NewCacheManager(stratus.NewMemoryCache(16), &stratus.CacheOptions{TTL: time.Minute})
	client := stratushttp.NewClient(server.URL, nil, stratushttp.WithCache(manager))

	ctx := context.Background()

	// Second identical GET is served from the cache.
	_, err := client.Get(ctx, "/v2/project", nil)
	require.NoError(t, err)

	_, err = client.Get(ctx, "/v2/project", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gets))

	// A mutation invalidates the cache, so the next GET hits the server.
	_, err = client.Patch(ctx, "/v2/package/properties", map[string]string{"id": "pkg-1"})
	require.NoError(t, err)

	_, err = client.Get(ctx, "/v2/project", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&gets))
}

func TestClient_ResponseCacheOnlyStoresSuccess(t *testing.T) {
	t.Parallel()

	var gets int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&gets, 1)
		writer.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	manager := stratus.NewCacheManager(stratus.NewMemoryCache(16), &stratus.CacheOptions{TTL: time.Minute})
	client := stratushttp.NewClient(server.URL, nil, stratushttp.WithCache(manager))

	ctx := context.Background()

	_, err := client.Get(ctx, "/v2/project", nil)
	require.Error(t, err)

	var apiErr *stratus.APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotModified, apiErr.StatusCode)

	// The non-2xx body must not be cached; the next GET hits the server.
	_, err = client.Get(ctx, "/v2/project", nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&gets))
}

func TestClient_PostMultipart(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "POST", request.Method)
		assert.Contains(t, request.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := request.FormFile("file")
		require.NoError(t, err)

		defer func() { _ = file.Close() }()

		assert.Equal(t, "drawing.pdf", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(content))

		writer.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := stratushttp.NewClient(server.URL, &auth.StaticKeyProvider{Key: "test-key"})

	resp, err := client.PostMultipart(context.Background(), "/v1/package/pkg-1/attachment", "file", "drawing.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
}

func TestClient_GetStream(t *testing.T) {
	t.Parallel()
	t.Run("streams the body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte("file contents"))
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil)

		body, err := client.GetStream(context.Background(), "/v1/attachment/att-1/download")
		require.NoError(t, err)

		defer func() { _ = body.Close() }()

		content, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "file contents", string(content))
	})

	t.Run("classifies error statuses", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := stratushttp.NewClient(server.URL, nil)

		_, err := client.GetStream(context.Background(), "/v1/attachment/att-1/download")
		require.Error(t, err)
		assert.True(t, stratus.IsNotFound(err))
	})
}

func TestClient_KeyProviderFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	client := stratushttp.NewClient(server.URL, &auth.StaticKeyProvider{})

	_, err := client.Get(context.Background(), "/v2/project", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, stratus.ErrAppKeyRequired))
}
