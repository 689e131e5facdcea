package apifootball

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoot/pipeline/internal/platform/logging"
	"github.com/quantfoot/pipeline/internal/platform/resilience"
	"github.com/quantfoot/pipeline/internal/usecase"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		Host:           "v3.football.api-sports.io",
		Key:            "secret-key",
		MaxRetries:     retries,
		RetryDelay:     time.Millisecond,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestClientGet_SendsHeadersAndReturnsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams", r.URL.Path)
		assert.Equal(t, "2184", r.URL.Query().Get("id"))
		assert.Equal(t, "secret-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "v3.football.api-sports.io", r.Header.Get("x-rapidapi-host"))
		_, _ = w.Write([]byte(`{"get":"teams","errors":[],"results":1,"paging":{"current":1,"total":1},
			"response":[{"team":{"id":2184,"name":"Al-Hilal"},"venue":{"id":55,"name":"Kingdom Arena"}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.DefaultCircuitBreakerConfig())
	items, err := client.Get(context.Background(), "teams", map[string]string{"id": "2184"})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item, ok := items[0].(map[string]any)
	require.True(t, ok)
	id, ok := Int64(Object(item, "team"), "id")
	require.True(t, ok)
	assert.Equal(t, int64(2184), id)
	assert.Equal(t, "Kingdom Arena", String(Object(item, "venue"), "name"))
}

func TestClientGet_EnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "object errors", body: `{"errors":{"token":"Error/Missing application key secret-key"},"response":[]}`, want: "token: Error/Missing application key REDACTED"},
		{name: "array errors", body: `{"errors":["rate limit"],"response":[]}`, want: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(t, srv, 0, resilience.DefaultCircuitBreakerConfig())
			_, err := client.Get(context.Background(), "countries", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrAPI), "expected ErrAPI, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, err.Error(), "secret-key")
		})
	}
}

func TestClientGet_EmptyErrorsObjectIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":{},"response":[{"country":{"name":"Saudi-Arabia"}}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.DefaultCircuitBreakerConfig())
	items, err := client.Get(context.Background(), "countries", nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestClientGet_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"errors":[],"response":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 2, resilience.DefaultCircuitBreakerConfig())
	items, err := client.Get(context.Background(), "leagues", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGet_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`forbidden`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 3, resilience.DefaultCircuitBreakerConfig())
	_, err := client.Get(context.Background(), "fixtures", map[string]string{"team": "2184"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientGet_CircuitOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), "teams", map[string]string{"id": "1"})
		require.Error(t, err)
	}
	_, err := client.Get(context.Background(), "teams", map[string]string{"id": "1"})
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientGet_FollowsPaging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"errors":[],"paging":{"current":1,"total":2},"response":[{"n":1}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"errors":[],"paging":{"current":2,"total":2},"response":[{"n":2}]}`))
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.DefaultCircuitBreakerConfig())
	items, err := client.Get(context.Background(), "players", map[string]string{"team": "2184", "season": "2025"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	n, _ := Int64(items[1].(map[string]any), "n")
	assert.Equal(t, int64(2), n)
}

func TestClientGet_PagingBeyondLimitIsTruncatedWithWarning(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}
		_, _ = w.Write([]byte(`{"errors":[],"paging":{"current":` + page + `,"total":60},"response":[{"n":` + page + `}]}`))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	client := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		Key:            "secret-key",
		RetryDelay:     time.Millisecond,
		Logger:         logging.New(logging.LevelWarn, logging.FormatJSON, &logs),
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
	})

	items, err := client.Get(context.Background(), "players", map[string]string{"league": "39", "season": "2025"})
	require.NoError(t, err)
	assert.Len(t, items, maxFollowedPages)
	assert.Equal(t, int32(maxFollowedPages), requests.Load())
	assert.Contains(t, logs.String(), "api-football paging truncated")
	assert.Contains(t, logs.String(), `"pages":60`)
}

func TestClientGet_ScalarResponseList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[],"response":[2023,2024,2025]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, 0, resilience.DefaultCircuitBreakerConfig())
	items, err := client.Get(context.Background(), "teams/seasons", map[string]string{"team": "2184"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2023), int64(2024), int64(2025)}, items)
}

func TestEncode_SortsKeys(t *testing.T) {
	raw, err := Encode(map[string]any{"b": int64(1), "a": "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1}`, strings.TrimSpace(string(raw)))
}
