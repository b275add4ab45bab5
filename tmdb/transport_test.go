package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransport(t *testing.T) {
	for _, name := range []string{"", TransportPooled, TransportSimple} {
		transport, err := NewTransport(name)
		require.NoError(t, err)
		assert.NotNil(t, transport)
	}

	_, err := NewTransport("carrier-pigeon")
	require.ErrorIs(t, err, ErrTMDB)
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "value", r.URL.Query().Get("param"))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	transport, err := NewTransport(TransportPooled)
	require.NoError(t, err)

	params := url.Values{}
	params.Set("param", "value")
	resp, err := transport.Fetch(context.Background(), server.URL, params)
	require.NoError(t, err)
	assert.Equal(t, true, resp["ok"])
}

func TestFetchRatelimitRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	transport, err := NewTransport(TransportPooled)
	require.NoError(t, err)

	_, err = transport.Fetch(context.Background(), server.URL, nil)
	require.ErrorIs(t, err, ErrRatelimitExceeded)
	assert.Equal(t, int32(2), calls.Load(), "exactly one retry after the first 429")
}

func TestFetchRatelimitThenSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	transport, err := NewTransport(TransportPooled)
	require.NoError(t, err)

	resp, err := transport.Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	transport, err := NewTransport(TransportPooled)
	require.NoError(t, err)

	_, err = transport.Fetch(context.Background(), server.URL, nil)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.ErrorIs(t, err, ErrTMDB)
}

func TestFetchDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "malformed body", body: "<html>not json</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			transport, err := NewTransport(TransportPooled)
			require.NoError(t, err)

			_, err = transport.Fetch(context.Background(), server.URL, nil)
			require.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, int64(0), int64(retryAfter(h)), "missing header means retry now")

	h.Set("Retry-After", "-3")
	assert.Equal(t, int64(0), int64(retryAfter(h)), "negative waits are clamped")

	h.Set("Retry-After", "2")
	assert.Equal(t, "2s", retryAfter(h).String())
}

func TestFetchContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	transport, err := NewTransport(TransportSimple)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = transport.Fetch(ctx, server.URL, nil)
	require.Error(t, err)
}
