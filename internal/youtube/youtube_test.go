package youtube

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geeks-Solutions/exmedias/pkg/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("youtube-test"), logger)

	return New(cb, server.URL, "test-key", logger)
}

func TestLookup_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{
			"snippet":{"title":"Launch Recap","thumbnails":{"high":{"url":"https://img.example/hq.jpg"}}},
			"contentDetails":{"duration":"PT1H2M3S"}
		}]}`))
	})

	meta, err := client.Lookup(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Launch Recap", meta.Title)
	assert.Equal(t, 3723, meta.Duration)
	assert.Equal(t, "https://img.example/hq.jpg", meta.ThumbnailURL)
}

func TestLookup_UnknownVideo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	meta, err := client.Lookup(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, &Metadata{}, meta)
}

func TestLookup_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"quotaExceeded","message":"quota exceeded"}}`))
	})

	meta, err := client.Lookup(context.Background(), "any")
	assert.Nil(t, meta)
	assert.Error(t, err)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT15S", 15},
		{"PT4M", 240},
		{"PT2M30S", 150},
		{"PT1H", 3600},
		{"PT1H2M3S", 3723},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseISODuration(tt.in), tt.in)
	}
}
