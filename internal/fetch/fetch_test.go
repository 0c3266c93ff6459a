package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Success(t *testing.T) {
	var gotUA, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("payload"))
	}))
	t.Cleanup(srv.Close)

	c := New(WithUserAgent("ops@example.com"))
	body, err := c.Get(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer tok"})
	require.NoError(t, err)
	assert.Equal(t, "payload", body)
	assert.Equal(t, "ops@example.com", gotUA)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestGet_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := New().Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := New(WithTimeout(20 * time.Millisecond))
	_, err := c.Get(context.Background(), srv.URL, nil)
	assert.Error(t, err)
}

func TestGet_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New().Get(ctx, srv.URL, nil)
	assert.Error(t, err)
}

func TestGetCached_WithoutRedisFallsThrough(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("fresh"))
	}))
	t.Cleanup(srv.Close)

	c := New()
	for i := 0; i < 2; i++ {
		body, err := c.GetCached(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, "fresh", body)
	}
	// With no cache configured every call goes to the network.
	assert.Equal(t, 2, hits)
}
