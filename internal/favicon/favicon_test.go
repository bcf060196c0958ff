package favicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchFromService(t *testing.T) {
	var gotDomain atomic.Value
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/s2/favicons" {
			http.NotFound(w, r)
			return
		}
		gotDomain.Store(r.URL.Query().Get("domain"))
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	}))
	defer service.Close()

	f := New()
	f.ServiceBase = service.URL
	icon, err := f.Fetch(context.Background(), "example.com/some/page")
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,cG5n", icon)
	require.Equal(t, "example.com", gotDomain.Load())
}

func TestFetchFallsBackToFaviconICO(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer service.Close()
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/favicon.ico" {
			http.NotFound(w, r)
			return
		}
		w.Header()["Content-Type"] = nil
		w.Write([]byte("ico"))
	}))
	defer site.Close()

	f := New()
	f.ServiceBase = service.URL
	icon, err := f.Fetch(context.Background(), site.URL)
	require.NoError(t, err)
	require.Equal(t, "data:image/x-icon;base64,aWNv", icon)
}

func TestFetchNotFound(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer failing.Close()

	f := New()
	f.ServiceBase = failing.URL
	_, err := f.Fetch(context.Background(), failing.URL)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(context.Background(), "https://")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetchTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	f := New()
	f.ServiceBase = slow.URL
	f.Timeout = 50 * time.Millisecond
	start := time.Now()
	_, err := f.Fetch(context.Background(), slow.URL)
	require.ErrorIs(t, err, ErrNotFound)
	require.Less(t, time.Since(start), time.Second)
}

func TestReachable(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			http.Error(w, "head only", http.StatusMethodNotAllowed)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
		}
	}))
	defer site.Close()

	f := New()
	require.True(t, f.Reachable(context.Background(), site.URL))
	require.False(t, f.Reachable(context.Background(), site.URL+"/missing"))
	require.False(t, f.Reachable(context.Background(), "http://127.0.0.1:1"))
}
