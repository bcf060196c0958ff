// Package uiproxy forwards everything that is not an API call to the
// server that renders the website.
package uiproxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/andrebq/toolshelf/internal/httpserver"
	"github.com/andrebq/toolshelf/internal/logutil"
)

// AsHandler returns a handler that proxies requests to upstream. API
// paths are never forwarded, they get a JSON 404 instead. A nil
// upstream answers 404 for everything.
func AsHandler(upstream *url.URL) http.Handler {
	if upstream == nil {
		return http.HandlerFunc(notFound)
	}
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Str("upstream", upstream.String()).Msg("Unable to reach ui upstream")
		httpserver.WriteMessage(w, http.StatusBadGateway, "UI upstream unavailable")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPI(r.URL.Path) {
			notFound(w, r)
			return
		}
		proxy.ServeHTTP(w, r)
	})
}

func isAPI(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpserver.WriteMessage(w, http.StatusNotFound, "Not found")
}
