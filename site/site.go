// Package site puts together every route served by toolshelf.
package site

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"

	authapi "github.com/andrebq/toolshelf/auth/api"
	"github.com/andrebq/toolshelf/catalog"
	catalogapi "github.com/andrebq/toolshelf/catalog/api"
	"github.com/andrebq/toolshelf/internal/httpserver"
	"github.com/andrebq/toolshelf/internal/uiproxy"
)

type (
	// Pinger reports whether the storage can answer requests
	Pinger interface {
		Ping(ctx context.Context) error
	}

	Options struct {
		Realm   *authapi.SecurityRealm
		Catalog catalog.Store
		Icons   catalogapi.IconFinder
		Health  Pinger
		// UI is where pages are rendered, nil disables it
		UI *url.URL
	}
)

func Handler(opts Options) http.Handler {
	router := httprouter.New()
	opts.Realm.Mount(router)
	catalogapi.New(opts.Catalog, opts.Icons, opts.Realm).Mount(router)
	router.HandlerFunc("GET", "/healthz", healthz(opts.Health))
	router.NotFound = uiproxy.AsHandler(opts.UI)
	return httpserver.AccessLog(router)
}

func healthz(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			if err := p.Ping(r.Context()); err != nil {
				httpserver.WriteMessage(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		httpserver.WriteMessage(w, http.StatusOK, "ok")
	}
}
