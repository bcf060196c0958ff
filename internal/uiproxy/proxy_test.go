package uiproxy

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/steinfletcher/apitest"
)

func TestAsHandler(t *testing.T) {
	hits := map[string]int{}
	ui := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits[r.URL.Path]++
		w.Write([]byte("<html></html>"))
	}))
	defer ui.Close()
	upstream, _ := url.Parse(ui.URL)
	handler := AsHandler(upstream)

	apitest.Handler(handler).Get("/").Expect(t).Status(http.StatusOK).Body("<html></html>").End()
	apitest.Handler(handler).Get("/category/design").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(handler).Get("/api/unknown").Expect(t).Status(http.StatusNotFound).End()

	if hits["/"] != 1 || hits["/category/design"] != 1 || len(hits) != 2 {
		t.Fatalf("unexpected upstream hits %v", hits)
	}
}

func TestAsHandlerUnavailable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	upstream, _ := url.Parse(dead.URL)
	dead.Close()

	apitest.Handler(AsHandler(upstream)).Get("/").Expect(t).Status(http.StatusBadGateway).End()
	apitest.Handler(AsHandler(nil)).Get("/").Expect(t).Status(http.StatusNotFound).End()
}
