package api

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"github.com/andrebq/toolshelf/internal/httpserver"
	"github.com/andrebq/toolshelf/internal/testutil"
)

type (
	stubIcons struct {
		reachable bool
		icon      string
		probed    []string
	}

	stubGuard struct {
		allow bool
	}
)

func (s *stubIcons) Reachable(ctx context.Context, url string) bool {
	s.probed = append(s.probed, url)
	return s.reachable
}

func (s *stubIcons) Fetch(ctx context.Context, url string) (string, error) {
	if s.icon == "" {
		return "", errors.New("no icon")
	}
	return s.icon, nil
}

func (s stubGuard) ProtectAdmin(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.allow {
			httpserver.WriteMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		h.ServeHTTP(w, r)
	})
}

func acquireRouter(t *testing.T, icons *stubIcons, admin bool) http.Handler {
	s, cleanup := testutil.AcquireSeededShelf(context.Background(), t)
	t.Cleanup(cleanup)
	router := httprouter.New()
	New(s, icons, stubGuard{allow: admin}).Mount(router)
	return router
}

func TestCategoryEndpoints(t *testing.T) {
	router := acquireRouter(t, &stubIcons{}, false)

	apitest.Handler(router).Get("/api/categories").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 2)).
		Assert(jsonpath.Equal("$[0].slug", "design")).
		Assert(jsonpath.Equal("$[0].toolCount", float64(2))).
		Assert(jsonpath.Equal("$[1].toolCount", float64(3))).
		End()

	apitest.Handler(router).Get("/api/categories/development").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.name", "Development")).
		End()

	apitest.Handler(router).Get("/api/categories/cooking").Expect(t).
		Status(http.StatusNotFound).
		Body(`{"message":"Category not found"}`).
		End()

	apitest.Handler(router).Get("/api/categories/design/tools").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 2)).
		Assert(jsonpath.Equal("$[0].name", "Coolors")).
		Assert(jsonpath.Equal("$[0].category.slug", "design")).
		End()

	apitest.Handler(router).Get("/api/categories/cooking/tools").Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestToolListingEndpoints(t *testing.T) {
	router := acquireRouter(t, &stubIcons{}, false)

	apitest.Handler(router).Get("/api/tools").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 5)).
		End()

	apitest.Handler(router).Get("/api/tools/popular").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 3)).
		End()

	apitest.Handler(router).Get("/api/tools/popular").Query("limit", "1").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].name", "Figma")).
		End()

	apitest.Handler(router).Get("/api/tools/new").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 2)).
		End()

	apitest.Handler(router).Get("/api/tools/search").Query("q", "json").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].name", "JSON Formatter")).
		End()

	apitest.Handler(router).Get("/api/tools/search").Query("q", "  ").Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"message":"Search term is required"}`).
		End()
}

func TestCreateToolRequiresAdmin(t *testing.T) {
	router := acquireRouter(t, &stubIcons{}, false)
	apitest.Handler(router).Post("/api/tools").
		JSON(`{"name":"Squoosh","description":"Image compression","url":"https://squoosh.app","iconName":"image","categoryId":1}`).
		Expect(t).
		Status(http.StatusForbidden).
		End()
}

func TestCreateToolJSON(t *testing.T) {
	router := acquireRouter(t, &stubIcons{}, true)

	apitest.Handler(router).Post("/api/tools").
		JSON(`{"name":"Squoosh","description":"Image compression","url":"https://squoosh.app","iconName":"image","categoryId":"1","popular":"true","isNew":false}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.name", "Squoosh")).
		Assert(jsonpath.Equal("$.categoryId", float64(1))).
		Assert(jsonpath.Equal("$.popular", true)).
		Assert(jsonpath.Equal("$.isNew", false)).
		Assert(jsonpath.Equal("$.iconName", "image")).
		Assert(jsonpath.Equal("$.category.slug", "design")).
		End()

	apitest.Handler(router).Post("/api/tools").
		JSON(`{"name":"S","description":"tiny","url":"nope","iconName":"image","categoryId":1}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.message", "Invalid tool data")).
		Assert(jsonpath.Len("$.errors", 3)).
		End()

	apitest.Handler(router).Post("/api/tools").
		JSON(`{"name":"Squoosh","description":"Image compression","url":"https://squoosh.app","iconName":"image","categoryId":99}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.errors[0].field", "categoryId")).
		End()

	apitest.Handler(router).Post("/api/tools").
		JSON(`{"name":`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.message", "Invalid tool data")).
		End()
}

func TestCreateToolDiscoversIcon(t *testing.T) {
	icons := &stubIcons{reachable: true, icon: "data:image/png;base64,cG5n"}
	router := acquireRouter(t, icons, true)

	apitest.Handler(router).Post("/api/tools").
		JSON(`{"name":"Squoosh","description":"Image compression","url":"https://squoosh.app","categoryId":1}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.iconUrl", "data:image/png;base64,cG5n")).
		Assert(jsonpath.NotPresent("$.iconName")).
		End()

	icons.reachable = false
	apitest.Handler(router).Post("/api/tools").
		JSON(`{"name":"Offline","description":"Nobody home","url":"https://offline.example","categoryId":1}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.iconName", "wrench")).
		End()

	if len(icons.probed) != 2 {
		t.Fatalf("both tools should have been probed, got %v", icons.probed)
	}
}

func TestCreateToolMultipart(t *testing.T) {
	router := acquireRouter(t, &stubIcons{}, true)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"name":        "Photopea",
		"description": "Online image editor",
		"url":         "https://photopea.com",
		"categoryId":  "1",
		"isNew":       "true",
	} {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("iconFile", "logo.svg")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("<svg/>"))
	mw.Close()

	apitest.Handler(router).Post("/api/tools").
		Header("Content-Type", mw.FormDataContentType()).
		Body(body.String()).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.iconUrl", "data:image/svg;base64,PHN2Zy8+")).
		Assert(jsonpath.Equal("$.isNew", true)).
		End()
}

func TestCreateToolIconTooLarge(t *testing.T) {
	router := acquireRouter(t, &stubIcons{}, true)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("name", "Photopea")
	mw.WriteField("description", "Online image editor")
	mw.WriteField("url", "https://photopea.com")
	mw.WriteField("categoryId", "1")
	fw, err := mw.CreateFormFile("iconFile", "huge.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(bytes.Repeat([]byte{0x89}, maxIconBytes+1))
	mw.Close()

	apitest.Handler(router).Post("/api/tools").
		Header("Content-Type", mw.FormDataContentType()).
		Body(body.String()).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.message", "Invalid tool data")).
		Assert(jsonpath.Equal("$.errors[0].field", "iconFile")).
		End()

	apitest.Handler(router).Get("/api/categories/design/tools").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 2)).
		End()
}

func TestFetchFaviconWithoutFinder(t *testing.T) {
	s, cleanup := testutil.AcquireSeededShelf(context.Background(), t)
	t.Cleanup(cleanup)
	router := httprouter.New()
	New(s, nil, stubGuard{}).Mount(router)

	apitest.Handler(router).Get("/api/fetchFavicon").Query("url", "example.com").Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.success", false)).
		End()
}

func TestFetchFavicon(t *testing.T) {
	icons := &stubIcons{icon: "data:image/png;base64,cG5n"}
	router := acquireRouter(t, icons, false)

	apitest.Handler(router).Get("/api/fetchFavicon").Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.Handler(router).Get("/api/fetchFavicon").Query("url", "example.com").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.success", true)).
		Assert(jsonpath.Equal("$.favicon", "data:image/png;base64,cG5n")).
		End()

	icons.icon = ""
	apitest.Handler(router).Get("/api/fetchFavicon").Query("url", "example.com").Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.success", false)).
		Assert(jsonpath.Equal("$.message", "Could not fetch favicon")).
		End()
}

func TestCreateSuggestion(t *testing.T) {
	router := acquireRouter(t, &stubIcons{}, false)

	apitest.Handler(router).Post("/api/suggestions").
		JSON(`{"name":"Squoosh","description":"Image compression","url":"https://squoosh.app","categoryId":1,"submitterEmail":"ana@example.com"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.status", "pending")).
		Assert(jsonpath.Equal("$.submitterEmail", "ana@example.com")).
		End()

	apitest.Handler(router).Post("/api/suggestions").
		JSON(`{"name":"Squoosh","description":"Image compression","url":"https://squoosh.app","categoryId":1,"submitterEmail":"nope"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.message", "Invalid tool suggestion data")).
		Assert(jsonpath.Equal("$.errors[0].field", "submitterEmail")).
		End()

	apitest.Handler(router).Post("/api/suggestions").
		JSON(`{"name":"Squoosh","description":"Image compression","url":"https://squoosh.app","categoryId":404}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.message", "Invalid tool suggestion data")).
		Assert(jsonpath.Equal("$.errors[0].field", "categoryId")).
		End()
}
