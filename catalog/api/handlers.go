package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/andrebq/toolshelf/catalog"
	"github.com/andrebq/toolshelf/internal/httpserver"
	"github.com/andrebq/toolshelf/internal/logutil"
)

type (
	// IconFinder discovers icons for tools added without one
	IconFinder interface {
		Reachable(ctx context.Context, url string) bool
		Fetch(ctx context.Context, url string) (string, error)
	}

	// AdminGuard wraps handlers that only admins may call
	AdminGuard interface {
		ProtectAdmin(http.Handler) http.Handler
	}

	Handlers struct {
		store catalog.Store
		icons IconFinder
		guard AdminGuard
	}

	faviconResult struct {
		Success bool   `json:"success"`
		Favicon string `json:"favicon,omitempty"`
		Message string `json:"message"`
	}
)

func New(store catalog.Store, icons IconFinder, guard AdminGuard) *Handlers {
	return &Handlers{
		store: store,
		icons: icons,
		guard: guard,
	}
}

func (h *Handlers) Mount(router *httprouter.Router) {
	router.HandlerFunc("GET", "/api/categories", h.listCategories)
	router.GET("/api/categories/:slug", h.getCategory)
	router.GET("/api/categories/:slug/tools", h.categoryTools)
	router.HandlerFunc("GET", "/api/tools", h.listTools)
	router.HandlerFunc("GET", "/api/tools/popular", h.popularTools)
	router.HandlerFunc("GET", "/api/tools/new", h.newTools)
	router.HandlerFunc("GET", "/api/tools/search", h.searchTools)
	router.Handler("POST", "/api/tools", h.guard.ProtectAdmin(http.HandlerFunc(h.createTool)))
	router.HandlerFunc("GET", "/api/fetchFavicon", h.fetchFavicon)
	router.HandlerFunc("POST", "/api/suggestions", h.createSuggestion)
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.CategorySummaries(r.Context())
	if err != nil {
		failed(w, r, err, "Failed to fetch categories")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, list)
}

func (h *Handlers) getCategory(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	c, err := h.store.CategoryBySlug(r.Context(), p.ByName("slug"))
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		httpserver.WriteMessage(w, http.StatusNotFound, "Category not found")
		return
	} else if err != nil {
		failed(w, r, err, "Failed to fetch category")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, c)
}

func (h *Handlers) categoryTools(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	c, err := h.store.CategoryBySlug(r.Context(), p.ByName("slug"))
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		httpserver.WriteMessage(w, http.StatusNotFound, "Category not found")
		return
	} else if err != nil {
		failed(w, r, err, "Failed to fetch tools")
		return
	}
	tools, err := h.store.ToolsByCategory(r.Context(), c.ID)
	if err != nil {
		failed(w, r, err, "Failed to fetch tools")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, tools)
}

func (h *Handlers) listTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.store.Tools(r.Context())
	if err != nil {
		failed(w, r, err, "Failed to fetch tools")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, tools)
}

func (h *Handlers) popularTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.store.PopularTools(r.Context(), limit(r, catalog.DefaultPopularLimit))
	if err != nil {
		failed(w, r, err, "Failed to fetch popular tools")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, tools)
}

func (h *Handlers) newTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.store.NewTools(r.Context(), limit(r, catalog.DefaultNewLimit))
	if err != nil {
		failed(w, r, err, "Failed to fetch new tools")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, tools)
}

func (h *Handlers) searchTools(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		httpserver.WriteMessage(w, http.StatusBadRequest, "Search term is required")
		return
	}
	tools, err := h.store.SearchTools(r.Context(), term)
	if err != nil {
		failed(w, r, err, "Failed to search tools")
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, tools)
}

func (h *Handlers) createTool(w http.ResponseWriter, r *http.Request) {
	form, err := readToolForm(w, r)
	if err != nil {
		var verr catalog.ValidationError
		if !errors.As(err, &verr) {
			verr = catalog.ValidationError{Message: "Invalid tool data"}
		}
		httpserver.WriteInvalid(w, verr.Message, verr.Fields)
		return
	}
	switch {
	case form.iconFile != nil:
		form.IconURL = form.iconFile.dataURL()
	case form.IconName == "" && form.IconURL == "":
		form.IconURL, form.IconName = h.discoverIcon(r.Context(), form.URL)
	}
	nt := form.newTool()
	if err := nt.Validate(); err != nil {
		writeInvalid(w, r, err, "Failed to add tool")
		return
	}
	tool, err := h.store.CreateTool(r.Context(), nt)
	if err != nil {
		writeInvalid(w, r, err, "Failed to add tool")
		return
	}
	httpserver.WriteJSON(w, http.StatusCreated, tool)
}

// discoverIcon returns either an icon url or the fallback icon name.
func (h *Handlers) discoverIcon(ctx context.Context, url string) (string, string) {
	log := logutil.GetOrDefault(ctx)
	if url == "" || h.icons == nil || !h.icons.Reachable(ctx, url) {
		return "", catalog.FallbackIcon
	}
	icon, err := h.icons.Fetch(ctx, url)
	if err != nil {
		log.Info().Str("url", url).Msg("No favicon found, using the fallback icon")
		return "", catalog.FallbackIcon
	}
	return icon, ""
}

func (h *Handlers) fetchFavicon(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		httpserver.WriteMessage(w, http.StatusBadRequest, "URL parameter is required")
		return
	}
	if h.icons == nil {
		httpserver.WriteJSON(w, http.StatusNotFound, faviconResult{Message: "Could not fetch favicon"})
		return
	}
	icon, err := h.icons.Fetch(r.Context(), target)
	if err != nil {
		httpserver.WriteJSON(w, http.StatusNotFound, faviconResult{Message: "Could not fetch favicon"})
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, faviconResult{Success: true, Favicon: icon, Message: "Favicon fetched successfully"})
}

func (h *Handlers) createSuggestion(w http.ResponseWriter, r *http.Request) {
	var ns catalog.NewSuggestion
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToolBody)).Decode(&ns); err != nil {
		httpserver.WriteInvalid(w, "Invalid tool suggestion data", nil)
		return
	}
	if err := ns.Validate(); err != nil {
		writeInvalid(w, r, err, "Failed to add tool suggestion")
		return
	}
	sg, err := h.store.CreateSuggestion(r.Context(), ns)
	if err != nil {
		writeInvalid(w, r, err, "Failed to add tool suggestion")
		return
	}
	httpserver.WriteJSON(w, http.StatusCreated, sg)
}

func writeInvalid(w http.ResponseWriter, r *http.Request, err error, otherwise string) {
	var verr catalog.ValidationError
	if errors.As(err, &verr) {
		httpserver.WriteInvalid(w, verr.Message, verr.Fields)
		return
	}
	failed(w, r, err, otherwise)
}

func failed(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	httpserver.WriteMessage(w, http.StatusInternalServerError, msg)
}

func limit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
