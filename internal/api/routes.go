package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts all routes on router and returns it wrapped in the
// middleware chain.
func RegisterRoutes(router *mux.Router, h *Handler) http.Handler {
	m := h.opts.HTTPMetrics
	base := h.opts.BasePath

	// Admin APIs
	router.Handle("/admin/health", instrument(m, "admin_health", h.GetHealth)).Methods(http.MethodGet)
	router.Handle("/admin/stats", instrument(m, "admin_stats", h.GetStats)).Methods(http.MethodGet)
	if h.opts.ListPastes {
		router.Handle("/admin/pastes", instrument(m, "admin_pastes", h.ListPastes)).Methods(http.MethodGet)
	}

	// Observability APIs
	router.Handle("/metrics", instrument(m, "metrics", h.GetMetrics)).Methods(http.MethodGet)

	// Paste APIs
	roots := []string{base + "/"}
	if base != "" {
		roots = append(roots, base)
	}
	for _, root := range roots {
		router.Handle(root, instrument(m, "index", h.Index)).Methods(http.MethodGet)
		router.Handle(root, instrument(m, "submit", h.Submit)).Methods(http.MethodPost)
		router.Handle(root, instrument(m, "submit_raw", h.SubmitRaw)).Methods(http.MethodPut)
		router.Handle(root, instrument(m, "method_not_allowed", h.MethodNotAllowed)).Methods(http.MethodHead)
	}

	router.Handle(base+"/highlight.css", instrument(m, "highlight_css", h.HighlightCSS)).Methods(http.MethodGet)
	router.Handle(base+"/{paste}", instrument(m, "paste", h.ShowPaste)).Methods(http.MethodGet)
	router.Handle(base+"/{paste}", instrument(m, "method_not_allowed", h.MethodNotAllowed)).Methods(http.MethodHead)

	router.NotFoundHandler = instrument(m, "not_found", h.NotFound)
	router.MethodNotAllowedHandler = instrument(m, "method_not_allowed", h.MethodNotAllowed)

	// Middlewares
	return Chain(
		router,
		RecoveryMiddleware(h.logger),
		LoggingMiddleware(h.logger),
		GzipMiddleware,
	)
}
