package api

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"pastebin/internal/health"
	"pastebin/internal/highlight"
	"pastebin/internal/logs"
	"pastebin/internal/metrics"
	"pastebin/internal/paste"
)

// Options configures the HTTP surface.
type Options struct {
	// BasePath is the normalized prefix of the paste routes ("" or "/-").
	BasePath string

	// MaxPasteSize caps request bodies in bytes.
	MaxPasteSize int64

	// HTTPMetrics records per-route counters. Optional.
	HTTPMetrics *metrics.HTTPMetrics

	// Exposition serves /metrics. Optional.
	Exposition http.Handler

	// ListPastes mounts GET /admin/pastes.
	ListPastes bool
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pastes   *paste.Service
	metrics  *metrics.Registry
	logger   *logs.Logger
	analyzer *health.Analyzer
	opts     Options
}

// NewHandler creates a new API handler.
func NewHandler(
	pastes *paste.Service,
	reg *metrics.Registry,
	logger *logs.Logger,
	opts Options,
) *Handler {
	return &Handler{
		pastes:   pastes,
		metrics:  reg,
		logger:   logger,
		analyzer: health.NewAnalyzer(reg, logger, pastes),
		opts:     opts,
	}
}

/* ---------------- GET {base} ---------------- */

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, indexTemplate, indexPage{BasePath: h.opts.BasePath})
}

/* ---------------- POST {base} ---------------- */

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxPasteSize)

	if err := r.ParseForm(); err != nil {
		h.badBody(w, r, err)
		return
	}

	if _, ok := r.PostForm["val"]; !ok {
		http.Error(w, "missing form field val", http.StatusBadRequest)
		return
	}

	id := h.pastes.Store([]byte(r.PostForm.Get("val")))
	http.Redirect(w, r, h.opts.BasePath+"/"+id, http.StatusFound)
}

/* ---------------- PUT {base} ---------------- */

func (h *Handler) SubmitRaw(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxPasteSize))
	if err != nil {
		h.badBody(w, r, err)
		return
	}

	id := h.pastes.Store(body)

	uri := h.opts.BasePath + "/" + id + "\n"
	if r.Host != "" {
		uri = "https://" + r.Host + uri
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, uri)
}

// badBody answers a request whose body could not be read.
func (h *Handler) badBody(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.metrics.Inc(metrics.PasteRejectedTotal)
		h.logger.Warn("paste rejected",
			"path", r.URL.Path,
			"limit", tooLarge.Limit,
			"err", ErrPasteTooLarge,
		)
		plainError(w, http.StatusRequestEntityTooLarge)
		return
	}

	h.logger.Warn("unreadable request body", "path", r.URL.Path, "err", err)
	plainError(w, http.StatusBadRequest)
}

/* ---------------- GET {base}/highlight.css ---------------- */

func (h *Handler) HighlightCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	_, _ = w.Write(highlight.CSS())
}

/* ---------------- GET {base}/{paste}[.ext] ---------------- */

func (h *Handler) ShowPaste(w http.ResponseWriter, r *http.Request) {
	id, ext, hasExt := strings.Cut(mux.Vars(r)["paste"], ".")

	content, ok := h.pastes.Fetch(id)
	if !ok {
		plainError(w, http.StatusNotFound)
		return
	}

	if isPlaintextRequest(r) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(content)
		return
	}

	if !utf8.Valid(content) {
		h.logger.Debug("refusing to render paste", "id", id, "err", ErrNotUTF8)
		http.Error(w, ErrNotUTF8.Error(), http.StatusUnsupportedMediaType)
		return
	}

	var lines []template.HTML
	if hasExt {
		var err error
		lines, err = highlight.Lines(string(content), ext)
		switch {
		case errors.Is(err, highlight.ErrUnknownLanguage):
			plainError(w, http.StatusNotFound)
			return
		case err != nil:
			h.renderFailed(w, r, err)
			return
		}
	} else {
		lines = highlight.Plain(string(content))
	}

	h.render(w, r, pasteTemplate, pastePage{
		ID:       id,
		BasePath: h.opts.BasePath,
		Lines:    lines,
	})
}

/* ---------------- fallbacks ---------------- */

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("couldn't find resource", "method", r.Method, "uri", r.RequestURI)
	plainError(w, http.StatusNotFound)
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	plainError(w, http.StatusMethodNotAllowed)
}

/* ---------------- rendering ---------------- */

func (h *Handler) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		h.renderFailed(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.Inc(metrics.RenderFailuresTotal)
	h.logger.Error("render failed", "uri", r.RequestURI, "err", err)
	plainError(w, http.StatusInternalServerError)
}
