package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/leapstack-labs/sqlkit/internal/watch"
	"github.com/leapstack-labs/sqlkit/pkg/lint"
	"github.com/leapstack-labs/sqlkit/pkg/sqltext"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Request is the body accepted by every /v1 endpoint.
type Request struct {
	SQL      string           `json:"sql"`
	Bindings sqltext.Bindings `json:"bindings,omitempty"`
	Options  *FormatOptions   `json:"options,omitempty"`
}

// FormatOptions overrides the server's formatting defaults per request.
type FormatOptions struct {
	KeywordCase string  `json:"keyword_case,omitempty"`
	Indent      *string `json:"indent,omitempty"`
	Semicolon   *bool   `json:"semicolon,omitempty"`
}

// SQLResponse carries rewritten query text.
type SQLResponse struct {
	SQL string `json:"sql"`
}

// TablesResponse is returned by /v1/tables.
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// TypeResponse is returned by /v1/type.
type TypeResponse struct {
	Type sqltext.QueryType `json:"type"`
}

// VariablesResponse is returned by /v1/variables.
type VariablesResponse struct {
	Variables []string `json:"variables"`
	Missing   []string `json:"missing,omitempty"`
}

// RenderResponse is returned by /v1/render.
type RenderResponse struct {
	SQL     string   `json:"sql"`
	Missing []string `json:"missing,omitempty"`
}

// ErrorResponse is returned on failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Handlers provides the HTTP handlers of the API.
type Handlers struct {
	lint     *lint.Config
	format   sqltext.Options
	notifier *watch.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance. notify may be nil, in which
// case /v1/events answers 404.
func NewHandlers(lintCfg *lint.Config, format sqltext.Options, notify *watch.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		lint:     lintCfg,
		format:   format,
		notifier: notify,
		logger:   logger,
	}
}

// Health reports that the server is up.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Format formats the query.
func (h *Handlers) Format(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	opts, err := h.formatOptions(req.Options)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, SQLResponse{SQL: sqltext.FormatWithOptions(req.SQL, opts)})
}

// Minify collapses whitespace and strips comments.
func (h *Handlers) Minify(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, SQLResponse{SQL: sqltext.Minify(req.SQL)})
}

// Compact minifies and drops spaces around punctuation.
func (h *Handlers) Compact(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, SQLResponse{SQL: sqltext.Compact(req.SQL)})
}

// Tables lists the referenced tables.
func (h *Handlers) Tables(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, TablesResponse{Tables: sqltext.ExtractTableNames(req.SQL)})
}

// Validate checks the query. Invalid queries are still a 200: the result
// is the payload.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, sqltext.ValidateWithConfig(req.SQL, h.lint))
}

// Type classifies the query.
func (h *Handlers) Type(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, TypeResponse{Type: sqltext.GetQueryType(req.SQL)})
}

// Variables lists placeholders and, when bindings are given, the unbound ones.
func (h *Handlers) Variables(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	resp := VariablesResponse{Variables: sqltext.ExtractVariables(req.SQL)}
	if req.Bindings != nil {
		resp.Missing = sqltext.MissingVariables(req.SQL, req.Bindings)
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// Render substitutes bindings into the query.
func (h *Handlers) Render(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, RenderResponse{
		SQL:     sqltext.ReplaceVariables(req.SQL, req.Bindings),
		Missing: sqltext.MissingVariables(req.SQL, req.Bindings),
	})
}

// Events streams watcher validation events as server-sent events.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		h.writeError(w, r, http.StatusNotFound, errors.New("file watching is not enabled"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, r, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("failed to encode event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: validation\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handlers) formatOptions(o *FormatOptions) (sqltext.Options, error) {
	opts := h.format
	if o == nil {
		return opts, nil
	}
	if o.KeywordCase != "" {
		kc, err := sqltext.ParseKeywordCase(o.KeywordCase)
		if err != nil {
			return opts, err
		}
		opts.KeywordCase = kc
	}
	if o.Indent != nil {
		opts.Indent = *o.Indent
	}
	if o.Semicolon != nil {
		opts.EnsureSemicolon = *o.Semicolon
	}
	return opts, nil
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		h.writeError(w, r, http.StatusUnsupportedMediaType, fmt.Errorf("unsupported content type %q", ct))
		return req, false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeError(w, r, status, fmt.Errorf("invalid request body: %w", err))
		return req, false
	}
	return req, true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "id", GetRequestID(r.Context()), "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.writeJSON(w, r, status, ErrorResponse{Error: err.Error(), RequestID: GetRequestID(r.Context())})
}
