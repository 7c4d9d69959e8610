// Package api exposes the daemon to its UI surfaces: the trigger endpoint,
// the per-page event stream the injected UI subscribes to, the popup pickup
// endpoint, and the credential settings endpoints.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shirase/yoyaku/internal/delivery"
	"github.com/shirase/yoyaku/internal/extract"
	"github.com/shirase/yoyaku/internal/orchestrator"
	"github.com/shirase/yoyaku/internal/store"
)

const maxSummarizeBodySize = 10 << 20 // 10MB

// fetchTimeout bounds URL source fetches; the summarization call itself is
// not bounded here.
const fetchTimeout = 10 * time.Second

// Deps holds the dependencies of the HTTP handler.
type Deps struct {
	Orch       *orchestrator.Orchestrator
	Hub        *delivery.Hub
	Store      *store.Store
	Token      string
	HTTPClient *http.Client // for URL source fetches
}

// NewHandler builds the daemon's router. Trigger, event stream, and health
// are open (page scripts cannot hold secrets); the settings and popup
// endpoints require the bearer token.
func NewHandler(deps Deps) http.Handler {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{Timeout: fetchTimeout}
	}

	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/summarize", handleSummarize(deps))
	r.Get("/pages/{page}/events", handlePageEvents(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))
		r.Get("/popup", handlePopup(deps))
		r.Put("/credential", handlePutCredential(deps))
		r.Delete("/credential", handleDeleteCredential(deps))
		r.Post("/credential/test", handleTestCredential(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SummarizeRequest is the trigger payload. Exactly one source field (text,
// html, url, or pdf) must be set; page is the destination handle for event
// delivery.
type SummarizeRequest struct {
	Text string `json:"text"`
	HTML string `json:"html"`
	URL  string `json:"url"`
	PDF  string `json:"pdf"` // base64-encoded document
	Page string `json:"page"`
}

func handleSummarize(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSummarizeBodySize)
		defer r.Body.Close()

		var req SummarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Page == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "page is required")
			return
		}

		sourceText, err := resolveSource(r.Context(), deps.HTTPClient, req)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		id := deps.Orch.Start(orchestrator.Request{
			SourceText:  sourceText,
			Destination: req.Page,
		})

		writeJSON(w, http.StatusAccepted, map[string]string{
			"request_id": id,
			"status":     "accepted",
		})
	}
}

// resolveSource reduces the request's source field to the plain text the
// orchestrator summarizes.
func resolveSource(ctx context.Context, client *http.Client, req SummarizeRequest) (string, error) {
	switch {
	case req.Text != "":
		return req.Text, nil
	case req.HTML != "":
		text := extract.HTMLText(req.HTML)
		if text == "" {
			return "", fmt.Errorf("html fragment contains no text")
		}
		return text, nil
	case req.URL != "":
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		_, text, err := extract.Article(fetchCtx, client, req.URL)
		if err != nil {
			return "", err
		}
		return text, nil
	case req.PDF != "":
		data, err := base64.StdEncoding.DecodeString(req.PDF)
		if err != nil {
			return "", fmt.Errorf("invalid base64 pdf: %w", err)
		}
		return extract.PDFText(data)
	default:
		return "", fmt.Errorf("one of text, html, url, or pdf is required")
	}
}

func handlePageEvents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := chi.URLParam(r, "page")
		if page == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "page is required")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			httpError(w, http.StatusInternalServerError, "api_error", "streaming unsupported")
			return
		}

		ch, cancel := deps.Hub.Subscribe(page)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-ch:
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
				flusher.Flush()
			}
		}
	}
}

// PopupState is the popup pickup response: both fallback slots drained
// read-once, plus whether attention was requested since the last open.
type PopupState struct {
	Result    *store.ResultPayload `json:"result"`
	Error     *store.ErrorPayload  `json:"error"`
	Attention bool                 `json:"attention"`
}

func handlePopup(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := deps.Store.TakeResult()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading result slot: %v", err)
			return
		}
		errPayload, err := deps.Store.TakeError()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading error slot: %v", err)
			return
		}
		attention, err := deps.Store.TakeAttention()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading attention flag: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, PopupState{
			Result:    result,
			Error:     errPayload,
			Attention: attention,
		})
	}
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

func handlePutCredential(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.APIKey) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "api_key is required")
			return
		}
		if err := deps.Store.SetCredential(strings.TrimSpace(req.APIKey)); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "storing credential: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleDeleteCredential(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.ClearCredential(); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "clearing credential: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleTestCredential(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := deps.Orch.TestKey(r.Context())
		writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
