package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kittipos/lexgraph"
	"github.com/kittipos/lexgraph/search"
)

type handler struct {
	engine *lexgraph.Engine
}

func newHandler(e *lexgraph.Engine) *handler {
	return &handler{engine: e}
}

// POST /search
func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req struct {
		Query    string `json:"query"`
		CaseType string `json:"case_type,omitempty"`
		Judge    string `json:"judge_name,omitempty"`
		K        int    `json:"k,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.K < 0 || req.K > 100 {
		req.K = 0 // use default
	}

	results, err := h.engine.Search(ctx, req.Query, search.Filters{
		CaseType:  req.CaseType,
		JudgeName: req.Judge,
	}, req.K)
	if err != nil {
		h.writeEngineError(w, "search failed", err)
		return
	}
	if results == nil {
		results = []search.CaseResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}

// POST /chat
func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req struct {
		Message string `json:"message"`
		K       int    `json:"k,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	answer, err := h.engine.Ask(ctx, req.Message, req.K)
	if err != nil {
		if errors.Is(err, lexgraph.ErrChatNotConfigured) {
			writeError(w, http.StatusNotImplemented, "chat provider not configured")
			return
		}
		h.writeEngineError(w, "chat failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": answer})
}

// POST /explain
func (h *handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CaseID string `json:"case_id"`
		Query  string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CaseID == "" || req.Query == "" {
		writeError(w, http.StatusBadRequest, "case_id and query are required")
		return
	}

	exp, err := h.engine.Explain(r.Context(), req.CaseID, req.Query)
	if err != nil {
		h.writeEngineError(w, "explain failed", err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// POST /rebuild
func (h *handler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	if err := h.engine.Rebuild(ctx); err != nil {
		if errors.Is(err, lexgraph.ErrEmptyCorpus) {
			writeError(w, http.StatusUnprocessableEntity, "corpus is empty")
			return
		}
		h.writeEngineError(w, "rebuild failed", err)
		return
	}

	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		h.writeEngineError(w, "rebuild succeeded but stats failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "rebuilt",
		"stats":  stats,
	})
}

// GET /recommend?entity=...
func (h *handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		writeError(w, http.StatusBadRequest, "entity is required")
		return
	}

	recs, err := h.engine.Recommend(r.Context(), entity)
	if err != nil {
		if errors.Is(err, lexgraph.ErrEntityNotFound) {
			writeError(w, http.StatusNotFound, "entity not found in knowledge graph")
			return
		}
		h.writeEngineError(w, "recommend failed", err)
		return
	}
	if recs == nil {
		recs = []search.Recommendation{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entity":          entity,
		"recommendations": recs,
	})
}

// GET /stats
func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		h.writeEngineError(w, "stats failed", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// writeEngineError maps engine failures to responses without leaking
// internals.
func (h *handler) writeEngineError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, lexgraph.ErrEngineClosed) {
		writeError(w, http.StatusServiceUnavailable, "engine is shutting down")
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
	slog.Error(msg, "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
