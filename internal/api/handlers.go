package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fundlog/pkg/fundlog"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.svc.ListHoldings(r.Context())
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

// replaceHoldings swaps the whole holdings list. Entries with a blank code or
// a non-positive quantity are dropped; single-element arrays are unwrapped.
func (h *handler) replaceHoldings(w http.ResponseWriter, r *http.Request) {
	var inputs []fundlog.HoldingInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid holdings payload: "+err.Error())
		return
	}
	stored, err := h.svc.ReplaceAllHoldings(r.Context(), inputs)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	holdings, err := h.svc.ListHoldings(r.Context())
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, replaceHoldingsResponse{Stored: stored, Holdings: holdings})
}

func (h *handler) upsertHolding(w http.ResponseWriter, r *http.Request) {
	var payload holdingPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.UpsertHolding(r.Context(), payload.Code, payload.Quantity); err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, holdingPayload{
		Code:     strings.ToUpper(strings.TrimSpace(payload.Code)),
		Quantity: payload.Quantity,
	})
}

func (h *handler) deleteHolding(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	deleted, err := h.svc.DeleteHolding(r.Context(), code)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeErrorResponse(w, r, http.StatusNotFound, fundlog.NewError(fundlog.ErrCodeNotFound, "holding "+code+" not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// refreshPortfolio runs the pipeline. A degraded snapshot (partial or
// unavailable) is still a 200; its status field tells the client.
func (h *handler) refreshPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeErrorResponse(w, r, http.StatusServiceUnavailable, err)
		return
	}
	resp := refreshResponse{
		Snapshot:   snap,
		Categories: fundlog.Categories(snap.Records),
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		resp.Category = category
		resp.Records = fundlog.FilterByCategory(snap.Records, category)
		resp.Summary = fundlog.Summarize(resp.Records)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListHistory(r.Context())
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) getHistorySummary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListHistory(r.Context())
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, fundlog.SummarizeHistory(entries))
}

func (h *handler) getRefreshLogs(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), defaultLogLimit)
	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	logs, err := h.svc.ListRefreshLogs(r.Context(), limit)
	if err != nil {
		writeErrorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}
