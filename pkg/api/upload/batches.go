package upload

import (
	"encoding/json"
	"net/http"
	"strconv"

	"supplysight/pkg/core/store"
	"supplysight/pkg/logger"
)

// BatchesHandler serves historical batch outcomes from the audit log.
type BatchesHandler struct {
	repo *store.OutcomeRepo
	log  *logger.Logger
}

func NewBatchesHandler(repo *store.OutcomeRepo, log *logger.Logger) *BatchesHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &BatchesHandler{repo: repo, log: log}
}

// HandleList returns a user's recent batch reports, newest first.
// GET /api/batches?userId=...&limit=20
func (h *BatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.repo == nil {
		http.Error(w, "batch archive not configured", http.StatusServiceUnavailable)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	batches, err := h.repo.ListRecent(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("list batches", "userId", userID, "error", err)
		http.Error(w, "failed to list batches", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(batches); err != nil {
		h.log.Error("encode batches", "error", err)
	}
}
