// Package upload exposes the ingestion pipeline over HTTP. The handler is
// a thin adapter: authentication and sessions are the caller's problem,
// finished before these endpoints are reached.
package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"supplysight/pkg/core/pipeline"
	"supplysight/pkg/logger"
)

// maxUploadBytes bounds one submission (all files together).
const maxUploadBytes = 64 << 20

// Handler serves the upload endpoints.
type Handler struct {
	orch *pipeline.Orchestrator
	log  *logger.Logger
}

func NewHandler(orch *pipeline.Orchestrator, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{orch: orch, log: log}
}

// HandleUpload accepts a multipart POST. Each file part's form name is the
// target schema type label; a "userId" value field identifies the owner.
// The response is always a complete batch outcome, never a bare error for
// per-file problems.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, false)
}

// HandlePreview is HandleUpload without persistence: a dry run for
// reviewing the inferred mapping before committing an import.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, true)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, preview bool) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, files, err := parseSubmission(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var outcome *pipeline.BatchOutcome
	if preview {
		outcome = h.orch.Preview(r.Context(), userID, files)
	} else {
		outcome = h.orch.Run(r.Context(), userID, files)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		h.log.Error("encode batch outcome", "error", err)
	}
}

func parseSubmission(r *http.Request) (string, []pipeline.UploadFile, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("parse multipart form: %v", err)
	}

	userID := r.FormValue("userId")
	if userID == "" {
		return "", nil, fmt.Errorf("userId form value is required")
	}

	var files []pipeline.UploadFile
	for schemaType, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return "", nil, fmt.Errorf("open uploaded file %q: %v", fh.Filename, err)
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return "", nil, fmt.Errorf("read uploaded file %q: %v", fh.Filename, err)
			}
			files = append(files, pipeline.UploadFile{
				Name:       fh.Filename,
				SchemaType: schemaType,
				Content:    content,
			})
		}
	}
	if len(files) == 0 {
		return "", nil, fmt.Errorf("no files in submission")
	}
	return userID, files, nil
}
