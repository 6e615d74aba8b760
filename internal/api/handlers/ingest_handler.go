package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orgsearch-io/orgsearch/internal/config"
	"github.com/orgsearch-io/orgsearch/internal/core"
	ingest "github.com/orgsearch-io/orgsearch/internal/core/ingestion_engine"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

type IngestHandler struct {
	objectclient core.ObjectClient
	ingestor     *ingest.DocumentIngestor
	cfg          *config.Config
}

func NewIngestHandler(objectclient core.ObjectClient, ingestor *ingest.DocumentIngestor, cfg *config.Config) *IngestHandler {
	return &IngestHandler{objectclient: objectclient, ingestor: ingestor, cfg: cfg}
}

// UploadDocuments accepts a multipart form with one or more files plus
// optional per-job overrides, stores the raw files in object storage and
// queues an ingestion job over them.
func (h *IngestHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {

	r.ParseMultipartForm(52 << 20)

	userID, ok := r.Context().Value("user_id").(string)
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		http.Error(w, "no files provided", http.StatusBadRequest)
		return
	}

	opts := parseIngestOptions(r)

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var jobFiles []models.JobFile
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			http.Error(w, "invalid file", http.StatusBadRequest)
			return
		}

		// Sanitize filename to prevent path traversal or invalid characters
		cleanFilename := filepath.Base(header.Filename)
		docID := uuid.NewString()
		s3Key := fmt.Sprintf("%s/%s/%s", userID, docID, cleanFilename)

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		url, err := h.objectclient.UploadFile(uploadctx, h.cfg.BucketName, s3Key, file, contentType)
		file.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("upload failed: %v", err), 500)
			return
		}

		jobFiles = append(jobFiles, models.JobFile{
			Filename:    cleanFilename,
			Bucket:      h.cfg.BucketName,
			Key:         s3Key,
			Filepath:    url,
			ContentType: contentType,
			SourceID:    r.FormValue("source_id"),
		})
	}

	jobID, err := h.ingestor.Submit(r.Context(), jobFiles, opts)
	if err != nil {
		http.Error(w, fmt.Sprintf("submit job: %v", err), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"ok":     true,
		"job_id": jobID,
		"files":  len(jobFiles),
	})
}

// Progress returns the job record for polling. Unknown ids report the
// unknown status instead of a 404, so pollers can start before the record
// lands.
func (h *IngestHandler) Progress(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.ingestor.Progress(r.Context(), jobID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if job == nil {
		json.NewEncoder(w).Encode(map[string]string{
			"job_id": jobID,
			"status": models.JobUnknown,
		})
		return
	}
	json.NewEncoder(w).Encode(job)
}

func parseIngestOptions(r *http.Request) ingest.IngestOptions {
	opts := ingest.IngestOptions{
		IndexName:     r.FormValue("index_name"),
		EmbedModel:    r.FormValue("embedding_model"),
		ExtractMethod: r.FormValue("extraction_method"),
		Fallback:      true,
	}
	if v := r.FormValue("extraction_fallback"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Fallback = b
		}
	}
	if v := r.FormValue("skip_profile"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.SkipProfile = b
		}
	}
	opts.EmbedDim = formInt(r, "embedding_dimensions")
	opts.BatchUploadSize = formInt(r, "batch_upload_size")
	opts.ChunkSize = formInt(r, "chunk_size")
	opts.ChunkOverlap = formInt(r, "chunk_overlap")
	return opts
}

func formInt(r *http.Request, key string) int {
	v := r.FormValue(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
