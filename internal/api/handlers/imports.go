// Package handlers exposes the HTTP surface: CSV upload, import job
// lookup and materialized stats queries.
package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/marcinh992/bank-transactions-api/internal/api/middleware"
	"github.com/marcinh992/bank-transactions-api/internal/importjob"
)

var yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ImportsHandler handles import-related endpoints.
type ImportsHandler struct {
	service        *importjob.Service
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(service *importjob.Service, maxUploadBytes int64, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// CreateImport handles POST /api/v1/imports
func (h *ImportsHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "uploaded file exceeds the size limit")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "request body must be multipart/form-data")
		return
	}

	yearMonth := r.FormValue("yearMonth")
	if !yearMonthPattern.MatchString(yearMonth) {
		middleware.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "yearMonth must be in YYYY-MM format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "IMPORT_FILE_INVALID", "no file uploaded")
		return
	}
	defer file.Close()

	job, err := h.service.CreateImport(ctx, yearMonth, header.Filename, file)
	if err != nil {
		h.log.Error().Err(err).Str("year_month", yearMonth).Msg("Failed to create import")
		middleware.WriteAppError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, job)
}

// GetImport handles GET /api/v1/imports/{jobId}
func (h *ImportsHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := mux.Vars(r)["jobId"]

	job, err := h.service.GetImport(ctx, jobID)
	if err != nil {
		middleware.WriteAppError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}
