package api

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/services"
)

// multipartOverhead leaves room for the form fields around the file.
const multipartOverhead = 1 << 20

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if s.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			handleError(w, r, errors.NewValidationError("pdf_file", "upload is too large"))
			return
		}
		handleError(w, r, errors.NewBadRequestError("expected a multipart form"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("pdf_file")
	if err != nil {
		handleError(w, r, errors.NewValidationError("pdf_file", "is required"))
		return
	}
	defer file.Close()

	input := services.UploadInput{
		TopicTitle:       r.FormValue("topic_title"),
		TopicDescription: r.FormValue("topic_description"),
		Filename:         header.Filename,
		File:             file,
	}
	if raw := strings.TrimSpace(r.FormValue("topic_id")); raw != "" {
		input.TopicID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || input.TopicID <= 0 {
			handleError(w, r, errors.NewValidationError("topic_id", "must be a positive integer"))
			return
		}
	}

	log.Debug("upload received: file=%s, size=%d", header.Filename, header.Size)
	doc, err := s.Documents.Upload(r.Context(), currentUser(r), input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	doc, err := s.Documents.Get(r.Context(), currentUser(r), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, doc)
}
