package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/jobs"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository"
)

// UploadInput is a PDF upload. Either TopicID names an existing topic or
// TopicTitle creates a new one.
type UploadInput struct {
	TopicID          int64
	TopicTitle       string
	TopicDescription string
	Filename         string
	File             io.Reader
}

// DocumentService handles study material uploads
type DocumentService interface {
	// Upload stores the file and queues question generation.
	Upload(ctx context.Context, userID int64, input UploadInput) (*models.Document, error)
	Get(ctx context.Context, userID, documentID int64) (*models.Document, error)
	// Ingest registers a PDF already on disk and generates its questions
	// before returning.
	Ingest(ctx context.Context, userID, topicID int64, path string) (*models.Document, error)
	// Resume requeues documents left pending or processing by a previous run.
	Resume(ctx context.Context) (int, error)
}

type documentService struct {
	store      repository.Store
	jobQueue   jobs.JobQueue
	generation GenerationService
	uploadDir  string
	maxBytes   int64
	now        Clock
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(store repository.Store, jobQueue jobs.JobQueue, generation GenerationService, uploadDir string, maxBytes int64, now Clock) DocumentService {
	return &documentService{
		store:      store,
		jobQueue:   jobQueue,
		generation: generation,
		uploadDir:  uploadDir,
		maxBytes:   maxBytes,
		now:        now.orDefault(),
	}
}

func (s *documentService) Upload(ctx context.Context, userID int64, input UploadInput) (*models.Document, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)

	if !isPDF(input.Filename) {
		return nil, errors.NewValidationError("pdf_file", "only .pdf files are accepted")
	}
	if input.TopicID <= 0 && strings.TrimSpace(input.TopicTitle) == "" {
		return nil, errors.NewValidationError("topic", "topic_id or topic_title is required")
	}
	if input.TopicID > 0 {
		if _, err := ownedTopic(ctx, s.store.Topics(), userID, input.TopicID); err != nil {
			return nil, err
		}
	}

	path, err := s.save(input.File)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		log.Error("failed to store upload: %v", err)
		return nil, errors.NewInternalError(err)
	}

	doc := models.Document{
		TopicID:    input.TopicID,
		Filename:   filepath.Base(input.Filename),
		FilePath:   path,
		Status:     models.DocumentPending,
		UploadedAt: s.now(),
	}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if doc.TopicID <= 0 {
			topic, err := createTopic(ctx, tx, userID, input.TopicTitle, input.TopicDescription, doc.UploadedAt)
			if err != nil {
				return err
			}
			doc.TopicID = topic.ID
		}
		id, err := tx.Documents().Insert(ctx, doc)
		if err != nil {
			return err
		}
		doc.ID = id
		return nil
	})
	if err != nil {
		_ = os.Remove(path)
		log.Error("failed to record upload: %v", err)
		return nil, appError(err)
	}

	if err := s.jobQueue.EnqueueGeneration(doc.ID); err != nil {
		log.Error("failed to queue generation for document %d: %v", doc.ID, err)
		msg := fmt.Sprintf("could not queue generation: %v", err)
		if uerr := s.store.Documents().UpdateStatus(context.WithoutCancel(ctx), doc.ID, models.DocumentFailed, msg); uerr != nil {
			log.Error("failed to mark document failed: %v", uerr)
		}
		return nil, errors.NewUnavailableError("question generation", err)
	}

	log.Info("document uploaded: id=%d, topic_id=%d, file=%s", doc.ID, doc.TopicID, doc.Filename)
	return &doc, nil
}

// save copies r to a fresh file in the upload directory, enforcing the size
// limit.
func (s *documentService) save(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.NewValidationError("pdf_file", "is required")
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.uploadDir, uuid.NewString()+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	switch {
	case err != nil:
	case n == 0:
		err = errors.NewValidationError("pdf_file", "is empty")
	case s.maxBytes > 0 && n > s.maxBytes:
		err = errors.NewValidationError("pdf_file", fmt.Sprintf("exceeds %d MB", s.maxBytes>>20))
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *documentService) Get(ctx context.Context, userID, documentID int64) (*models.Document, error) {
	log := logger.FromContext(ctx)

	doc, err := s.store.Documents().Get(ctx, documentID)
	if err != nil {
		log.Error("failed to get document: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if doc == nil {
		return nil, errors.NewNotFoundError("document", documentID)
	}
	if _, err := ownedTopic(ctx, s.store.Topics(), userID, doc.TopicID); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("document", documentID)
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Ingest(ctx context.Context, userID, topicID int64, path string) (*models.Document, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)

	if !isPDF(path) {
		return nil, errors.NewValidationError("path", "only .pdf files are accepted")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewValidationError("path", err.Error())
	}
	if _, err := ownedTopic(ctx, s.store.Topics(), userID, topicID); err != nil {
		return nil, err
	}

	doc := models.Document{
		TopicID:    topicID,
		Filename:   filepath.Base(path),
		FilePath:   path,
		Status:     models.DocumentPending,
		UploadedAt: s.now(),
	}
	id, err := s.store.Documents().Insert(ctx, doc)
	if err != nil {
		log.Error("failed to record document: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("ingesting %s as document %d", path, id)
	if err := s.generation.ProcessDocument(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

func (s *documentService) Resume(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	docs, err := s.store.Documents().ListUnfinished(ctx)
	if err != nil {
		log.Error("failed to list unfinished documents: %v", err)
		return 0, errors.NewInternalError(err)
	}

	queued := 0
	for _, d := range docs {
		if err := s.jobQueue.EnqueueGeneration(d.ID); err != nil {
			log.Warn("failed to requeue document %d: %v", d.ID, err)
			continue
		}
		queued++
	}
	if queued > 0 {
		log.Info("requeued %d unfinished documents", queued)
	}
	return queued, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
