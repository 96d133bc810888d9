package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/pdf"
	"github.com/vytor/studyrpg/internal/questiongen"
	"github.com/vytor/studyrpg/internal/repository"
)

// GenerationConfig tunes the document pipeline.
type GenerationConfig struct {
	ChunkSize            int
	QuestionsPerDocument int
	Timeout              time.Duration
}

// GenerationService turns a stored document into questions. It satisfies
// worker.DocumentProcessor.
type GenerationService interface {
	ProcessDocument(ctx context.Context, documentID int64) error
}

type generationService struct {
	store     repository.Store
	generator questiongen.Generator
	notify    Notifier
	cfg       GenerationConfig
	extract   func(path string, chunkSize int) ([]string, error)
	now       Clock
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(store repository.Store, generator questiongen.Generator, notify Notifier, cfg GenerationConfig) GenerationService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = pdf.DefaultChunkSize
	}
	if cfg.QuestionsPerDocument <= 0 {
		cfg.QuestionsPerDocument = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &generationService{
		store:     store,
		generator: generator,
		notify:    notify,
		cfg:       cfg,
		extract:   pdf.Process,
		now:       utcNow,
	}
}

// ProcessDocument extracts the document's text, generates questions from its
// first chunk and stores them. The document ends up ready or failed. Ready
// documents are left alone.
func (s *generationService) ProcessDocument(ctx context.Context, documentID int64) error {
	log := logger.FromContext(ctx).WithField("document_id", documentID)

	doc, err := s.store.Documents().Get(ctx, documentID)
	if err != nil {
		log.Error("failed to get document: %v", err)
		return errors.NewInternalError(err)
	}
	if doc == nil {
		return errors.NewNotFoundError("document", documentID)
	}
	if doc.Status == models.DocumentReady {
		log.Debug("document already processed")
		return nil
	}
	topic, err := s.store.Topics().Get(ctx, doc.TopicID)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if topic == nil {
		return errors.NewNotFoundError("topic", doc.TopicID)
	}

	if err := s.store.Documents().UpdateStatus(ctx, documentID, models.DocumentProcessing, ""); err != nil {
		log.Error("failed to mark document processing: %v", err)
		return errors.NewInternalError(err)
	}

	start := time.Now()
	count, err := s.generate(ctx, log, doc)
	if err != nil {
		log.Error("generation failed after %v: %v", time.Since(start), err)
		s.fail(ctx, log, topic.UserID, documentID, err)
		return generationError(err)
	}

	log.Info("document ready: %d questions in %v", count, time.Since(start))
	s.notify.publish(ctx, events.New(events.DocumentReady, topic.UserID, map[string]any{
		"document_id": documentID,
		"topic_id":    doc.TopicID,
		"questions":   count,
	}))
	return nil
}

func (s *generationService) generate(ctx context.Context, log *logger.Logger, doc *models.Document) (int, error) {
	chunks, err := s.extract(doc.FilePath, s.cfg.ChunkSize)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}
	if len(chunks) == 0 {
		return 0, pdf.ErrNoText
	}
	log.Debug("extracted %d chunks", len(chunks))

	if err := s.store.Documents().UpdateContent(ctx, doc.ID, strings.Join(chunks, "")); err != nil {
		return 0, fmt.Errorf("store content: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	result, err := s.generator.Generate(genCtx, chunks[0], s.cfg.QuestionsPerDocument)
	if err != nil {
		return 0, fmt.Errorf("generate questions: %w", err)
	}
	if len(result.Rejected) > 0 {
		log.Warn("dropped %d malformed questions: %+v", len(result.Rejected), result.Rejected)
	}

	docID := doc.ID
	questions := make([]models.Question, len(result.Questions))
	for i, q := range result.Questions {
		q.TopicID = doc.TopicID
		q.DocumentID = &docID
		if q.CreatedAt.IsZero() {
			q.CreatedAt = s.now()
		}
		questions[i] = q
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Questions().InsertBatch(ctx, questions); err != nil {
			return err
		}
		return tx.Documents().UpdateStatus(ctx, doc.ID, models.DocumentReady, "")
	})
	if err != nil {
		return 0, fmt.Errorf("store questions: %w", err)
	}
	return len(questions), nil
}

// fail records the failure even when ctx has been cancelled.
func (s *generationService) fail(ctx context.Context, log *logger.Logger, userID, documentID int64, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.store.Documents().UpdateStatus(ctx, documentID, models.DocumentFailed, cause.Error()); err != nil {
		log.Error("failed to mark document failed: %v", err)
	}
	s.notify.publish(ctx, events.New(events.DocumentFailed, userID, map[string]any{
		"document_id": documentID,
		"error":       cause.Error(),
	}))
}

// generationError maps pipeline failures caused by the material itself to
// bad requests and everything else to an unavailable upstream.
func generationError(err error) error {
	switch {
	case stderrors.Is(err, pdf.ErrNoText),
		stderrors.Is(err, questiongen.ErrEmptyContent),
		stderrors.Is(err, questiongen.ErrNoValidQuestions):
		appErr := errors.NewBadRequestError(err.Error())
		appErr.Err = err
		return appErr
	default:
		return errors.NewUnavailableError("question generation", err)
	}
}
