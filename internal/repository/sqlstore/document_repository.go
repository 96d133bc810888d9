package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

var documentColumns = []string{"id", "topic_id", "filename", "file_path", "content", "status", "error", "uploaded_at"}

type documentRepository struct {
	s *store
}

func scanDocument(sc scanner, d *models.Document) error {
	return sc.Scan(&d.ID, &d.TopicID, &d.Filename, &d.FilePath, &d.Content, &d.Status, &d.Error, &d.UploadedAt)
}

func (r *documentRepository) Insert(ctx context.Context, d models.Document) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("inserting document: topic_id=%d, filename=%s", d.TopicID, d.Filename)

	if d.Status == "" {
		d.Status = models.DocumentPending
	}
	id, err := r.s.insert(ctx, r.s.sb.Insert("documents").
		Columns("topic_id", "filename", "file_path", "content", "status", "error", "uploaded_at").
		Values(d.TopicID, d.Filename, d.FilePath, d.Content, string(d.Status), d.Error, d.UploadedAt))
	if err != nil {
		log.Error("failed to insert document: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *documentRepository) Get(ctx context.Context, id int64) (*models.Document, error) {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("getting document: id=%d", id)

	var d models.Document
	found, err := r.s.getOne(ctx, log,
		r.s.sb.Select(documentColumns...).From("documents").Where(squirrel.Eq{"id": id}),
		func(sc scanner) error { return scanDocument(sc, &d) })
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepository) ListByTopic(ctx context.Context, topicID int64) ([]models.Document, error) {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("listing documents: topic_id=%d", topicID)

	return r.list(ctx, log, r.s.sb.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"topic_id": topicID}).
		OrderBy("uploaded_at DESC", "id DESC"))
}

func (r *documentRepository) ListUnfinished(ctx context.Context) ([]models.Document, error) {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("listing unfinished documents")

	return r.list(ctx, log, r.s.sb.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"status": []string{string(models.DocumentPending), string(models.DocumentProcessing)}}).
		OrderBy("uploaded_at", "id"))
}

func (r *documentRepository) list(ctx context.Context, log *logger.Logger, q squirrel.SelectBuilder) ([]models.Document, error) {
	rows, err := r.s.query(ctx, q)
	if err != nil {
		log.Error("failed to list documents: %v", err)
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := scanDocument(rows, &d); err != nil {
			log.Error("failed to scan document row: %v", err)
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentRepository) UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus, errMsg string) error {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("updating document status: id=%d, status=%s", id, status)

	err := expectOne(r.s.exec(ctx, r.s.sb.Update("documents").
		Set("status", string(status)).
		Set("error", errMsg).
		Where(squirrel.Eq{"id": id})))
	if err != nil {
		log.Error("failed to update document status: %v", err)
	}
	return err
}

func (r *documentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	log := logger.FromContext(ctx).WithPrefix("document_repo")
	log.Debug("storing extracted text: id=%d, chars=%d", id, len(content))

	err := expectOne(r.s.exec(ctx, r.s.sb.Update("documents").
		Set("content", content).
		Where(squirrel.Eq{"id": id})))
	if err != nil {
		log.Error("failed to update document content: %v", err)
	}
	return err
}
