package worker

import "context"

// DocumentProcessor turns an uploaded document into questions. It lives here
// rather than in services so this package stays free of service imports.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, documentID int64) error
}

// GenerateQuestionsJob extracts a document's text and generates its questions.
type GenerateQuestionsJob struct {
	Processor  DocumentProcessor
	DocumentID int64
}

func (j *GenerateQuestionsJob) Name() string { return "generate_questions" }

func (j *GenerateQuestionsJob) Run(ctx context.Context) error {
	return j.Processor.ProcessDocument(ctx, j.DocumentID)
}
