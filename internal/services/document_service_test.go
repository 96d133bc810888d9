package services

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/pdf"
	"github.com/vytor/studyrpg/internal/questiongen"
	"github.com/vytor/studyrpg/internal/testutil"
	"github.com/vytor/studyrpg/internal/testutil/mocks"
)

func (s *ServiceSuite) generation(gen questiongen.Generator, chunks []string, extractErr error) *generationService {
	svc := NewGenerationService(s.store, gen, s.notify, GenerationConfig{QuestionsPerDocument: 3}).(*generationService)
	svc.extract = func(string, int) ([]string, error) { return chunks, extractErr }
	svc.now = fixedClock
	return svc
}

func (s *ServiceSuite) seedDocument(topicID int64, status models.DocumentStatus) models.Document {
	doc := models.Document{TopicID: topicID, Filename: "notes.pdf", FilePath: "/nowhere/notes.pdf", Status: status, UploadedAt: fixedNow}
	id, err := s.store.Documents().Insert(s.ctx, doc)
	s.Require().NoError(err)
	doc.ID = id
	return doc
}

func generated(difficulties ...int) *questiongen.Result {
	res := &questiongen.Result{}
	for _, d := range difficulties {
		q := testutil.NewQuestion(0, d)
		q.CreatedAt = fixedNow
		res.Questions = append(res.Questions, q)
	}
	return res
}

func (s *ServiceSuite) TestGeneration_StoresQuestionsAndMarksReady() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	doc := s.seedDocument(topic.ID, models.DocumentPending)

	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, "Cells divide. ", 3).Return(generated(1, 3), nil)
	svc := s.generation(gen, []string{"Cells divide. ", "Mitosis has phases."}, nil)

	s.Require().NoError(svc.ProcessDocument(s.ctx, doc.ID))

	stored, err := s.store.Documents().Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.DocumentReady, stored.Status)
	s.Equal("Cells divide. Mitosis has phases.", stored.Content)

	questions, err := s.store.Questions().ListByTopic(s.ctx, topic.ID)
	s.Require().NoError(err)
	s.Require().Len(questions, 2)
	for _, q := range questions {
		s.Require().NotNil(q.DocumentID)
		s.Equal(doc.ID, *q.DocumentID)
	}
	s.Equal([]string{events.DocumentReady}, s.publisher.Types())
	gen.AssertExpectations(s.T())

	// A ready document is not generated twice.
	s.Require().NoError(svc.ProcessDocument(s.ctx, doc.ID))
	gen.AssertNumberOfCalls(s.T(), "Generate", 1)
}

func (s *ServiceSuite) TestGeneration_ProviderFailureMarksFailed() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	doc := s.seedDocument(topic.ID, models.DocumentPending)

	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, 3).Return(nil, assertErr)
	svc := s.generation(gen, []string{"Cells divide."}, nil)

	err := svc.ProcessDocument(s.ctx, doc.ID)
	s.requireCode(err, errors.ErrCodeUnavailable)

	stored, err := s.store.Documents().Get(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.DocumentFailed, stored.Status)
	s.Contains(stored.Error, assertErr.Error())
	s.Equal([]string{events.DocumentFailed}, s.publisher.Types())

	count, err := s.store.Questions().CountByTopic(s.ctx, topic.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ServiceSuite) TestGeneration_UnreadableMaterialIsBadRequest() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	doc := s.seedDocument(topic.ID, models.DocumentPending)

	gen := new(mocks.MockGenerator)
	svc := s.generation(gen, nil, pdf.ErrNoText)

	err := svc.ProcessDocument(s.ctx, doc.ID)
	s.requireCode(err, errors.ErrCodeBadRequest)
	gen.AssertNotCalled(s.T(), "Generate", mock.Anything, mock.Anything, mock.Anything)

	err = svc.ProcessDocument(s.ctx, 999)
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *ServiceSuite) documents(queue *mocks.MockJobQueue, gen GenerationService, maxBytes int64) (DocumentService, string) {
	dir := s.T().TempDir()
	return NewDocumentService(s.store, queue, gen, dir, maxBytes, fixedClock), dir
}

func (s *ServiceSuite) TestDocument_UploadCreatesTopicAndQueuesGeneration() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueGeneration", mock.AnythingOfType("int64")).Return(nil)
	svc, dir := s.documents(queue, nil, 1<<20)

	doc, err := svc.Upload(s.ctx, u.ID, UploadInput{
		TopicTitle: "Biology",
		Filename:   "Cells.PDF",
		File:       bytes.NewReader([]byte("%PDF-1.4 fake")),
	})
	s.Require().NoError(err)
	s.Equal(models.DocumentPending, doc.Status)
	s.Equal("Cells.PDF", doc.Filename)
	s.Equal(dir, filepath.Dir(doc.FilePath))
	s.Equal(".pdf", filepath.Ext(doc.FilePath))

	content, err := os.ReadFile(doc.FilePath)
	s.Require().NoError(err)
	s.Equal("%PDF-1.4 fake", string(content))

	topic, err := s.store.Topics().Get(s.ctx, doc.TopicID)
	s.Require().NoError(err)
	s.Equal("Biology", topic.Title)
	s.Equal(u.ID, topic.UserID)

	queue.AssertCalled(s.T(), "EnqueueGeneration", doc.ID)

	got, err := svc.Get(s.ctx, u.ID, doc.ID)
	s.Require().NoError(err)
	s.Equal(doc.ID, got.ID)
}

func (s *ServiceSuite) TestDocument_UploadValidation() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	queue := new(mocks.MockJobQueue)
	svc, dir := s.documents(queue, nil, 8)

	cases := []struct {
		name   string
		userID int64
		input  UploadInput
		code   string
	}{
		{"not a pdf", ana.ID, UploadInput{TopicID: topic.ID, Filename: "notes.txt", File: bytes.NewReader([]byte("x"))}, errors.ErrCodeValidation},
		{"no topic", ana.ID, UploadInput{Filename: "notes.pdf", File: bytes.NewReader([]byte("x"))}, errors.ErrCodeValidation},
		{"empty file", ana.ID, UploadInput{TopicID: topic.ID, Filename: "notes.pdf", File: bytes.NewReader(nil)}, errors.ErrCodeValidation},
		{"too large", ana.ID, UploadInput{TopicID: topic.ID, Filename: "notes.pdf", File: bytes.NewReader([]byte("123456789"))}, errors.ErrCodeValidation},
		{"someone else's topic", bo.ID, UploadInput{TopicID: topic.ID, Filename: "notes.pdf", File: bytes.NewReader([]byte("x"))}, errors.ErrCodeNotFound},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := svc.Upload(s.ctx, tc.userID, tc.input)
			s.requireCode(err, tc.code)
		})
	}

	entries, err := os.ReadDir(dir)
	s.Require().NoError(err)
	s.Empty(entries, "rejected uploads leave no files")
	queue.AssertNotCalled(s.T(), "EnqueueGeneration", mock.Anything)
}

func (s *ServiceSuite) TestDocument_QueueFullMarksFailed() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueGeneration", mock.Anything).Return(assertErr)
	svc, _ := s.documents(queue, nil, 0)

	_, err := svc.Upload(s.ctx, u.ID, UploadInput{TopicID: topic.ID, Filename: "notes.pdf", File: bytes.NewReader([]byte("x"))})
	s.requireCode(err, errors.ErrCodeUnavailable)

	docs, err := s.store.Documents().ListByTopic(s.ctx, topic.ID)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(models.DocumentFailed, docs[0].Status)
}

func (s *ServiceSuite) TestDocument_GetHiddenFromOtherUsers() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	doc := s.seedDocument(topic.ID, models.DocumentReady)
	svc, _ := s.documents(new(mocks.MockJobQueue), nil, 0)

	_, err := svc.Get(s.ctx, bo.ID, doc.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
	_, err = svc.Get(s.ctx, ana.ID, 999)
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *ServiceSuite) TestDocument_IngestRunsSynchronously() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	path := filepath.Join(s.T().TempDir(), "notes.pdf")
	s.Require().NoError(os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))

	gen := new(mocks.MockGenerator)
	gen.On("Generate", mock.Anything, "Cells divide.", 3).Return(generated(2), nil)
	queue := new(mocks.MockJobQueue)
	svc, _ := s.documents(queue, s.generation(gen, []string{"Cells divide."}, nil), 0)

	doc, err := svc.Ingest(s.ctx, u.ID, topic.ID, path)
	s.Require().NoError(err)
	s.Equal(models.DocumentReady, doc.Status)
	s.Equal(path, doc.FilePath)
	queue.AssertNotCalled(s.T(), "EnqueueGeneration", mock.Anything)

	count, err := s.store.Questions().CountByTopic(s.ctx, topic.ID)
	s.Require().NoError(err)
	s.Equal(1, count)

	_, err = svc.Ingest(s.ctx, u.ID, topic.ID, filepath.Join(s.T().TempDir(), "missing.pdf"))
	s.requireCode(err, errors.ErrCodeValidation)
}

func (s *ServiceSuite) TestDocument_ResumeRequeuesUnfinished() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	pending := s.seedDocument(topic.ID, models.DocumentPending)
	processing := s.seedDocument(topic.ID, models.DocumentProcessing)
	s.seedDocument(topic.ID, models.DocumentReady)

	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueGeneration", pending.ID).Return(nil)
	queue.On("EnqueueGeneration", processing.ID).Return(assertErr)
	svc, _ := s.documents(queue, nil, 0)

	n, err := svc.Resume(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	queue.AssertNumberOfCalls(s.T(), "EnqueueGeneration", 2)
}
