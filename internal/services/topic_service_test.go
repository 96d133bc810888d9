package services

import (
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/testutil"
)

func (s *ServiceSuite) TestTopic_CreateListGet() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	svc := NewTopicService(s.store, fixedClock)

	topic, err := svc.Create(s.ctx, u.ID, " Biology ", "cells")
	s.Require().NoError(err)
	s.Equal("Biology", topic.Title)
	s.Equal(fixedNow, topic.CreatedAt)

	_, err = svc.Create(s.ctx, u.ID, "  ", "")
	s.requireCode(err, errors.ErrCodeValidation)

	testutil.SeedQuestion(s.T(), s.store, topic.ID, 4)
	testutil.SeedQuestion(s.T(), s.store, topic.ID, 2)
	_, err = s.store.Documents().Insert(s.ctx, models.Document{
		TopicID: topic.ID, Filename: "notes.pdf", FilePath: "/tmp/notes.pdf", Status: models.DocumentReady, UploadedAt: fixedNow,
	})
	s.Require().NoError(err)

	list, err := svc.List(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Len(list, 1)

	detail, err := svc.Get(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	s.Equal(2, detail.QuestionCount)
	s.Require().Len(detail.Documents, 1)
	s.Equal("notes.pdf", detail.Documents[0].Filename)

	questions, err := svc.Questions(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	s.Require().Len(questions, 2)
	s.Equal(2, questions[0].Difficulty)
	s.Equal(4, questions[1].Difficulty)
}

func (s *ServiceSuite) TestTopic_HiddenFromOtherUsers() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	svc := NewTopicService(s.store, fixedClock)

	_, err := svc.Get(s.ctx, bo.ID, topic.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
	_, err = svc.Questions(s.ctx, bo.ID, topic.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
}
