package services

import (
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/testutil"
)

func (s *ServiceSuite) TestTraining_ColdStartPicksEasiest() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	first := testutil.SeedQuestion(s.T(), s.store, topic.ID, 2)
	testutil.SeedQuestion(s.T(), s.store, topic.ID, 2)
	testutil.SeedQuestion(s.T(), s.store, topic.ID, 4)

	next, err := NewTrainingService(s.store, 10).NextQuestion(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	s.Equal(1, next.RecommendedDifficulty)
	s.Equal(first.ID, next.Question.ID, "closest difficulty, lowest id")
}

func (s *ServiceSuite) TestTraining_EscalatesAfterFastCorrectAnswers() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q3 := testutil.SeedQuestion(s.T(), s.store, topic.ID, 3)
	q4 := testutil.SeedQuestion(s.T(), s.store, topic.ID, 4)
	testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)

	for i := 0; i < 5; i++ {
		_, err := s.store.Responses().Insert(s.ctx, models.UserResponse{
			UserID: u.ID, QuestionID: q3.ID, ResponseText: "A", IsCorrect: true,
			ResponseTime: 5, Difficulty: 3, CreatedAt: fixedNow,
		})
		s.Require().NoError(err)
	}

	next, err := NewTrainingService(s.store, 10).NextQuestion(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	s.Equal(4, next.RecommendedDifficulty)
	s.Equal(q4.ID, next.Question.ID)
}

func (s *ServiceSuite) TestTraining_Errors() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	svc := NewTrainingService(s.store, 10)

	_, err := svc.NextQuestion(s.ctx, ana.ID, topic.ID)
	s.requireCode(err, errors.ErrCodeNotFound)

	testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	_, err = svc.NextQuestion(s.ctx, bo.ID, topic.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
}
