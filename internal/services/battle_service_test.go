package services

import (
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/testutil"
)

func (s *ServiceSuite) battles() BattleService {
	return NewBattleService(s.store, s.notify, 3, fixedClock)
}

func (s *ServiceSuite) TestBattle_StartPicksBossDifficultyAndQuestions() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	u.TotalXP, u.Level = 650, 7
	s.Require().NoError(s.store.Users().Update(s.ctx, u))
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	for d := 1; d <= 5; d++ {
		testutil.SeedQuestion(s.T(), s.store, topic.ID, d)
	}

	start, err := s.battles().Start(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)

	s.Equal(3, start.Battle.Difficulty, "level 7 with no history")
	s.Equal(models.BattleInProgress, start.Battle.Status)
	s.Equal(0, start.Battle.Score)
	s.Equal(fixedNow, start.Battle.StartedAt)
	s.Require().Len(start.Questions, 3)
	s.Equal(3, start.Questions[0].Difficulty)
	s.Equal(2, start.Questions[1].Difficulty, "ties go to the lower id")
	s.Equal(4, start.Questions[2].Difficulty)
}

func (s *ServiceSuite) TestBattle_PoorPerformanceLowersDifficulty() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	u.TotalXP, u.Level = 650, 7
	s.Require().NoError(s.store.Users().Update(s.ctx, u))
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 3)

	for i := 0; i < 4; i++ {
		_, err := s.store.Responses().Insert(s.ctx, models.UserResponse{
			UserID: u.ID, QuestionID: q.ID, ResponseText: "B", Difficulty: 3, ResponseTime: 4, CreatedAt: fixedNow,
		})
		s.Require().NoError(err)
	}

	start, err := s.battles().Start(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	s.Equal(1, start.Battle.Difficulty)
}

func (s *ServiceSuite) TestBattle_OneActiveBattlePerTopic() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	svc := s.battles()

	first, err := svc.Start(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)

	_, err = svc.Start(s.ctx, u.ID, topic.ID)
	s.requireCode(err, errors.ErrCodeConflict)

	_, err = svc.End(s.ctx, u.ID, first.Battle.ID)
	s.Require().NoError(err)

	_, err = svc.Start(s.ctx, u.ID, topic.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestBattle_StartRequiresQuestionsAndOwnership() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	svc := s.battles()

	_, err := svc.Start(s.ctx, ana.ID, topic.ID)
	s.requireCode(err, errors.ErrCodeBadRequest)

	testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	_, err = svc.Start(s.ctx, bo.ID, topic.ID)
	s.requireCode(err, errors.ErrCodeNotFound)

	_, err = svc.Start(s.ctx, ana.ID, 999)
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *ServiceSuite) TestBattle_EndResolvesOnce() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 5)
	svc := s.battles()

	start, err := svc.Start(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	battleID := start.Battle.ID

	_, err = s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 0, BattleID: &battleID})
	s.Require().NoError(err)

	b, err := svc.End(s.ctx, u.ID, battleID)
	s.Require().NoError(err)
	s.Equal(models.BattleWon, b.Status)
	s.Require().NotNil(b.CompletedAt)
	s.Contains(s.publisher.Types(), events.BattleResolved)

	_, err = svc.End(s.ctx, u.ID, battleID)
	s.requireCode(err, errors.ErrCodeConflict)

	stored, err := svc.Get(s.ctx, u.ID, battleID)
	s.Require().NoError(err)
	s.Equal(models.BattleWon, stored.Status)
}

func (s *ServiceSuite) TestBattle_EndWithLowScoreIsLost() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	svc := s.battles()

	start, err := svc.Start(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)

	b, err := svc.End(s.ctx, u.ID, start.Battle.ID)
	s.Require().NoError(err)
	s.Equal(models.BattleLost, b.Status)
}

func (s *ServiceSuite) TestBattle_GetAndListAreScopedToUser() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	svc := s.battles()

	start, err := svc.Start(s.ctx, ana.ID, topic.ID)
	s.Require().NoError(err)

	_, err = svc.Get(s.ctx, bo.ID, start.Battle.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
	_, err = svc.End(s.ctx, bo.ID, start.Battle.ID)
	s.requireCode(err, errors.ErrCodeNotFound)

	list, err := svc.List(s.ctx, ana.ID)
	s.Require().NoError(err)
	s.Len(list, 1)

	list, err = svc.List(s.ctx, bo.ID)
	s.Require().NoError(err)
	s.Empty(list)
}
