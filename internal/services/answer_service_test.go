package services

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/progression"
	"github.com/vytor/studyrpg/internal/testutil"
	"github.com/vytor/studyrpg/internal/testutil/mocks"
)

func (s *ServiceSuite) answers() AnswerService {
	return NewAnswerService(s.store, s.notify, fixedClock)
}

func (s *ServiceSuite) TestAnswer_CorrectTrainingAnswer() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 2)
	training := s.seedQuest(u.ID, models.QuestTraining, 3, 50)
	s.seedQuest(u.ID, models.QuestBattle, 3, 50)

	res, err := s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 5})
	s.Require().NoError(err)

	xp, err := progression.CalculateXP(true, 5, 2)
	s.Require().NoError(err)
	s.True(res.IsCorrect)
	s.Equal("A", res.CorrectAnswer)
	s.Equal(q.Explanation, res.Explanation)
	s.Equal(xp, res.XPEarned)
	s.Equal(0, res.ComboBonus)
	s.Equal(xp, res.NewTotalXP)
	s.Equal(progression.LevelForXP(xp), res.NewLevel)
	s.Nil(res.BattleStatus)
	s.Empty(res.CompletedQuestIDs)

	stored := s.user(u.ID)
	s.Equal(xp, stored.TotalXP)
	s.Equal(1, s.responseCount(u.ID))

	quests, err := s.store.Quests().ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	for _, got := range quests {
		if got.ID == training.ID {
			s.Equal(1, got.Progress)
		} else {
			s.Equal(0, got.Progress, "battle quests only move in battles")
		}
	}

	s.Equal([]string{events.AnswerSubmitted}, s.publisher.Types())
	s.board.AssertNumberOfCalls(s.T(), "Record", 1)
}

func (s *ServiceSuite) TestAnswer_IncorrectEarnsConsolationXP() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 3)
	quest := s.seedQuest(u.ID, models.QuestTraining, 3, 50)

	res, err := s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "B", ResponseTime: 2})
	s.Require().NoError(err)

	s.False(res.IsCorrect)
	s.Equal("A", res.CorrectAnswer)
	s.Equal(3, res.XPEarned)
	s.Equal(0, res.ComboBonus)
	s.Equal(3, s.user(u.ID).TotalXP)

	open, err := s.store.Quests().ListOpen(s.ctx, u.ID, models.QuestTraining)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(quest.ID, open[0].ID)
	s.Equal(0, open[0].Progress)
}

func (s *ServiceSuite) TestAnswer_MatchingIsExact() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)

	res, err := s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "a ", ResponseTime: 2})
	s.Require().NoError(err)
	s.False(res.IsCorrect)
}

func (s *ServiceSuite) TestAnswer_ComboFollowsStreak() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	svc := s.answers()

	submit := func(option string) *AnswerResult {
		res, err := svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: option, ResponseTime: 3})
		s.Require().NoError(err)
		return res
	}

	s.Equal(0, submit("A").ComboBonus)
	s.Equal(progression.ComboBonus(2), submit("A").ComboBonus)
	s.Equal(progression.ComboBonus(3), submit("A").ComboBonus)
	s.Equal(0, submit("C").ComboBonus)
	s.Equal(0, submit("A").ComboBonus, "streak restarts after a miss")
}

func (s *ServiceSuite) TestAnswer_XPIncludesCombo() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	svc := s.answers()

	total := 0
	for i := 0; i < 3; i++ {
		res, err := svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3})
		s.Require().NoError(err)
		total += res.XPEarned + res.ComboBonus
		s.Equal(total, res.NewTotalXP)
	}
	s.Equal(total, s.user(u.ID).TotalXP)
}

func (s *ServiceSuite) TestAnswer_LevelUp() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	u.TotalXP = 95
	s.Require().NoError(s.store.Users().Update(s.ctx, u))
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 2)

	res, err := s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 5})
	s.Require().NoError(err)

	s.True(res.LeveledUp)
	s.Equal(2, res.NewLevel)
	s.Equal(2, s.user(u.ID).Level)
	s.Contains(s.publisher.Types(), events.UserLeveledUp)
}

func (s *ServiceSuite) TestAnswer_QuestRewardPaidOnce() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	quest := s.seedQuest(u.ID, models.QuestTraining, 1, 50)
	svc := s.answers()

	first, err := svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3})
	s.Require().NoError(err)
	s.Equal([]int64{quest.ID}, first.CompletedQuestIDs)
	s.Equal(first.XPEarned+50, first.NewTotalXP)
	s.Contains(s.publisher.Types(), events.QuestCompleted)

	second, err := svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3})
	s.Require().NoError(err)
	s.Empty(second.CompletedQuestIDs)
	s.Equal(first.NewTotalXP+second.XPEarned+second.ComboBonus, second.NewTotalXP)

	quests, err := s.store.Quests().ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(quests, 1)
	s.True(quests[0].Completed)
	s.Equal(1, quests[0].Progress)
}

func (s *ServiceSuite) TestAnswer_BattleScoresAndQuests() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	battleQuest := s.seedQuest(u.ID, models.QuestBattle, 5, 100)
	trainingQuest := s.seedQuest(u.ID, models.QuestTraining, 5, 100)

	start, err := NewBattleService(s.store, s.notify, 5, fixedClock).Start(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	battleID := start.Battle.ID

	res, err := s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3, BattleID: &battleID})
	s.Require().NoError(err)
	s.Require().NotNil(res.BattleScore)
	s.Equal(res.XPEarned, *res.BattleScore, "battle score excludes the combo bonus")
	s.Require().NotNil(res.BattleStatus)
	s.Equal(models.BattleInProgress, *res.BattleStatus)

	miss, err := s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "B", ResponseTime: 3, BattleID: &battleID})
	s.Require().NoError(err)
	s.Equal(res.XPEarned, *miss.BattleScore)

	stored, err := s.store.Battles().Get(s.ctx, battleID)
	s.Require().NoError(err)
	s.Equal(res.XPEarned, stored.Score)

	quests, err := s.store.Quests().ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	for _, got := range quests {
		switch got.ID {
		case battleQuest.ID:
			s.Equal(1, got.Progress)
		case trainingQuest.ID:
			s.Equal(0, got.Progress)
		}
	}
}

func (s *ServiceSuite) TestAnswer_ResolvedBattleRollsBack() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	battles := NewBattleService(s.store, s.notify, 5, fixedClock)

	start, err := battles.Start(s.ctx, u.ID, topic.ID)
	s.Require().NoError(err)
	_, err = battles.End(s.ctx, u.ID, start.Battle.ID)
	s.Require().NoError(err)

	battleID := start.Battle.ID
	_, err = s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3, BattleID: &battleID})
	s.requireCode(err, errors.ErrCodeConflict)

	s.Equal(0, s.responseCount(u.ID))
	s.Equal(0, s.user(u.ID).TotalXP)
}

func (s *ServiceSuite) TestAnswer_BattleMustMatchQuestionTopic() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	bio := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	chem := testutil.SeedTopic(s.T(), s.store, u.ID, "Chemistry")
	testutil.SeedQuestion(s.T(), s.store, bio.ID, 1)
	q := testutil.SeedQuestion(s.T(), s.store, chem.ID, 1)

	start, err := NewBattleService(s.store, s.notify, 5, fixedClock).Start(s.ctx, u.ID, bio.ID)
	s.Require().NoError(err)

	battleID := start.Battle.ID
	_, err = s.answers().Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3, BattleID: &battleID})
	s.requireCode(err, errors.ErrCodeValidation)
	s.Equal(0, s.responseCount(u.ID))
}

func (s *ServiceSuite) TestAnswer_OtherUsersBattleIsHidden() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)

	start, err := NewBattleService(s.store, s.notify, 5, fixedClock).Start(s.ctx, ana.ID, topic.ID)
	s.Require().NoError(err)

	battleID := start.Battle.ID
	_, err = s.answers().Submit(s.ctx, bo.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3, BattleID: &battleID})
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *ServiceSuite) TestAnswer_OtherUsersQuestionIsHidden() {
	ana := testutil.SeedUser(s.T(), s.store, "ana")
	bo := testutil.SeedUser(s.T(), s.store, "bo")
	topic := testutil.SeedTopic(s.T(), s.store, ana.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 3)
	s.seedQuest(bo.ID, models.QuestTraining, 1, 50)

	res, err := s.answers().Submit(s.ctx, bo.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 5})
	s.requireCode(err, errors.ErrCodeNotFound)
	s.Nil(res)

	s.Equal(0, s.user(bo.ID).TotalXP)
	s.Equal(0, s.responseCount(bo.ID))
	quests, err := s.store.Quests().ListByUser(s.ctx, bo.ID)
	s.Require().NoError(err)
	for _, got := range quests {
		s.Zero(got.Progress)
	}
	s.Empty(s.publisher.Types())
}

func (s *ServiceSuite) TestAnswer_RejectsBadInput() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)
	svc := s.answers()

	_, err := svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, ResponseTime: 3})
	s.requireCode(err, errors.ErrCodeValidation)

	_, err = svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: -1})
	s.requireCode(err, errors.ErrCodeValidation)

	_, err = svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: 999, SelectedOption: "A", ResponseTime: 3})
	s.requireCode(err, errors.ErrCodeNotFound)

	_, err = svc.Submit(s.ctx, 999, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3})
	s.requireCode(err, errors.ErrCodeNotFound)

	s.Equal(0, s.responseCount(u.ID))
	s.Empty(s.publisher.Types())
}

func (s *ServiceSuite) TestAnswer_SideEffectFailuresAreIgnored() {
	board := new(mocks.MockBoard)
	board.On("Record", mock.Anything, mock.Anything).Return(assertErr)
	publisher := new(mocks.MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(assertErr)
	svc := NewAnswerService(s.store, Notifier{Board: board, Publisher: publisher}, fixedClock)

	u := testutil.SeedUser(s.T(), s.store, "ana")
	topic := testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")
	q := testutil.SeedQuestion(s.T(), s.store, topic.ID, 1)

	res, err := svc.Submit(s.ctx, u.ID, AnswerInput{QuestionID: q.ID, SelectedOption: "A", ResponseTime: 3})
	s.Require().NoError(err)
	s.True(res.IsCorrect)
	board.AssertExpectations(s.T())
	publisher.AssertExpectations(s.T())
}
