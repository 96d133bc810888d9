package services

import (
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/testutil"
)

func (s *ServiceSuite) quests() QuestService {
	return NewQuestService(s.store, s.notify, fixedClock)
}

func (s *ServiceSuite) TestQuest_UpdateProgressRewardsOnce() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	q := s.seedQuest(u.ID, models.QuestTraining, 2, 120)
	s.seedQuest(u.ID, models.QuestBattle, 1, 30)
	svc := s.quests()

	done, err := svc.UpdateQuestProgress(s.ctx, u.ID, models.QuestTraining, 1)
	s.Require().NoError(err)
	s.Empty(done)
	s.Equal(0, s.user(u.ID).TotalXP)

	done, err = svc.UpdateQuestProgress(s.ctx, u.ID, models.QuestTraining, 5)
	s.Require().NoError(err)
	s.Equal([]int64{q.ID}, done)
	user := s.user(u.ID)
	s.Equal(120, user.TotalXP)
	s.Equal(2, user.Level)
	s.Equal([]string{events.QuestCompleted, events.UserLeveledUp}, s.publisher.Types())

	done, err = svc.UpdateQuestProgress(s.ctx, u.ID, models.QuestTraining, 1)
	s.Require().NoError(err)
	s.Empty(done)
	s.Equal(120, s.user(u.ID).TotalXP)

	quests, err := svc.List(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(quests, 2)
	for _, got := range quests {
		if got.ID == q.ID {
			s.True(got.Completed)
			s.Equal(2, got.Progress)
			s.Require().NotNil(got.CompletedAt)
		} else {
			s.False(got.Completed)
			s.Equal(0, got.Progress)
		}
	}
}

func (s *ServiceSuite) TestQuest_UpdateProgressRejectsBadInput() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	svc := s.quests()

	_, err := svc.UpdateQuestProgress(s.ctx, u.ID, "daily", 1)
	s.requireCode(err, errors.ErrCodeValidation)

	_, err = svc.UpdateQuestProgress(s.ctx, u.ID, models.QuestTraining, -1)
	s.requireCode(err, errors.ErrCodeValidation)

	_, err = svc.UpdateQuestProgress(s.ctx, 999, models.QuestTraining, 1)
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *ServiceSuite) TestQuest_Create() {
	u := testutil.SeedUser(s.T(), s.store, "ana")
	svc := s.quests()

	q, err := svc.Create(s.ctx, u.ID, QuestInput{QuestType: models.QuestBattle, Title: " Win three ", Target: 3, RewardXP: 75})
	s.Require().NoError(err)
	s.NotZero(q.ID)
	s.Equal("Win three", q.Title)
	s.Equal(0, q.Progress)
	s.False(q.Completed)

	for _, in := range []QuestInput{
		{QuestType: models.QuestBattle, Title: "", Target: 3, RewardXP: 75},
		{QuestType: "daily", Title: "x", Target: 3, RewardXP: 75},
		{QuestType: models.QuestBattle, Title: "x", Target: 0, RewardXP: 75},
		{QuestType: models.QuestBattle, Title: "x", Target: 3, RewardXP: 0},
	} {
		_, err := svc.Create(s.ctx, u.ID, in)
		s.requireCode(err, errors.ErrCodeValidation)
	}

	_, err = svc.Create(s.ctx, 999, QuestInput{QuestType: models.QuestBattle, Title: "x", Target: 1, RewardXP: 1})
	s.requireCode(err, errors.ErrCodeNotFound)
}
