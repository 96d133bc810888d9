package services

import (
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/testutil"
)

func (s *ServiceSuite) TestUser_CreateAssignsDefaultQuests() {
	svc := NewUserService(s.store, fixedClock)

	u, err := svc.Create(s.ctx, " ana ", "ana@example.com")
	s.Require().NoError(err)
	s.NotZero(u.ID)
	s.Equal("ana", u.Username)
	s.Equal(1, u.Level)
	s.Equal(0, u.TotalXP)

	quests, err := s.store.Quests().ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(quests, 2)
	types := map[models.QuestType]int{}
	for _, q := range quests {
		types[q.QuestType] = q.Target
	}
	s.Equal(map[models.QuestType]int{models.QuestTraining: 10, models.QuestBattle: 5}, types)
}

func (s *ServiceSuite) TestUser_CreateRejectsDuplicatesAndBadInput() {
	svc := NewUserService(s.store, fixedClock)

	_, err := svc.Create(s.ctx, "ana", "ana@example.com")
	s.Require().NoError(err)

	_, err = svc.Create(s.ctx, "ana", "other@example.com")
	s.requireCode(err, errors.ErrCodeConflict)

	_, err = svc.Create(s.ctx, "", "x@example.com")
	s.requireCode(err, errors.ErrCodeValidation)

	_, err = svc.Create(s.ctx, "bo", "not-an-email")
	s.requireCode(err, errors.ErrCodeValidation)

	quests, err := s.store.Quests().ListByUser(s.ctx, 2)
	s.Require().NoError(err)
	s.Empty(quests, "failed creation leaves no quests behind")
}

func (s *ServiceSuite) TestUser_GetAndProfile() {
	svc := NewUserService(s.store, fixedClock)
	u, err := svc.Create(s.ctx, "ana", "ana@example.com")
	s.Require().NoError(err)
	testutil.SeedTopic(s.T(), s.store, u.ID, "Biology")

	got, err := svc.Get(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Username, got.Username)

	profile, err := svc.Profile(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.ID, profile.User.ID)
	s.Len(profile.Topics, 1)
	s.Len(profile.Quests, 2)
	s.Empty(profile.Battles)

	_, err = svc.Get(s.ctx, 999)
	s.requireCode(err, errors.ErrCodeNotFound)
	_, err = svc.Profile(s.ctx, 999)
	s.requireCode(err, errors.ErrCodeNotFound)
}
