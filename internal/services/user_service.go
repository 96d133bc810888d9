package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/vytor/studyrpg/internal/db"
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/quest"
	"github.com/vytor/studyrpg/internal/repository"
)

// UserService handles user-related business logic
type UserService interface {
	Create(ctx context.Context, username, email string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Profile(ctx context.Context, id int64) (*models.UserProfile, error)
}

type userService struct {
	store repository.Store
	now   Clock
}

// NewUserService creates a new UserService
func NewUserService(store repository.Store, now Clock) UserService {
	return &userService{store: store, now: now.orDefault()}
}

// Create registers a user at level 1 and assigns the default quests in the
// same transaction.
func (s *userService) Create(ctx context.Context, username, email string) (*models.User, error) {
	log := logger.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, errors.NewValidationError("username", "is required")
	}
	if len(username) > 64 {
		return nil, errors.NewValidationError("username", "must be at most 64 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errors.NewValidationError("email", "is not a valid address")
	}

	now := s.now()
	user := models.User{Username: username, Email: email, Level: 1, CreatedAt: now}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		id, err := tx.Users().Insert(ctx, user)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return errors.NewConflictError("username or email already taken", err)
			}
			return err
		}
		user.ID = id

		for _, q := range quest.Defaults(id, now) {
			if _, err := tx.Quests().Insert(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create user %q: %v", username, err)
		return nil, appError(err)
	}

	log.Info("created user: id=%d, username=%s", user.ID, user.Username)
	return &user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*models.User, error) {
	logger.FromContext(ctx).Debug("getting user: id=%d", id)
	return loadUser(ctx, s.store.Users(), id, false)
}

func (s *userService) Profile(ctx context.Context, id int64) (*models.UserProfile, error) {
	log := logger.FromContext(ctx)

	user, err := loadUser(ctx, s.store.Users(), id, false)
	if err != nil {
		return nil, err
	}

	topics, err := s.store.Topics().ListByUser(ctx, id)
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	battles, err := s.store.Battles().ListByUser(ctx, id)
	if err != nil {
		log.Error("failed to list battles: %v", err)
		return nil, errors.NewInternalError(err)
	}
	quests, err := s.store.Quests().ListByUser(ctx, id)
	if err != nil {
		log.Error("failed to list quests: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.UserProfile{
		User:    *user,
		Topics:  topics,
		Battles: battles,
		Quests:  quests,
	}, nil
}
