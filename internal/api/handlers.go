package api

import (
	"context"
	"net/http"

	"github.com/vytor/studyrpg/internal/identity"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/services"
)

// Pinger is satisfied by *db.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB             Pinger
	Verifier       *identity.Verifier
	Users          services.UserService
	Topics         services.TopicService
	Training       services.TrainingService
	Documents      services.DocumentService
	Answers        services.AnswerService
	Battles        services.BattleService
	Quests         services.QuestService
	Leaderboard    services.LeaderboardService
	MaxUploadBytes int64
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.Users.Create(r.Context(), req.Username, req.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("loading profile")

	profile, err := s.Users.Profile(r.Context(), currentUser(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}
