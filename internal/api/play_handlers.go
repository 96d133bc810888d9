package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/services"
)

type startBattleRequest struct {
	TopicID int64 `json:"topic_id"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req services.AnswerInput
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.QuestionID <= 0 {
		handleError(w, r, errors.NewValidationError("question_id", "is required"))
		return
	}

	result, err := s.Answers.Submit(r.Context(), currentUser(r), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleStartBattle(w http.ResponseWriter, r *http.Request) {
	var req startBattleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.TopicID <= 0 {
		handleError(w, r, errors.NewValidationError("topic_id", "is required"))
		return
	}

	start, err := s.Battles.Start(r.Context(), currentUser(r), req.TopicID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, start)
}

func (s *Server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	b, err := s.Battles.Get(r.Context(), currentUser(r), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, b)
}

func (s *Server) handleEndBattle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	b, err := s.Battles.End(r.Context(), currentUser(r), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, b)
}

func (s *Server) handleListBattles(w http.ResponseWriter, r *http.Request) {
	battles, err := s.Battles.List(r.Context(), currentUser(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, battles)
}

func (s *Server) handleListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.Quests.List(r.Context(), currentUser(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, quests)
}

func (s *Server) handleCreateQuest(w http.ResponseWriter, r *http.Request) {
	var req services.QuestInput
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	q, err := s.Quests.Create(r.Context(), currentUser(r), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, q)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			handleError(w, r, errors.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := s.Leaderboard.Top(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}
