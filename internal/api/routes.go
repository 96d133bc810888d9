package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)

		r.Group(func(r chi.Router) {
			r.Use(s.identityMiddleware)

			r.Get("/me", s.handleMe)

			r.Get("/topics", s.handleListTopics)
			r.Post("/topics", s.handleCreateTopic)
			r.Get("/topics/{id}", s.handleTopicDetail)
			r.Get("/topics/{id}/questions", s.handleTopicQuestions)
			r.Get("/topics/{id}/next-question", s.handleNextQuestion)

			r.Post("/documents", s.handleUploadDocument)
			r.Get("/documents/{id}", s.handleGetDocument)

			r.Post("/answers", s.handleSubmitAnswer)

			r.Get("/battles", s.handleListBattles)
			r.Post("/battles", s.handleStartBattle)
			r.Get("/battles/{id}", s.handleGetBattle)
			r.Post("/battles/{id}/end", s.handleEndBattle)

			r.Get("/quests", s.handleListQuests)
			r.Post("/quests", s.handleCreateQuest)

			r.Get("/leaderboard", s.handleLeaderboard)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFoundRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errMethodNotAllowed)
	})
	return r
}
