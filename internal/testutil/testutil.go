package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/studyrpg/internal/db"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository"
)

// NewTestDB opens an in-memory SQLite database with all migrations applied.
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(string(db.SQLite), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// SeedUser inserts a level-1 user with no XP.
func SeedUser(t *testing.T, store repository.Store, username string) models.User {
	t.Helper()
	u := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Level:     1,
		CreatedAt: time.Now().UTC(),
	}
	id, err := store.Users().Insert(context.Background(), u)
	require.NoError(t, err)
	u.ID = id
	return u
}

// SeedTopic inserts a topic owned by userID.
func SeedTopic(t *testing.T, store repository.Store, userID int64, title string) models.Topic {
	t.Helper()
	topic := models.Topic{UserID: userID, Title: title, CreatedAt: time.Now().UTC()}
	id, err := store.Topics().Insert(context.Background(), topic)
	require.NoError(t, err)
	topic.ID = id
	return topic
}

// SeedQuestion inserts a four-option question whose answer is "A".
func SeedQuestion(t *testing.T, store repository.Store, topicID int64, difficulty int) models.Question {
	t.Helper()
	q := NewQuestion(topicID, difficulty)
	id, err := store.Questions().Insert(context.Background(), q)
	require.NoError(t, err)
	q.ID = id
	return q
}

// NewQuestion builds a valid, unsaved question whose answer is "A".
func NewQuestion(topicID int64, difficulty int) models.Question {
	return models.Question{
		TopicID:     topicID,
		Content:     "Pick A",
		Options:     models.Options{"A", "B", "C", "D"},
		Answer:      "A",
		Explanation: "A is the answer.",
		Difficulty:  difficulty,
		XPValue:     difficulty * 10,
		CreatedAt:   time.Now().UTC(),
	}
}
