package repository

import (
	"context"

	"github.com/vytor/studyrpg/internal/models"
)

// Lookups return (nil, nil) when the row does not exist.

// UserRepository handles user data access
type UserRepository interface {
	Insert(ctx context.Context, user models.User) (int64, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	// GetForUpdate is Get plus a row lock where the database supports one.
	GetForUpdate(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, user models.User) error
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// TopicRepository handles topic data access
type TopicRepository interface {
	Insert(ctx context.Context, topic models.Topic) (int64, error)
	Get(ctx context.Context, id int64) (*models.Topic, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Topic, error)
}

// DocumentRepository handles uploaded document data access
type DocumentRepository interface {
	Insert(ctx context.Context, doc models.Document) (int64, error)
	Get(ctx context.Context, id int64) (*models.Document, error)
	ListByTopic(ctx context.Context, topicID int64) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id int64, status models.DocumentStatus, errMsg string) error
	UpdateContent(ctx context.Context, id int64, content string) error
	// ListUnfinished returns pending and processing documents, oldest first.
	ListUnfinished(ctx context.Context) ([]models.Document, error)
}

// QuestionRepository handles question data access
type QuestionRepository interface {
	Insert(ctx context.Context, q models.Question) (int64, error)
	InsertBatch(ctx context.Context, qs []models.Question) ([]int64, error)
	Get(ctx context.Context, id int64) (*models.Question, error)
	// ListByTopic orders by difficulty then id.
	ListByTopic(ctx context.Context, topicID int64) ([]models.Question, error)
	CountByTopic(ctx context.Context, topicID int64) (int, error)
}

// ResponseRepository handles the append-only answer log
type ResponseRepository interface {
	Insert(ctx context.Context, r models.UserResponse) (int64, error)
	// Recent returns the user's last limit responses, oldest first.
	Recent(ctx context.Context, userID int64, limit int) ([]models.UserResponse, error)
	// RecentForTopic is Recent restricted to questions of one topic.
	RecentForTopic(ctx context.Context, userID, topicID int64, limit int) ([]models.UserResponse, error)
	TopicPerformance(ctx context.Context, userID, topicID int64) (correct, total int, err error)
}

// BattleRepository handles battle data access
type BattleRepository interface {
	Insert(ctx context.Context, b models.Battle) (int64, error)
	Get(ctx context.Context, id int64) (*models.Battle, error)
	// Active returns the user's in-progress battle on a topic.
	Active(ctx context.Context, userID, topicID int64) (*models.Battle, error)
	Update(ctx context.Context, b models.Battle) error
	ListByUser(ctx context.Context, userID int64) ([]models.Battle, error)
}

// QuestRepository handles quest data access
type QuestRepository interface {
	Insert(ctx context.Context, q models.Quest) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Quest, error)
	ListOpen(ctx context.Context, userID int64, questType models.QuestType) ([]models.Quest, error)
	Update(ctx context.Context, q models.Quest) error
}

// Store groups the repositories so they can share a transaction.
type Store interface {
	Users() UserRepository
	Topics() TopicRepository
	Documents() DocumentRepository
	Questions() QuestionRepository
	Responses() ResponseRepository
	Battles() BattleRepository
	Quests() QuestRepository
	// WithTx runs fn with a Store bound to one transaction. Returning an
	// error from fn rolls every write back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
