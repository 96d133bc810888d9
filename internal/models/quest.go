package models

import "time"

type QuestType string

const (
	QuestTraining QuestType = "training"
	QuestBattle   QuestType = "battle"
)

// Valid reports whether t is a known quest type.
func (t QuestType) Valid() bool {
	return t == QuestTraining || t == QuestBattle
}

type Quest struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	QuestType   QuestType  `json:"quest_type"`
	Title       string     `json:"title"`
	Target      int        `json:"target"`
	Progress    int        `json:"progress"`
	RewardXP    int        `json:"reward_xp"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
