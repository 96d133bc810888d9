package models

import "time"

type BattleStatus string

const (
	BattleInProgress BattleStatus = "in-progress"
	BattleWon        BattleStatus = "won"
	BattleLost       BattleStatus = "lost"
)

// Terminal reports whether the status is won or lost.
func (s BattleStatus) Terminal() bool {
	return s == BattleWon || s == BattleLost
}

type Battle struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	TopicID     int64        `json:"topic_id"`
	Difficulty  int          `json:"difficulty"`
	Score       int          `json:"score"`
	Status      BattleStatus `json:"status"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at"`
}

// BattleStart is returned when a battle begins: the battle and its questions.
type BattleStart struct {
	Battle    Battle     `json:"battle"`
	Questions []Question `json:"questions"`
}
