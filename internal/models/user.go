package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Level     int       `json:"level"`
	TotalXP   int       `json:"total_xp"`
	CreatedAt time.Time `json:"created_at"`
}

// UserProfile is the user plus their battle and quest history.
type UserProfile struct {
	User    User     `json:"user"`
	Topics  []Topic  `json:"topics"`
	Battles []Battle `json:"battles"`
	Quests  []Quest  `json:"quests"`
}

type LeaderboardEntry struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	TotalXP  int    `json:"total_xp"`
	Level    int    `json:"level"`
	Rank     int    `json:"rank"`
}
