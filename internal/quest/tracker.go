// Package quest advances quest counters and pays each quest's reward once.
package quest

import (
	"errors"
	"fmt"
	"time"

	"github.com/vytor/studyrpg/internal/models"
)

var ErrNegativeIncrement = errors.New("quest increment must not be negative")

// RewardFunc grants a completed quest's reward. It is called at most once
// per quest, in the order quests are supplied.
type RewardFunc func(q models.Quest) error

// Advance adds increment to every open quest in quests, capping progress at
// the target. Quests that reach their target are marked completed and
// rewarded. Already completed quests are left untouched, so repeating a call
// never pays a reward twice. It returns the ids of quests completed by this
// call. On a reward error the quests slice may be partially updated; callers
// run Advance inside a transaction and discard the slice on error.
func Advance(quests []models.Quest, increment int, reward RewardFunc, now time.Time) ([]int64, error) {
	if increment < 0 {
		return nil, ErrNegativeIncrement
	}

	var completed []int64
	for i := range quests {
		q := &quests[i]
		if q.Completed {
			continue
		}
		q.Progress = min(q.Target, q.Progress+increment)
		if q.Progress < q.Target {
			continue
		}

		q.Completed = true
		t := now
		q.CompletedAt = &t
		if reward != nil {
			if err := reward(*q); err != nil {
				return nil, fmt.Errorf("reward quest %d: %w", q.ID, err)
			}
		}
		completed = append(completed, q.ID)
	}
	return completed, nil
}

// Defaults are the quests every new user starts with.
func Defaults(userID int64, now time.Time) []models.Quest {
	return []models.Quest{
		{UserID: userID, QuestType: models.QuestTraining, Title: "Training Grind", Target: 10, RewardXP: 50, CreatedAt: now},
		{UserID: userID, QuestType: models.QuestBattle, Title: "Boss Slayer", Target: 5, RewardXP: 100, CreatedAt: now},
	}
}

// Validate checks a quest definition before it is stored.
func Validate(q models.Quest) error {
	switch {
	case !q.QuestType.Valid():
		return fmt.Errorf("unknown quest type %q", q.QuestType)
	case q.Target <= 0:
		return errors.New("quest target must be positive")
	case q.RewardXP <= 0:
		return errors.New("quest reward must be positive")
	case q.Progress < 0 || q.Progress > q.Target:
		return errors.New("quest progress must be between 0 and target")
	}
	return nil
}
