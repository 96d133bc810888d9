// Package battle runs the scoring and win/loss resolution of a boss battle.
package battle

import (
	"errors"
	"time"

	"github.com/vytor/studyrpg/internal/models"
)

// WinScore is the minimum score that wins a battle.
const WinScore = 50

var (
	ErrBattleResolved    = errors.New("battle is already resolved")
	ErrNegativeScore     = errors.New("battle score increment must not be negative")
	ErrInvalidDifficulty = errors.New("battle difficulty must be between 1 and 5")
)

// Controller owns the mutable state of one battle. Once resolved, every
// further mutation is rejected.
type Controller struct {
	b *models.Battle
}

// New starts an in-progress battle with a zero score.
func New(userID, topicID int64, difficulty int, now time.Time) (*Controller, error) {
	if difficulty < models.MinDifficulty || difficulty > models.MaxDifficulty {
		return nil, ErrInvalidDifficulty
	}
	return &Controller{b: &models.Battle{
		UserID:     userID,
		TopicID:    topicID,
		Difficulty: difficulty,
		Status:     models.BattleInProgress,
		StartedAt:  now,
	}}, nil
}

// Wrap takes control of an existing battle loaded from storage.
func Wrap(b *models.Battle) *Controller {
	return &Controller{b: b}
}

// Battle returns the controlled battle.
func (c *Controller) Battle() *models.Battle {
	return c.b
}

// RecordCorrect adds the XP earned by a correct answer to the battle score.
func (c *Controller) RecordCorrect(xp int) error {
	if c.b.Status.Terminal() {
		return ErrBattleResolved
	}
	if xp < 0 {
		return ErrNegativeScore
	}
	c.b.Score += xp
	return nil
}

// Resolve moves the battle to won or lost according to WinScore.
// It can only happen once.
func (c *Controller) Resolve(now time.Time) (models.BattleStatus, error) {
	if c.b.Status.Terminal() {
		return c.b.Status, ErrBattleResolved
	}
	c.b.Status = Outcome(c.b.Score)
	t := now
	c.b.CompletedAt = &t
	return c.b.Status, nil
}

// Outcome is the status a battle with the given score resolves to.
func Outcome(score int) models.BattleStatus {
	if score >= WinScore {
		return models.BattleWon
	}
	return models.BattleLost
}
