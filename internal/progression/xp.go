// Package progression converts answer events into experience points and levels.
package progression

import (
	"errors"
	"math"

	"github.com/vytor/studyrpg/internal/models"
)

const (
	// XPPerLevel is the amount of XP separating two consecutive levels.
	XPPerLevel = 100

	maxTimeFactor = 2.0
	maxComboBonus = 100
)

var (
	ErrInvalidDifficulty   = errors.New("difficulty must be between 1 and 5")
	ErrInvalidResponseTime = errors.New("response time must be a non-negative number")
	ErrNegativeAmount      = errors.New("xp amount must not be negative")
	ErrUnknownUser         = errors.New("cannot award xp to a missing user")
)

// CalculateXP returns the XP earned for a single answer.
// Incorrect answers earn a tenth of the base reward, never less than 1.
// Correct answers are scaled by how fast they were given relative to the
// expected time for the difficulty, up to twice the base reward.
func CalculateXP(isCorrect bool, responseTime float64, difficulty int) (int, error) {
	if difficulty < models.MinDifficulty || difficulty > models.MaxDifficulty {
		return 0, ErrInvalidDifficulty
	}
	if math.IsNaN(responseTime) || math.IsInf(responseTime, 0) || responseTime < 0 {
		return 0, ErrInvalidResponseTime
	}

	base := difficulty * 10
	if !isCorrect {
		return max(1, base/10), nil
	}

	expected := float64(10 + difficulty*5)
	factor := math.Min(maxTimeFactor, expected/math.Max(1, responseTime))
	return max(1, int(math.Floor(float64(base)*factor))), nil
}

// LevelForXP maps cumulative XP to a level. Level 1 starts at 0 XP.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// AwardXP adds amount to the user's total and raises their level when the
// new total crosses a level boundary. It reports whether a level up happened.
// Levels never go down. This is the only function that mutates XP or level.
func AwardXP(u *models.User, amount int) (bool, error) {
	if u == nil {
		return false, ErrUnknownUser
	}
	if amount < 0 {
		return false, ErrNegativeAmount
	}
	u.TotalXP += amount
	if lvl := LevelForXP(u.TotalXP); lvl > u.Level {
		u.Level = lvl
		return true, nil
	}
	return false, nil
}

// ComboBonus returns the bonus XP for a streak of consecutive correct answers.
func ComboBonus(consecutiveCorrect int) int {
	if consecutiveCorrect <= 1 {
		return 0
	}
	bonus := int(5 * math.Pow(float64(consecutiveCorrect), 1.5))
	return min(maxComboBonus, bonus)
}

// BossDifficulty picks a battle difficulty from the user's level. When the
// user's past performance on the topic is known (a ratio in [0,1]), weak
// performance lowers the difficulty by up to two steps.
func BossDifficulty(userLevel int, topicPerformance *float64) int {
	base := clamp(userLevel/3+1, models.MinDifficulty, models.MaxDifficulty)
	if topicPerformance == nil {
		return base
	}
	p := math.Max(0, math.Min(1, *topicPerformance))
	adjustment := -int(math.Floor((1 - p) * 2))
	return clamp(base+adjustment, models.MinDifficulty, models.MaxDifficulty)
}

// TrailingStreak counts the correct answers at the end of a chronologically
// ordered history.
func TrailingStreak(history []models.UserResponse) int {
	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].IsCorrect {
			break
		}
		streak++
	}
	return streak
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
