// Package adaptive recommends the difficulty of the next question from a
// user's recent answers.
package adaptive

import (
	"math"

	"github.com/vytor/studyrpg/internal/models"
)

const (
	escalateRatio   = 0.8
	escalateMaxTime = 15.0
	deescalateRatio = 0.3
)

// Record is the part of a past response the selector looks at.
type Record struct {
	IsCorrect    bool
	ResponseTime float64
	Difficulty   int
}

// FromResponses converts stored responses into selector records, keeping order.
func FromResponses(responses []models.UserResponse) []Record {
	out := make([]Record, len(responses))
	for i, r := range responses {
		out[i] = Record{IsCorrect: r.IsCorrect, ResponseTime: r.ResponseTime, Difficulty: r.Difficulty}
	}
	return out
}

// NextDifficulty returns the recommended difficulty (1-5) for the next
// question given the whole supplied history. The caller decides the window.
// A held difficulty rounds halves to even.
func NextDifficulty(history []Record) int {
	if len(history) == 0 {
		return models.MinDifficulty
	}

	var correct int
	var totalTime, totalDifficulty float64
	for _, r := range history {
		if r.IsCorrect {
			correct++
		}
		totalTime += r.ResponseTime
		totalDifficulty += float64(r.Difficulty)
	}
	n := float64(len(history))
	ratio := float64(correct) / n
	avgTime := totalTime / n
	avgDifficulty := totalDifficulty / n

	var next int
	switch {
	case ratio >= escalateRatio && avgTime < escalateMaxTime:
		next = int(math.Ceil(avgDifficulty + 1))
	case ratio <= deescalateRatio:
		next = int(math.Floor(avgDifficulty - 1))
	default:
		next = int(math.RoundToEven(avgDifficulty))
	}
	return max(models.MinDifficulty, min(models.MaxDifficulty, next))
}
