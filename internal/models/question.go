package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

var (
	ErrNoOptions          = errors.New("question has no options")
	ErrDuplicateOption    = errors.New("question options must be distinct")
	ErrAnswerNotInOptions = errors.New("answer is not one of the options")
	ErrDifficultyRange    = errors.New("difficulty must be between 1 and 5")
	ErrNonPositiveXP      = errors.New("xp value must be positive")
	ErrEmptyContent       = errors.New("question content is empty")
)

// Options is the ordered list of choices presented for a question.
// It is stored as a JSON array column.
type Options []string

// NewOptions copies opts and checks that every entry is non-empty and distinct.
func NewOptions(opts ...string) (Options, error) {
	if len(opts) == 0 {
		return nil, ErrNoOptions
	}
	seen := make(map[string]struct{}, len(opts))
	out := make(Options, len(opts))
	for i, o := range opts {
		if o == "" {
			return nil, fmt.Errorf("option %d is empty", i)
		}
		if _, dup := seen[o]; dup {
			return nil, ErrDuplicateOption
		}
		seen[o] = struct{}{}
		out[i] = o
	}
	return out, nil
}

// Contains reports whether s is exactly one of the options.
func (o Options) Contains(s string) bool {
	for _, opt := range o {
		if opt == s {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (o Options) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(o))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (o *Options) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("options: unsupported column type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	*o = out
	return nil
}

type Question struct {
	ID          int64     `json:"id"`
	TopicID     int64     `json:"topic_id"`
	DocumentID  *int64    `json:"document_id,omitempty"`
	Content     string    `json:"content"`
	Options     Options   `json:"options"`
	Answer      string    `json:"-"`
	Explanation string    `json:"-"`
	Difficulty  int       `json:"difficulty"`
	XPValue     int       `json:"xp_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the invariants a question must satisfy before it is stored.
func (q Question) Validate() error {
	if q.Content == "" {
		return ErrEmptyContent
	}
	if _, err := NewOptions(q.Options...); err != nil {
		return err
	}
	if !q.Options.Contains(q.Answer) {
		return ErrAnswerNotInOptions
	}
	if q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty {
		return ErrDifficultyRange
	}
	if q.XPValue <= 0 {
		return ErrNonPositiveXP
	}
	return nil
}

// IsCorrect compares a selected option with the stored answer. Matching is exact.
func (q Question) IsCorrect(selected string) bool {
	return selected == q.Answer
}

type UserResponse struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	QuestionID   int64     `json:"question_id"`
	ResponseText string    `json:"response_text"`
	IsCorrect    bool      `json:"is_correct"`
	ResponseTime float64   `json:"response_time"`
	Difficulty   int       `json:"difficulty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NextQuestion is a training question picked for the user's current level.
type NextQuestion struct {
	Question              Question `json:"question"`
	RecommendedDifficulty int      `json:"recommended_difficulty"`
}
