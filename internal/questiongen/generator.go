// Package questiongen asks a language model for multiple-choice questions and
// keeps only the ones that are well formed.
package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/studyrpg/internal/llm"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

var (
	ErrEmptyContent     = errors.New("no study material to generate questions from")
	ErrNoValidQuestions = errors.New("model returned no valid questions")
)

// Item is one question as the model returns it.
type Item struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Difficulty  int      `json:"difficulty"`
}

// Rejection records why an item was dropped.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result holds the accepted questions, without topic or document ids, and
// the items that were dropped.
type Result struct {
	Questions []models.Question
	Rejected  []Rejection
}

// Generator produces questions from study material.
type Generator interface {
	Generate(ctx context.Context, content string, n int) (*Result, error)
}

type Options struct {
	MaxTokens   int
	Temperature float64
}

type llmGenerator struct {
	provider llm.Provider
	opts     Options
	now      func() time.Time
}

// New returns a Generator backed by provider.
func New(provider llm.Provider, opts Options) Generator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8192
	}
	return &llmGenerator{provider: provider, opts: opts, now: time.Now}
}

func (g *llmGenerator) Generate(ctx context.Context, content string, n int) (*Result, error) {
	log := logger.FromContext(ctx).WithPrefix("questiongen")

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if n < 1 || n > MaxQuestions {
		return nil, fmt.Errorf("question count must be between 1 and %d, got %d", MaxQuestions, n)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(content, n),
		Schema:      SetSchema,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	var out struct {
		Questions []Item `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	result, err := ValidateSet(out.Questions, g.now())
	if err != nil {
		return nil, err
	}
	if len(result.Rejected) > 0 {
		log.Warn("dropped %d of %d generated questions", len(result.Rejected), len(out.Questions))
	}
	if len(result.Questions) > n {
		result.Questions = result.Questions[:n]
	}
	log.Info("generated %d questions", len(result.Questions))
	return result, nil
}

// ValidateSet converts model items into questions, dropping malformed ones.
// It fails only when nothing survives.
func ValidateSet(items []Item, now time.Time) (*Result, error) {
	result := &Result{}
	for i, it := range items {
		q, err := toQuestion(it, now)
		if err != nil {
			result.Rejected = append(result.Rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		result.Questions = append(result.Questions, q)
	}
	if len(result.Questions) == 0 {
		return result, ErrNoValidQuestions
	}
	return result, nil
}

func toQuestion(it Item, now time.Time) (models.Question, error) {
	text := strings.TrimSpace(it.Question)
	if text == "" {
		return models.Question{}, models.ErrEmptyContent
	}
	if len(it.Options) != OptionCount {
		return models.Question{}, fmt.Errorf("want %d options, got %d", OptionCount, len(it.Options))
	}
	trimmed := make([]string, len(it.Options))
	for i, o := range it.Options {
		trimmed[i] = strings.TrimSpace(o)
	}
	opts, err := models.NewOptions(trimmed...)
	if err != nil {
		return models.Question{}, err
	}

	q := models.Question{
		Content:     text,
		Options:     opts,
		Answer:      strings.TrimSpace(it.Answer),
		Explanation: strings.TrimSpace(it.Explanation),
		Difficulty:  it.Difficulty,
		XPValue:     it.Difficulty * 10,
		CreatedAt:   now,
	}
	if err := q.Validate(); err != nil {
		return models.Question{}, err
	}
	return q, nil
}
