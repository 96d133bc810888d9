package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vytor/studyrpg/internal/config"
	"github.com/vytor/studyrpg/internal/db"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/leaderboard"
	"github.com/vytor/studyrpg/internal/llm"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/questiongen"
	"github.com/vytor/studyrpg/internal/repository"
	"github.com/vytor/studyrpg/internal/repository/sqlstore"
	"github.com/vytor/studyrpg/internal/services"
)

// app holds the components shared by every command.
type app struct {
	cfg        config.Config
	log        *logger.Logger
	db         *db.DB
	store      repository.Store
	redis      *redis.Client
	publisher  events.Publisher
	notify     services.Notifier
	generation services.GenerationService
}

func newApp(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, log: log, db: database, store: sqlstore.New(database)}

	var board leaderboard.Board = leaderboard.NewSQLBoard(a.store.Users())
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unavailable at %s, leaderboard served from the database: %v", cfg.RedisAddr, err)
			_ = client.Close()
		} else {
			log.Info("leaderboard cached in redis at %s", cfg.RedisAddr)
			a.redis = client
			board = leaderboard.Fallback{Primary: leaderboard.NewRedisBoard(client), Secondary: board}
		}
	}

	a.publisher = events.LogPublisher{}
	if cfg.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("amqp unavailable, events will only be logged: %v", err)
		} else {
			log.Info("publishing events to exchange %s", cfg.AMQPExchange)
			a.publisher = pub
		}
	}
	a.notify = services.Notifier{Board: board, Publisher: a.publisher}

	retry := llm.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.LLMMaxAttempts
	provider, err := llm.New(ctx, llm.Config{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		Retry:           retry,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info("question generation using %s provider", cfg.LLMProvider)

	generator := questiongen.New(provider, questiongen.Options{})
	a.generation = services.NewGenerationService(a.store, generator, a.notify, services.GenerationConfig{
		ChunkSize:            cfg.ChunkSize,
		QuestionsPerDocument: cfg.QuestionsPerDocument,
		Timeout:              cfg.LLMTimeout,
	})
	return a, nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		a.log.Warn("failed to close event publisher: %v", err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client: %v", err)
		}
	}
	a.log.Debug("closing database connection")
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database: %v", err)
	}
}
