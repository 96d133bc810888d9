package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/studyrpg/internal/api"
	"github.com/vytor/studyrpg/internal/identity"
	"github.com/vytor/studyrpg/internal/jobs"
	"github.com/vytor/studyrpg/internal/services"
	"github.com/vytor/studyrpg/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the question generation workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides ADDR)")
}

func runServe(cmd *cobra.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	log.Info("===========================================")
	log.Info("StudyRPG Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("upload_dir=%s", cfg.UploadDir)
	log.Debug("llm_provider=%s", cfg.LLMProvider)
	log.Debug("generation_worker_count=%d", cfg.GenerationWorkerCount)
	log.Debug("generation_queue_size=%d", cfg.GenerationQueueSize)

	verifier, err := identity.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	generationPool := worker.NewPool(cfg.GenerationWorkerCount, cfg.GenerationQueueSize)
	jobQueue := jobs.NewWorkerQueue(generationPool, a.generation)

	documents := services.NewDocumentService(a.store, jobQueue, a.generation, cfg.UploadDir, cfg.MaxUploadBytes(), nil)
	srv := &api.Server{
		DB:             a.db,
		Verifier:       verifier,
		Users:          services.NewUserService(a.store, nil),
		Topics:         services.NewTopicService(a.store, nil),
		Training:       services.NewTrainingService(a.store, cfg.HistoryWindow),
		Documents:      documents,
		Answers:        services.NewAnswerService(a.store, a.notify, nil),
		Battles:        services.NewBattleService(a.store, a.notify, cfg.BattleQuestionCount, nil),
		Quests:         services.NewQuestService(a.store, a.notify, nil),
		Leaderboard:    services.NewLeaderboardService(a.notify.Board),
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}

	generationPool.Start(ctx)
	if _, err := documents.Resume(ctx); err != nil {
		log.Warn("failed to resume unfinished documents: %v", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case runErr = <-serveErr:
		log.Error("HTTP server error: %v", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping generation pool")
	cancel()
	generationPool.Stop()

	log.Info("===========================================")
	log.Info("StudyRPG Server Stopped")
	log.Info("===========================================")
	return runErr
}
