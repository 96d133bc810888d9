package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/studyrpg/internal/db"
	"github.com/vytor/studyrpg/internal/identity"
	"github.com/vytor/studyrpg/internal/repository/sqlstore"
	"github.com/vytor/studyrpg/internal/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := db.Open(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
		return database.Close()
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Generate questions from a PDF on disk into an existing topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetInt64("user")
		topicID, _ := cmd.Flags().GetInt64("topic")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		documents := services.NewDocumentService(a.store, nil, a.generation, cfg.UploadDir, cfg.MaxUploadBytes(), nil)
		doc, err := documents.Ingest(ctx, userID, topicID, args[0])
		if err != nil {
			return err
		}
		count, err := a.store.Questions().CountByTopic(ctx, doc.TopicID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"document":        doc,
			"topic_questions": count,
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetInt64("user")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		verifier, err := identity.NewVerifier(cfg.JWTSecret)
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return err
		}
		defer database.Close()

		user, err := services.NewUserService(sqlstore.New(database), nil).Get(cmd.Context(), userID)
		if err != nil {
			return err
		}

		token, err := verifier.Issue(user.ID, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	ingestCmd.Flags().Int64("user", 0, "Owner of the topic")
	ingestCmd.Flags().Int64("topic", 0, "Topic that receives the questions")
	_ = ingestCmd.MarkFlagRequired("user")
	_ = ingestCmd.MarkFlagRequired("topic")

	tokenCmd.Flags().Int64("user", 0, "User id placed in the token subject")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
