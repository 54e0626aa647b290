package main

import (
	"context"
	"errors"
	"fmt"

	"bi-admin/internal/repository"
	"bi-admin/internal/service"
	"bi-admin/pkg/cache"
	"bi-admin/pkg/config"
	"bi-admin/pkg/logger"
	"bi-admin/pkg/postgres"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	applyContextID string
	applyName      string
)

var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Parse a documentation file into a knowledge context",
	Long: `Parse a documentation file and replace the content and sections of a
knowledge context. The context is chosen with --context, or created on demand
with --name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (applyContextID == "") == (applyName == "") {
			return errors.New("exactly one of --context or --name is required")
		}

		content, err := readSource(cmd, args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.Init(cfg.Logger); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()
		appLogger := logger.Get()

		ctx := context.Background()
		db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
		if err != nil {
			return err
		}
		defer db.Close()

		contextCache, closeCache, err := cache.New(ctx, &cfg.Redis, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, cache will not be refreshed", zap.Error(err))
			contextCache, closeCache = cache.Noop{}, func() error { return nil }
		}
		defer closeCache()

		repo := repository.NewKnowledgeContextRepository(db, appLogger)
		svc := service.NewKnowledgeService(repo, contextCache, appLogger)

		contextID, err := resolveContext(ctx, repo)
		if err != nil {
			return err
		}

		result, err := svc.ApplyParse(ctx, contextID, content)
		if err != nil {
			return err
		}

		ok := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", ok("applied"), result.Context.Name, contextID)
		printStats(cmd.OutOrStdout(), args[0], result.Stats)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&applyContextID, "context", "", "ID of an existing knowledge context")
	applyCmd.Flags().StringVar(&applyName, "name", "", "name of the knowledge context, created if missing")
	rootCmd.AddCommand(applyCmd)
}

func resolveContext(ctx context.Context, repo *repository.KnowledgeContextRepository) (uuid.UUID, error) {
	if applyName != "" {
		return repo.EnsureByName(ctx, applyName)
	}
	id, err := uuid.Parse(applyContextID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --context: %w", err)
	}
	return id, nil
}
