package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/biolog/internal/api"
	"github.com/terraincognita07/biolog/internal/assistant"
	"github.com/terraincognita07/biolog/internal/cli"
	"github.com/terraincognita07/biolog/internal/community"
	"github.com/terraincognita07/biolog/internal/config"
	"github.com/terraincognita07/biolog/internal/db"
	"github.com/terraincognita07/biolog/internal/llm"
	"github.com/terraincognita07/biolog/internal/logging"
	"github.com/terraincognita07/biolog/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type appState struct {
	cfg      config.Config
	logger   *zap.Logger
	location *time.Location
}

func (state *appState) init() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn(".env file could not be loaded", zap.Error(envErr))
	}

	location, ok := cfg.Location()
	if !ok {
		logger.Warn("invalid TZ, falling back to UTC", zap.String("tz", cfg.TZ))
	}
	time.Local = location

	state.cfg = cfg
	state.logger = logger
	state.location = location
	return nil
}

func newRootCommand() *cobra.Command {
	state := &appState{}

	root := &cobra.Command{
		Use:          "biolog",
		Short:        "BioLog conversational health tracker",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if state.logger != nil {
				_ = state.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), state)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), state)
			},
		},
		newSeedCommand(state),
		newPurgeCommand(state),
	)
	return root
}

func newSeedCommand(state *appState) *cobra.Command {
	var ownerID string
	var clean bool

	command := &cobra.Command{
		Use:   "seed",
		Short: "Insert the CHF demo scenario for an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunSeedCommand(cmd.Context(), state.cfg.DBPath, ownerID, clean, state.location, cmd.OutOrStdout(), state.logger)
		},
	}
	command.Flags().StringVar(&ownerID, "owner", "", "owner id to seed")
	command.Flags().BoolVar(&clean, "clean", false, "delete the owner's existing logs first")
	_ = command.MarkFlagRequired("owner")
	return command
}

func newPurgeCommand(state *appState) *cobra.Command {
	var ownerID string

	command := &cobra.Command{
		Use:   "purge",
		Short: "Delete every log of an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunPurgeCommand(cmd.Context(), state.cfg.DBPath, ownerID, cmd.OutOrStdout(), state.logger)
		},
	}
	command.Flags().StringVar(&ownerID, "owner", "", "owner id to purge")
	_ = command.MarkFlagRequired("owner")
	return command
}

func runServe(ctx context.Context, state *appState) error {
	cfg := state.cfg
	logger := state.logger

	if err := cfg.RequireModel(); err != nil {
		return err
	}
	port, err := resolvePort(cfg.Port)
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Warn("database close failed", zap.Error(err))
		}
	}()

	model := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:    cfg.OpenRouterAPIKey,
		BaseURL:   cfg.LLMBaseURL,
		Model:     cfg.LLMModel,
		Referrer:  cfg.OpenRouterReferrer,
		Title:     cfg.OpenRouterTitle,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	})
	reddit := community.NewRedditSource(community.RedditConfig{
		Subreddits:   cfg.CommunitySubreddits,
		UserAgent:    cfg.CommunityUserAgent,
		RecentWindow: cfg.CommunityRecentWindow,
		Timeout:      cfg.CommunityTimeout,
		DemoFallback: cfg.CommunityDemoFallback,
	}, logger.Named("community"))

	server, err := newServer(cfg, database, model, reddit, state.location, logger)
	if err != nil {
		return err
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if server.warmer != nil {
		server.warmer.Start()
		defer server.warmer.Stop()
	}

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("BioLog listening",
		zap.String("addr", "0.0.0.0:"+port),
		zap.String("db", cfg.DBPath),
		zap.String("tz", state.location.String()),
		zap.String("model", cfg.LLMModel),
	)
	if err := server.app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

type server struct {
	app    *fiber.App
	warmer *community.Warmer
}

func newServer(cfg config.Config, database *gorm.DB, model llm.Client, source community.Source, location *time.Location, logger *zap.Logger) (*server, error) {
	repositories := db.NewRepositories(database)
	locks := services.NewOwnerLocks()
	logs := services.NewLogService(repositories.SymptomLogs, locks, nil)
	weights := services.NewWeightService(repositories.SymptomLogs, locks, nil)

	cached := community.NewCachedSource(source, cfg.CommunityCacheTTL)
	trends := services.NewTrendService(cached, cfg.CommunityTimeout, nil, location, logger.Named("trends"))

	executor := assistant.NewExecutor(logs, weights, trends, cfg.AssistantParallelTools, logger.Named("tools"))
	orchestrator := assistant.NewOrchestrator(model, executor, cfg.AssistantHistoryLimit, logger.Named("assistant"))

	handler, err := api.NewHandler(api.Dependencies{
		Database:      database,
		Logs:          logs,
		Assistant:     orchestrator,
		Community:     cached,
		Location:      location,
		JWTSecret:     cfg.AuthJWTSecret,
		AskRateLimit:  cfg.AskRateLimit,
		AskRateWindow: cfg.AskRateWindow,
		Logger:        logger.Named("api"),
	})
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "BioLog",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	result := &server{app: app}
	if cfg.CommunityWarmSchedule != "" && len(cfg.CommunityWarmKeywords) > 0 {
		warmer, err := community.NewWarmer(cached, cfg.CommunityWarmKeywords, cfg.CommunityWarmSchedule, cfg.CommunityTimeout, logger.Named("warmer"))
		if err != nil {
			return nil, err
		}
		result.warmer = warmer
	}
	return result, nil
}

func resolvePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return "8080", nil
	}
	value, err := strconv.Atoi(port)
	if err != nil || value < 1 || value > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return strconv.Itoa(value), nil
}
