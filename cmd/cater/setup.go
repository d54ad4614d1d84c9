package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/caterbot/internal/config"
	"github.com/sandevgo/caterbot/internal/providers/llm"
	"github.com/sandevgo/caterbot/internal/providers/rag"
	"github.com/sandevgo/caterbot/internal/service/handoff"
	"github.com/sandevgo/caterbot/internal/service/intent"
	"github.com/sandevgo/caterbot/internal/service/orchestrator"
	"github.com/sandevgo/caterbot/internal/service/prompt"
	"github.com/sandevgo/caterbot/internal/service/retrieval"
	"github.com/sandevgo/caterbot/internal/service/session"
	"github.com/sandevgo/caterbot/internal/storage/sqlite"
	"github.com/sandevgo/caterbot/internal/transport/cli"
	"github.com/sandevgo/caterbot/internal/transport/httpapi"
	"github.com/sandevgo/caterbot/internal/transport/telegram"
	"github.com/sandevgo/caterbot/internal/transport/ws"
	"github.com/sandevgo/caterbot/pkg/log"
	"github.com/sandevgo/caterbot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	retrievalCfg := config.NewRetrievalConfig(ctx)
	handoffCfg := config.NewHandoffConfig(ctx)

	// 2. Storage
	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	sessionRepo := sqlite.NewSessionRepo(db)
	catalogRepo := sqlite.NewCatalogRepo(db)

	// 3. Session store
	store := session.NewStore(time.Duration(appCfg.SessionTimeoutSec)*time.Second, sessionRepo)
	store.Load(ctx)
	services = append(services, srv.NewCleanup(store.Shutdown))

	// 4. Providers
	generator, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	embedder, err := rag.NewEmbedder(retrievalCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	// 5. Catalog index
	index := retrieval.NewIndex(embedder, catalogRepo)
	if err := index.Load(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to load catalog index, search runs over an empty corpus")
	}

	// 6. Orchestrator
	keywords := intent.LoadKeywords(ctx, appCfg.GetIntentConfigPath())
	orch := orchestrator.New(
		intent.NewClassifier(keywords),
		handoff.NewPolicy(handoffCfg, keywords.HumanHandoff),
		handoff.NewLinkBuilder(handoffCfg),
		generator,
		index,
		prompt.NewBuilder(ctx, appCfg.GetSystemPromptPath()),
		store,
		orchestrator.Options{
			HistoryWindow: appCfg.HistoryWindowSize,
			GenTimeout:    time.Duration(llmCfg.TimeoutSec) * time.Second,
			TopK:          retrievalCfg.TopK,
		},
	)

	// 7. Transports
	services = append(services, initTransports(ctx, appCfg, orch, store, catalogRepo)...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, err
	}
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	orch *orchestrator.Orchestrator,
	store *session.Store,
	catalogRepo *sqlite.CatalogRepo,
) []srv.Service {
	logger := log.FromCtx(ctx)
	var services []srv.Service

	// Chat websocket + health/stats API, always on.
	chat := ws.NewHandler(orch, store)
	services = append(services, httpapi.NewServer(cfg.HTTPPort, chat, store, catalogRepo))

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, orch)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(orch, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize cli chat")
		}
		services = append(services, rl)
	}

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
