package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/caterbot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"CATER_RUNTIME_PATH" envDefault:".caterbot"`
	DataDir     string `env:"CATER_DATA_DIR" envDefault:"data"`

	// Transport flags
	HTTPPort       int  `env:"PORT" envDefault:"5000"`
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"false"`

	// Context management
	HistoryWindowSize int `env:"HISTORY_WINDOW_SIZE" envDefault:"10"`
	SessionTimeoutSec int `env:"SESSION_TIMEOUT" envDefault:"1800"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "caterbot.db")
}

func (c AppConfig) GetSystemPromptPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetIntentConfigPath() string {
	return filepath.Join(c.RuntimePath, "intents.json")
}

func (c AppConfig) GetProductsCSVPath() string {
	return filepath.Join(c.DataDir, "products_rag.csv")
}

func (c AppConfig) GetServicesCSVPath() string {
	return filepath.Join(c.DataDir, "services_rag.csv")
}
