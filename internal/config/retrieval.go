package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/caterbot/pkg/log"
)

type RetrievalConfig struct {
	EmbeddingBaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com"`
	EmbeddingAPIKey  string `env:"EMBEDDING_API_KEY"`
	EmbeddingModel   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	TopK int `env:"RETRIEVAL_TOP_K" envDefault:"3"`
}

func NewRetrievalConfig(ctx context.Context) *RetrievalConfig {
	c := &RetrievalConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Retrieval config")
	}
	return c
}
