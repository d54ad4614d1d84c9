package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/caterbot/pkg/log"
)

type HandoffConfig struct {
	WhatsAppBaseLink string `env:"WHATSAPP_BASE_LINK" envDefault:"https://api.whatsapp.com/message/ZREQ73H3OQTRJ1?autoload=1&app_absent=0"`
	PhoneNumber      string `env:"CONTACT_PHONE_NUMBER" envDefault:"+212 6 00 00 00 00"`

	// Queries longer than this always get a human-contact offer alongside
	// the generated answer.
	ComplexityThreshold int `env:"HANDOFF_COMPLEXITY_THRESHOLD" envDefault:"150"`
}

func NewHandoffConfig(ctx context.Context) *HandoffConfig {
	c := &HandoffConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Handoff config")
	}
	return c
}
