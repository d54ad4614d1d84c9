package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/caterbot/internal/config"
	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/orchestrator"
	"github.com/sandevgo/caterbot/pkg/conv"
	"github.com/sandevgo/caterbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

// Bot serves the assistant over Telegram. Each chat maps to one session.
type Bot struct {
	bot  *tele.Bot
	orch *orchestrator.Orchestrator
}

func NewBot(ctx context.Context, cfg *config.TelegramConfig, orch *orchestrator.Orchestrator) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:  b,
		orch: orch,
	}

	// Carry the process context (with its logger) into handlers.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send("Bonjour! Je suis votre assistant HS Traiteur. Comment puis-je vous aider aujourd'hui?")
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	_ = c.Notify(tele.Typing)

	decision, err := b.orch.Route(ctx, sessionID, strings.TrimSpace(c.Text()))
	if err != nil {
		// Empty input; nothing to answer.
		return nil
	}

	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(decision.Message)))
	if html == "" {
		return nil
	}
	if err := c.Send(html, tele.ModeHTML); err != nil {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to send telegram message")
		return err
	}

	if decision.Kind == core.ReplyOfferHandoff || decision.Kind == core.ReplyForceHandoff {
		contact := fmt.Sprintf("📱 <a href=\"%s\">Contacter un conseiller sur WhatsApp</a>\n📞 %s",
			decision.WhatsAppLink, decision.PhoneNumber)
		if err := c.Send(contact, tele.ModeHTML); err != nil {
			logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to send contact card")
		}
	}

	return nil
}
