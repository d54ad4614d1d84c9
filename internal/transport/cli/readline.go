package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/caterbot/internal/config"
	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/orchestrator"
	"github.com/sandevgo/caterbot/pkg/log"
)

const defaultSessionID = "cli-local"

// ReadLine is a local chat loop for development and smoke-testing without
// a browser or Telegram account.
type ReadLine struct {
	cfg  *config.AppConfig
	orch *orchestrator.Orchestrator
	rl   *readline.Instance
}

func NewReadLine(orch *orchestrator.Orchestrator, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:  cfg,
		orch: orch,
		rl:   rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("chat started, type 'exit' to quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		decision, err := r.orch.Route(ctx, defaultSessionID, line)
		if err != nil {
			fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(r.rl.Stdout(), "%s\n", decision.Message)
		if decision.Kind == core.ReplyOfferHandoff || decision.Kind == core.ReplyForceHandoff {
			fmt.Fprintf(r.rl.Stdout(), "WhatsApp: %s\nTéléphone: %s\n", decision.WhatsAppLink, decision.PhoneNumber)
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
