package prompt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/log"
)

// defaultSystemPrompt is the business persona used when no override file is
// present in the runtime dir.
const defaultSystemPrompt = `Tu es l'assistant IA d'HS Traiteur.

INSTRUCTIONS:
- Réponds en français, sois professionnel et chaleureux
- Utilise les infos produits/services fournis
- Annonce les prix en MAD
- Propose des suggestions basées sur les besoins
- Aide à qualifier les commandes
- Sois concis et direct

HS Traiteur: service traiteur professionnel, cuisine marocaine & internationale.
Services: mariages, soutenances, anniversaires, buffets.
Nous offrons un service complet avec décoration et matériel.`

const historyWindow = 3

// Builder assembles generation prompts from the system persona, retrieved
// catalog snippets, and recent conversation state.
type Builder struct {
	systemPrompt string
}

// NewBuilder loads the system prompt override from path, falling back to
// the built-in persona when the file is absent or empty.
func NewBuilder(ctx context.Context, path string) *Builder {
	data, err := os.ReadFile(path)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		if err != nil && !os.IsNotExist(err) {
			log.FromCtx(ctx).Warn().Err(err).Str("path", path).Msg("failed to read system prompt, using built-in")
		}
		return &Builder{systemPrompt: defaultSystemPrompt}
	}
	log.FromCtx(ctx).Info().Str("path", path).Msg("loaded system prompt override")
	return &Builder{systemPrompt: strings.TrimSpace(string(data))}
}

// Input carries everything a single generation turn needs.
type Input struct {
	Query   string
	Results []core.RetrievalResult
	History []core.Message
	UserCtx core.UserContext
}

// Build produces the full prompt text. Sections with nothing to say are
// omitted entirely rather than left as empty headers.
func (b *Builder) Build(in Input) string {
	var parts []string
	parts = append(parts, b.systemPrompt)

	var products, services []string
	for _, r := range in.Results {
		line := "- " + r.Content
		if r.Metadata["type"] == core.ItemTypeService || strings.HasPrefix(r.Content, "Service:") {
			services = append(services, line)
		} else {
			products = append(products, line)
		}
	}
	if len(products) > 0 {
		parts = append(parts, "\nPRODUITS PERTINENTS:\n"+strings.Join(products, "\n"))
	}
	if len(services) > 0 {
		parts = append(parts, "\nSERVICES PERTINENTS:\n"+strings.Join(services, "\n"))
	}

	history := in.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		var lines []string
		for _, msg := range history {
			who := "Assistant"
			if msg.Sender == core.SenderUser {
				who = "Client"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", who, msg.Content))
		}
		parts = append(parts, "\nHISTORIQUE DE CONVERSATION:\n"+strings.Join(lines, "\n"))
	}

	if len(in.UserCtx.Preferences) > 0 {
		var prefs []string
		for k, v := range in.UserCtx.Preferences {
			prefs = append(prefs, k+"="+v)
		}
		parts = append(parts, "\nPRÉFÉRENCES CLIENT: "+strings.Join(prefs, ", "))
	}

	parts = append(parts, "\nQUESTION ACTUELLE: "+in.Query)
	parts = append(parts, "\nRÉPONSE:")

	return strings.Join(parts, "\n")
}
