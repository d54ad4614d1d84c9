package orchestrator

import (
	"context"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/prompt"
	"github.com/sandevgo/caterbot/pkg/log"
)

// handleLead qualifies an event inquiry: retrieve matching services for
// grounding, then let the generator ask for whatever is still missing
// (event type, headcount, budget, date).
func (o *Orchestrator) handleLead(ctx context.Context, query string, history []core.Message, userCtx core.UserContext) (string, error) {
	results := o.search(ctx, query, core.ItemTypeService)

	in := prompt.Input{
		Query: query + "\n\nQualifie cette demande d'événement: identifie le type d'événement, " +
			"le nombre de personnes, le budget et la date souhaitée, puis demande les informations manquantes.",
		Results: results,
		History: history,
		UserCtx: userCtx,
	}
	return o.generate(ctx, o.prompts.Build(in))
}

// handleFAQ answers policy and process questions grounded on the service
// catalog entries that cover them.
func (o *Orchestrator) handleFAQ(ctx context.Context, query string, history []core.Message, userCtx core.UserContext) (string, error) {
	results := o.search(ctx, query, "")

	in := prompt.Input{
		Query:   query,
		Results: results,
		History: history,
		UserCtx: userCtx,
	}
	return o.generate(ctx, o.prompts.Build(in))
}

// handleLookup answers product/service questions over the full catalog.
func (o *Orchestrator) handleLookup(ctx context.Context, query string, history []core.Message, userCtx core.UserContext) (string, error) {
	results := o.search(ctx, query, "")

	in := prompt.Input{
		Query:   query,
		Results: results,
		History: history,
		UserCtx: userCtx,
	}
	return o.generate(ctx, o.prompts.Build(in))
}

// search is best-effort context enrichment: a retriever failure logs and
// yields no snippets rather than failing the turn.
func (o *Orchestrator) search(ctx context.Context, query, itemType string) []core.RetrievalResult {
	results, err := o.retriever.Search(ctx, query, itemType, o.topK)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("retrieval failed, generating without catalog context")
		return nil
	}
	return results
}
