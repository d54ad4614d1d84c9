package intent

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/pkg/log"
)

// KeywordTable maps each intent to its trigger substrings. The table is
// configuration: swapping a locale set never touches the classifier's
// control flow.
type KeywordTable struct {
	HumanHandoff         []string `json:"human_handoff"`
	LeadQualification    []string `json:"lead_qualification"`
	FAQ                  []string `json:"faq"`
	ProductServiceLookup []string `json:"product_service_lookup"`
}

// DefaultKeywords mirrors the phrase sets the business actually sees:
// French-first with the common English equivalents.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		HumanHandoff: []string{
			"conseiller", "parler à quelqu'un", "parler à un", "humain",
			"whatsapp", "téléphone", "rappeler", "advisor", "human", "speak to someone",
		},
		LeadQualification: []string{
			"mariage", "événement", "devis", "organiser", "réserver", "budget",
			"lead", "event", "plan", "organize", "book", "wedding", "party",
		},
		FAQ: []string{
			"comment", "quand", "pourquoi", "annul", "politique", "horaires",
			"faq", "question", "how", "what", "when", "where", "why", "policy", "cancel",
		},
		ProductServiceLookup: []string{
			"produit", "service", "location", "matériel", "catalogue", "menu",
			"prix", "tarif", "plateau", "product", "supply", "rental", "equipment", "catalog",
		},
	}
}

// LoadKeywords reads an override table from path. A missing file means
// defaults; a malformed file logs and falls back rather than failing
// startup. Empty sets in the file inherit the default set for that intent.
func LoadKeywords(ctx context.Context, path string) KeywordTable {
	defaults := DefaultKeywords()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.FromCtx(ctx).Warn().Err(err).Str("path", path).Msg("failed to read intent config, using defaults")
		}
		return defaults
	}

	var table KeywordTable
	if err := json.Unmarshal(data, &table); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("path", path).Msg("malformed intent config, using defaults")
		return defaults
	}

	if len(table.HumanHandoff) == 0 {
		table.HumanHandoff = defaults.HumanHandoff
	}
	if len(table.LeadQualification) == 0 {
		table.LeadQualification = defaults.LeadQualification
	}
	if len(table.FAQ) == 0 {
		table.FAQ = defaults.FAQ
	}
	if len(table.ProductServiceLookup) == 0 {
		table.ProductServiceLookup = defaults.ProductServiceLookup
	}

	log.FromCtx(ctx).Info().Str("path", path).Msg("loaded intent keyword overrides")
	return table
}

// ordered returns the priority evaluation order. HumanHandoff wins every
// tie: a message naming both a handoff phrase and a product word always
// escalates.
func (t KeywordTable) ordered() []struct {
	intent   core.Intent
	keywords []string
} {
	return []struct {
		intent   core.Intent
		keywords []string
	}{
		{core.IntentHumanHandoff, t.HumanHandoff},
		{core.IntentLeadQualification, t.LeadQualification},
		{core.IntentFAQ, t.FAQ},
		{core.IntentProductServiceLookup, t.ProductServiceLookup},
	}
}
