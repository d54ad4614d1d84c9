package handoff

import (
	"strings"

	"github.com/sandevgo/caterbot/internal/config"
)

// Policy decides when a conversation should leave the assistant and reach a
// human. Two separate signals: the user asking for a person outright, and
// the assistant's own answer looking too weak to stand alone.
type Policy struct {
	complexityThreshold int
	requestPhrases      []string
	uncertaintyPhrases  []string
}

// NewPolicy builds the escalation policy. handoffKeywords is the classifier's
// HumanHandoff set; the policy unions it with its own phrasings so every
// keyword that classifies as a handoff also reads as an explicit request.
func NewPolicy(cfg *config.HandoffConfig, handoffKeywords []string) *Policy {
	phrases := []string{
		"parler à un conseiller", "parler a un conseiller",
		"parler à quelqu'un", "parler a quelqu'un",
		"un humain", "une personne", "vrai conseiller",
		"speak to someone", "talk to a human", "real person",
		"whatsapp", "appeler", "téléphone", "telephone",
	}
	for _, kw := range handoffKeywords {
		phrases = append(phrases, strings.ToLower(kw))
	}

	return &Policy{
		complexityThreshold: cfg.ComplexityThreshold,
		requestPhrases:      phrases,
		uncertaintyPhrases: []string{
			"je ne suis pas sûr", "je ne suis pas sur",
			"je ne sais pas", "je n'ai pas cette information",
			"je ne peux pas répondre", "désolé", "desole",
			"contacter un conseiller", "i'm not sure", "i don't know",
		},
	}
}

// WantsHuman reports whether the user is explicitly asking for a human
// contact, independent of intent classification.
func (p *Policy) WantsHuman(query string) bool {
	return containsAny(strings.ToLower(query), p.requestPhrases)
}

// ShouldOffer reports whether a human-contact offer should ride along with
// the generated reply: either the query is long enough to suggest a complex
// request, or the reply itself hedges.
func (p *Policy) ShouldOffer(query, reply string) bool {
	if len(query) > p.complexityThreshold {
		return true
	}
	return containsAny(strings.ToLower(reply), p.uncertaintyPhrases)
}

func containsAny(lower string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
