package handoff

import (
	"strings"
	"testing"

	"github.com/sandevgo/caterbot/internal/config"
	"github.com/sandevgo/caterbot/internal/service/intent"
)

func testConfig() *config.HandoffConfig {
	return &config.HandoffConfig{
		WhatsAppBaseLink:    "https://api.whatsapp.com/message/ZREQ73H3OQTRJ1?autoload=1&app_absent=0",
		PhoneNumber:         "+212 6 00 00 00 00",
		ComplexityThreshold: 150,
	}
}

func testPolicy() *Policy {
	return NewPolicy(testConfig(), intent.DefaultKeywords().HumanHandoff)
}

func TestWantsHuman(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"explicit french", "Je veux parler à un conseiller", true},
		{"uppercase", "JE VEUX PARLER À UN CONSEILLER", true},
		{"english", "Can I speak to someone please?", true},
		{"whatsapp mention", "vous avez un numéro WhatsApp ?", true},
		{"plain question", "Quels sont vos menus pour 50 personnes ?", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.WantsHuman(tt.query); got != tt.want {
				t.Errorf("WantsHuman(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

// Every keyword the classifier labels as HumanHandoff must also read as an
// explicit human request here, for default and override tables alike.
func TestWantsHuman_CoversClassifierHandoffKeywords(t *testing.T) {
	tables := map[string][]string{
		"defaults": intent.DefaultKeywords().HumanHandoff,
		"override": {"agent humain", "operator", "standardiste"},
	}

	for name, keywords := range tables {
		t.Run(name, func(t *testing.T) {
			p := NewPolicy(testConfig(), keywords)
			for _, kw := range keywords {
				query := "Bonjour, " + strings.ToUpper(kw) + " svp"
				if !p.WantsHuman(query) {
					t.Errorf("WantsHuman(%q) = false, keyword %q must force a handoff", query, kw)
				}
			}
		})
	}
}

func TestShouldOffer_LongQuery(t *testing.T) {
	p := testPolicy()

	long := strings.Repeat("a", 151)
	if !p.ShouldOffer(long, "Voici notre menu.") {
		t.Error("expected offer for query above threshold")
	}

	exact := strings.Repeat("a", 150)
	if p.ShouldOffer(exact, "Voici notre menu.") {
		t.Error("threshold is strict: a query of exactly 150 chars gets no offer")
	}
}

func TestShouldOffer_UncertainReply(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{"hedging", "Je ne suis pas sûr de cette information.", true},
		{"apology", "Désolé, je n'ai pas ces détails.", true},
		{"redirect", "Veuillez contacter un conseiller pour ce devis.", true},
		{"confident", "Nos plateaux commencent à 250 MAD par personne.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ShouldOffer("court", tt.reply); got != tt.want {
				t.Errorf("ShouldOffer reply=%q = %v, want %v", tt.reply, got, tt.want)
			}
		})
	}
}
