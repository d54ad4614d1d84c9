package intent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandevgo/caterbot/internal/core"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultKeywords())

	tests := []struct {
		name string
		text string
		want core.Intent
	}{
		{"handoff french", "Je veux parler à un conseiller", core.IntentHumanHandoff},
		{"handoff uppercase", "CONSEILLER SVP", core.IntentHumanHandoff},
		{"handoff mid-sentence", "est-ce possible de discuter sur whatsapp ?", core.IntentHumanHandoff},
		{"lead wedding", "Nous organisons un mariage en juin", core.IntentLeadQualification},
		{"lead english", "I want to book a party", core.IntentLeadQualification},
		{"faq", "Quelle est votre politique d'annulation ?", core.IntentFAQ},
		{"faq english", "How far in advance should I reserve?", core.IntentFAQ},
		{"lookup menu", "Montrez-moi le menu et les tarifs", core.IntentProductServiceLookup},
		{"lookup rental", "Do you offer equipment rental?", core.IntentProductServiceLookup},
		{"fallback", "Bonjour", core.IntentFallback},
		{"empty", "", core.IntentFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_HandoffOverridesOtherIntents(t *testing.T) {
	c := NewClassifier(DefaultKeywords())

	// Contains both a product word and a handoff phrase; handoff wins.
	got := c.Classify("Je cherche un menu mais je préfère parler à un conseiller")
	if got != core.IntentHumanHandoff {
		t.Errorf("expected handoff to take priority, got %s", got)
	}
}

func TestClassify_PriorityOrderIsStable(t *testing.T) {
	c := NewClassifier(KeywordTable{
		HumanHandoff:         []string{"alpha"},
		LeadQualification:    []string{"alpha", "beta"},
		FAQ:                  []string{"beta", "gamma"},
		ProductServiceLookup: []string{"gamma"},
	})

	tests := []struct {
		text string
		want core.Intent
	}{
		{"alpha", core.IntentHumanHandoff},
		{"beta", core.IntentLeadQualification},
		{"gamma", core.IntentFAQ},
		{"delta", core.IntentFallback},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestLoadKeywords_MissingFileUsesDefaults(t *testing.T) {
	table := LoadKeywords(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if len(table.HumanHandoff) == 0 {
		t.Fatal("expected default handoff keywords")
	}
}

func TestLoadKeywords_OverridesApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.json")
	override := KeywordTable{HumanHandoff: []string{"operator"}}
	data, err := json.Marshal(override)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	table := LoadKeywords(context.Background(), path)
	if len(table.HumanHandoff) != 1 || table.HumanHandoff[0] != "operator" {
		t.Errorf("expected override, got %v", table.HumanHandoff)
	}
	// Unspecified sets inherit defaults.
	if len(table.FAQ) == 0 {
		t.Error("expected FAQ defaults to remain")
	}
}

func TestLoadKeywords_MalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	table := LoadKeywords(context.Background(), path)
	if len(table.HumanHandoff) == 0 {
		t.Fatal("expected defaults on malformed config")
	}
}
