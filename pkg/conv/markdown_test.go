package conv

import (
	"strings"
	"testing"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text",
			input:    "Bonjour",
			expected: "Bonjour\n",
		},
		{
			name:     "bold text",
			input:    "**250 MAD**",
			expected: "<strong>250 MAD</strong>\n",
		},
		{
			name:     "italic text",
			input:    "*par personne*",
			expected: "<em>par personne</em>\n",
		},
		{
			name:     "heading tag is stripped but text kept",
			input:    "# Nos menus",
			expected: "Nos menus\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkdownToTelegramHTML([]byte(tt.input)); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMarkdownToTelegramHTML_DropsDisallowedTags(t *testing.T) {
	out := MarkdownToTelegramHTML([]byte(`<script>alert(1)</script>tajine`))
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag survived: %q", out)
	}
	if !strings.Contains(out, "tajine") {
		t.Errorf("text lost: %q", out)
	}
}

func TestHTMLToPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no markup passes through", "Plateau de 12 pièces", "Plateau de 12 pièces"},
		{"surrounding whitespace trimmed", "  tajine  ", "tajine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToPlainText(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	out := HTMLToPlainText("<ul><li>Entrée</li><li>Plat</li></ul>")
	if strings.ContainsAny(out, "<>") {
		t.Errorf("markup survived: %q", out)
	}
}
