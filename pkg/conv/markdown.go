package conv

import (
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	tgPolicy   *bluemonday.Policy
)

// telegramPolicy whitelists the tag subset of
// https://core.telegram.org/bots/api#html-style; everything else is
// stripped, keeping inner text.
func telegramPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		tgPolicy = bluemonday.NewPolicy()
		tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
		tgPolicy.AllowAttrs("href").OnElements("a")
		tgPolicy.AllowAttrs("class").OnElements("code")
	})
	return tgPolicy
}

// MarkdownToTelegramHTML renders a generated reply into the HTML subset
// Telegram accepts. Generator output is treated as untrusted: any markup it
// emits beyond the whitelist is sanitized away.
func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	rendered := markdown.Render(p.Parse(md), renderer)

	return string(telegramPolicy().SanitizeBytes(rendered))
}
