package conv

import (
	"strings"

	"github.com/inbucket/html2text"
)

// HTMLToPlainText flattens HTML fragments (WooCommerce catalog exports keep
// markup inside description columns) into plain text suitable for embedding.
func HTMLToPlainText(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.TrimSpace(fragment)
	}

	text, err := html2text.FromString(fragment, html2text.Options{
		OmitLinks: true,
	})
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(text)
}
