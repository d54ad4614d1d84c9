package handoff

import (
	"net/url"
	"strings"

	"github.com/sandevgo/caterbot/internal/config"
)

const queryPrefix = "Customer Query: "

// LinkBuilder produces WhatsApp deep links that open a chat with the
// business, pre-filled with the customer's question.
type LinkBuilder struct {
	baseLink    string
	phoneNumber string
}

func NewLinkBuilder(cfg *config.HandoffConfig) *LinkBuilder {
	return &LinkBuilder{
		baseLink:    cfg.WhatsAppBaseLink,
		phoneNumber: cfg.PhoneNumber,
	}
}

// BuildLink appends the pre-filled text parameter to the configured base
// link, choosing "?" or "&" depending on whether the base already carries a
// query string. The query is percent-encoded so it survives the round trip
// through WhatsApp intact.
func (b *LinkBuilder) BuildLink(query string) string {
	sep := "?"
	if strings.Contains(b.baseLink, "?") {
		sep = "&"
	}
	return b.baseLink + sep + "text=" + url.QueryEscape(queryPrefix+query)
}

// PhoneNumber returns the business contact number shown next to the link.
func (b *LinkBuilder) PhoneNumber() string {
	return b.phoneNumber
}
