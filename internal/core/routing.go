package core

// Intent is the discrete category a user message routes by.
type Intent string

const (
	IntentHumanHandoff         Intent = "human_handoff"
	IntentLeadQualification    Intent = "lead_qualification"
	IntentFAQ                  Intent = "faq"
	IntentProductServiceLookup Intent = "product_service_lookup"
	IntentFallback             Intent = "fallback"
)

// ReplyKind tags the RoutingDecision union.
type ReplyKind string

const (
	ReplyPlainText    ReplyKind = "text"
	ReplyOfferHandoff ReplyKind = "human_contact_offer"
	ReplyForceHandoff ReplyKind = "human_contact"
)

// RoutingDecision is the outcome of one orchestrated turn. The Kind tag
// decides which fields beyond Message are populated; callers switch on it,
// never on field presence.
type RoutingDecision struct {
	Intent       Intent
	Kind         ReplyKind
	Message      string
	WhatsAppLink string
	PhoneNumber  string
}
