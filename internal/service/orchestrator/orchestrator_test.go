package orchestrator

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/caterbot/internal/config"
	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/handoff"
	"github.com/sandevgo/caterbot/internal/service/intent"
	"github.com/sandevgo/caterbot/internal/service/prompt"
	"github.com/sandevgo/caterbot/internal/service/session"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.reply, nil
}

type stubRetriever struct {
	results []core.RetrievalResult
	err     error
}

func (r *stubRetriever) Search(context.Context, string, string, int) ([]core.RetrievalResult, error) {
	return r.results, r.err
}

func newTestOrchestrator(t *testing.T, gen *stubGenerator, ret *stubRetriever) (*Orchestrator, *session.Store) {
	t.Helper()

	cfg := &config.HandoffConfig{
		WhatsAppBaseLink:    "https://api.whatsapp.com/message/ZREQ73H3OQTRJ1?autoload=1&app_absent=0",
		PhoneNumber:         "+212 6 00 00 00 00",
		ComplexityThreshold: 150,
	}
	store := session.NewStore(30*time.Minute, nil)
	t.Cleanup(func() { _ = store.Shutdown() })

	keywords := intent.DefaultKeywords()
	o := New(
		intent.NewClassifier(keywords),
		handoff.NewPolicy(cfg, keywords.HumanHandoff),
		handoff.NewLinkBuilder(cfg),
		gen,
		ret,
		prompt.NewBuilder(context.Background(), "absent-system-prompt.txt"),
		store,
		Options{HistoryWindow: 10, GenTimeout: time.Second, TopK: 3},
	)
	return o, store
}

func TestRoute_EmptyInputIsRejectedWithoutSessionMutation(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubGenerator{reply: "ok"}, &stubRetriever{})

	_, err := o.Route(context.Background(), "s1", "")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
	if got := store.History("s1", 0); len(got) != 0 {
		t.Errorf("empty input must not touch the session, history = %v", got)
	}
}

func TestRoute_ExplicitHandoffForcesWithoutGeneration(t *testing.T) {
	gen := &stubGenerator{reply: "should not be used"}
	o, store := newTestOrchestrator(t, gen, &stubRetriever{})

	query := "Je veux parler à un conseiller"
	decision, err := o.Route(context.Background(), "s1", query)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if decision.Kind != core.ReplyForceHandoff {
		t.Errorf("Kind = %s, want %s", decision.Kind, core.ReplyForceHandoff)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times on forced handoff", gen.calls)
	}
	if decision.WhatsAppLink == "" || decision.PhoneNumber == "" {
		t.Error("forced handoff must carry contact details")
	}

	u, err := url.Parse(decision.WhatsAppLink)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if got := u.Query().Get("text"); got != "Customer Query: "+query {
		t.Errorf("decoded link text = %q", got)
	}

	history := store.History("s1", 0)
	if len(history) != 2 || history[0].Sender != core.SenderUser || history[1].Sender != core.SenderAssistant {
		t.Errorf("history = %v", history)
	}
}

func TestRoute_EveryHandoffKeywordForcesWithoutGeneration(t *testing.T) {
	queries := []string{
		"J'ai besoin d'un conseiller",
		"I need an advisor",
		"un humain svp",
		"can a human help me",
	}
	for _, kw := range intent.DefaultKeywords().HumanHandoff {
		queries = append(queries, "Bonjour, "+kw+" svp")
	}

	for _, query := range queries {
		gen := &stubGenerator{reply: "should not be used"}
		o, _ := newTestOrchestrator(t, gen, &stubRetriever{})

		decision, err := o.Route(context.Background(), "s1", query)
		if err != nil {
			t.Fatalf("Route(%q): %v", query, err)
		}
		if decision.Kind != core.ReplyForceHandoff {
			t.Errorf("Route(%q) Kind = %s, want %s", query, decision.Kind, core.ReplyForceHandoff)
		}
		if gen.calls != 0 {
			t.Errorf("Route(%q) called the generator %d times", query, gen.calls)
		}
	}
}

func TestRoute_LongQueryGetsOfferWithVerbatimReply(t *testing.T) {
	reply := "Nos buffets commencent à 1200 MAD."
	o, _ := newTestOrchestrator(t, &stubGenerator{reply: reply}, &stubRetriever{})

	query := "menu " + strings.Repeat("x", 195) // 200 chars, no handoff keyword
	decision, err := o.Route(context.Background(), "s1", query)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if decision.Kind != core.ReplyOfferHandoff {
		t.Errorf("Kind = %s, want %s", decision.Kind, core.ReplyOfferHandoff)
	}
	if decision.Message != reply {
		t.Errorf("Message = %q, generated text must be preserved verbatim", decision.Message)
	}
	if decision.WhatsAppLink == "" {
		t.Error("offer must carry the whatsapp link")
	}
}

func TestRoute_ShortConfidentReplyStaysPlainText(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubGenerator{reply: "Oui, nous livrons sur Casablanca."}, &stubRetriever{})

	decision, err := o.Route(context.Background(), "s1", "Proposez-vous la livraison avec le menu ?")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if decision.Kind != core.ReplyPlainText {
		t.Errorf("Kind = %s, want %s", decision.Kind, core.ReplyPlainText)
	}
	if decision.WhatsAppLink != "" {
		t.Error("plain text reply must not carry a handoff link")
	}
}

func TestRoute_GeneratorFailureDegradesToApology(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubGenerator{err: errors.New("upstream 503")}, &stubRetriever{})

	decision, err := o.Route(context.Background(), "s1", "Quels menus proposez-vous ?")
	if err != nil {
		t.Fatalf("failures must not escape Route: %v", err)
	}
	if decision.Kind != core.ReplyPlainText || decision.Message != ApologyReply {
		t.Errorf("decision = %+v, want fixed apology", decision)
	}

	history := store.History("s1", 0)
	if len(history) != 2 {
		t.Fatalf("history holds %d entries, want user+apology pair", len(history))
	}
	if history[1].Sender != core.SenderAssistant || history[1].Content != ApologyReply {
		t.Errorf("assistant entry = %+v", history[1])
	}
}

func TestRoute_GeneratorTimeoutDegradesToApology(t *testing.T) {
	slow := &slowGenerator{delay: 200 * time.Millisecond}
	o, _ := newTestOrchestrator(t, &stubGenerator{}, &stubRetriever{})
	o.generator = slow
	o.genTimeout = 20 * time.Millisecond

	decision, err := o.Route(context.Background(), "s1", "Quels menus proposez-vous ?")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if decision.Message != ApologyReply {
		t.Errorf("Message = %q, want apology on timeout", decision.Message)
	}
}

type slowGenerator struct {
	delay time.Duration
}

func (g *slowGenerator) Generate(ctx context.Context, _ string) (string, error) {
	select {
	case <-time.After(g.delay):
		return "late", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestRoute_RetrieverFailureDoesNotFailTurn(t *testing.T) {
	reply := "Voici nos services."
	o, _ := newTestOrchestrator(t, &stubGenerator{reply: reply}, &stubRetriever{err: errors.New("index offline")})

	decision, err := o.Route(context.Background(), "s1", "Quels services proposez-vous ?")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if decision.Message != reply {
		t.Errorf("Message = %q, retrieval failure should not block generation", decision.Message)
	}
}

func TestRoute_LeadQualificationMarksOrderInProgress(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubGenerator{reply: "Parfait, pour quelle date ?"}, &stubRetriever{})

	query := "Nous organisons un mariage en juin"
	if _, err := o.Route(context.Background(), "s1", query); err != nil {
		t.Fatalf("Route: %v", err)
	}

	uc := store.Context("s1")
	if !uc.OrderInProgress || uc.CurrentInquiry != query {
		t.Errorf("context = %+v, want lead inquiry recorded", uc)
	}
}

// A handoff label must escalate inside dispatch too, even when the request
// phrasing slipped past the policy check.
func TestDispatch_HandoffIntentEscalates(t *testing.T) {
	gen := &stubGenerator{reply: "unused"}
	o, _ := newTestOrchestrator(t, gen, &stubRetriever{})

	decision, err := o.dispatch(context.Background(), core.IntentHumanHandoff, "ma demande", nil, core.UserContext{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if decision.Kind != core.ReplyForceHandoff {
		t.Errorf("Kind = %s, want %s", decision.Kind, core.ReplyForceHandoff)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times on handoff intent", gen.calls)
	}
}

func TestRoute_FallbackEscalates(t *testing.T) {
	gen := &stubGenerator{reply: "unused"}
	o, _ := newTestOrchestrator(t, gen, &stubRetriever{})

	decision, err := o.Route(context.Background(), "s1", "zzz")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if decision.Kind != core.ReplyForceHandoff {
		t.Errorf("Kind = %s, want escalation for unmatched input", decision.Kind)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times on fallback", gen.calls)
	}
}
