package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/caterbot/internal/core"
	"github.com/sandevgo/caterbot/internal/service/handoff"
	"github.com/sandevgo/caterbot/internal/service/intent"
	"github.com/sandevgo/caterbot/internal/service/prompt"
	"github.com/sandevgo/caterbot/internal/service/session"
	"github.com/sandevgo/caterbot/pkg/log"
)

// ApologyReply is the fixed degradation text for any failed turn.
const ApologyReply = "Désolé, je rencontre une difficulté technique. Pouvez-vous reformuler votre question?"

// escalationReply accompanies a forced handoff when no generated answer
// exists to carry it.
const escalationReply = "Votre demande mérite une attention personnalisée. " +
	"Vous pouvez contacter notre équipe directement via WhatsApp, un message avec votre question est déjà prêt."

// ErrEmptyMessage is returned for blank input; no session state is touched.
var ErrEmptyMessage = errors.New("empty message content")

// Orchestrator drives a single conversational turn: escalation check,
// intent dispatch, generation, and the offer-handoff policy. It never lets
// a collaborator failure escape to the transport; failed turns degrade to
// the fixed apology.
type Orchestrator struct {
	classifier *intent.Classifier
	policy     *handoff.Policy
	links      *handoff.LinkBuilder
	generator  core.Generator
	retriever  core.Retriever
	prompts    *prompt.Builder
	sessions   *session.Store

	historyWindow int
	genTimeout    time.Duration
	topK          int
}

type Options struct {
	HistoryWindow int
	GenTimeout    time.Duration
	TopK          int
}

func New(
	classifier *intent.Classifier,
	policy *handoff.Policy,
	links *handoff.LinkBuilder,
	generator core.Generator,
	retriever core.Retriever,
	prompts *prompt.Builder,
	sessions *session.Store,
	opts Options,
) *Orchestrator {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 10
	}
	if opts.GenTimeout <= 0 {
		opts.GenTimeout = 30 * time.Second
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	return &Orchestrator{
		classifier:    classifier,
		policy:        policy,
		links:         links,
		generator:     generator,
		retriever:     retriever,
		prompts:       prompts,
		sessions:      sessions,
		historyWindow: opts.HistoryWindow,
		genTimeout:    opts.GenTimeout,
		topK:          opts.TopK,
	}
}

// Route processes one turn for sessionID and returns the reply decision.
// Empty input is the only error path; every other failure is absorbed into
// an apology decision so the transport has something to send. The user
// message is appended before dispatch and the assistant message only after
// the reply text exists, so history never holds an unanswered user entry
// at rest.
func (o *Orchestrator) Route(ctx context.Context, sessionID, query string) (core.RoutingDecision, error) {
	if query == "" {
		return core.RoutingDecision{}, ErrEmptyMessage
	}

	logger := log.FromCtx(ctx)

	// Snapshot conversation state before this turn's user message so the
	// prompt history does not echo the current question twice.
	history := o.sessions.History(sessionID, o.historyWindow)
	userCtx := o.sessions.Context(sessionID)
	o.sessions.AppendMessage(sessionID, core.NewTextMessage(core.SenderUser, query))

	if o.policy.WantsHuman(query) {
		decision := o.forceHandoff(query)
		o.sessions.AppendMessage(sessionID, core.NewTextMessage(core.SenderAssistant, decision.Message))
		return decision, nil
	}

	label := o.classifier.Classify(query)
	logger.Debug().Str("intent", string(label)).Str("session_id", sessionID).Msg("classified turn")

	if label == core.IntentLeadQualification {
		inProgress := true
		o.sessions.UpdateContext(sessionID, session.ContextUpdate{
			CurrentInquiry:  &query,
			OrderInProgress: &inProgress,
		})
	}

	decision, err := o.dispatch(ctx, label, query, history, userCtx)
	if err != nil {
		logger.Error().Err(err).Str("intent", string(label)).Str("session_id", sessionID).Msg("turn failed, degrading to apology")
		decision = core.RoutingDecision{
			Intent:  label,
			Kind:    core.ReplyPlainText,
			Message: ApologyReply,
		}
	}

	o.sessions.AppendMessage(sessionID, core.NewTextMessage(core.SenderAssistant, decision.Message))
	return decision, nil
}

// dispatch runs the per-intent handler and applies the offer policy to its
// reply. A human-handoff label escalates even when the request phrasing
// slipped past WantsHuman, and fallback escalates directly: a query matching
// nothing the assistant knows how to answer goes to a human.
func (o *Orchestrator) dispatch(ctx context.Context, label core.Intent, query string, history []core.Message, userCtx core.UserContext) (core.RoutingDecision, error) {
	if label == core.IntentHumanHandoff || label == core.IntentFallback {
		return o.forceHandoff(query), nil
	}

	var reply string
	var err error
	switch label {
	case core.IntentLeadQualification:
		reply, err = o.handleLead(ctx, query, history, userCtx)
	case core.IntentFAQ:
		reply, err = o.handleFAQ(ctx, query, history, userCtx)
	default:
		reply, err = o.handleLookup(ctx, query, history, userCtx)
	}
	if err != nil {
		return core.RoutingDecision{}, err
	}

	if o.policy.ShouldOffer(query, reply) {
		return core.RoutingDecision{
			Intent:       label,
			Kind:         core.ReplyOfferHandoff,
			Message:      reply,
			WhatsAppLink: o.links.BuildLink(query),
			PhoneNumber:  o.links.PhoneNumber(),
		}, nil
	}

	return core.RoutingDecision{
		Intent:  label,
		Kind:    core.ReplyPlainText,
		Message: reply,
	}, nil
}

func (o *Orchestrator) forceHandoff(query string) core.RoutingDecision {
	return core.RoutingDecision{
		Intent:       core.IntentHumanHandoff,
		Kind:         core.ReplyForceHandoff,
		Message:      escalationReply,
		WhatsAppLink: o.links.BuildLink(query),
		PhoneNumber:  o.links.PhoneNumber(),
	}
}

// generate runs the generator under the turn timeout.
func (o *Orchestrator) generate(ctx context.Context, promptText string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()
	return o.generator.Generate(genCtx, promptText)
}
