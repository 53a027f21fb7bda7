// Package dialog implements the conversation state machine that drives the
// meal-logging dialogue: command routing, session expiry, the clarification
// loop, meal validation and commit, and the preference-management wizard.
//
// The engine's only external surface is HandleMessage: accept one inbound
// text for a chat identity, produce zero or more outbound prompts. Handling
// for a given chat runs to completion before its next message is processed;
// the Session Registry is the only state shared across chats.
package dialog

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-meal-agent/internal/catalog"
	"github.com/tbourn/go-meal-agent/internal/interpreter"
	"github.com/tbourn/go-meal-agent/internal/memory"
	"github.com/tbourn/go-meal-agent/internal/observability"
	"github.com/tbourn/go-meal-agent/internal/resolve"
)

const defaultSessionTTL = 10 * time.Minute

type handlerFunc func(ctx context.Context, sess *Session, text string) ([]string, error)

// Engine is the top-level conversation driver.
type Engine struct {
	Sessions *Registry
	Interp   interpreter.Interpreter
	Resolver *resolve.Engine
	Writer   catalog.Writer
	Auth     catalog.Authenticator
	Memory   memory.Store
	TTL      time.Duration
	Clock    func() time.Time
	Logger   zerolog.Logger

	caser    cases.Caser
	handlers map[State]handlerFunc
}

// NewEngine wires the collaborators and builds the state dispatch table. A
// nil memory store is replaced with the no-op implementation so alias and
// preference features silently disable rather than crash.
func NewEngine(interp interpreter.Interpreter, resolver *resolve.Engine, writer catalog.Writer, auth catalog.Authenticator, mem memory.Store, ttl time.Duration, logger zerolog.Logger) *Engine {
	if mem == nil {
		mem = memory.NoopStore{}
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	e := &Engine{
		Sessions: NewRegistry(),
		Interp:   interp,
		Resolver: resolver,
		Writer:   writer,
		Auth:     auth,
		Memory:   mem,
		TTL:      ttl,
		Clock:    time.Now,
		Logger:   logger,
		caser:    cases.Title(language.English),
	}
	e.handlers = map[State]handlerFunc{
		StateAwaitingMealDescription:     e.handleMealDescription,
		StateAwaitingClarification:       e.handleClarification,
		StateAwaitingConfirmation:        e.handleConfirmation,
		StateAwaitingOCRCorrection:       e.handleOCRCorrection,
		StateAwaitingMemoryConfirmation:  e.handleMemoryConfirmation,
		StateAwaitingPreferenceAction:    e.handlePreferenceAction,
		StateAwaitingAliasInput:          e.handleAliasInput,
		StateAwaitingFoodSearch:          e.handleFoodSearch,
		StateAwaitingFoodSelection:       e.handleFoodSelection,
		StateAwaitingFoodSearchSelection: e.handleFoodSearchSelection,
		StateAwaitingAliasDeleteConfirm:  e.handleAliasDeleteConfirm,
		StateAwaitingPrefDeleteConfirm:   e.handlePrefDeleteConfirm,
	}
	return e
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

// HandleMessage processes one inbound message for chatID and returns the
// outbound prompts. Expiry is applied before any routing; recognized
// commands and login-style messages take priority over state routing.
func (e *Engine) HandleMessage(ctx context.Context, chatID, text string) ([]string, error) {
	tr := otel.Tracer("dialog/Engine")
	ctx, span := tr.Start(ctx, "HandleMessage",
		trace.WithAttributes(attribute.String("chat.id", chatID)),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	// Login is intercepted even without a session, since it creates one.
	if user, pass, ok := parseLogin(text); ok {
		observability.CountMessage("login")
		return e.handleLogin(ctx, chatID, user, pass)
	}

	sess, ok := e.Sessions.Get(chatID)
	if !ok {
		observability.CountMessage("no_session")
		return []string{msgNotAuthed}, nil
	}

	now := e.now()
	var replies []string
	if conv := sess.Conv; conv != nil {
		if now.Sub(conv.LastActivityAt) > e.TTL {
			sess.Conv = nil
			replies = append(replies, msgExpired)
		} else {
			conv.LastActivityAt = now
		}
	}

	if cmd := matchCommand(text); cmd != cmdNone {
		observability.CountMessage("command")
		out, err := e.handleCommand(ctx, sess, cmd)
		return append(replies, out...), err
	}

	conv := sess.Conv
	if conv == nil {
		observability.CountMessage(StateIdle.String())
		return append(replies, msgUseStart), nil
	}
	if conv.State == StateProcessing {
		observability.CountMessage(conv.State.String())
		return append(replies, msgPleaseWait), nil
	}
	handler, registered := e.handlers[conv.State]
	if !registered {
		observability.CountMessage(conv.State.String())
		return append(replies, msgUseStart), nil
	}

	observability.CountMessage(conv.State.String())
	prev := conv.State
	conv.State = StateProcessing
	out, err := handler(ctx, sess, text)
	if sess.Conv != nil && sess.Conv.State == StateProcessing {
		// The handler did not commit to a new state; fall back to where
		// the conversation was. A chat must never stay stuck in
		// Processing.
		sess.Conv.State = prev
	}
	if err != nil {
		e.Logger.Error().Err(err).
			Str("chat_id", chatID).
			Str("state", prev.String()).
			Msg("handler failed")
		return append(replies, msgSorry), nil
	}
	return append(replies, out...), nil
}

// HandleTranscript ingests a corrected-transcript text (e.g. from a
// photographed handwritten log) and opens the correction dialogue for it.
func (e *Engine) HandleTranscript(ctx context.Context, chatID, transcript string) ([]string, error) {
	sess, ok := e.Sessions.Get(chatID)
	if !ok {
		return []string{msgNotAuthed}, nil
	}
	now := e.now()
	conv := newConversation(now)
	conv.RawTranscript = strings.TrimSpace(transcript)
	conv.State = StateAwaitingOCRCorrection
	sess.Conv = conv
	return []string{
		"Here is what I read:\n" + conv.RawTranscript +
			"\nReply with corrections, or send /continue to log it as is.",
	}, nil
}

func (e *Engine) handleLogin(ctx context.Context, chatID, user, pass string) ([]string, error) {
	cred, err := e.Auth.Login(ctx, user, pass)
	if err != nil {
		e.Logger.Warn().Err(err).Str("chat_id", chatID).Msg("login failed")
		return []string{msgLoginFail}, nil
	}
	e.Sessions.Put(&Session{ChatID: chatID, Credential: cred})
	return []string{msgLoginOK}, nil
}

func (e *Engine) handleCommand(ctx context.Context, sess *Session, cmd command) ([]string, error) {
	now := e.now()
	switch cmd {
	case cmdStart:
		sess.Conv = newConversation(now)
		return []string{msgGreeting}, nil

	case cmdCancel:
		sess.Conv = nil
		return []string{msgCanceled}, nil

	case cmdSave:
		conv := sess.Conv
		if conv == nil || conv.State != StateAwaitingConfirmation || len(conv.Validated) == 0 {
			return []string{msgNothingToSave}, nil
		}
		return e.commitMeal(ctx, sess)

	case cmdContinue:
		conv := sess.Conv
		if conv == nil || conv.RawTranscript == "" {
			return []string{msgNoTranscript}, nil
		}
		return e.processDescription(ctx, sess, conv.RawTranscript)

	case cmdSearch:
		if sess.Conv == nil {
			sess.Conv = newConversation(now)
		}
		sess.Conv.WizardTerm = ""
		sess.Conv.State = StateAwaitingFoodSearch
		return []string{msgSearchPrompt}, nil

	case cmdPreferences:
		if sess.Conv == nil {
			sess.Conv = newConversation(now)
		}
		sess.Conv.State = StateAwaitingPreferenceAction
		return []string{e.preferenceListing(ctx, sess.ChatID) + msgPrefMenu}, nil

	case cmdLogout:
		e.Sessions.Delete(sess.ChatID)
		return []string{msgLoggedOut}, nil
	}
	return nil, nil
}
