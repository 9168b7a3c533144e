// Package orchestrator runs one conversation turn end to end: it serializes
// turns per session, loads and saves session state, and drives the turn
// through the gate, proposal, strategic and completion stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/composer"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/gates"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/llm"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/orchestrator/observers"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/proposal"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/strategy"
	errx "github.com/Chative-core-poc-v1/frontdesk/internal/core/error"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// DefaultTurnTimeout is the wall-clock ceiling of one turn.
const DefaultTurnTimeout = 25 * time.Second

// failureSaveTimeout bounds the session save after a failed turn, whose own
// context may already be done.
const failureSaveTimeout = 2 * time.Second

// Config holds everything needed to build an Engine.
type Config struct {
	ChatModel    *llm.ChatModel
	Retry        llm.RetryConfig
	Sessions     model.SessionStore
	Turns        model.TurnLog
	Profiles     model.ProfileStore
	Business     model.BusinessConfig
	Conversation model.ConversationConfig

	// Rules defaults to strategy.DefaultRules.
	Rules []model.StrategicRule
	// ComposerOptions tune decoration.
	ComposerOptions []composer.Option
	// RetrierOptions replace sleep or jitter, mainly for tests.
	RetrierOptions []llm.RetrierOption
	// Now defaults to time.Now.
	Now func() time.Time
}

// Reply is the outcome of a handled turn.
type Reply struct {
	Result             *model.TurnResult
	SessionID          string
	AssistantTurnCount int
	FlowStep           string
}

// Engine handles conversation turns.
type Engine struct {
	runnable compose.Runnable[*model.Turn, *model.TurnResult]
	sessions model.SessionStore
	turns    model.TurnLog
	profiles model.ProfileStore
	locks    *sessionLocks
	timeout  time.Duration
	now      func() time.Time
}

// NewEngine validates cfg, builds the rule matcher and compiles the turn graph.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store is nil")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	rules := cfg.Rules
	if rules == nil {
		rules = strategy.DefaultRules()
	}

	derivers := strategy.NewDerivers(cfg.Business)
	matcher, err := strategy.NewMatcher(rules, derivers)
	if err != nil {
		return nil, fmt.Errorf("build rule matcher: %w", err)
	}

	s := &stages{
		matcher:  matcher,
		composer: composer.New(derivers, cfg.ComposerOptions...),
		machine:  proposal.NewMachine(),
		chat:     cfg.ChatModel,
		retrier:  llm.NewRetrier(cfg.Retry, cfg.RetrierOptions...),
		history:  NewHistoryManager(cfg.Business, cfg.Conversation),
		now:      now,
	}
	runnable, err := BuildGraph(ctx, &GraphConfig{Stages: s})
	if err != nil {
		return nil, err
	}

	timeout := cfg.Conversation.TurnTimeout
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}

	logx.Debug().Int("rules", len(rules)).Dur("turn_timeout", timeout).Msg("Engine ready")
	return &Engine{
		runnable: runnable,
		sessions: cfg.Sessions,
		turns:    cfg.Turns,
		profiles: cfg.Profiles,
		locks:    newSessionLocks(),
		timeout:  timeout,
		now:      now,
	}, nil
}

// SessionKey returns the session the request belongs to. A request without
// a session id starts a new session; the id is returned in the Reply so the
// client can send it back.
func SessionKey(req *model.TurnRequest) string {
	if req.SessionID != "" {
		return req.SessionID
	}
	return uuid.NewString()
}

// HandleTurn answers the last user message of req.
func (e *Engine) HandleTurn(ctx context.Context, req *model.TurnRequest) (*Reply, error) {
	if req == nil {
		return nil, errx.Validation("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, errx.Validation(err.Error())
	}

	key := SessionKey(req)
	log := logx.Session(key)

	turnCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	release, err := e.locks.Acquire(turnCtx, key)
	if err != nil {
		return nil, errx.Timeout(fmt.Errorf("wait for session %s: %w", key, err))
	}
	defer release()

	session, err := e.loadSession(turnCtx, key)
	if err != nil {
		return nil, err
	}

	userID := req.UserID
	if userID == "" {
		userID = key
	}
	text := req.CurrentText()
	turn := &model.Turn{
		Request:            req,
		Session:            session,
		Profile:            e.updateProfile(turnCtx, userID, key, text),
		UserID:             userID,
		Text:               text,
		AssistantTurnCount: gates.AssistantTurnCount(req.Prior()),
		PriorGateTypes:     e.priorGateTypes(turnCtx, key),
	}
	e.appendTurn(turnCtx, model.TurnRecord{
		SessionID: key,
		UserID:    userID,
		Role:      model.RoleUser,
		Content:   text,
		CreatedAt: e.now(),
	})

	result, err := e.runnable.Invoke(turnCtx, turn, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		err = turnError(turnCtx, turn, err)
		e.saveAfterFailure(ctx, key, session)
		log.Error().Err(err).Str("error_type", errx.ClassifyErrorType(err)).Msg("turn failed")
		return nil, err
	}

	session.UpdatedAt = e.now()
	if err := e.sessions.Put(turnCtx, key, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	record := model.TurnRecord{
		SessionID:    key,
		UserID:       userID,
		Role:         model.RoleAssistant,
		Content:      result.Message,
		ResponseType: result.ResponseType,
		CreatedAt:    e.now(),
	}
	if result.Usage != nil {
		record.PromptTokens = result.Usage.PromptTokens
		record.CompletionTokens = result.Usage.CompletionTokens
		record.CostUSD = result.Usage.CostUSD
	}
	e.appendTurn(turnCtx, record)

	reply := &Reply{
		Result:             result,
		SessionID:          key,
		AssistantTurnCount: turn.AssistantTurnCount,
	}
	if session.Flow != nil {
		reply.FlowStep = session.Flow.Step.String()
	}
	log.Info().
		Str("response_type", string(result.ResponseType)).
		Int("assistant_turn", turn.AssistantTurnCount).
		Str("trigger", result.Trigger).
		Msg("turn handled")
	return reply, nil
}

// saveAfterFailure keeps what the stages recorded before the turn failed:
// repeat counts, provided context and recent turns. Failures are logged only.
func (e *Engine) saveAfterFailure(ctx context.Context, key string, session *model.Session) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureSaveTimeout)
	defer cancel()

	session.UpdatedAt = e.now()
	if err := e.sessions.Put(saveCtx, key, session); err != nil {
		logx.Warn().Err(err).Str("session_id", key).Msg("session not saved after failed turn")
	}
}

// Evict drops the stored state of a session.
func (e *Engine) Evict(ctx context.Context, sessionID string) error {
	return e.sessions.Evict(ctx, sessionID)
}

func (e *Engine) loadSession(ctx context.Context, key string) (*model.Session, error) {
	session, err := e.sessions.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		logx.Debug().Str("session_id", key).Msg("new session")
		return model.NewSession(key, e.now()), nil
	}
	session.Normalize()
	return session, nil
}

// updateProfile merges contact details found in text into the stored
// profile. Store failures are logged and never fail the turn.
func (e *Engine) updateProfile(ctx context.Context, userID, sessionID, text string) *model.Profile {
	if e.profiles == nil {
		return nil
	}
	profile, err := e.profiles.Get(ctx, userID, sessionID)
	if err != nil {
		logLoggingFailure(errx.Logging(err, "profile get"))
		profile = nil
	}

	found := model.Profile{
		UserID:    userID,
		SessionID: sessionID,
		Name:      proposal.ExtractName(text),
		Email:     proposal.ExtractEmail(text),
		Phone:     proposal.ExtractPhone(text),
		UpdatedAt: e.now(),
	}
	if found.Name == "" && found.Email == "" && found.Phone == "" {
		return profile
	}

	if err := e.profiles.Upsert(ctx, found); err != nil {
		logLoggingFailure(errx.Logging(err, "profile upsert"))
	}
	if profile == nil {
		return &found
	}
	profile.Merge(found)
	return profile
}

// priorGateTypes returns the response types already recorded for the session.
func (e *Engine) priorGateTypes(ctx context.Context, sessionID string) map[model.ResponseType]bool {
	seen := map[model.ResponseType]bool{}
	if e.turns == nil {
		return seen
	}
	records, err := e.turns.BySession(ctx, sessionID)
	if err != nil {
		logLoggingFailure(errx.Logging(err, "turn log read"))
		return seen
	}
	for _, r := range records {
		if r.Role == model.RoleAssistant && r.ResponseType != "" {
			seen[r.ResponseType] = true
		}
	}
	return seen
}

func (e *Engine) appendTurn(ctx context.Context, record model.TurnRecord) {
	if e.turns == nil {
		return
	}
	if err := e.turns.Append(ctx, record); err != nil {
		logLoggingFailure(errx.Logging(err, "turn log append"))
	}
}

func logLoggingFailure(err error) {
	logx.Warn().Err(err).Msg("turn log or profile store unavailable, continuing")
}

// turnError recovers the typed stage error from a graph failure.
func turnError(ctx context.Context, turn *model.Turn, err error) error {
	if turn.Failure != nil {
		err = turn.Failure
	}
	if errx.KindOf(err) != "" {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errx.Timeout(err)
	}
	return err
}
