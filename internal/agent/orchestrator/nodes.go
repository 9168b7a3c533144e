package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/composer"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/gates"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/llm"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/proposal"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/strategy"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// Node keys.
const (
	NodeGate       = "gate"
	NodeProposal   = "proposal"
	NodeStrategic  = "strategic"
	NodeCompletion = "completion"
	NodeFinalize   = "finalize"
)

const (
	agreementMessage = "Wonderful, let's get your proposal started! "
	declineMessage   = "No problem at all. I'm happy to keep answering your questions, and the offer stands whenever you're ready."
)

// stages holds the collaborators the graph nodes close over.
type stages struct {
	matcher  *strategy.Matcher
	composer *composer.Composer
	machine  *proposal.Machine
	chat     *llm.ChatModel
	retrier  *llm.Retrier
	history  *HistoryManager
	now      func() time.Time
}

// NewGateNode runs contact capture and the proposal pivot.
func (s *stages) NewGateNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		if d := gates.Evaluate(turn); d != nil {
			turn.Result = &model.TurnResult{Message: d.Message, ResponseType: d.ResponseType}
		}
		return turn, nil
	})
}

// NewProposalNode advances an active flow, or handles the reply to a
// proposal offer. A request for a person during a flow is left to the
// strategic rules and does not count as an answer.
func (s *stages) NewProposalNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		session := turn.Session
		now := s.now()

		if session.FlowActive() {
			if strategy.IsEscalation(turn.Text) {
				logx.Info().Str("session_id", session.ID).Str("step", session.Flow.Step.String()).Msg("escalation during proposal flow")
				return turn, nil
			}
			var out *proposal.Outcome
			if proposal.IsCancellation(turn.Text) {
				out = s.machine.Cancel(session.Flow, now)
			} else {
				var err error
				out, err = s.machine.Advance(session.Flow, turn.Text, now)
				if err != nil {
					turn.Failure = fmt.Errorf("advance proposal flow: %w", err)
					return nil, turn.Failure
				}
			}
			turn.Result = &model.TurnResult{
				Message:      out.Message,
				ResponseType: out.ResponseType,
				Context:      out.Step.String(),
			}
			return turn, nil
		}

		if session.FlowStartedOrDone() || !gates.PivotOffered(turn.Request.Prior()) {
			return turn, nil
		}
		switch {
		case proposal.IsDecline(turn.Text):
			logx.Info().Str("session_id", session.ID).Msg("proposal offer declined")
			turn.Result = &model.TurnResult{Message: declineMessage, ResponseType: model.ResponseRFPDeclined}
		case proposal.IsAgreement(turn.Text):
			logx.Info().Str("session_id", session.ID).Msg("proposal offer accepted")
			session.Flow = s.machine.Start(now)
			turn.Result = &model.TurnResult{
				Message:      agreementMessage + proposal.Prompt(model.StepContactInfo),
				ResponseType: model.ResponseRFPStartedAfterConsent,
				Context:      model.StepContactInfo.String(),
			}
		}
		return turn, nil
	})
}

// NewStrategicNode answers from the rule table. A rule that needs contact
// details also opens a proposal flow.
func (s *stages) NewStrategicNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		state := turn.Session.Conversation
		match, err := s.matcher.Match(turn.Text, state, s.now())
		if err != nil {
			turn.Failure = fmt.Errorf("strategic match: %w", err)
			return nil, turn.Failure
		}
		if match == nil {
			return turn, nil
		}

		text, err := s.composer.Compose(match.Rule, turn.Text, state)
		if err != nil {
			turn.Failure = fmt.Errorf("compose %q: %w", match.Rule.Key, err)
			return nil, turn.Failure
		}

		responseType := model.ResponseStrategic
		if match.Rule.RequiresContactInfo && !turn.Session.FlowStartedOrDone() {
			turn.Session.Flow = s.machine.Start(s.now())
			responseType = model.ResponseProjectTrigger
		}
		turn.Result = &model.TurnResult{
			Message:      text,
			ResponseType: responseType,
			Trigger:      match.TriggerKey,
			Context:      match.Reason,
		}
		return turn, nil
	})
}

// NewCompletionNode delegates the turn to the language model through the
// retry invoker and filters the reply.
func (s *stages) NewCompletionNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		messages, err := s.history.BuildCompletionContext(ctx, turn)
		if err != nil {
			turn.Failure = err
			return nil, err
		}

		modelCtx := callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
			Name:      NodeCompletion,
			Type:      s.chat.Provider,
			Component: components.ComponentOfChatModel,
		})
		reply, attempts, err := llm.Retry(modelCtx, s.retrier, "chat completion", func(ctx context.Context) (*schema.Message, error) {
			out, err := s.chat.Model.Generate(ctx, messages)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, errors.New("chat model returned no message")
			}
			return out, nil
		})
		if err != nil {
			logx.Error().Err(err).Str("session_id", turn.Session.ID).Int("attempts", attempts).Msg("Error generating completion")
			turn.Failure = err
			return nil, err
		}

		text, filtered := composer.FilterFalsePromises(reply.Content)
		if filtered {
			logx.Warn().Str("session_id", turn.Session.ID).Str("original", reply.Content).Msg("false promise replaced with disclaimer")
		}
		turn.Result = &model.TurnResult{
			Message:      text,
			ResponseType: model.ResponseAI,
			Usage:        model.UsageFromMessage(reply, s.chat.ModelName),
			Attempts:     attempts,
		}
		return turn, nil
	})
}

// NewFinalizeNode unwraps the turn result.
func (s *stages) NewFinalizeNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.TurnResult, error) {
		if turn.Result == nil {
			return nil, errors.New("turn finished without a result")
		}
		return turn.Result, nil
	})
}

// newDoneCondition routes an answered turn to finalize and any other turn to next.
func newDoneCondition(next string) func(context.Context, *model.Turn) (string, error) {
	return func(ctx context.Context, turn *model.Turn) (string, error) {
		if turn.Done() {
			return NodeFinalize, nil
		}
		return next, nil
	}
}
