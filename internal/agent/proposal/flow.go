// Package proposal runs the structured proposal (RFP) collection flow:
// contact details, service, timeline, budget, goals and delivery format.
package proposal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/strategy"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// ErrFlowInactive is returned when advancing a flow that is not collecting answers.
var ErrFlowInactive = errors.New("proposal flow is not active")

func errInvalidStep(s model.Step) error {
	return fmt.Errorf("invalid proposal step %d", int(s))
}

const forcedPrefix = "No problem, we can sort that out later. "

var stepPrompts = map[model.Step]string{
	model.StepContactInfo:    "To get started, could you share your name, email address, and phone number?",
	model.StepServiceType:    "What service are you interested in? For example branding, a new website, SEO, or marketing.",
	model.StepTimeline:       "What timeline are you working with?",
	model.StepBudget:         "What budget range do you have in mind for this project?",
	model.StepGoals:          "What are the main goals you want this project to achieve?",
	model.StepProposalFormat: "Last question: how would you like to receive your proposal? For example a PDF by email or a short call.",
}

// Prompt returns the question asked for step.
func Prompt(step model.Step) string {
	return stepPrompts[step]
}

// Outcome is the result of one flow turn.
type Outcome struct {
	Message      string
	ResponseType model.ResponseType
	Step         model.Step
	Advanced     bool
	Forced       bool
	Summary      *model.ProposalSummary
}

// Completed reports whether this turn finalized the flow.
func (o *Outcome) Completed() bool {
	return o.Summary != nil
}

// Machine drives RFPFlowState transitions. It is stateless.
type Machine struct {
	stallWindow int
}

func NewMachine() *Machine {
	return &Machine{stallWindow: DefaultStallWindow}
}

// Start returns a new active flow at contact_info.
func (m *Machine) Start(now time.Time) *model.RFPFlowState {
	return &model.RFPFlowState{
		Step:      model.StepContactInfo,
		IsActive:  true,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Cancel ends an active flow without completing it.
func (m *Machine) Cancel(flow *model.RFPFlowState, now time.Time) *Outcome {
	flow.IsActive = false
	flow.UpdatedAt = now
	logx.Info().Str("step", flow.Step.String()).Msg("proposal flow cancelled")
	return &Outcome{
		Message:      "No problem, I've stopped the proposal. If you change your mind, just let me know and we can pick it up again.",
		ResponseType: model.ResponseRFPDeclined,
		Step:         flow.Step,
	}
}

// Advance applies one user answer to an active flow.
func (m *Machine) Advance(flow *model.RFPFlowState, text string, now time.Time) (*Outcome, error) {
	if flow == nil || !flow.IsActive {
		return nil, ErrFlowInactive
	}
	if !flow.Step.Valid() {
		return nil, errInvalidStep(flow.Step)
	}

	text = strings.TrimSpace(text)
	flow.UserResponseHistory = append(flow.UserResponseHistory, text)
	flow.UpdatedAt = now
	from := flow.Step

	if stalled(flow, m.stallWindow) {
		return m.forceAdvance(flow, from)
	}

	var (
		out *Outcome
		err error
	)
	switch flow.Step {
	case model.StepContactInfo:
		out = m.handleContact(flow, text)
	case model.StepServiceType:
		flow.ServiceType = text
		if prior, ok := priorAnswer(flow, strategy.MentionsTimeline); ok {
			flow.Timeline = prior
			flow.Budget = text
			out = m.moveTo(flow, model.StepBudget)
		} else {
			out = m.moveTo(flow, model.StepTimeline)
		}
	case model.StepTimeline:
		flow.Timeline = text
		if prior, ok := priorAnswer(flow, strategy.MentionsBudget); ok {
			flow.Budget = prior
			flow.Goals = text
			out = m.moveTo(flow, model.StepGoals)
		} else {
			out = m.moveTo(flow, model.StepBudget)
		}
	case model.StepBudget:
		flow.Budget = text
		if prior, ok := priorAnswer(flow, strategy.MentionsGoals); ok {
			flow.Goals = prior
			flow.ProposalFormat = text
			out = m.finalize(flow)
		} else {
			out = m.moveTo(flow, model.StepGoals)
		}
	case model.StepGoals:
		flow.Goals = text
		out = m.moveTo(flow, model.StepProposalFormat)
	case model.StepProposalFormat:
		flow.ProposalFormat = text
		out = m.finalize(flow)
	case model.StepComplete:
		err = ErrFlowInactive
	default:
		err = errInvalidStep(flow.Step)
	}
	if err != nil {
		return nil, err
	}

	logx.Debug().Str("from", from.String()).Str("to", flow.Step.String()).Bool("advanced", out.Advanced).Msg("proposal flow turn")
	return out, nil
}

func (m *Machine) handleContact(flow *model.RFPFlowState, text string) *Outcome {
	info, ok := ExtractContact(text)
	if !ok {
		var missing []string
		if info.Email == "" {
			missing = append(missing, "email address")
		}
		if info.Phone == "" {
			missing = append(missing, "phone number")
		}
		return &Outcome{
			Message:      fmt.Sprintf("I still need your %s to put the proposal together. Could you share it?", strings.Join(missing, " and ")),
			ResponseType: model.RFPResponseType(model.StepContactInfo),
			Step:         model.StepContactInfo,
		}
	}

	flow.ContactInfo = &info
	out := m.moveTo(flow, model.StepServiceType)
	if info.Name != NotProvided {
		out.Message = fmt.Sprintf("Thanks, %s! %s", info.Name, out.Message)
	} else {
		out.Message = "Thanks! " + out.Message
	}
	return out
}

func (m *Machine) moveTo(flow *model.RFPFlowState, step model.Step) *Outcome {
	flow.Step = step
	return &Outcome{
		Message:      Prompt(step),
		ResponseType: model.RFPResponseType(step),
		Step:         step,
		Advanced:     true,
	}
}

func (m *Machine) forceAdvance(flow *model.RFPFlowState, from model.Step) (*Outcome, error) {
	if err := fillPlaceholder(flow); err != nil {
		return nil, err
	}
	flow.StallWindowStart = len(flow.UserResponseHistory)
	next := nextMissingStep(flow)
	logx.Info().Str("from", from.String()).Str("to", next.String()).Msg("proposal flow stalled, forcing advance")

	var out *Outcome
	if next == model.StepComplete {
		out = m.finalize(flow)
	} else {
		out = m.moveTo(flow, next)
		out.Message = forcedPrefix + out.Message
	}
	out.Forced = true
	return out, nil
}

func (m *Machine) finalize(flow *model.RFPFlowState) *Outcome {
	flow.Step = model.StepComplete
	flow.IsActive = false
	summary := Summarize(flow)
	logx.Info().Str("service_type", summary.ServiceType).Msg("proposal flow complete")
	return &Outcome{
		Message:      RenderSummary(summary),
		ResponseType: model.RFPResponseType(model.StepComplete),
		Step:         model.StepComplete,
		Advanced:     true,
		Summary:      &summary,
	}
}

// priorAnswer returns the latest earlier answer for which has reports true.
// The answer just appended is excluded.
func priorAnswer(flow *model.RFPFlowState, has func(string) bool) (string, bool) {
	history := flow.UserResponseHistory
	for i := len(history) - 2; i >= 0; i-- {
		if has(history[i]) {
			return history[i], true
		}
	}
	return "", false
}
