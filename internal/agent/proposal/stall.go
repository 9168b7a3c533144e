package proposal

import (
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/strategy"
)

// DefaultStallWindow is how many recent answers are compared for a stall.
const DefaultStallWindow = 3

const minAnswerLength = 3

var vagueAnswers = map[string]bool{
	"idk": true, "i don't know": true, "i dont know": true, "dunno": true, "not sure": true,
	"no idea": true, "whatever": true, "anything": true, "nothing": true, "maybe": true,
	"hmm": true, "hm": true, "ok": true, "okay": true, "sure": true, "yes": true, "no": true,
	"nope": true, "n/a": true, "na": true, "none": true, "?": true, "...": true,
}

// Placeholders substituted when a step is force-advanced.
const (
	DefaultServiceType = "General services"
	DefaultTimeline    = "Flexible timeline"
	DefaultBudget      = "Budget to be determined"
	DefaultGoals       = "General project goals"
)

func isVague(answer string) bool {
	norm := strategy.Normalize(answer)
	return len(norm) < minAnswerLength || vagueAnswers[norm]
}

// stalled reports whether the last window answers since the last forced
// advance are all the same, or all vague.
func stalled(flow *model.RFPFlowState, window int) bool {
	start := flow.StallWindowStart
	if start < 0 || start > len(flow.UserResponseHistory) {
		start = 0
	}
	recent := flow.UserResponseHistory[start:]
	if len(recent) < window {
		return false
	}
	recent = recent[len(recent)-window:]

	same, vague := true, true
	first := strategy.Normalize(recent[0])
	for _, r := range recent {
		if strategy.Normalize(r) != first {
			same = false
		}
		if !isVague(r) {
			vague = false
		}
	}
	return same || vague
}

// fillPlaceholder sets the current step's field to its default value.
func fillPlaceholder(flow *model.RFPFlowState) error {
	switch flow.Step {
	case model.StepContactInfo:
		flow.ContactInfo = &model.ContactInfo{Name: NotProvided, Email: NotProvided, Phone: NotProvided}
	case model.StepServiceType:
		flow.ServiceType = DefaultServiceType
	case model.StepTimeline:
		flow.Timeline = DefaultTimeline
	case model.StepBudget:
		flow.Budget = DefaultBudget
	case model.StepGoals:
		flow.Goals = DefaultGoals
	case model.StepProposalFormat:
		flow.ProposalFormat = NotProvided
	case model.StepComplete:
	default:
		return errInvalidStep(flow.Step)
	}
	return nil
}

// nextMissingStep derives the step from the first field still empty.
func nextMissingStep(flow *model.RFPFlowState) model.Step {
	switch {
	case flow.ContactInfo == nil:
		return model.StepContactInfo
	case flow.ServiceType == "":
		return model.StepServiceType
	case flow.Timeline == "":
		return model.StepTimeline
	case flow.Budget == "":
		return model.StepBudget
	case flow.Goals == "":
		return model.StepGoals
	case flow.ProposalFormat == "":
		return model.StepProposalFormat
	default:
		return model.StepComplete
	}
}
