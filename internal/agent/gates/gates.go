// Package gates holds the turn-indexed one-shot interventions that run
// before rule matching: contact capture and the proposal pivot.
package gates

import (
	"regexp"
	"strings"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/proposal"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/strategy"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

const (
	// ContactCaptureTurn is the prior assistant turn count at which contact capture may fire.
	ContactCaptureTurn = 4
	// ProposalPivotTurn is the prior assistant turn count at which the proposal offer may fire.
	ProposalPivotTurn = 6

	minPivotTextLength = 10
)

// Gate messages. Each carries its marker verbatim so a later turn can tell
// from history alone that the gate already fired.
const (
	ContactCaptureMarker  = "may I ask your name"
	ContactCaptureMessage = "I'm enjoying our chat! Before we go further, may I ask your name? If you'd like our team to follow up, feel free to share an email or phone number too."

	ProposalPivotMarker  = "put together a tailored proposal"
	ProposalPivotMessage = "It sounds like you have a good picture of what you need. Would you like me to put together a tailored proposal? It only takes a few quick questions."
)

var (
	casualPattern = regexp.MustCompile(`(?i)\b(not really|just want|just wanted|just looking|just browsing|just curious|just asking|no thanks|maybe later|not sure yet|not right now)\b`)
	bareReplies   = map[string]bool{
		"yes": true, "yeah": true, "yep": true, "no": true, "nope": true, "thanks": true,
		"thank you": true, "thanks a lot": true, "ok": true, "okay": true, "sure": true,
	}
)

// AssistantTurnCount returns the number of assistant messages before the current turn.
func AssistantTurnCount(prior []model.ChatMessage) int {
	n := 0
	for _, m := range prior {
		if m.Role == model.RoleAssistant {
			n++
		}
	}
	return n
}

// HasFired reports whether any prior assistant message carries marker.
func HasFired(prior []model.ChatMessage, marker string) bool {
	marker = strings.ToLower(marker)
	for _, m := range prior {
		if m.Role == model.RoleAssistant && strings.Contains(strings.ToLower(m.Content), marker) {
			return true
		}
	}
	return false
}

// UserAskedQuestion reports whether any user message contains a question mark.
func UserAskedQuestion(messages []model.ChatMessage) bool {
	for _, m := range messages {
		if m.Role == model.RoleUser && strings.Contains(m.Content, "?") {
			return true
		}
	}
	return false
}

// ContactKnown reports whether an email or phone is already known from the
// profile, the proposal flow, or anything the user wrote.
func ContactKnown(messages []model.ChatMessage, profile *model.Profile, flow *model.RFPFlowState) bool {
	if profile.HasContact() {
		return true
	}
	if flow != nil && flow.ContactInfo != nil {
		ci := flow.ContactInfo
		if (ci.Email != "" && ci.Email != proposal.NotProvided) || (ci.Phone != "" && ci.Phone != proposal.NotProvided) {
			return true
		}
	}
	for _, m := range messages {
		if m.Role == model.RoleUser && (proposal.ExtractEmail(m.Content) != "" || proposal.ExtractPhone(m.Content) != "") {
			return true
		}
	}
	return false
}

// ContactCaptureInput is everything the contact capture gate looks at.
type ContactCaptureInput struct {
	AssistantTurnCount   int
	ContactKnown         bool
	AlreadyFired         bool
	UserAskedQuestion    bool
	HasSignificantIntent bool
	// FlowActive is set while the proposal flow is collecting answers; the
	// flow asks for contact details itself.
	FlowActive bool
}

// ContactCapture fires on the fifth assistant turn for a user who has asked
// something but has not shared contact details or much context, unless a
// proposal flow is running.
func ContactCapture(in ContactCaptureInput) bool {
	return in.AssistantTurnCount == ContactCaptureTurn &&
		!in.ContactKnown &&
		!in.AlreadyFired &&
		in.UserAskedQuestion &&
		!in.HasSignificantIntent &&
		!in.FlowActive
}

// ProposalPivotInput is everything the proposal pivot gate looks at.
type ProposalPivotInput struct {
	AssistantTurnCount int
	AlreadyFired       bool
	Text               string
	FlowStartedOrDone  bool
}

// ProposalPivot fires on the seventh assistant turn to offer a structured proposal.
func ProposalPivot(in ProposalPivotInput) bool {
	text := strings.TrimSpace(in.Text)
	return in.AssistantTurnCount == ProposalPivotTurn &&
		!in.AlreadyFired &&
		!bareReplies[strategy.Normalize(text)] &&
		len(text) > minPivotTextLength &&
		!in.FlowStartedOrDone &&
		!casualPattern.MatchString(text)
}

// Decision is a fired gate.
type Decision struct {
	ResponseType model.ResponseType
	Message      string
}

// Evaluate runs contact capture then the proposal pivot for turn and
// returns the first gate that fires, or nil.
func Evaluate(turn *model.Turn) *Decision {
	prior := turn.Request.Prior()
	session := turn.Session

	capture := ContactCaptureInput{
		AssistantTurnCount:   turn.AssistantTurnCount,
		ContactKnown:         ContactKnown(turn.Request.Messages, turn.Profile, session.Flow),
		AlreadyFired:         HasFired(prior, ContactCaptureMarker) || turn.PriorGateTypes[model.ResponseContactCapture],
		UserAskedQuestion:    UserAskedQuestion(turn.Request.Messages),
		HasSignificantIntent: session.Conversation.ProvidedContext.HasSignificantIntent,
		FlowActive:           session.FlowActive(),
	}
	if ContactCapture(capture) {
		logx.Info().Str("session_id", session.ID).Msg("contact capture gate fired")
		return &Decision{ResponseType: model.ResponseContactCapture, Message: ContactCaptureMessage}
	}

	pivot := ProposalPivotInput{
		AssistantTurnCount: turn.AssistantTurnCount,
		AlreadyFired:       HasFired(prior, ProposalPivotMarker) || turn.PriorGateTypes[model.ResponseRFPPivot],
		Text:               turn.Text,
		FlowStartedOrDone:  session.FlowStartedOrDone(),
	}
	if ProposalPivot(pivot) {
		logx.Info().Str("session_id", session.ID).Msg("proposal pivot gate fired")
		return &Decision{ResponseType: model.ResponseRFPPivot, Message: ProposalPivotMessage}
	}
	return nil
}

// PivotOffered reports whether the assistant's previous message was the proposal offer.
func PivotOffered(prior []model.ChatMessage) bool {
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Role == model.RoleAssistant {
			return strings.Contains(strings.ToLower(prior[i].Content), strings.ToLower(ProposalPivotMarker))
		}
	}
	return false
}
