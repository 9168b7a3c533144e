package strategy

import (
	"fmt"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

// Deriver computes template text from the turn and the session state.
// Derivers must be pure: the same inputs always give the same text.
type Deriver func(turnText string, state *model.ConversationState) string

// Derivers maps deriver names used in rule templates to their functions.
type Derivers map[string]Deriver

// Deriver names referenced by DefaultRules.
const (
	DeriveIdentity         = "identity"
	DerivePricing          = "pricing"
	DerivePricingFollowUp  = "pricing_follow_up"
	DeriveLogoFollowUp     = "logo_follow_up"
	DeriveWebsiteFollowUp  = "website_follow_up"
	DeriveTimelineResponse = "timeline_response"
)

// NewDerivers returns the derivers for the given business.
func NewDerivers(business model.BusinessConfig) Derivers {
	return Derivers{
		DeriveIdentity: func(string, *model.ConversationState) string {
			return fmt.Sprintf("I'm the virtual assistant for %s, a %s. I can answer questions about our services and help you put together a project brief. For anything I can't handle, our team follows up personally.", business.Name, business.Type)
		},
		DerivePricing: func(_ string, state *model.ConversationState) string {
			if state.ProvidedContext.HasBudget {
				return "Thanks for sharing your budget. Our projects are scoped to fit it, so we can recommend the package that gets you the most within that range."
			}
			if state.ProvidedContext.HasSignificantIntent {
				return "Pricing depends on scope, but for a project like yours most clients invest between $3k and $15k. We can narrow that down quickly once we know a few details."
			}
			return "Our pricing depends on the scope of the work. Logo packages start around $800, websites around $3k, and ongoing marketing retainers are quoted monthly."
		},
		DerivePricingFollowUp: func(_ string, state *model.ConversationState) string {
			if state.ProvidedContext.HasBudget {
				return "What's the main result you want from this project?"
			}
			return "Do you have a budget range in mind?"
		},
		DeriveLogoFollowUp: func(_ string, state *model.ConversationState) string {
			if state.ProvidedContext.HasCompanyName {
				return "What feeling should the new logo give people when they see it?"
			}
			return "What's the name of the business the logo is for?"
		},
		DeriveWebsiteFollowUp: func(_ string, state *model.ConversationState) string {
			if state.ProvidedContext.HasGoals {
				return "Do you already have a site, or are we starting from scratch?"
			}
			return "What should the website help you achieve: more leads, online sales, or something else?"
		},
		DeriveTimelineResponse: func(_ string, state *model.ConversationState) string {
			if state.ProvidedContext.HasTimeline {
				return "We can usually work to the timeline you mentioned. Logos take about two weeks and most websites four to eight weeks."
			}
			return "Logos usually take about two weeks, and most websites take four to eight weeks from kickoff."
		},
	}
}

// Resolve renders t against the turn and state.
func (d Derivers) Resolve(t model.Template, turnText string, state *model.ConversationState) (string, error) {
	switch t.Kind {
	case model.TemplateNone:
		return "", nil
	case model.TemplateStatic:
		return t.Text, nil
	case model.TemplateDerived:
		fn, ok := d[t.Deriver]
		if !ok {
			return "", fmt.Errorf("unknown deriver %q", t.Deriver)
		}
		return fn(turnText, state), nil
	default:
		return "", fmt.Errorf("unknown template kind %q", t.Kind)
	}
}
