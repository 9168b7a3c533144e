package strategy

import (
	"regexp"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

const significantIntentMinLength = 50

var (
	companyPattern  = regexp.MustCompile(`(?i)\b(my|our) (company|business|brand|startup|agency|store|shop|firm|organization|restaurant|clinic|studio)\b|\b(inc|llc|ltd|corp|co)\b\.?|\bwe are an? \w+ (company|business|brand|startup|agency)\b|\b(company|business) (is )?called\b`)
	goalsPattern    = regexp.MustCompile(`(?i)\b(want to|need to|looking to|hoping to|trying to|goal|goals|objective|increase|grow|growth|improve|boost|launch|generate|attract|expand|more (customers|sales|leads|traffic))\b`)
	timelinePattern = regexp.MustCompile(`(?i)\b(asap|urgent|urgently|deadline|by (next|the end of)|(\d+|a|one|two|three|four|six) (day|days|week|weeks|month|months)|next (week|month|quarter|year)|this (week|month|quarter|year)|end of (the )?(month|quarter|year)|q[1-4]|timeline|timeframe|launch date|january|february|march|april|june|july|august|september|october|november|december)\b`)
	budgetPattern   = regexp.MustCompile(`(?i)\$\s?\d|\b\d+(\.\d+)?\s?k\b|\b(budget|usd|dollars|spend|invest|investment)\b`)
	founderPattern  = regexp.MustCompile(`(?i)\b(founder|co-founder|cofounder|ceo|startup|start-up|my own business|launching a (company|business|brand)|small business owner)\b`)
)

// DetectContext reports which signals text contains on its own.
func DetectContext(text string) model.ProvidedContext {
	c := model.ProvidedContext{
		HasCompanyName: companyPattern.MatchString(text),
		HasGoals:       goalsPattern.MatchString(text),
		HasTimeline:    timelinePattern.MatchString(text),
		HasBudget:      budgetPattern.MatchString(text),
	}
	anySignal := c.HasCompanyName || c.HasGoals || c.HasTimeline || c.HasBudget
	c.HasSignificantIntent = (len(text) > significantIntentMinLength && anySignal) || founderPattern.MatchString(text)
	return c
}

// TrackContext folds the signals in text into state. Flags never reset.
func TrackContext(state *model.ConversationState, text string) model.ProvidedContext {
	state.ProvidedContext.Merge(DetectContext(text))
	return state.ProvidedContext
}

// MentionsTimeline reports whether text carries timeline-shaped language.
func MentionsTimeline(text string) bool {
	return timelinePattern.MatchString(text)
}

// MentionsBudget reports whether text carries money or budget language.
func MentionsBudget(text string) bool {
	return budgetPattern.MatchString(text)
}

// MentionsGoals reports whether text states an objective.
func MentionsGoals(text string) bool {
	return goalsPattern.MatchString(text)
}
