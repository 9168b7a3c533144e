// Package strategy maps user turns onto the strategic rule table and keeps
// the per-session memory that guards against repeated answers.
package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

const (
	// RepeatTriggerWindow blocks the same rule firing twice in a row.
	RepeatTriggerWindow = 30 * time.Second
	// RepeatResponseWindow blocks the same resolved text firing twice in a row.
	RepeatResponseWindow = 60 * time.Second
	// EscalationStreak is the number of identical consecutive turns that forces escalation.
	EscalationStreak = 3

	maxTrackedRequests = 2 * model.MaxRecentUserTurns
)

// How a rule was selected.
const (
	ReasonTrigger         = "trigger"
	ReasonEscalation      = "escalation"
	ReasonPricingFallback = "pricing_fallback"
)

// Match is an accepted rule together with the text it resolved to.
type Match struct {
	Rule         model.StrategicRule
	ResponseText string
	// TriggerKey is the key recorded as lastStrategicTrigger.
	TriggerKey string
	Reason     string
}

// Matcher selects strategic rules. It holds only immutable configuration;
// all per-session memory lives in the ConversationState passed to Match.
type Matcher struct {
	rules      []model.StrategicRule
	derivers   Derivers
	escalation model.StrategicRule
	pricing    *model.StrategicRule
}

// NewMatcher validates rules and prepares the escalation and pricing fallbacks.
func NewMatcher(rules []model.StrategicRule, derivers Derivers) (*Matcher, error) {
	if err := ValidateRules(rules, derivers); err != nil {
		return nil, fmt.Errorf("invalid rule table: %w", err)
	}
	m := &Matcher{rules: rules, derivers: derivers}
	for i := range rules {
		r := &rules[i]
		if r.Role == model.RoleEscalation {
			m.escalation = *r
		}
		if m.pricing == nil && r.Role == model.RoleStandard && hasPricingTrigger(*r) {
			m.pricing = r
		}
	}
	return m, nil
}

// Rules returns the table in priority order.
func (m *Matcher) Rules() []model.StrategicRule {
	return m.rules
}

// Derivers returns the template derivers the matcher resolves with.
func (m *Matcher) Derivers() Derivers {
	return m.derivers
}

func hasPricingTrigger(r model.StrategicRule) bool {
	for _, p := range r.TriggerPhrases {
		if HasPricingVocabulary(p) {
			return true
		}
	}
	return false
}

// Match returns the rule that should answer turnText, or nil. It mutates
// state: repeat counts, provided context, recent turns and, on acceptance,
// the last-trigger bookkeeping.
func (m *Matcher) Match(turnText string, state *model.ConversationState, now time.Time) (*Match, error) {
	if IsNonBusiness(turnText) {
		logx.Debug().Str("turn", turnText).Msg("strategic match skipped: general-knowledge turn")
		return nil, nil
	}

	norm := Normalize(turnText)
	streak := m.trackRepeat(state, norm)
	TrackContext(state, turnText)

	if streak >= EscalationStreak || IsEscalation(turnText) {
		logx.Info().Int("streak", streak).Msg("strategic match: escalating")
		return m.accept(m.escalation, m.escalation.Key, ReasonEscalation, turnText, state, now)
	}

	lower := strings.ToLower(turnText)
	for _, r := range m.rules {
		if !matchesTrigger(r, lower) {
			continue
		}
		resolved, err := m.derivers.Resolve(r.Response, turnText, state)
		if err != nil {
			return nil, fmt.Errorf("resolve rule %q: %w", r.Key, err)
		}
		if reason := m.suppressReason(r, resolved, turnText, state, now); reason != "" {
			logx.Debug().Str("rule", r.Key).Str("reason", reason).Msg("strategic rule suppressed")
			state.RecordUserTurn(turnText)
			return nil, nil
		}
		return m.acceptResolved(r, r.Key, ReasonTrigger, resolved, turnText, state, now), nil
	}

	if m.pricing != nil && HasPricingVocabulary(turnText) {
		if recentlyFired(state, KeyPricing, now) {
			logx.Debug().Str("rule", m.pricing.Key).Str("reason", "repeat_trigger").Msg("pricing fallback suppressed")
			state.RecordUserTurn(turnText)
			return nil, nil
		}
		return m.accept(*m.pricing, KeyPricing, ReasonPricingFallback, turnText, state, now)
	}

	state.RecordUserTurn(turnText)
	return nil, nil
}

// RequestKey is the key a normalized request is counted under. Hashing keeps
// stored sessions small when users paste long messages.
func RequestKey(norm string) string {
	return strconv.FormatUint(xxhash.Sum64String(norm), 16)
}

// trackRepeat counts norm and returns the current streak of identical
// consecutive turns. A different turn restarts the streak; the per-request
// counts keep their history.
func (m *Matcher) trackRepeat(state *model.ConversationState, norm string) int {
	if state.RepeatedRequestCounts == nil {
		state.RepeatedRequestCounts = map[string]int{}
	}
	key := RequestKey(norm)
	state.RepeatedRequestCounts[key]++
	if norm != "" && key == state.LastRequestKey && state.RepeatStreak > 0 {
		state.RepeatStreak++
	} else {
		state.RepeatStreak = 1
	}
	state.LastRequestKey = key

	if len(state.RepeatedRequestCounts) > maxTrackedRequests {
		keep := map[string]bool{key: true}
		for _, t := range state.RecentUserTurns {
			keep[RequestKey(Normalize(t))] = true
		}
		for k := range state.RepeatedRequestCounts {
			if !keep[k] {
				delete(state.RepeatedRequestCounts, k)
			}
		}
	}
	return state.RepeatStreak
}

func matchesTrigger(r model.StrategicRule, lowerText string) bool {
	for _, p := range r.TriggerPhrases {
		if strings.Contains(lowerText, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func recentlyFired(state *model.ConversationState, key string, now time.Time) bool {
	return state.LastStrategicTrigger == key && now.Sub(state.LastResponseTimestamp) < RepeatTriggerWindow
}

func (m *Matcher) suppressReason(r model.StrategicRule, resolved, turnText string, state *model.ConversationState, now time.Time) string {
	switch {
	case recentlyFired(state, r.Key, now):
		return "repeat_trigger"
	case resolved == state.LastStrategicResponseText && now.Sub(state.LastResponseTimestamp) < RepeatResponseWindow:
		return "repeat_response"
	case IsAcknowledgment(turnText) && len(state.RecentUserTurns) > 0:
		return "acknowledgment"
	case r.Role == model.RoleIdentity && state.HasIntroducedIdentity:
		return "identity_already_introduced"
	case r.Role == model.RoleIdentity && state.StrategicResponseCount >= 1:
		return "identity_after_strategic"
	case r.Role == model.RoleIdentity && HasContactCue(turnText):
		return "identity_contact_details"
	}
	return ""
}

func (m *Matcher) accept(r model.StrategicRule, key, reason, turnText string, state *model.ConversationState, now time.Time) (*Match, error) {
	resolved, err := m.derivers.Resolve(r.Response, turnText, state)
	if err != nil {
		return nil, fmt.Errorf("resolve rule %q: %w", r.Key, err)
	}
	return m.acceptResolved(r, key, reason, resolved, turnText, state, now), nil
}

func (m *Matcher) acceptResolved(r model.StrategicRule, key, reason, resolved, turnText string, state *model.ConversationState, now time.Time) *Match {
	state.LastStrategicTrigger = key
	state.LastStrategicResponseText = resolved
	state.StrategicResponseCount++
	state.LastResponseTimestamp = now
	state.RecordUserTurn(turnText)
	if r.Role == model.RoleIdentity {
		state.HasIntroducedIdentity = true
	}

	logx.Info().Str("rule", r.Key).Str("trigger_key", key).Str("reason", reason).
		Int("strategic_count", state.StrategicResponseCount).Msg("strategic rule fired")

	return &Match{Rule: r, ResponseText: resolved, TriggerKey: key, Reason: reason}
}
