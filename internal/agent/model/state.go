package model

import "time"

// MaxRecentUserTurns caps ConversationState.RecentUserTurns.
const MaxRecentUserTurns = 10

// ProvidedContext records coarse signals the user has shared. Flags only
// ever move from false to true.
type ProvidedContext struct {
	HasCompanyName       bool `json:"has_company_name"`
	HasGoals             bool `json:"has_goals"`
	HasTimeline          bool `json:"has_timeline"`
	HasBudget            bool `json:"has_budget"`
	HasSignificantIntent bool `json:"has_significant_intent"`
}

// Merge ORs other into c.
func (c *ProvidedContext) Merge(other ProvidedContext) {
	c.HasCompanyName = c.HasCompanyName || other.HasCompanyName
	c.HasGoals = c.HasGoals || other.HasGoals
	c.HasTimeline = c.HasTimeline || other.HasTimeline
	c.HasBudget = c.HasBudget || other.HasBudget
	c.HasSignificantIntent = c.HasSignificantIntent || other.HasSignificantIntent
}

// ConversationState is the strategic matcher's per-session memory.
type ConversationState struct {
	LastStrategicTrigger      string          `json:"last_strategic_trigger,omitempty"`
	LastStrategicResponseText string          `json:"last_strategic_response_text,omitempty"`
	StrategicResponseCount    int             `json:"strategic_response_count"`
	LastResponseTimestamp     time.Time       `json:"last_response_timestamp"`
	RecentUserTurns           []string        `json:"recent_user_turns,omitempty"`
	HasIntroducedIdentity     bool            `json:"has_introduced_identity"`
	ProvidedContext           ProvidedContext `json:"provided_context"`

	// RepeatedRequestCounts counts every turn by request key over the session.
	RepeatedRequestCounts map[string]int `json:"repeated_request_counts,omitempty"`
	LastRequestKey        string         `json:"last_request_key,omitempty"`
	// RepeatStreak is the run of identical consecutive turns ending at the last one.
	RepeatStreak int `json:"repeat_streak"`
}

// NewConversationState returns an empty state ready for use.
func NewConversationState() *ConversationState {
	return &ConversationState{RepeatedRequestCounts: map[string]int{}}
}

// RecordUserTurn appends turn to RecentUserTurns, dropping the oldest beyond the cap.
func (s *ConversationState) RecordUserTurn(turn string) {
	s.RecentUserTurns = append(s.RecentUserTurns, turn)
	if over := len(s.RecentUserTurns) - MaxRecentUserTurns; over > 0 {
		s.RecentUserTurns = append([]string(nil), s.RecentUserTurns[over:]...)
	}
}

// Session bundles everything the engine keeps for one session key.
type Session struct {
	ID           string             `json:"id"`
	Conversation *ConversationState `json:"conversation"`
	Flow         *RFPFlowState      `json:"flow,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewSession returns an empty session for id.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Conversation: NewConversationState(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Normalize repairs zero values left by decoding older or partial records.
func (s *Session) Normalize() {
	if s.Conversation == nil {
		s.Conversation = NewConversationState()
	}
	if s.Conversation.RepeatedRequestCounts == nil {
		s.Conversation.RepeatedRequestCounts = map[string]int{}
	}
}

// FlowActive reports whether a proposal flow is collecting answers.
func (s *Session) FlowActive() bool {
	return s.Flow != nil && s.Flow.IsActive
}

// FlowStartedOrDone reports whether a flow is active or has completed.
func (s *Session) FlowStartedOrDone() bool {
	return s.Flow != nil && (s.Flow.IsActive || s.Flow.Step == StepComplete)
}
