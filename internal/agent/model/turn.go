package model

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ResponseType tells the client which component produced a reply.
type ResponseType string

const (
	ResponseContactCapture         ResponseType = "CONTACT_CAPTURE"
	ResponseRFPPivot               ResponseType = "RFP_PIVOT"
	ResponseStrategic              ResponseType = "STRATEGIC"
	ResponseProjectTrigger         ResponseType = "PROJECT_TRIGGER"
	ResponseRFPStartedAfterConsent ResponseType = "RFP_STARTED_AFTER_AGREEMENT"
	ResponseRFPDeclined            ResponseType = "RFP_DECLINED"
	ResponseAI                     ResponseType = "AI_RESPONSE"
)

// RFPResponseType returns the RFP_* response type for a flow step.
func RFPResponseType(step Step) ResponseType {
	return ResponseType("RFP_" + strings.ToUpper(step.String()))
}

// ChatMessage is one entry of the inbound history.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToSchema converts the message for the completion model.
func (m ChatMessage) ToSchema() *schema.Message {
	if m.Role == RoleAssistant {
		return schema.AssistantMessage(m.Content, nil)
	}
	return schema.UserMessage(m.Content)
}

// TurnRequest is the inbound turn payload.
type TurnRequest struct {
	Messages  []ChatMessage `json:"messages"`
	SessionID string        `json:"sessionId,omitempty"`
	UserID    string        `json:"userId,omitempty"`
}

// Validate rejects requests with no messages or whose last entry is not from the user.
func (r *TurnRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	for i, m := range r.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("messages[%d]: unsupported role %q", i, m.Role)
		}
	}
	if last := r.Messages[len(r.Messages)-1]; last.Role != RoleUser {
		return fmt.Errorf("last message must have role %q", RoleUser)
	}
	return nil
}

// CurrentText returns the content of the turn being answered.
func (r *TurnRequest) CurrentText() string {
	return r.Messages[len(r.Messages)-1].Content
}

// Prior returns the history before the current turn.
func (r *TurnRequest) Prior() []ChatMessage {
	return r.Messages[:len(r.Messages)-1]
}

// LastAssistant returns the most recent prior assistant message, if any.
func (r *TurnRequest) LastAssistant() (string, bool) {
	prior := r.Prior()
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Role == RoleAssistant {
			return prior[i].Content, true
		}
	}
	return "", false
}

// Usage reports token usage and cost for an AI_RESPONSE.
type Usage struct {
	Model            string  `json:"model,omitempty"`
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	CostUSD          float64 `json:"costUsd"`
}

// TurnResult is what the pipeline produced for one turn.
type TurnResult struct {
	Message      string
	Context      string
	ResponseType ResponseType
	Trigger      string
	Usage        *Usage
	Attempts     int
}

// Turn carries one inbound turn through the pipeline stages.
type Turn struct {
	Request            *TurnRequest
	Session            *Session
	Profile            *Profile
	UserID             string
	Text               string
	AssistantTurnCount int
	// PriorGateTypes holds response types already recorded in the durable turn log.
	PriorGateTypes map[ResponseType]bool
	Result         *TurnResult
	// Failure keeps the typed error of the stage that aborted the turn.
	Failure error
}

// Done reports whether a stage already answered the turn.
func (t *Turn) Done() bool {
	return t.Result != nil
}

// DebugInfo is attached to every successful response.
type DebugInfo struct {
	RequestID          string       `json:"requestId"`
	SessionID          string       `json:"sessionId"`
	ResponseType       ResponseType `json:"responseType"`
	ResponseTimeMs     int64        `json:"responseTimeMs"`
	AssistantTurnCount int          `json:"assistantTurnCount"`
	Trigger            string       `json:"trigger,omitempty"`
	FlowStep           string       `json:"flowStep,omitempty"`
	Attempts           int          `json:"attempts,omitempty"`
	Usage              *Usage       `json:"usage,omitempty"`
}

// TurnResponse is the 200 envelope.
type TurnResponse struct {
	Message string    `json:"message"`
	Context string    `json:"context,omitempty"`
	Debug   DebugInfo `json:"debug"`
}

// ErrorDebug is the debug block of a failure envelope.
type ErrorDebug struct {
	RequestID    string `json:"requestId,omitempty"`
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	TotalTimeMs  int64  `json:"totalTimeMs,omitempty"`
}

// ErrorResponse is the 400/500 envelope.
type ErrorResponse struct {
	Error string     `json:"error"`
	Debug ErrorDebug `json:"debug"`
}
