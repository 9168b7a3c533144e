package orchestrator

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/orchestrator/prompts"
)

// HistoryManager builds the message list sent to the completion model.
type HistoryManager struct {
	business model.BusinessConfig
	maxTurns int
}

func NewHistoryManager(business model.BusinessConfig, config model.ConversationConfig) *HistoryManager {
	maxTurns := config.HistoryTurns
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &HistoryManager{business: business, maxTurns: maxTurns}
}

// BuildCompletionContext returns the system prompt followed by the most
// recent messages of the request, current turn included.
func (hm *HistoryManager) BuildCompletionContext(ctx context.Context, turn *model.Turn) ([]*schema.Message, error) {
	in := prompts.SystemPromptInput{
		Business: hm.business,
		Context:  turn.Session.Conversation.ProvidedContext,
	}
	if turn.Profile != nil {
		in.ContactName = turn.Profile.Name
	}
	systemPrompt, err := prompts.RenderSystem(ctx, in)
	if err != nil {
		return nil, err
	}

	history := make([]*schema.Message, 0, len(turn.Request.Messages))
	for _, m := range turn.Request.Messages {
		if m.Content == "" {
			continue
		}
		history = append(history, m.ToSchema())
	}

	messages := []*schema.Message{schema.SystemMessage(systemPrompt)}
	messages = append(messages, trimTail(history, hm.maxTurns)...)
	return messages, nil
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
