package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

func TestTrimTail(t *testing.T) {
	msgs := []*schema.Message{
		schema.UserMessage("1"),
		schema.AssistantMessage("2", nil),
		schema.UserMessage("3"),
	}

	out := trimTail(msgs, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0].Content)

	all := trimTail(msgs, 10)
	require.Len(t, all, 3)
	all[0] = nil
	assert.NotNil(t, msgs[0])
}

func TestBuildCompletionContext(t *testing.T) {
	hm := NewHistoryManager(model.BusinessConfig{Name: "Northlight Studio", Type: "design agency"}, model.ConversationConfig{})
	session := model.NewSession("s1", time.Time{})
	session.Conversation.ProvidedContext.HasBudget = true

	turn := &model.Turn{
		Request: &model.TurnRequest{Messages: []model.ChatMessage{
			{Role: model.RoleUser, Content: "hi"},
			{Role: model.RoleAssistant, Content: ""},
			{Role: model.RoleUser, Content: "what do you charge?"},
		}},
		Session: session,
		Profile: &model.Profile{Name: "Dana"},
	}

	msgs, err := hm.BuildCompletionContext(context.Background(), turn)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "their budget")
	assert.Contains(t, msgs[0].Content, "Dana")
	assert.Equal(t, schema.User, msgs[2].Role)
	assert.Equal(t, "what do you charge?", msgs[2].Content)
}
