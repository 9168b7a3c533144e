package llm

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCompletions struct {
	params openai.ChatCompletionNewParams
	resp   *openai.ChatCompletion
	err    error
}

func (m *mockCompletions) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.params = body
	return m.resp, m.err
}

func TestOpenAIChatModel_Generate(t *testing.T) {
	svc := &mockCompletions{resp: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			FinishReason: "stop",
			Message:      openai.ChatCompletionMessage{Content: "Happy to help."},
		}},
		Usage: openai.CompletionUsage{PromptTokens: 12, CompletionTokens: 4, TotalTokens: 16},
	}}
	m := NewOpenAIChatModel(svc, OpenAIConfig{Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 600})

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("be brief"),
		schema.UserMessage("hi"),
		schema.AssistantMessage("hello", nil),
		schema.UserMessage("can you help?"),
	}, einomodel.WithMaxTokens(100))

	require.NoError(t, err)
	assert.Equal(t, "Happy to help.", out.Content)
	assert.Equal(t, schema.Assistant, out.Role)
	require.NotNil(t, out.ResponseMeta)
	assert.Equal(t, 12, out.ResponseMeta.Usage.PromptTokens)
	assert.Equal(t, 16, out.ResponseMeta.Usage.TotalTokens)

	assert.Len(t, svc.params.Messages, 4)
	assert.Equal(t, openai.ChatModel("gpt-4o-mini"), svc.params.Model)
	assert.Equal(t, int64(100), svc.params.MaxTokens.Value)
	assert.InDelta(t, 0.7, svc.params.Temperature.Value, 0.0001)
}

func TestOpenAIChatModel_NoChoices(t *testing.T) {
	m := NewOpenAIChatModel(&mockCompletions{resp: &openai.ChatCompletion{}}, OpenAIConfig{Model: "gpt-4o-mini"})

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)
}

func TestOpenAIChatModel_TransportErrorIsRetryable(t *testing.T) {
	m := NewOpenAIChatModel(&mockCompletions{err: errors.New("connection reset by peer")}, OpenAIConfig{Model: "gpt-4o-mini"})

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)
	class, _ := Classify(err)
	assert.Equal(t, ClassRetryable, class)
}
