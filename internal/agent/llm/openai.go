package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompletionsService is the subset of the OpenAI client used here.
type CompletionsService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type OpenAIConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIChatModel adapts OpenAI chat completions to eino's BaseChatModel.
type OpenAIChatModel struct {
	svc CompletionsService
	cfg OpenAIConfig
}

var _ einomodel.BaseChatModel = (*OpenAIChatModel)(nil)

func NewOpenAIChatModel(svc CompletionsService, cfg OpenAIConfig) *OpenAIChatModel {
	return &OpenAIChatModel{svc: svc, cfg: cfg}
}

// IsCallbacksEnabled tells eino that Generate reports its own callbacks.
func (m *OpenAIChatModel) IsCallbacksEnabled() bool {
	return true
}

func (m *OpenAIChatModel) GetType() string {
	return "OpenAI"
}

func (m *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (out *schema.Message, err error) {
	temperature := m.cfg.Temperature
	maxTokens := m.cfg.MaxTokens
	modelName := m.cfg.Model
	o := einomodel.GetCommonOptions(&einomodel.Options{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Model:       &modelName,
	}, opts...)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(*o.Model),
		Messages: toOpenAIMessages(input),
	}
	if o.Temperature != nil {
		params.Temperature = openai.Float(float64(*o.Temperature))
	}
	if o.MaxTokens != nil && *o.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(*o.MaxTokens))
	}

	ctx = callbacks.OnStart(ctx, &einomodel.CallbackInput{
		Messages: input,
		Config: &einomodel.Config{
			Model:       *o.Model,
			MaxTokens:   *o.MaxTokens,
			Temperature: *o.Temperature,
		},
	})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	resp, err := m.svc.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{Status: apiErr.StatusCode, Err: err}
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat completion returned no choices")
	}

	choice := resp.Choices[0]
	out = &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: string(choice.FinishReason),
			Usage: &schema.TokenUsage{
				PromptTokens:     int(resp.Usage.PromptTokens),
				CompletionTokens: int(resp.Usage.CompletionTokens),
				TotalTokens:      int(resp.Usage.TotalTokens),
			},
		},
	}
	callbacks.OnEnd(ctx, &einomodel.CallbackOutput{
		Message: out,
		TokenUsage: &einomodel.TokenUsage{
			PromptTokens:     out.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: out.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      out.ResponseMeta.Usage.TotalTokens,
		},
	})
	return out, nil
}

// Stream delivers the full completion as a single chunk.
func (m *OpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toOpenAIMessages(input []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(msg.Content))
		case schema.Assistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
