package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ChatModel is the completion backend plus the model name used for pricing.
type ChatModel struct {
	Model     einomodel.BaseChatModel
	ModelName string
	Provider  string
}

// NewChatModel creates the completion model selected by cfg.Provider.
func NewChatModel(ctx context.Context, cfg model.LLMConfig) (*ChatModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		m, err := newGeminiModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &ChatModel{Model: m, ModelName: cfg.Model, Provider: ProviderGemini}, nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", ProviderOpenAI)
		}
		client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		m := NewOpenAIChatModel(&client.Chat.Completions, OpenAIConfig{
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		return &ChatModel{Model: m, ModelName: cfg.Model, Provider: ProviderOpenAI}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

func newGeminiModel(ctx context.Context, cfg model.LLMConfig) (*gemini.ChatModel, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for provider %q", ProviderGemini)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("error creating Gemini chat model: %w", err)
	}

	logx.Debug().Str("model", cfg.Model).Msg("Gemini chat model ready")
	return chatModel, nil
}
