package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

//go:embed template/system_prompt.txt
var systemPrompt string

// SystemPromptInput is what the completion system prompt is rendered from.
type SystemPromptInput struct {
	Business    model.BusinessConfig
	Context     model.ProvidedContext
	ContactName string
}

// RenderSystem renders the completion system prompt and triggers prompt callbacks.
func RenderSystem(ctx context.Context, in SystemPromptInput) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
	)
	vars := map[string]any{
		"BusinessName": in.Business.Name,
		"BusinessType": in.Business.Type,
		"KnownContext": knownContext(in.Context),
		"ContactName":  in.ContactName,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func knownContext(c model.ProvidedContext) string {
	var parts []string
	if c.HasCompanyName {
		parts = append(parts, "their company name")
	}
	if c.HasGoals {
		parts = append(parts, "their goals")
	}
	if c.HasTimeline {
		parts = append(parts, "their timeline")
	}
	if c.HasBudget {
		parts = append(parts, "their budget")
	}
	return strings.Join(parts, ", ")
}
