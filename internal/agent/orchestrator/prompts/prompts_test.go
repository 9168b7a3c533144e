package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

func TestRenderSystem(t *testing.T) {
	out, err := RenderSystem(context.Background(), SystemPromptInput{
		Business:    model.BusinessConfig{Name: "Northlight Studio", Type: "design agency"},
		Context:     model.ProvidedContext{HasBudget: true, HasTimeline: true},
		ContactName: "Dana",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "front desk assistant for Northlight Studio, a design agency")
	assert.Contains(t, out, "their timeline, their budget")
	assert.Contains(t, out, "The visitor's name is Dana.")
	assert.NotContains(t, out, "{{")
}

func TestRenderSystem_NoContext(t *testing.T) {
	out, err := RenderSystem(context.Background(), SystemPromptInput{
		Business: model.BusinessConfig{Name: "Northlight Studio", Type: "design agency"},
	})
	require.NoError(t, err)

	assert.NotContains(t, out, "already shared")
	assert.NotContains(t, out, "visitor's name")
}
