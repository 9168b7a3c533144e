package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/strategy"
)

func fixed(roll float64) Option {
	return WithRandom(func() float64 { return roll }, func(int) int { return 0 })
}

func newComposer(roll float64) *Composer {
	return New(strategy.NewDerivers(model.BusinessConfig{Name: "Northlight Studio", Type: "design agency"}), fixed(roll))
}

var logoRule = model.StrategicRule{
	Key:      "logo",
	Response: model.Static("We design logos."),
	FollowUp: model.Static("What's the business called?"),
}

func TestCompose_ResponseAndFollowUp(t *testing.T) {
	c := newComposer(0.99)
	got, err := c.Compose(logoRule, "I need a logo", model.NewConversationState())
	require.NoError(t, err)
	assert.Equal(t, "We design logos.\n\nWhat's the business called?", got)
}

func TestCompose_ResolvesDerivedTemplates(t *testing.T) {
	c := newComposer(0.99)
	state := model.NewConversationState()
	rule := model.StrategicRule{Key: "logo", Response: model.Static("We design logos."), FollowUp: model.Derived(strategy.DeriveLogoFollowUp)}

	got, err := c.Compose(rule, "I need a logo", state)
	require.NoError(t, err)
	assert.Contains(t, got, "name of the business")

	state.ProvidedContext.HasCompanyName = true
	got, err = c.Compose(rule, "I need a logo", state)
	require.NoError(t, err)
	assert.Contains(t, got, "feeling")
}

func TestCompose_UnknownDeriver(t *testing.T) {
	c := newComposer(0.99)
	_, err := c.Compose(model.StrategicRule{Key: "x", Response: model.Derived("nope")}, "hi", model.NewConversationState())
	assert.Error(t, err)
}

func TestDecorate_BeforeFinalQuestionMark(t *testing.T) {
	c := newComposer(0.05)
	got, err := c.Compose(logoRule, "I need a logo", model.NewConversationState())
	require.NoError(t, err)
	assert.Equal(t, "We design logos.\n\nWhat's the business called, no pressure at all?", got)
}

func TestDecorate_TrailingSentenceWithoutQuestion(t *testing.T) {
	c := newComposer(0.05)
	assert.Equal(t, "We design logos. No pressure at all.", c.Decorate("We design logos.", "logo please"))
}

func TestDecorate_Suppressed(t *testing.T) {
	c := newComposer(0.05)
	tests := map[string]struct{ text, turn string }{
		"roll above probability": {"We design logos.", "logo please"},
		"serious tone":           {"We design logos.", "my father passed away and I need a memorial logo"},
		"closing tone":           {"Thanks for chatting.", "ok goodbye, that's all"},
		"already decorated":      {"No pressure at all, take your time.", "logo please"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cc := c
			if name == "roll above probability" {
				cc = newComposer(0.5)
			}
			assert.Equal(t, tt.text, cc.Decorate(tt.text, tt.turn))
		})
	}
}

func TestToneClassifier(t *testing.T) {
	tc := NewToneClassifier()
	assert.Equal(t, ToneNeutral, tc.Classify("I need a logo"))
	assert.Equal(t, ToneSerious, tc.Classify("We're dealing with a lawsuit"))
	assert.Equal(t, ToneClosing, tc.Classify("Goodbye!"))
	assert.Equal(t, ToneSarcastic, tc.Classify("yeah right, like that works"))
	assert.True(t, ToneSarcastic.AllowsDecoration())
	assert.False(t, ToneSerious.AllowsDecoration())
}

func TestFilterFalsePromises(t *testing.T) {
	for _, text := range []string{
		"Sure! I'll check with the team and get back to you.",
		"I will send you a link shortly.",
		"Let me check our calendar.",
		"I've emailed the brochure to you.",
	} {
		got, replaced := FilterFalsePromises(text)
		assert.True(t, replaced, text)
		assert.Equal(t, FalsePromiseDisclaimer, got)
	}

	got, replaced := FilterFalsePromises("Our logo packages start at $800.")
	assert.False(t, replaced)
	assert.Equal(t, "Our logo packages start at $800.", got)
}
