package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

const contactText = "My name is Jo, jo@x.com, 555-000-1111"

func advanceAll(t *testing.T, m *Machine, flow *model.RFPFlowState, answers ...string) *Outcome {
	t.Helper()
	var out *Outcome
	for i, a := range answers {
		var err error
		out, err = m.Advance(flow, a, t0.Add(time.Duration(i)*time.Second))
		require.NoError(t, err, "answer %d: %q", i, a)
	}
	return out
}

func TestFlow_CompletesWithAllFields(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	out := advanceAll(t, m, flow, contactText, "Website redesign", "ASAP", "Under $10k", "Increase sales", "PDF by email")

	assert.Equal(t, model.StepComplete, flow.Step)
	assert.False(t, flow.IsActive)
	require.True(t, out.Completed())
	assert.Equal(t, model.ResponseType("RFP_COMPLETE"), out.ResponseType)
	for _, v := range []string{"Website redesign", "ASAP", "Under $10k", "Increase sales", "PDF by email", "Jo", "jo@x.com", "555-000-1111"} {
		assert.Contains(t, out.Message, v)
	}
	assert.Equal(t, "Website redesign", out.Summary.ServiceType)
	assert.Equal(t, "jo@x.com", out.Summary.ContactInfo.Email)
}

func TestFlow_ScenarioStoresServiceType(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	out := advanceAll(t, m, flow, contactText, "Website redesign", "ASAP", "Under $10k", "Increase sales")

	assert.Equal(t, model.StepProposalFormat, flow.Step)
	assert.True(t, flow.IsActive)
	assert.Equal(t, "Website redesign", flow.ServiceType)
	assert.Equal(t, model.ResponseType("RFP_PROPOSAL_FORMAT"), out.ResponseType)
}

func TestFlow_StepResponseTypes(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	want := []model.ResponseType{"RFP_SERVICE_TYPE", "RFP_TIMELINE", "RFP_BUDGET", "RFP_GOALS"}
	for i, a := range []string{contactText, "Branding", "In two months", "Around 5000"} {
		out, err := m.Advance(flow, a, t0)
		require.NoError(t, err)
		assert.Equal(t, want[i], out.ResponseType)
	}
}

func TestFlow_ContactWithoutEmailNeverAdvances(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	for _, text := range []string{"My name is Jo, 555-000-1111", "call me on 555 000 1111"} {
		out, err := m.Advance(flow, text, t0)
		require.NoError(t, err)
		assert.Equal(t, model.StepContactInfo, flow.Step)
		assert.False(t, out.Advanced)
		assert.Contains(t, out.Message, "email address")
		assert.NotContains(t, out.Message, "phone number")
		assert.Nil(t, flow.ContactInfo)
	}
}

func TestFlow_ContactWithoutPhoneNeverAdvances(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	out, err := m.Advance(flow, "jo@x.com", t0)
	require.NoError(t, err)
	assert.Equal(t, model.StepContactInfo, flow.Step)
	assert.Contains(t, out.Message, "phone number")
}

func TestFlow_SkipToFinalizeWhenGoalsKnown(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	out := advanceAll(t, m, flow, contactText, "A website to increase sales", "Next month", "$8k")

	require.True(t, out.Completed())
	assert.Equal(t, model.StepComplete, flow.Step)
	assert.Equal(t, "A website to increase sales", flow.Goals)
	assert.Equal(t, "$8k", flow.Budget)
	assert.Equal(t, "$8k", flow.ProposalFormat)
}

func TestFlow_SkipTimelineWhenAlreadyMentioned(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	out := advanceAll(t, m, flow, "I'm Ann, ann@y.io, +1 (555) 123-4567. We launch in 3 weeks", "Logo refresh")

	assert.Equal(t, model.StepBudget, flow.Step)
	assert.Equal(t, "Logo refresh", flow.ServiceType)
	assert.Contains(t, flow.Timeline, "3 weeks")
	assert.Equal(t, model.ResponseType("RFP_BUDGET"), out.ResponseType)
}

func TestFlow_SkipBudgetWhenAlreadyMentioned(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	out := advanceAll(t, m, flow, "I'm Ann, ann@y.io, +1 (555) 123-4567. Budget is about $5k", "Logo refresh", "Next month")

	assert.Equal(t, model.StepGoals, flow.Step)
	assert.Equal(t, "Logo refresh", flow.ServiceType)
	assert.Contains(t, flow.Budget, "$5k")
	assert.Equal(t, "Next month", flow.Timeline)
	assert.Equal(t, "Next month", flow.Goals)
	assert.Equal(t, model.ResponseType("RFP_GOALS"), out.ResponseType)
}

func TestFlow_StallOnRepeatedAnswerForcesAdvance(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	advanceAll(t, m, flow, "idk", "idk")
	assert.Equal(t, model.StepContactInfo, flow.Step)

	out, err := m.Advance(flow, "idk", t0)
	require.NoError(t, err)
	assert.True(t, out.Forced)
	assert.Equal(t, model.StepServiceType, flow.Step)
	require.NotNil(t, flow.ContactInfo)
	assert.Equal(t, NotProvided, flow.ContactInfo.Email)
	assert.Equal(t, 3, flow.StallWindowStart)

	// The window restarts after a forced advance.
	out, err = m.Advance(flow, "idk", t0)
	require.NoError(t, err)
	assert.False(t, out.Forced)
	assert.Equal(t, model.StepTimeline, flow.Step)
}

func TestFlow_StallOnVagueAnswers(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)

	out := advanceAll(t, m, flow, contactText, "hmm", "no idea", "whatever")

	assert.True(t, out.Forced)
	assert.Equal(t, DefaultBudget, flow.Budget)
	assert.Equal(t, model.StepGoals, flow.Step)
}

func TestFlow_Cancel(t *testing.T) {
	m := NewMachine()
	flow := m.Start(t0)
	advanceAll(t, m, flow, contactText)

	out := m.Cancel(flow, t0)
	assert.Equal(t, model.ResponseRFPDeclined, out.ResponseType)
	assert.False(t, flow.IsActive)

	_, err := m.Advance(flow, "Website", t0)
	assert.ErrorIs(t, err, ErrFlowInactive)
}

func TestFlow_InvalidStep(t *testing.T) {
	m := NewMachine()
	flow := &model.RFPFlowState{Step: model.Step(42), IsActive: true}

	_, err := m.Advance(flow, "anything", t0)
	assert.Error(t, err)
}

func TestExtractContact(t *testing.T) {
	info, ok := ExtractContact(contactText)
	require.True(t, ok)
	assert.Equal(t, model.ContactInfo{Name: "Jo", Email: "jo@x.com", Phone: "555-000-1111"}, info)

	info, ok = ExtractContact("reach me at sam@studio.co or 0412 345 678")
	require.True(t, ok)
	assert.Equal(t, NotProvided, info.Name)
	assert.Equal(t, "0412 345 678", info.Phone)

	_, ok = ExtractContact("my number is 555-1234 and no email")
	assert.False(t, ok)

	_, ok = ExtractContact("email me at a@b.com, call 123")
	assert.False(t, ok)
}

func TestIntentLexicon(t *testing.T) {
	assert.True(t, IsAgreement("Yes, let's do it"))
	assert.True(t, IsAgreement("sure"))
	assert.False(t, IsAgreement("no thanks"))
	assert.True(t, IsDecline("Not now, maybe later"))
	assert.True(t, IsDecline("I'm not interested"))
	assert.True(t, IsCancellation("cancel"))
	assert.True(t, IsCancellation("please stop the proposal"))
	assert.False(t, IsCancellation("what's the cancellation policy"))
}
