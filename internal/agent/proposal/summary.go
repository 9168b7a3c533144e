package proposal

import (
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

// Summarize collects the flow's answers.
func Summarize(flow *model.RFPFlowState) model.ProposalSummary {
	s := model.ProposalSummary{
		ServiceType:    flow.ServiceType,
		Timeline:       flow.Timeline,
		Budget:         flow.Budget,
		Goals:          flow.Goals,
		ProposalFormat: flow.ProposalFormat,
	}
	if flow.ContactInfo != nil {
		s.ContactInfo = *flow.ContactInfo
	}
	return s
}

// RenderSummary formats the fixed proposal summary shown when a flow completes.
func RenderSummary(s model.ProposalSummary) string {
	var b strings.Builder
	b.WriteString("Thank you! Here's a summary of your project request:\n\n")
	fmt.Fprintf(&b, "• Contact: %s\n", formatContact(s.ContactInfo))
	fmt.Fprintf(&b, "• Service: %s\n", s.ServiceType)
	fmt.Fprintf(&b, "• Timeline: %s\n", s.Timeline)
	fmt.Fprintf(&b, "• Budget: %s\n", s.Budget)
	fmt.Fprintf(&b, "• Goals: %s\n", s.Goals)
	fmt.Fprintf(&b, "• Proposal format: %s\n\n", s.ProposalFormat)
	b.WriteString("Our team will review these details and prepare a tailored proposal for you.")
	return b.String()
}

func formatContact(c model.ContactInfo) string {
	name := c.Name
	if name == "" {
		name = NotProvided
	}
	parts := make([]string, 0, 3)
	for _, v := range []string{c.Email, c.Phone, c.Company} {
		if v != "" && v != NotProvided {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(parts, ", "))
}
