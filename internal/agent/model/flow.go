package model

import (
	"fmt"
	"time"
)

// Step is a proposal flow step. The set is closed; every switch over Step
// in this module handles all values and falls to an error on anything else.
type Step int

const (
	StepContactInfo Step = iota
	StepServiceType
	StepTimeline
	StepBudget
	StepGoals
	StepProposalFormat
	StepComplete
)

// Steps lists every step in flow order.
var Steps = []Step{
	StepContactInfo,
	StepServiceType,
	StepTimeline,
	StepBudget,
	StepGoals,
	StepProposalFormat,
	StepComplete,
}

var stepNames = [...]string{
	StepContactInfo:    "contact_info",
	StepServiceType:    "service_type",
	StepTimeline:       "timeline",
	StepBudget:         "budget",
	StepGoals:          "goals",
	StepProposalFormat: "proposal_format",
	StepComplete:       "complete",
}

// Valid reports whether s is one of the declared steps.
func (s Step) Valid() bool {
	return s >= StepContactInfo && s <= StepComplete
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// MarshalText encodes the step by name so stored sessions stay readable.
func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid step %d", int(s))
	}
	return []byte(stepNames[s]), nil
}

// UnmarshalText rejects unknown step names.
func (s *Step) UnmarshalText(b []byte) error {
	step, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = step
	return nil
}

// ParseStep resolves a step name.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// ContactInfo is what the contact_info step extracts.
type ContactInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company,omitempty"`
}

// RFPFlowState is the structured proposal collection for one session.
type RFPFlowState struct {
	Step                Step         `json:"step"`
	IsActive            bool         `json:"is_active"`
	ContactInfo         *ContactInfo `json:"contact_info,omitempty"`
	ServiceType         string       `json:"service_type,omitempty"`
	Timeline            string       `json:"timeline,omitempty"`
	Budget              string       `json:"budget,omitempty"`
	Goals               string       `json:"goals,omitempty"`
	ProposalFormat      string       `json:"proposal_format,omitempty"`
	UserResponseHistory []string     `json:"user_response_history,omitempty"`
	// StallWindowStart is the index in UserResponseHistory from which stall
	// detection looks; it moves forward after a forced advance.
	StallWindowStart int       `json:"stall_window_start"`
	StartedAt        time.Time `json:"started_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProposalSummary is the finalized result of a completed flow.
type ProposalSummary struct {
	ContactInfo    ContactInfo `json:"contact_info"`
	ServiceType    string      `json:"service_type"`
	Timeline       string      `json:"timeline"`
	Budget         string      `json:"budget"`
	Goals          string      `json:"goals"`
	ProposalFormat string      `json:"proposal_format"`
}
