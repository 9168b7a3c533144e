package model

// TemplateKind tags a Template as literal text or derived from the turn.
type TemplateKind string

const (
	TemplateNone    TemplateKind = ""
	TemplateStatic  TemplateKind = "static"
	TemplateDerived TemplateKind = "derived"
)

// Template is a response or follow-up body. Derived templates name a
// registered deriver instead of holding a closure, so rule tables stay
// plain data.
type Template struct {
	Kind    TemplateKind `json:"kind"`
	Text    string       `json:"text,omitempty"`
	Deriver string       `json:"deriver,omitempty"`
}

// Static builds a literal template.
func Static(text string) Template {
	return Template{Kind: TemplateStatic, Text: text}
}

// Derived builds a template computed by the named deriver.
func Derived(name string) Template {
	return Template{Kind: TemplateDerived, Deriver: name}
}

// IsZero reports whether the template is absent.
func (t Template) IsZero() bool {
	return t.Kind == TemplateNone
}

// RuleRole marks rules that the matcher treats specially.
type RuleRole string

const (
	RoleStandard   RuleRole = ""
	RoleIdentity   RuleRole = "identity"
	RoleEscalation RuleRole = "escalation"
)

// StrategicRule is one row of the static decision table.
type StrategicRule struct {
	Key                 string   `json:"key"`
	TriggerPhrases      []string `json:"trigger_phrases"`
	Response            Template `json:"response"`
	FollowUp            Template `json:"follow_up,omitempty"`
	RequiresContactInfo bool     `json:"requires_contact_info"`
	Role                RuleRole `json:"role,omitempty"`
}
