package strategy

import (
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

// Rule keys with special handling.
const (
	KeyEscalation = "escalation"
	KeyIdentity   = "ai_identity"
	KeyPricing    = "pricing"
	KeyProject    = "project_start"
)

// DefaultRules returns the decision table. Order is priority: the first
// rule with a matching trigger phrase wins.
func DefaultRules() []model.StrategicRule {
	return []model.StrategicRule{
		{
			Key:            KeyEscalation,
			Role:           model.RoleEscalation,
			TriggerPhrases: []string{"still waiting", "already asked", "asked multiple times", "talk to a human", "speak to a human", "real person"},
			Response:       model.Static("I'm sorry for going around in circles. Let me get a member of our team involved so you get a proper answer."),
			FollowUp:       model.Static("What's the best email or phone number for them to reach you on?"),
		},
		{
			Key:            KeyIdentity,
			Role:           model.RoleIdentity,
			TriggerPhrases: []string{"are you a bot", "are you a robot", "are you human", "are you ai", "are you an ai", "are you real", "who am i talking to", "is this a bot", "what are you"},
			Response:       model.Derived(DeriveIdentity),
		},
		{
			Key:                 KeyProject,
			TriggerPhrases:      []string{"get a quote", "start a project", "work with you", "hire you", "send me a proposal", "ready to start", "let's get started", "sign up"},
			Response:            model.Static("Great, let's put a proposal together for you."),
			FollowUp:            model.Static("First, could you share your name, email address, and phone number?"),
			RequiresContactInfo: true,
		},
		{
			Key:            KeyPricing,
			TriggerPhrases: []string{"how much", "pricing", "price", "cost", "your rates", "packages"},
			Response:       model.Derived(DerivePricing),
			FollowUp:       model.Derived(DerivePricingFollowUp),
		},
		{
			Key:            "logo",
			TriggerPhrases: []string{"logo"},
			Response:       model.Static("Logo design is one of our specialties. Every logo comes with three initial concepts, two rounds of revisions, and files for print and web."),
			FollowUp:       model.Derived(DeriveLogoFollowUp),
		},
		{
			Key:            "branding",
			TriggerPhrases: []string{"branding", "brand identity", "rebrand", "brand guide", "style guide"},
			Response:       model.Static("We build complete brand identities: logo, color palette, typography, and a brand guide your whole team can use."),
			FollowUp:       model.Static("Is this a brand-new brand or a refresh of an existing one?"),
		},
		{
			Key:            "website",
			TriggerPhrases: []string{"website", "web site", "web design", "landing page", "online store", "ecommerce", "e-commerce"},
			Response:       model.Static("We design and build fast, mobile-friendly websites, from single landing pages to full online stores."),
			FollowUp:       model.Derived(DeriveWebsiteFollowUp),
		},
		{
			Key:            "seo",
			TriggerPhrases: []string{"seo", "search engine", "google ranking", "rank higher", "show up on google"},
			Response:       model.Static("Our SEO work covers technical fixes, on-page content, and local search so the right customers can find you."),
			FollowUp:       model.Static("Which search terms would you most like to show up for?"),
		},
		{
			Key:            "marketing",
			TriggerPhrases: []string{"social media", "marketing", "advertising", "paid ads", "facebook ads", "google ads", "instagram", "campaign"},
			Response:       model.Static("We run marketing campaigns across social media, search, and email, with monthly reporting on what's working."),
			FollowUp:       model.Static("Which channels are you using today?"),
		},
		{
			Key:            "timeline",
			TriggerPhrases: []string{"how long", "turnaround", "how soon", "how quickly"},
			Response:       model.Derived(DeriveTimelineResponse),
		},
		{
			Key:            "portfolio",
			TriggerPhrases: []string{"portfolio", "examples of your work", "past work", "case studies", "previous clients"},
			Response:       model.Static("You can browse recent projects in the portfolio section of our site, covering brand identities, websites, and campaign work."),
			FollowUp:       model.Static("Is there a particular industry you'd like to see examples from?"),
		},
	}
}

// ValidateRules checks that keys are unique, every rule has triggers, every
// derived template resolves, and exactly one escalation rule exists.
func ValidateRules(rules []model.StrategicRule, derivers Derivers) error {
	seen := make(map[string]bool, len(rules))
	escalations := 0
	for i, r := range rules {
		if r.Key == "" {
			return fmt.Errorf("rule %d: empty key", i)
		}
		if seen[r.Key] {
			return fmt.Errorf("rule %q: duplicate key", r.Key)
		}
		seen[r.Key] = true
		if len(r.TriggerPhrases) == 0 {
			return fmt.Errorf("rule %q: no trigger phrases", r.Key)
		}
		for _, p := range r.TriggerPhrases {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("rule %q: blank trigger phrase", r.Key)
			}
		}
		if r.Response.IsZero() {
			return fmt.Errorf("rule %q: missing response", r.Key)
		}
		for _, t := range []model.Template{r.Response, r.FollowUp} {
			if t.Kind == model.TemplateDerived {
				if _, ok := derivers[t.Deriver]; !ok {
					return fmt.Errorf("rule %q: unknown deriver %q", r.Key, t.Deriver)
				}
			}
		}
		if r.Role == model.RoleEscalation {
			escalations++
		}
	}
	if escalations != 1 {
		return fmt.Errorf("expected exactly one escalation rule, found %d", escalations)
	}
	return nil
}
