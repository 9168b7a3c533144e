// Package composer builds the final text of strategic and flow replies.
package composer

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/frontdesk/pkg/logger"
)

// DefaultDecorationProbability is the chance a reply gets a personal touch.
const DefaultDecorationProbability = 0.1

var defaultDecorations = []string{
	"no pressure at all",
	"we love projects like this",
	"happy to help either way",
	"this is the fun part",
}

// Resolver renders rule templates.
type Resolver interface {
	Resolve(t model.Template, turnText string, state *model.ConversationState) (string, error)
}

// Composer joins rule text with its follow-up and may add a decoration.
type Composer struct {
	resolver    Resolver
	tone        *ToneClassifier
	probability float64
	decorations []string
	roll        func() float64
	pick        func(n int) int
}

type Option func(*Composer)

// WithRandom replaces the decoration dice: roll in [0,1) decides whether to
// decorate and pick chooses the phrase.
func WithRandom(roll func() float64, pick func(n int) int) Option {
	return func(c *Composer) {
		c.roll = roll
		c.pick = pick
	}
}

func WithProbability(p float64) Option {
	return func(c *Composer) { c.probability = p }
}

func New(resolver Resolver, opts ...Option) *Composer {
	c := &Composer{
		resolver:    resolver,
		tone:        NewToneClassifier(),
		probability: DefaultDecorationProbability,
		decorations: defaultDecorations,
		roll:        rand.Float64,
		pick:        rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders rule for turnText: response, then the follow-up on a new
// paragraph, then maybe a decoration.
func (c *Composer) Compose(rule model.StrategicRule, turnText string, state *model.ConversationState) (string, error) {
	primary, err := c.resolver.Resolve(rule.Response, turnText, state)
	if err != nil {
		return "", fmt.Errorf("resolve response of %q: %w", rule.Key, err)
	}
	followUp, err := c.resolver.Resolve(rule.FollowUp, turnText, state)
	if err != nil {
		return "", fmt.Errorf("resolve follow-up of %q: %w", rule.Key, err)
	}

	text := primary
	if followUp != "" {
		text = primary + "\n\n" + followUp
	}
	return c.Decorate(text, turnText), nil
}

// Decorate may add one short personal phrase to text. It never decorates
// serious or closing turns, or text that already carries a decoration.
func (c *Composer) Decorate(text, turnText string) string {
	if len(c.decorations) == 0 || text == "" {
		return text
	}
	if tone := c.tone.Classify(turnText); !tone.AllowsDecoration() {
		logx.Debug().Str("tone", string(tone)).Msg("decoration skipped for tone")
		return text
	}
	if c.hasDecoration(text) {
		return text
	}
	if c.roll() >= c.probability {
		return text
	}

	phrase := c.decorations[c.pick(len(c.decorations))]
	if i := strings.LastIndex(text, "?"); i >= 0 {
		return text[:i] + ", " + phrase + text[i:]
	}
	return strings.TrimRight(text, " ") + " " + sentence(phrase)
}

func (c *Composer) hasDecoration(text string) bool {
	lower := strings.ToLower(text)
	for _, d := range c.decorations {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

func sentence(phrase string) string {
	r, size := utf8.DecodeRuneInString(phrase)
	return string(unicode.ToUpper(r)) + phrase[size:] + "."
}
