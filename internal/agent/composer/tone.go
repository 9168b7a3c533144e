package composer

import "strings"

// Tone is the coarse register of a user turn.
type Tone string

const (
	ToneNeutral   Tone = "neutral"
	ToneSerious   Tone = "serious"
	ToneClosing   Tone = "closing"
	ToneSarcastic Tone = "sarcastic"
)

const toneThreshold = 0.3

type weightedKeyword struct {
	keyword string
	weight  float64
}

// ToneClassifier scores a turn against weighted keyword lists.
type ToneClassifier struct {
	patterns map[Tone][]weightedKeyword
}

func NewToneClassifier() *ToneClassifier {
	return &ToneClassifier{patterns: defaultTonePatterns()}
}

func defaultTonePatterns() map[Tone][]weightedKeyword {
	return map[Tone][]weightedKeyword{
		ToneSerious: {
			{"passed away", 0.6}, {"funeral", 0.6}, {"cancer", 0.6},
			{"lawsuit", 0.5}, {"lawyer", 0.4}, {"bankrupt", 0.5}, {"divorce", 0.5},
			{"hospital", 0.5}, {"emergency", 0.5}, {"laid off", 0.5}, {"lost my job", 0.5},
			{"complaint", 0.4}, {"refund", 0.4}, {"furious", 0.4}, {"frustrated", 0.3},
			{"disappointed", 0.3}, {"unacceptable", 0.4}, {"scam", 0.4},
		},
		ToneClosing: {
			{"goodbye", 0.6}, {"bye", 0.4}, {"see you", 0.4}, {"talk later", 0.4},
			{"that's all", 0.4}, {"that is all", 0.4}, {"have a good", 0.4}, {"have a great", 0.4},
			{"gotta go", 0.5}, {"thanks for your help", 0.4}, {"cheers", 0.3},
		},
		ToneSarcastic: {
			{"yeah right", 0.5}, {"sure thing buddy", 0.5}, {"oh great", 0.4}, {"wow thanks", 0.4},
			{"obviously", 0.3}, {"as if", 0.3}, {"lol", 0.2}, {"/s", 0.5},
		},
	}
}

// Classify returns the highest scoring tone, or ToneNeutral below threshold.
// Serious wins ties so sensitive turns are never treated lightly.
func (c *ToneClassifier) Classify(text string) Tone {
	lower := strings.ToLower(text)
	best, bestScore := ToneNeutral, 0.0
	for _, tone := range []Tone{ToneSerious, ToneClosing, ToneSarcastic} {
		score := 0.0
		for _, kw := range c.patterns[tone] {
			if strings.Contains(lower, kw.keyword) {
				score += kw.weight
			}
		}
		if score > bestScore {
			best, bestScore = tone, score
		}
	}
	if bestScore < toneThreshold {
		return ToneNeutral
	}
	return best
}

// AllowsDecoration reports whether a light personal touch suits the tone.
func (t Tone) AllowsDecoration() bool {
	return t != ToneSerious && t != ToneClosing
}
