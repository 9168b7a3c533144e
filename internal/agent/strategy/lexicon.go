package strategy

import (
	"regexp"
	"strings"
)

var (
	spacePattern = regexp.MustCompile(`\s+`)

	nonBusinessPattern = regexp.MustCompile(`(?i)\b(what time|time is it|what day is|today's date|weather|forecast|capital of|population of|who (?:is|was) the (?:president|king|queen|first)|how tall|how far is|homework|essay|solve for|math problem|equation|recipe|cook|joke|trivia|riddle|translate|tell me a story|meaning of life)\b`)
	businessPattern    = regexp.MustCompile(`(?i)\b(business|marketing|website|brand\w*)\b`)

	escalationPattern = regexp.MustCompile(`(?i)(asked (?:you )?(?:multiple|several|many) times|asked (?:this|that|you) (?:already|before)|already asked|still waiting|keep asking|you(?:'re| are) not listening|not answering my question|talk to (?:a )?(?:human|person|real person)|speak (?:to|with) (?:a )?(?:human|person|manager)|real person)`)

	pricingPattern = regexp.MustCompile(`(?i)\b(cost|costs|price|prices|pricing|priced|rate|rates|budget|how much)\b`)

	contactCuePattern = regexp.MustCompile(`(?i)(@|\bemail\b|\bphone\b|\bmy name\b)`)
)

var ackWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "no": true, "nope": true, "nah": true,
	"ok": true, "okay": true, "k": true, "sure": true, "thanks": true, "thx": true, "ty": true,
	"maybe": true, "perhaps": true, "unsure": true, "cool": true, "great": true, "fine": true,
	"alright": true, "right": true, "correct": true, "exactly": true, "absolutely": true,
}

var ackPhrases = []string{"thank you", "not sure", "got it", "sounds good", "makes sense", "i guess", "i don't know", "dont know", "no idea", "of course"}

// Normalize lowercases text, collapses whitespace and strips surrounding punctuation.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.Trim(s, " .,!?;:\"'")
}

// IsNonBusiness reports whether text is a general-knowledge question with no
// business vocabulary.
func IsNonBusiness(text string) bool {
	return nonBusinessPattern.MatchString(text) && !businessPattern.MatchString(text)
}

// IsEscalation reports whether the user says they are repeating themselves or
// wants a person.
func IsEscalation(text string) bool {
	return escalationPattern.MatchString(text)
}

// HasPricingVocabulary reports whether text asks about cost or budget.
func HasPricingVocabulary(text string) bool {
	return pricingPattern.MatchString(text)
}

// HasContactCue reports whether text looks like the user supplying contact details.
func HasContactCue(text string) bool {
	return contactCuePattern.MatchString(text)
}

// IsAcknowledgment reports whether text is a short reply such as "yes",
// "ok thanks" or "not sure".
func IsAcknowledgment(text string) bool {
	norm := Normalize(text)
	if norm == "" {
		return false
	}
	words := strings.Fields(norm)
	if len(words) > 5 {
		return false
	}
	if ackWords[strings.Trim(words[0], ",.!")] {
		return true
	}
	for _, p := range ackPhrases {
		if strings.HasPrefix(norm, p) {
			return true
		}
	}
	return false
}
