package composer

import "regexp"

// FalsePromiseDisclaimer replaces generated text that promises an action
// the assistant cannot take.
const FalsePromiseDisclaimer = "I can't take actions like sending emails, links or files, or checking records myself, but our team can help with that directly. Is there anything else I can answer for you right now?"

var falsePromisePattern = regexp.MustCompile(`(?i)\bI(?:'ll| will| am going to|'m going to) (?:check|send|email|e-mail|get back|follow up|look into|reach out|forward|call|text|confirm|find out|contact|book|schedule)\b|\bsend you (?:a|the|an) (?:link|quote|file|email|invoice|proposal|calendar invite)\b|\bI(?:'ve| have) (?:sent|emailed|forwarded|booked|scheduled)\b|\blet me (?:check|look into|find out|get back)\b`)

// FilterFalsePromises returns the disclaimer instead of text when text
// promises an action, and reports whether it did.
func FilterFalsePromises(text string) (string, bool) {
	if falsePromisePattern.MatchString(text) {
		return FalsePromiseDisclaimer, true
	}
	return text, false
}
