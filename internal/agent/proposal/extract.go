package proposal

import (
	"regexp"
	"strings"

	"github.com/Chative-core-poc-v1/frontdesk/internal/agent/model"
)

// NotProvided fills contact and format fields the user never supplied.
const NotProvided = "Not provided"

const minPhoneDigits = 7

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`\+?\(?\d[\d\s().-]{5,}\d`)
	namePattern    = regexp.MustCompile(`(?:(?i)my name is|name:|i'm|i am|this is|it's)\s+([A-Z][A-Za-z'-]*(?:\s+[A-Z][A-Za-z'-]*)?)`)
	companyPattern = regexp.MustCompile(`(?:(?i)\bfrom|\bat|\bwith|company is|work for)\s+([A-Z][\w&'-]*(?:\s+[A-Z][\w&'-]*)*)`)

	cancelPattern    = regexp.MustCompile(`(?i)^\s*(cancel|stop|quit|never ?mind|forget it)\b|\b(stop|cancel|end|abort) (the|this|my) (proposal|process|form|request)\b`)
	agreementPattern = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|yup|sure|ok|okay|absolutely|definitely|of course|let's do it|lets do it|sounds good|go ahead|please do|that would be great)\b`)
	declinePattern   = regexp.MustCompile(`(?i)^\s*(no|nope|nah|not now|not yet|maybe later|no thanks)\b|\bnot interested\b|\bdon't want\b`)
)

// ExtractContact pulls contact details out of free text. ok is true only
// when both an email-shaped and a phone-shaped token are present.
func ExtractContact(text string) (info model.ContactInfo, ok bool) {
	info.Name = NotProvided
	if m := namePattern.FindStringSubmatch(text); m != nil {
		info.Name = strings.TrimSpace(m[1])
	}
	info.Email = ExtractEmail(text)
	info.Phone = ExtractPhone(strings.Replace(text, info.Email, " ", 1))
	if m := companyPattern.FindStringSubmatch(text); m != nil {
		info.Company = strings.TrimSpace(m[1])
	}
	return info, info.Email != "" && info.Phone != ""
}

// ExtractEmail returns the first email-shaped token, or "".
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone returns the first phone-shaped token with enough digits, or "".
func ExtractPhone(text string) string {
	for _, candidate := range phonePattern.FindAllString(text, -1) {
		if countDigits(candidate) >= minPhoneDigits {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

// ExtractName returns a self-introduced name, or "".
func ExtractName(text string) string {
	if m := namePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// IsCancellation reports whether the user wants to stop the flow.
func IsCancellation(text string) bool {
	return cancelPattern.MatchString(text)
}

// IsAgreement reports whether text accepts an offer to build a proposal.
func IsAgreement(text string) bool {
	return agreementPattern.MatchString(text) && !IsDecline(text)
}

// IsDecline reports whether text turns an offer down.
func IsDecline(text string) bool {
	return declinePattern.MatchString(text)
}
