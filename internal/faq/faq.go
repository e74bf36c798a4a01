// Package faq implements the rule-based bottom tier of the answering
// pipeline: an ordered keyword table that always produces a canned response,
// with no network or model dependency. It is the floor the assistant falls
// back to when both generation and retrieval are unavailable.
package faq

import (
	"strings"
	"unicode"
)

// rule pairs a trigger keyword set with its canned response. Keywords may be
// multi-word phrases; a rule fires when any keyword appears in the query as a
// whole word or phrase.
type rule struct {
	name     string
	keywords []string
	response string
}

// rules is evaluated in order and the first match wins, so more specific
// topics (fever, platform, forms) sit above the broad greeting and
// general-symptom rules.
var rules = []rule{
	{
		name:     "fever",
		keywords: []string{"fever", "temperature", "hot"},
		response: `I understand you have a fever. Here's some general guidance:

**For fever management:**
- Stay hydrated with plenty of fluids
- Rest and avoid strenuous activities
- Monitor your temperature regularly
- Consider over-the-counter fever reducers if appropriate

**When to seek medical attention:**
- Fever above 103°F (39.4°C)
- Fever lasting more than 3 days
- Severe symptoms like difficulty breathing
- Signs of dehydration

**Next steps:**
Please fill out a consultation form on your dashboard with your specific symptoms so our doctors can provide proper medical advice. We cannot provide specific medical treatment through this chat.`,
	},
	{
		name:     "platform",
		keywords: []string{"docify", "what is"},
		response: `Docify Online is a platform for filling out medical certificates and consultation forms, with support from our chatbot.

We connect you with qualified healthcare professionals 24/7 for medical consultations from the comfort of your home.`,
	},
	{
		name:     "consultation-form",
		keywords: []string{"submit", "consultation", "form"},
		response: `To submit a consultation form:
1. Log in to your account
2. Go to the dashboard
3. Fill out the form with your symptoms
4. You can also update past submissions anytime`,
	},
	{
		name:     "privacy",
		keywords: []string{"secure", "data", "privacy"},
		response: `Yes, your data is secure! We use password hashing and store data securely in our database. User details are also exported to CSV files for backup purposes.`,
	},
	{
		name:     "support",
		keywords: []string{"support", "contact", "help"},
		response: `You can reach our support team via:
- This chatbot for immediate assistance
- Email at support@docify.online
- Through your dashboard consultation form`,
	},
	{
		name:     "describing-symptoms",
		keywords: []string{"symptoms"},
		response: `When describing symptoms, please include:
- Detailed description of what you're experiencing
- Duration (how long you've had the symptoms)
- Severity level
- Any relevant medical history`,
	},
	{
		name:     "greeting",
		keywords: []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"},
		response: `Hello! Welcome to Docify Online. I'm here to help you with information about our medical consultation services.

What would you like to know about our platform?`,
	},
	{
		name:     "common-symptoms",
		keywords: []string{"pain", "headache", "cough", "cold", "sick", "unwell"},
		response: `I can help with general information about common symptoms!

**For immediate guidance:**
- **Headache**: Rest in a quiet, dark room, stay hydrated
- **Cough/Cold**: Get plenty of rest, drink warm fluids, use a humidifier
- **General pain**: Rest the affected area, apply ice/heat as appropriate

**Need professional advice?**
If symptoms are severe or persistent, please submit a consultation form on your dashboard. Our qualified doctors will review your case and provide personalized medical guidance.

What specific symptom would you like to know more about?`,
	},
}

// defaultResponse is returned when no rule matches, so Match never comes back
// empty regardless of input.
const defaultResponse = `I'm here to help with questions about Docify Online. You can ask me about:
- Our medical consultation services
- How to submit consultation forms
- Data security and privacy
- Contact information
- Platform features

For medical concerns, please fill out a consultation form on your dashboard to speak with qualified doctors.

What would you like to know?`

// Match returns the canned response for the first rule whose keywords appear
// in the query, or a generic platform overview when nothing matches. The
// returned string is always non-empty.
func Match(query string) string {
	reply, _ := MatchRule(query)
	return reply
}

// MatchRule is Match plus the name of the rule that fired, for logging and
// metrics. The name is "default" when no rule matched.
func MatchRule(query string) (response, name string) {
	q := strings.ToLower(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if containsPhrase(q, kw) {
				return r.response, r.name
			}
		}
	}
	return defaultResponse, "default"
}

// containsPhrase reports whether needle occurs in haystack bounded by
// non-letter characters on both sides. Matching whole words keeps short
// triggers like "hi" or "hot" from firing inside unrelated words
// ("something", "hotel").
func containsPhrase(haystack, needle string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if boundaryAt(haystack, start-1) && boundaryAt(haystack, end) {
			return true
		}
		from = start + 1
	}
}

// boundaryAt reports whether position i in s is outside the string or holds
// a non-letter byte, i.e. a valid word boundary.
func boundaryAt(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	return !unicode.IsLetter(rune(s[i])) && !unicode.IsDigit(rune(s[i]))
}
