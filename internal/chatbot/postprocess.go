package chatbot

import "strings"

// Directives are the UI hints attached to a bot reply.
type Directives struct {
	Suggestions []string
	ShowBooking bool
}

var bookingTriggers = []string{"book", "schedule", "appointment", "meeting", "call"}

type suggestionRule struct {
	triggers    []string
	suggestions []string
}

var suggestionRules = []suggestionRule{
	{triggers: []string{"price", "cost"}, suggestions: []string{"Book Strategy Call", "Tell me about services", "Compare packages"}},
	{triggers: []string{"service", "help"}, suggestions: []string{"AI Automation", "Performance Marketing", "See pricing"}},
}

var (
	introSuggestions   = []string{"Performance Marketing", "AI Automation", "View Pricing"}
	defaultSuggestions = []string{"Book a Call", "Learn More", "Get Started"}
)

// Postprocess derives quick replies and booking visibility from the user's message.
func Postprocess(userMessage string, hasLeadName bool) Directives {
	msg := strings.ToLower(userMessage)
	d := Directives{ShowBooking: mentionsAny(msg, bookingTriggers)}

	for _, rule := range suggestionRules {
		if mentionsAny(msg, rule.triggers) {
			d.Suggestions = clone(rule.suggestions)
			return d
		}
	}
	if !hasLeadName {
		d.Suggestions = clone(introSuggestions)
	} else {
		d.Suggestions = clone(defaultSuggestions)
	}
	return d
}

// FallbackDirectives are attached to the apology reply after a failed completion.
func FallbackDirectives() Directives {
	return Directives{Suggestions: []string{"Try Again", "Book a Call"}, ShowBooking: true}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
