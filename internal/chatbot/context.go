package chatbot

import "strings"

// ServiceInfo describes one agency service for the static fallback context.
type ServiceInfo struct {
	Name        string
	Keywords    []string
	Description string
}

// StaticKnowledge is the built-in company information used when the
// knowledge base has nothing relevant.
type StaticKnowledge struct {
	Services        []ServiceInfo
	PricingTriggers []string
	Pricing         string
}

// DefaultStaticKnowledge returns a fresh copy of the built-in table.
func DefaultStaticKnowledge() StaticKnowledge {
	return StaticKnowledge{
		Services: []ServiceInfo{
			{
				Name:        "Performance Marketing",
				Keywords:    []string{"performance marketing", "ads", "advertising", "ppc", "meta", "facebook", "google ads"},
				Description: "Paid campaigns on Meta and Google managed for measurable ROAS, with weekly reporting and creative testing.",
			},
			{
				Name:        "AI Automation",
				Keywords:    []string{"automation", "automate", "chatbot", "ai ", "workflow", "crm"},
				Description: "AI chatbots, lead follow-up sequences and CRM workflows that respond to leads in seconds, 24/7.",
			},
			{
				Name:        "Web Design",
				Keywords:    []string{"website", "web design", "landing page", "funnel"},
				Description: "Conversion-focused websites and landing pages built for speed and lead capture.",
			},
			{
				Name:        "SEO",
				Keywords:    []string{"seo", "search engine", "google ranking", "organic"},
				Description: "Technical, on-page and local SEO to grow organic traffic and map-pack visibility.",
			},
			{
				Name:        "Social Media Management",
				Keywords:    []string{"social media", "instagram", "tiktok", "content", "posting"},
				Description: "Content calendars, short-form video and community management across major platforms.",
			},
		},
		PricingTriggers: []string{"price", "cost", "pricing", "package"},
		Pricing: "Pricing packages:\n" +
			"- Starter: $497/mo (one channel, monthly reporting)\n" +
			"- Growth: $997/mo (two channels, AI lead follow-up, bi-weekly calls)\n" +
			"- Scale: $1,997/mo (full-funnel marketing plus automation, weekly calls)\n" +
			"Every plan starts with a free strategy call.",
	}
}

func (s StaticKnowledge) clone() StaticKnowledge {
	out := StaticKnowledge{
		Services:        make([]ServiceInfo, len(s.Services)),
		PricingTriggers: append([]string(nil), s.PricingTriggers...),
		Pricing:         s.Pricing,
	}
	for i, svc := range s.Services {
		svc.Keywords = append([]string(nil), svc.Keywords...)
		out.Services[i] = svc
	}
	return out
}

// ContextBuilder merges knowledge matches with the static table into the
// context block handed to the prompt.
type ContextBuilder struct {
	static StaticKnowledge
}

// NewContextBuilder copies static so later changes by the caller have no effect.
func NewContextBuilder(static StaticKnowledge) *ContextBuilder {
	return &ContextBuilder{static: static.clone()}
}

// Build returns the knowledge section and the default-information section,
// each omitted when empty, or "" when both are.
func (b *ContextBuilder) Build(message, matchText string) string {
	var sections []string
	if matchText != "" {
		sections = append(sections, "**Relevant Knowledge Base Entries:**\n"+matchText)
	}
	if static := b.StaticContext(message); static != "" {
		sections = append(sections, "**Default Information:**\n"+static)
	}
	return strings.Join(sections, "\n\n")
}

// StaticContext lists the services the message mentions, plus pricing when
// the message talks about price.
func (b *ContextBuilder) StaticContext(message string) string {
	msg := strings.ToLower(message)
	var lines []string
	for _, svc := range b.static.Services {
		if mentionsAny(msg, svc.Keywords) {
			lines = append(lines, svc.Name+": "+svc.Description)
		}
	}
	if b.static.Pricing != "" && mentionsAny(msg, b.static.PricingTriggers) {
		lines = append(lines, b.static.Pricing)
	}
	return strings.Join(lines, "\n")
}

// DetectInterest returns the first service the message mentions, or "".
func (b *ContextBuilder) DetectInterest(message string) string {
	msg := strings.ToLower(message)
	for _, svc := range b.static.Services {
		if mentionsAny(msg, svc.Keywords) {
			return svc.Name
		}
	}
	return ""
}

func mentionsAny(msg string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(msg, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
