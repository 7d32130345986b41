package chatbot

import (
	"strings"

	"github.com/wolfman30/agency-chat/internal/knowledge"
)

const (
	emailMinTurns    = 2
	locationMinTurns = 4
)

// UpdateLead fills the field the previous bot turn asked for. Filled fields
// are never overwritten and a blank message never fills anything.
func UpdateLead(prior LeadInfo, lastCollect CollectField, message string) LeadInfo {
	lead := prior
	value := strings.TrimSpace(message)
	if value == "" {
		return lead
	}
	switch lastCollect {
	case CollectName:
		if lead.Name == "" {
			lead.Name = value
		}
	case CollectEmail:
		// Only "@" is checked; anything else leaves the field empty and the
		// bot asks again on a later turn.
		if lead.Email == "" && strings.Contains(value, "@") {
			lead.Email = value
		}
	case CollectLocation:
		if lead.Location == "" {
			lead.Location = value
		}
	}
	return lead
}

// NextCollectInfo picks the lead field to request next, or CollectNone.
// Email waits for two prior turns and location for four with email known.
func NextCollectInfo(cfg knowledge.BotConfig, lead LeadInfo, turnCount int) CollectField {
	if !cfg.AutoCollectLead {
		return CollectNone
	}
	switch {
	case lead.Name == "":
		return CollectName
	case lead.Email == "" && turnCount >= emailMinTurns:
		return CollectEmail
	case lead.Location == "" && lead.Email != "" && turnCount >= locationMinTurns:
		return CollectLocation
	default:
		return CollectNone
	}
}

// LastCollect returns the directive of the most recent bot turn in history.
func LastCollect(history []ChatMessage) CollectField {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role.IsBot() {
			return history[i].CollectInfo
		}
	}
	return CollectNone
}

// TurnCount counts the user turns already in history.
func TurnCount(history []ChatMessage) int {
	n := 0
	for _, m := range history {
		if !m.Role.IsBot() {
			n++
		}
	}
	return n
}

// CaptureInterest records a detected service interest when none is known yet.
func CaptureInterest(lead LeadInfo, interest string) LeadInfo {
	if lead.Interest == "" {
		lead.Interest = strings.TrimSpace(interest)
	}
	return lead
}

// MergeLead fills the empty fields of known from incoming. Fields already
// known for the session are never replaced or cleared.
func MergeLead(known, incoming LeadInfo) LeadInfo {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&known.Name, incoming.Name)
	fill(&known.Email, incoming.Email)
	fill(&known.Location, incoming.Location)
	fill(&known.Interest, incoming.Interest)
	return known
}
