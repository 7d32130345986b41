package chatbot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wolfman30/agency-chat/internal/knowledge"
)

const (
	questionMatchScore = 100
	keywordMatchScore  = 30
	wordOverlapScore   = 15
	priorityWeight     = 5

	// MatchThreshold is the minimum top score for knowledge to be used.
	// A single word overlap (15) is not enough on its own.
	MatchThreshold = 25

	maxMatches       = 3
	minOverlapLength = 3
)

// MatchResult is a scored knowledge entry. It only lives for one match call.
type MatchResult struct {
	Entry knowledge.Entry
	Score int
}

// Rank scores active entries against message and returns those scoring above
// zero, best first. Ties keep knowledge base order.
func Rank(message string, kb []knowledge.Entry) []MatchResult {
	msg := strings.ToLower(message)
	msgWords := strings.Fields(msg)

	var results []MatchResult
	for _, entry := range kb {
		if !entry.Active() {
			continue
		}
		if score := scoreEntry(msg, msgWords, entry); score > 0 {
			results = append(results, MatchResult{Entry: entry, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Match renders the top matches as "Q: …\nA: …" blocks separated by a blank
// line, or returns "" when the best score is under MatchThreshold.
func Match(message string, kb []knowledge.Entry) string {
	results := Rank(message, kb)
	if len(results) == 0 || results[0].Score < MatchThreshold {
		return ""
	}
	if len(results) > maxMatches {
		results = results[:maxMatches]
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Q: %s\nA: %s", r.Entry.Question, r.Entry.Answer))
	}
	return strings.Join(blocks, "\n\n")
}

func scoreEntry(msg string, msgWords []string, entry knowledge.Entry) int {
	score := 0
	question := strings.ToLower(entry.Question)

	// Containment in either direction. Short questions over-match here; kept
	// as-is so existing entries score the same.
	if question != "" && msg != "" && (strings.Contains(msg, question) || strings.Contains(question, msg)) {
		score += questionMatchScore
	}

	for _, kw := range entry.KeywordList() {
		if strings.Contains(msg, kw) {
			score += keywordMatchScore
		}
	}

	questionWords := make(map[string]struct{})
	for _, w := range strings.Fields(question) {
		questionWords[w] = struct{}{}
	}
	for _, w := range msgWords {
		if len(w) <= minOverlapLength {
			continue
		}
		if _, ok := questionWords[w]; ok {
			score += wordOverlapScore
		}
	}

	score += clampPriority(entry.Priority) * priorityWeight
	return score
}

func clampPriority(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
