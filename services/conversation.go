package services

import (
	"regexp"
	"strconv"
	"strings"
)

// Conversation state is not persisted anywhere: each turn re-derives it from
// the tail of the client-held transcript, as a single tagged value. Everything
// downstream of DeriveConversation operates on this value only.
type ConvState int

const (
	StateNeutral ConvState = iota
	// The assistant asked a clarifying question and is waiting for details.
	StateAwaitingDetails
	// The assistant proposed an itemized log and is waiting for yes/no.
	StateAwaitingConfirmation
	// The assistant proposed a removal set and is waiting for yes/no.
	StateAwaitingRemoval
)

type Conversation struct {
	State           ConvState
	Subject         string       // AwaitingDetails: the item asked about, best effort
	Pending         []ParsedLog  // AwaitingConfirmation: items re-parsed from the proposal
	PendingRemovals []RemoveItem // AwaitingRemoval
}

const (
	addProposalMarker    = "Please confirm adding"
	removeProposalMarker = "Please confirm removing"
)

var clarificationPhrases = []string{
	"how much", "rough amount", "roughly how much", "about how much",
}

// DeriveConversation inspects the most recent assistant message: a proposal
// marker means we are waiting on a confirmation, a clarification phrase means
// we are waiting on details, anything else is neutral. The proposal's items
// are recovered from its text since the client does not echo them back as
// structured data.
func DeriveConversation(history []ChatMessage) Conversation {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role != "assistant" {
			continue
		}
		if strings.Contains(msg.Content, addProposalMarker) {
			return Conversation{
				State:   StateAwaitingConfirmation,
				Pending: ParseProposalLines(msg.Content),
			}
		}
		if strings.Contains(msg.Content, removeProposalMarker) {
			return Conversation{
				State:           StateAwaitingRemoval,
				PendingRemovals: parseRemovalLines(msg.Content),
			}
		}
		lower := strings.ToLower(msg.Content)
		for _, phrase := range clarificationPhrases {
			if strings.Contains(lower, phrase) {
				return Conversation{
					State:   StateAwaitingDetails,
					Subject: clarificationSubject(msg.Content),
				}
			}
		}
		return Conversation{State: StateNeutral}
	}
	return Conversation{State: StateNeutral}
}

// Proposal lines look like
//
//	- soba noodles (1.5 cups): 210 cal, 8g protein, 45g carbs, 1g fat
//	- black coffee: 5 cal, 0g protein, 1g carbs, 0g fat
//	- mystery stew (1 bowl) (nutrition data not available)
var (
	proposalLineRe = regexp.MustCompile(
		`^-\s+(.+?)(?:\s*\((\d+(?:\.\d+)?)\s+([^)]+)\))?:\s*(\d+)\s*cal,\s*(\d+)g\s*protein,\s*(\d+)g\s*carbs,\s*(\d+)g\s*fat\s*$`)
	noNutritionLineRe = regexp.MustCompile(
		`^-\s+(.+?)(?:\s*\((\d+(?:\.\d+)?)\s+([^)]+)\))?\s*\(nutrition data not available\)\s*$`)
	removalLineRe = regexp.MustCompile(
		`^-\s+(.+?)(?:\s*\(([^)]+)\))?(?:\s*\[id (\d+)\])?\s*$`)
)

// ParseProposalLines recovers the itemized entries from a confirmation
// proposal's text.
func ParseProposalLines(content string) []ParsedLog {
	var items []ParsedLog
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		if m := proposalLineRe.FindStringSubmatch(line); m != nil {
			entry := ParsedLog{Item: strings.TrimSpace(m[1])}
			if m[2] != "" {
				q, _ := strconv.ParseFloat(m[2], 64)
				unit := strings.TrimSpace(m[3])
				entry.Quantity = &q
				entry.Unit = &unit
			}
			entry.Calories = parseFloatPtr(m[4])
			entry.Protein = parseFloatPtr(m[5])
			entry.Carbs = parseFloatPtr(m[6])
			entry.Fat = parseFloatPtr(m[7])
			items = append(items, entry)
			continue
		}
		if m := noNutritionLineRe.FindStringSubmatch(line); m != nil {
			entry := ParsedLog{Item: strings.TrimSpace(m[1])}
			if m[2] != "" {
				q, _ := strconv.ParseFloat(m[2], 64)
				unit := strings.TrimSpace(m[3])
				entry.Quantity = &q
				entry.Unit = &unit
			}
			items = append(items, entry)
		}
	}
	return items
}

func parseRemovalLines(content string) []RemoveItem {
	var items []RemoveItem
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		m := removalLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := RemoveItem{Item: strings.TrimSpace(m[1])}
		if m[2] != "" {
			mt := strings.TrimSpace(m[2])
			item.MealType = &mt
		}
		if m[3] != "" {
			if id, err := strconv.ParseUint(m[3], 10, 32); err == nil {
				uid := uint(id)
				item.ID = &uid
			}
		}
		items = append(items, item)
	}
	return items
}

// clarificationSubject pulls the food item out of a question like
// "Roughly how much rice?". Best effort; used for logging only.
func clarificationSubject(content string) string {
	lower := strings.ToLower(content)
	idx := strings.Index(lower, "how much")
	if idx == -1 {
		return ""
	}
	rest := lower[idx+len("how much"):]
	rest = strings.Trim(rest, " ?.!\n")
	if i := strings.IndexAny(rest, "?.!\n"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

func parseFloatPtr(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
