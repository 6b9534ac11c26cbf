package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/models"
	"github.com/avandorn1/LLM-food-logging/utils"
)

// ChatService is the conversation reconciliation engine: one user message in,
// exactly one of a clarification question, a confirmation proposal, a
// persistence action, a goal update, or a plain conversational reply out.
type ChatService struct {
	llm Completer
	hub *RealtimeHub
}

func NewChatService(llm Completer, hub *RealtimeHub) *ChatService {
	return &ChatService{llm: llm, hub: hub}
}

type ChatRequest struct {
	Message             string        `json:"message" binding:"required"`
	UserID              *uint         `json:"userId"`
	Day                 *string       `json:"day"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
}

type ChatResponse struct {
	Action            string       `json:"action"`
	Reply             string       `json:"reply"`
	Logs              []ParsedLog  `json:"logs"`
	Goals             *ParsedGoals `json:"goals"`
	ItemsToRemove     []RemoveItem `json:"itemsToRemove"`
	NeedsConfirmation bool         `json:"needsConfirmation"`
	Error             bool         `json:"error,omitempty"`
	ErrorType         string       `json:"errorType,omitempty"`
}

const (
	dbApology = "I'm having trouble connecting to your data right now. This might be a temporary issue. Please try again in a moment.\n\nYou can still try:\n• Logging food: \"I had 2 eggs for breakfast\"\n• Asking for help: \"What can you do?\""

	gatewayApology = "I'm having trouble processing your request right now. Please try again in a moment.\n\nYou can still try:\n• Logging food: \"I had 2 eggs for breakfast\"\n• Asking for help: \"What can you do?\""

	parseFallback = "I'm having trouble understanding that right now. You can:\n• Log food: \"I had 2 eggs for breakfast\"\n• Ask for suggestions: \"What should I eat?\"\n• Remove items: \"Remove the eggs from today\"\n• Get help: \"What can you do?\""

	genericItemReply = "I'm having trouble identifying what food item you're referring to. Could you please be more specific? For example: \"I had a 20 oz IPA\" or \"I ate 2 eggs\""

	declineReply = "No problem, I won't log that. What else can I help you with?"

	emergencyReply = "I'm having trouble responding right now. Please try again or rephrase your message."
)

// HandleTurn runs one full round trip. Conversational failures (gateway down,
// unparseable model output, store unavailable) never surface as errors: the
// reply degrades but the turn always succeeds from the client's perspective.
func (s *ChatService) HandleTurn(ctx context.Context, req ChatRequest) *ChatResponse {
	userID := uint(1)
	if req.UserID != nil && *req.UserID > 0 {
		userID = *req.UserID
	}

	if _, err := EnsureUser(userID); err != nil {
		config.Log.Errorw("user upsert failed", "err", err)
		return finish(errorResponse(dbApology, "database"))
	}

	day := resolveDay(req.Day)

	goal, err := GetGoal(userID)
	if err != nil {
		config.Log.Warnw("goal lookup failed, continuing without", "err", err)
		goal = nil
	}
	todayLogs, err := ListLogsForDay(userID, day)
	if err != nil {
		config.Log.Warnw("log lookup failed, continuing without", "err", err)
		todayLogs = nil
	}
	totals := SumLogs(todayLogs)

	conv := DeriveConversation(req.ConversationHistory)
	lower := strings.ToLower(strings.TrimSpace(req.Message))

	// Bare yes/no while a proposal is pending resolves deterministically,
	// without a model round trip.
	if verdict, ok := classifyVerdict(lower); ok {
		switch conv.State {
		case StateAwaitingConfirmation:
			if verdict {
				return finish(s.commitLogs(userID, day, conv.Pending))
			}
			return finish(chatResponse(declineReply))
		case StateAwaitingRemoval:
			if verdict {
				return finish(s.commitRemovals(userID, day, conv.PendingRemovals))
			}
			return finish(chatResponse("No problem, I'll leave your log as it is. What else can I help you with?"))
		}
	}

	// "Done logging" short-circuits to a same-day summary regardless of state.
	if isDoneLogging(lower) {
		return finish(chatResponse(daySummary(goal, totals)))
	}

	system := BuildSystemPrompt(goal, totals, todayLogs)
	raw, err := s.llm.Complete(ctx, system, req.ConversationHistory, req.Message)
	if err != nil {
		config.Log.Errorw("completion call failed", "err", err)
		return finish(errorResponse(gatewayApology, "general"))
	}

	obj, found := utils.ExtractFirstJSON(raw)
	var out *ModelOutput
	if found {
		out, err = ParseModelOutput(obj)
	}
	if !found || err != nil {
		config.Log.Warnw("model output rejected, salvaging", "err", err, "raw", raw)
		return finish(s.salvage(raw, conv))
	}

	if out.HasGenericItems() {
		config.Log.Warnw("model attempted to log generic items", "logs", out.Logs)
		return finish(errorResponse(genericItemReply, "generic_item"))
	}

	var updatedGoals *ParsedGoals
	if !out.Goals.Empty() {
		if _, err := UpsertGoal(userID, *out.Goals, nil); err != nil {
			config.Log.Errorw("goal upsert failed", "err", err)
		} else {
			updatedGoals = out.Goals
		}
	}

	resp := s.reconcile(userID, day, conv, out)
	if resp.Goals == nil {
		resp.Goals = updatedGoals
	}
	return finish(resp)
}

// reconcile applies the transition rules to a validated model output.
func (s *ChatService) reconcile(userID uint, day time.Time, conv Conversation, out *ModelOutput) *ChatResponse {
	switch {
	case out.Action == "remove" && len(out.ItemsToRemove) > 0:
		reply := out.Reply
		if reply == "" {
			reply = RemovalMessage(out.ItemsToRemove)
		}
		return &ChatResponse{
			Action:            "remove",
			Reply:             reply,
			ItemsToRemove:     out.ItemsToRemove,
			NeedsConfirmation: true,
		}

	case out.Action == "confirm":
		items := out.Logs
		if len(items) == 0 && conv.State == StateAwaitingConfirmation {
			// The model echoed no logs; fall back to the proposal recovered
			// from the transcript.
			items = conv.Pending
		}
		if len(items) > 0 {
			resp := s.commitLogs(userID, day, items)
			if out.Reply != "" && !resp.Error {
				resp.Reply = out.Reply
			}
			return resp
		}
		removals := out.ItemsToRemove
		if len(removals) == 0 && conv.State == StateAwaitingRemoval {
			removals = conv.PendingRemovals
		}
		if len(removals) > 0 {
			return s.commitRemovals(userID, day, removals)
		}
		return &ChatResponse{
			Action: "confirm",
			Reply:  "I understand you want to confirm, but I couldn't retrieve the specific items. Could you please try logging your food again?",
		}

	case (out.Action == "log" || out.Action == "mixed") && len(out.Logs) > 0:
		if out.NeedsConfirmation {
			items := MergeProposal(conv.Pending, out.Logs)
			return &ChatResponse{
				Action:            "log",
				Reply:             ConfirmationMessage(items),
				Logs:              items,
				NeedsConfirmation: true,
			}
		}
		// Server-classified unambiguous (e.g. user-supplied nutrition
		// feedback): persist directly.
		resp := s.commitLogs(userID, day, out.Logs)
		if out.Reply != "" && !resp.Error {
			resp.Reply = out.Reply
		}
		return resp
	}

	reply := out.Reply
	if reply == "" {
		switch out.Action {
		case "remove":
			reply = "I can help you remove items from your food log. Please specify which items you'd like to remove."
		case "chat", "":
			reply = "I understand. How else can I help you with your nutrition tracking?"
		default:
			reply = "I'm here to help with your nutrition tracking. You can ask me to log food, remove items, or get advice about your goals."
		}
	}
	action := out.Action
	if action == "" {
		action = "chat"
	}
	return &ChatResponse{Action: action, Reply: reply}
}

// MergeProposal folds newly mentioned items onto a pending proposal: an item
// whose name matches a pending one is a quantity correction and replaces it
// in place; everything else is appended. The full accumulated set is what
// gets re-proposed.
func MergeProposal(pending, incoming []ParsedLog) []ParsedLog {
	merged := make([]ParsedLog, len(pending))
	copy(merged, pending)
	for _, in := range incoming {
		replaced := false
		for i := range merged {
			if normalizeItem(merged[i].Item) == normalizeItem(in.Item) {
				merged[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, in)
		}
	}
	return merged
}

func normalizeItem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ConfirmationMessage renders the deterministic proposal summary. The exact
// shape matters: the next turn re-parses these lines to recover the pending
// items.
func ConfirmationMessage(items []ParsedLog) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, proposalLine(it))
	}
	body := strings.Join(lines, "\n")

	if len(items) == 1 {
		return fmt.Sprintf("Please confirm adding:\n%s\n\nReply with \"yes\" to confirm or \"no\" to cancel.", body)
	}

	var cal, protein, carbs, fat float64
	for _, it := range items {
		cal += deref(it.Calories)
		protein += deref(it.Protein)
		carbs += deref(it.Carbs)
		fat += deref(it.Fat)
	}
	return fmt.Sprintf(
		"Please confirm adding the following %d item(s):\n%s\n\nTotals: %d cal, %dg protein, %dg carbs, %dg fat\n\nReply with \"yes\" to confirm or \"no\" to cancel.",
		len(items), body, round(cal), round(protein), round(carbs), round(fat))
}

func proposalLine(it ParsedLog) string {
	quantity := ""
	if it.Quantity != nil && it.Unit != nil {
		quantity = fmt.Sprintf(" (%s %s)", strconv.FormatFloat(*it.Quantity, 'f', -1, 64), *it.Unit)
	}
	if it.Calories == nil && it.Protein == nil && it.Carbs == nil && it.Fat == nil {
		return fmt.Sprintf("- %s%s (nutrition data not available)", it.Item, quantity)
	}
	return fmt.Sprintf("- %s%s: %d cal, %dg protein, %dg carbs, %dg fat",
		it.Item, quantity,
		round(deref(it.Calories)), round(deref(it.Protein)),
		round(deref(it.Carbs)), round(deref(it.Fat)))
}

// RemovalMessage renders the symmetric proposal for deletions.
func RemovalMessage(items []RemoveItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		line := "- " + it.Item
		if it.MealType != nil {
			line += fmt.Sprintf(" (%s)", *it.MealType)
		}
		if it.ID != nil {
			line += fmt.Sprintf(" [id %d]", *it.ID)
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf(
		"Please confirm removing the following %d item(s):\n%s\n\nReply with \"yes\" to confirm or \"no\" to cancel.",
		len(items), strings.Join(lines, "\n"))
}

func (s *ChatService) commitLogs(userID uint, day time.Time, items []ParsedLog) *ChatResponse {
	if len(items) == 0 {
		return &ChatResponse{
			Action: "confirm",
			Reply:  "I understand you want to confirm, but I couldn't retrieve the specific items. Could you please try logging your food again?",
		}
	}
	rows, err := CreateLogs(userID, day, items)
	if err != nil {
		config.Log.Errorw("log persistence failed", "err", err)
		return errorResponse(dbApology, "database")
	}
	if s.hub != nil {
		s.hub.BroadcastLogEvent(userID, "log.created", rows)
	}
	return &ChatResponse{
		Action: "confirm",
		Logs:   items,
		Reply:  fmt.Sprintf("Confirmed! Added %d item(s) to your food log.", len(items)),
	}
}

func (s *ChatService) commitRemovals(userID uint, day time.Time, items []RemoveItem) *ChatResponse {
	if len(items) == 0 {
		return chatResponse("I can help you remove items from your food log. Please specify which items you'd like to remove.")
	}
	deleted, err := RemoveLogs(userID, day, items)
	if err != nil {
		config.Log.Errorw("log removal failed", "err", err)
		return errorResponse(dbApology, "database")
	}
	if s.hub != nil {
		s.hub.BroadcastLogEvent(userID, "log.removed", items)
	}
	config.Log.Infow("removed logs", "user", userID, "rows", deleted)
	return &ChatResponse{
		Action:        "confirm",
		ItemsToRemove: items,
		Reply:         fmt.Sprintf("Confirmed! Removed %d item(s) from your food log.", len(items)),
	}
}

var nutritionFeedbackRe = regexp.MustCompile(
	`(?is)(\d+(?:\.\d+)?)\s*cal.*?(\d+(?:\.\d+)?)\s*g\s*protein.*?(\d+(?:\.\d+)?)\s*g\s*carbs.*?(\d+(?:\.\d+)?)\s*g\s*fat`)

// salvage handles degraded model output: the raw text never reaches the user
// as-is unless it plausibly reads as a proposal, an acknowledgment or a
// clarifying question.
func (s *ChatService) salvage(raw string, conv Conversation) *ChatResponse {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)

	// The model wrote the confirmation prose itself instead of JSON: recover
	// the items from its own lines and treat it as a proposal.
	if strings.Contains(text, addProposalMarker) && strings.Contains(text, "cal,") && strings.Contains(text, "g protein") {
		if items := ParseProposalLines(text); len(items) > 0 {
			return &ChatResponse{
				Action:            "log",
				Reply:             text,
				Logs:              items,
				NeedsConfirmation: true,
			}
		}
	}

	// Nutrition-label feedback for the pending item.
	if m := nutritionFeedbackRe.FindStringSubmatch(text); m != nil && len(conv.Pending) > 0 {
		item := conv.Pending[0]
		item.Calories = parseFloatPtr(m[1])
		item.Protein = parseFloatPtr(m[2])
		item.Carbs = parseFloatPtr(m[3])
		item.Fat = parseFloatPtr(m[4])
		items := []ParsedLog{item}
		return &ChatResponse{
			Action:            "log",
			Reply:             ConfirmationMessage(items),
			Logs:              items,
			NeedsConfirmation: true,
		}
	}

	if strings.Contains(lower, "confirmed") || strings.Contains(lower, "added") || strings.Contains(lower, "logged") {
		return chatResponse(text)
	}

	if strings.Contains(text, "?") || strings.Contains(lower, "how much") || strings.Contains(lower, "quantity") {
		return chatResponse(text)
	}

	resp := errorResponse(parseFallback, "parsing")
	return resp
}

// daySummary renders the "done logging" totals-vs-goals recap.
func daySummary(goal *models.Goal, totals Totals) string {
	remaining := Remaining(goal, totals)
	return fmt.Sprintf(
		"Great! Here's your summary for today:\n\n"+
			"📊 **Daily Totals:**\n"+
			"• Calories: ~%d / %s\n"+
			"• Protein: %dg / %sg\n"+
			"• Carbs: %dg / %sg\n"+
			"• Fat: %dg / %sg\n\n"+
			"🎯 **Remaining:**\n"+
			"• Calories: ~%d\n"+
			"• Protein: %dg\n"+
			"• Carbs: %dg\n"+
			"• Fat: %dg\n\n"+
			"Have a great rest of your day! 🌟",
		round(totals.Calories), goalTarget(goal, "calories"),
		round(totals.Protein), goalTarget(goal, "protein"),
		round(totals.Carbs), goalTarget(goal, "carbs"),
		round(totals.Fat), goalTarget(goal, "fat"),
		clamp(remaining.Calories), clamp(remaining.Protein),
		clamp(remaining.Carbs), clamp(remaining.Fat))
}

var doneLoggingPatterns = []string{
	"done", "finished", "complete", "that's all", "that's it", "all done",
	"done for today", "finished logging", "complete for today", "done eating",
	"finished eating", "no more", "that's everything", "all set",
}

func isDoneLogging(lower string) bool {
	for _, p := range doneLoggingPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var affirmatives = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "y": true, "confirm": true,
	"ok": true, "okay": true, "sure": true, "correct": true, "right": true,
	"that's right": true, "add it": true, "log it": true, "yes please": true,
}

var negatives = map[string]bool{
	"no": true, "nope": true, "nah": true, "cancel": true, "don't": true,
	"wrong": true, "incorrect": true, "no thanks": true,
}

// classifyVerdict matches only a whole-message yes/no: "no I had two of
// those" is a correction, not a denial, and must reach the model.
func classifyVerdict(lower string) (verdict bool, ok bool) {
	msg := strings.Trim(lower, " .!,")
	if affirmatives[msg] {
		return true, true
	}
	if negatives[msg] {
		return false, true
	}
	return false, false
}

func resolveDay(s *string) time.Time {
	if s != nil && *s != "" {
		if t, err := time.Parse(time.RFC3339, *s); err == nil {
			return utils.DayStart(t)
		}
		if t, err := utils.ParseDay(*s); err == nil {
			return t
		}
	}
	return utils.DayStart(time.Now())
}

func chatResponse(reply string) *ChatResponse {
	return &ChatResponse{Action: "chat", Reply: reply}
}

func errorResponse(reply, errorType string) *ChatResponse {
	return &ChatResponse{Action: "chat", Reply: reply, Error: true, ErrorType: errorType}
}

// finish enforces the response invariants: slices serialize as [] rather than
// null, and the reply is never empty.
func finish(resp *ChatResponse) *ChatResponse {
	if resp.Logs == nil {
		resp.Logs = []ParsedLog{}
	}
	if resp.ItemsToRemove == nil {
		resp.ItemsToRemove = []RemoveItem{}
	}
	if strings.TrimSpace(resp.Reply) == "" {
		config.Log.Errorw("empty reply reached response boundary, using emergency fallback")
		resp.Reply = emergencyReply
	}
	return resp
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round(v float64) int {
	return int(math.Round(v))
}

func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	return int(math.Round(v))
}

func goalTarget(goal *models.Goal, field string) string {
	if goal == nil {
		return "N/A"
	}
	var v *int
	switch field {
	case "calories":
		v = goal.TargetCalories
	case "protein":
		v = goal.TargetProtein
	case "carbs":
		v = goal.TargetCarbs
	case "fat":
		v = goal.TargetFat
	}
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
