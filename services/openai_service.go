package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avandorn1/LLM-food-logging/models"
)

// Completer is the language-model gateway: a system prompt, recent history
// and the new user message in, free-form text (hopefully containing JSON) out.
type Completer interface {
	Complete(ctx context.Context, system string, history []ChatMessage, message string) (string, error)
}

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	chatModel      = "gpt-4o-mini"
	// Only the most recent turns are forwarded; older context is summarized
	// into the system prompt via today's totals.
	historyWindow = 10
)

type OpenAIService struct {
	client *http.Client
	apiKey string
	model  string
}

// NewOpenAIService fails when the API key is absent: that is a deployment
// configuration error, not a runtime data error.
func NewOpenAIService() (*OpenAIService, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return &OpenAIService{
		client: &http.Client{Timeout: 30 * time.Second},
		apiKey: key,
		model:  chatModel,
	}, nil
}

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaRequest struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	Temperature float64     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

type oaResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *OpenAIService) Complete(ctx context.Context, system string, history []ChatMessage, message string) (string, error) {
	msgs := make([]oaMessage, 0, historyWindow+2)
	msgs = append(msgs, oaMessage{Role: "system", Content: system})
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, h := range history[start:] {
		msgs = append(msgs, oaMessage{Role: h.Role, Content: h.Content})
	}
	msgs = append(msgs, oaMessage{Role: "user", Content: message})

	body, err := json.Marshal(oaRequest{Model: s.model, Messages: msgs, Temperature: 0.7})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call completion API: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var oaErr oaResponse
		if json.Unmarshal(respBytes, &oaErr) == nil && oaErr.Error != nil {
			return "", fmt.Errorf("completion API error (%d): %s", resp.StatusCode, oaErr.Error.Message)
		}
		return "", fmt.Errorf("completion API error (%d): %s", resp.StatusCode, string(respBytes))
	}

	var out oaResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("failed to parse completion JSON: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return out.Choices[0].Message.Content, nil
}

// BuildSystemPrompt embeds the user's goals, today's running totals and
// today's item list into the logging-assistant instruction block.
func BuildSystemPrompt(goal *models.Goal, totals Totals, todayLogs []models.FoodLog) string {
	goalLine := "No goals set yet"
	if goal != nil {
		goalLine = fmt.Sprintf("%s kcal, %sg protein, %sg carbs, %sg fat",
			intOrNotSet(goal.TargetCalories), intOrNotSet(goal.TargetProtein),
			intOrNotSet(goal.TargetCarbs), intOrNotSet(goal.TargetFat))
	}

	foodLine := "None logged yet"
	if len(todayLogs) > 0 {
		parts := make([]string, 0, len(todayLogs))
		for _, l := range todayLogs {
			cal := 0
			if l.Calories != nil {
				cal = *l.Calories
			}
			parts = append(parts, fmt.Sprintf("%s (%d cal)", l.Item, cal))
		}
		foodLine = strings.Join(parts, ", ")
	}

	var sb strings.Builder
	sb.WriteString("You are a nutrition logging assistant. Your job is to help users log their food intake accurately.\n\n")
	sb.WriteString("CRITICAL: You MUST respond with ONLY valid JSON. No plain text, no explanations outside the JSON structure. Your response must start with { and end with }.\n\n")
	sb.WriteString("CRITICAL: NEVER write confirmation messages in plain text. ALWAYS use the JSON structure with \"needsConfirmation\": true and leave the reply field empty; the system auto-generates the confirmation message.\n\n")
	sb.WriteString(fmt.Sprintf("USER'S GOALS: %s\n\n", goalLine))
	sb.WriteString(fmt.Sprintf("TODAY'S PROGRESS: %.0f calories, %.0fg protein, %.0fg carbs, %.0fg fat\n\n",
		totals.Calories, totals.Protein, totals.Carbs, totals.Fat))
	sb.WriteString(fmt.Sprintf("TODAY'S FOOD: %s\n\n", foodLine))
	sb.WriteString(`Output only valid JSON with this shape:
{
  "action": "log" | "set_goals" | "chat" | "remove" | "confirm",
  "day"?: string,
  "logs"?: [
    {"item": string, "mealType"?: string, "quantity"?: number, "unit"?: string, "calories"?: number, "protein"?: number, "carbs"?: number, "fat"?: number, "fiber"?: number, "sugar"?: number, "sodium"?: number, "notes"?: string}
  ],
  "goals"?: {"targetCalories"?: number, "targetProtein"?: number, "targetCarbs"?: number, "targetFat"?: number},
  "itemsToRemove"?: [{"id"?: number, "item": string, "mealType"?: string}],
  "needsConfirmation"?: boolean,
  "reply"?: string
}

FOOD LOGGING INTENT: Be very liberal in detecting food logging intent. If the user mentions any food item, treat it as a food logging request ("I had ...", "also ...", "and ...", "... too", "plus ..."). Alcoholic and non-alcoholic beverages are food items too.

CONVERSATION CONTEXT: When the user mentions multiple food items before confirming, accumulate them and show the complete list in the confirmation. If 4 items are pending and a 5th arrives before confirmation, all 5 belong in the proposal.

IMPORTANT: NEVER log generic items like "food item", "item", "food". If you cannot identify the specific food, ask for clarification instead of logging a placeholder.

QUANTITY CLARIFICATION:
- Ask for clarification when you cannot reasonably estimate calories due to lack of detail ("sauce" could be 20-200+ cal; "meat", "salad", "soup", "rice", "bread" all vary widely by type).
- Items with explicit, predictable quantities need no clarification: "2 eggs", "1 apple", "20 oz IPA", "12 oz beer", "5 oz wine", "1 cocktail".
- Use casual language and ask for rough amounts ("Roughly how much rice?", "About how much?").
- Ask about ONE item at a time - never multiple items in the same question.
- When you asked about multiple attributes and only one was answered, keep asking about the remaining one; do NOT log partial information.
- When the user responds to a clarification with a quantity ("1.5 cups", "a tablespoon", "idk a tbsp"), log the item with that quantity - do not re-ask.
- When the user is uncertain ("idk", "normal amount"), make a reasonable assumption (a regular serving is about 1 cup) and propose it.

CONFIRMATION HANDLING:
- Affirmative replies ("yes", "confirm", "ok", "sure", "yep", "add it", "log it"): set action to "confirm" and include the exact same logs array that was previously proposed.
- Negative replies ("no", "cancel", "nope"): set action to "chat" with a reply like "No problem, I won't log that. What else can I help you with?"
- Quantity corrections during confirmation ("no I had two of those", "actually I had 3", "make it 2"): update the existing item's quantity in place - do NOT add a new item - then set action to "log" with needsConfirmation true.
- Nutrition feedback ("it says 26.5 cal for 2 pieces 4g protein 20g carb 8g fat"): update the entry with the corrected data, action "log", needsConfirmation false for direct logging.

LOGGING ACTIONS:
- ALL food logging requires confirmation: action "log", logs array, needsConfirmation true, reply left empty.
- To remove food: action "remove", itemsToRemove array, needsConfirmation true.
- For clarification questions: {"action": "chat", "reply": "your question"}.
- NEVER return empty JSON {}.

Use your nutrition knowledge to provide accurate estimates. If you're unsure about quantities or need more details, ask specific questions.`)
	return sb.String()
}

func intOrNotSet(v *int) string {
	if v == nil {
		return "Not set"
	}
	return fmt.Sprintf("%d", *v)
}
