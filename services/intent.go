package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChatMessage is one turn of the client-held transcript.
type ChatMessage struct {
	Role    string `json:"role" binding:"oneof=user assistant"`
	Content string `json:"content"`
}

// ParsedLog is one candidate food-log entry as extracted from model output.
// All nutrition fields are optional; the model may not know them.
type ParsedLog struct {
	Item     string   `json:"item"`
	MealType *string  `json:"mealType,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

type ParsedGoals struct {
	TargetCalories *int `json:"targetCalories,omitempty"`
	TargetProtein  *int `json:"targetProtein,omitempty"`
	TargetCarbs    *int `json:"targetCarbs,omitempty"`
	TargetFat      *int `json:"targetFat,omitempty"`
}

func (g *ParsedGoals) Empty() bool {
	return g == nil || (g.TargetCalories == nil && g.TargetProtein == nil &&
		g.TargetCarbs == nil && g.TargetFat == nil)
}

type RemoveItem struct {
	ID       *uint   `json:"id,omitempty"`
	Item     string  `json:"item"`
	MealType *string `json:"mealType,omitempty"`
}

// ModelOutput is the action envelope the model is instructed to emit.
type ModelOutput struct {
	Action            string       `json:"action"`
	Day               string       `json:"day,omitempty"`
	Logs              []ParsedLog  `json:"logs,omitempty"`
	Goals             *ParsedGoals `json:"goals,omitempty"`
	ItemsToRemove     []RemoveItem `json:"itemsToRemove,omitempty"`
	NeedsConfirmation bool         `json:"needsConfirmation,omitempty"`
	Reply             string       `json:"reply,omitempty"`
}

var allowedActions = map[string]bool{
	"log": true, "set_goals": true, "chat": true,
	"remove": true, "confirm": true, "mixed": true,
}

// ParseModelOutput unmarshals and validates an extracted JSON object against
// the intent vocabulary. A nil error does not imply the payload is complete,
// only that it is shape-valid for its declared action; callers fall back to
// degraded-input handling on error.
func ParseModelOutput(raw json.RawMessage) (*ModelOutput, error) {
	var out ModelOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal model output: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *ModelOutput) Validate() error {
	if m.Action == "" {
		if m.Reply == "" && len(m.Logs) == 0 && m.Goals.Empty() && len(m.ItemsToRemove) == 0 {
			return fmt.Errorf("empty model output")
		}
		return nil
	}
	if !allowedActions[m.Action] {
		return fmt.Errorf("unknown action %q", m.Action)
	}
	if m.Action == "remove" && len(m.ItemsToRemove) == 0 {
		return fmt.Errorf("remove action without items")
	}
	for _, l := range m.Logs {
		if strings.TrimSpace(l.Item) == "" {
			return fmt.Errorf("log entry with empty item")
		}
	}
	for _, r := range m.ItemsToRemove {
		if strings.TrimSpace(r.Item) == "" && r.ID == nil {
			return fmt.Errorf("removal entry with neither item nor id")
		}
	}
	return nil
}

// genericItemNames are placeholders the model occasionally invents when it
// lost track of what the user actually ate. They must never be persisted.
var genericItemNames = []string{"food item", "item", "food", "unknown item", "unknown food"}

func (m *ModelOutput) HasGenericItems() bool {
	for _, l := range m.Logs {
		name := strings.ToLower(strings.TrimSpace(l.Item))
		for _, g := range genericItemNames {
			if name == g {
				return true
			}
		}
	}
	return false
}
