package services

import (
	"context"
	"errors"
	"testing"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatTestService(t *testing.T, fake *fakeCompleter) *ChatService {
	t.Helper()
	setupTestDB(t)
	return NewChatService(fake, nil)
}

func TestChatTurnProposesBeforePersisting(t *testing.T) {
	fake := &fakeCompleter{reply: `{"action":"log","logs":[{"item":"20 oz IPA","quantity":20,"unit":"oz","calories":250,"protein":2,"carbs":20,"fat":0}],"needsConfirmation":true}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "I had a 20 oz IPA"})

	assert.True(t, resp.NeedsConfirmation)
	assert.Contains(t, resp.Reply, "Please confirm adding:")
	assert.Contains(t, resp.Reply, "20 oz IPA (20 oz): 250 cal")
	require.Len(t, resp.Logs, 1)
	assert.EqualValues(t, 0, countLogs(t, 1), "a proposal must not persist rows")
}

func TestChatTurnClarificationCreatesNoRows(t *testing.T) {
	fake := &fakeCompleter{reply: `{"action":"chat","reply":"Roughly how much rice did you have?"}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "I had some rice"})

	assert.Equal(t, "chat", resp.Action)
	assert.False(t, resp.NeedsConfirmation)
	assert.Equal(t, "Roughly how much rice did you have?", resp.Reply)
	assert.EqualValues(t, 0, countLogs(t, 1))
}

func TestChatTurnAccumulatesPendingItems(t *testing.T) {
	pending := []ParsedLog{{Item: "eggs", Quantity: fptr(2), Unit: sptr("count"),
		Calories: fptr(140), Protein: fptr(12), Carbs: fptr(1), Fat: fptr(10)}}
	fake := &fakeCompleter{reply: `{"action":"log","logs":[{"item":"toast","calories":80,"protein":3,"carbs":15,"fat":1}],"needsConfirmation":true}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{
		Message: "also a slice of toast",
		ConversationHistory: []ChatMessage{
			{Role: "user", Content: "I had 2 eggs"},
			{Role: "assistant", Content: ConfirmationMessage(pending)},
		},
	})

	assert.True(t, resp.NeedsConfirmation)
	require.Len(t, resp.Logs, 2)
	assert.Equal(t, "eggs", resp.Logs[0].Item)
	assert.Equal(t, "toast", resp.Logs[1].Item)
	assert.Contains(t, resp.Reply, "the following 2 item(s)")
	assert.Contains(t, resp.Reply, "Totals: 220 cal")
	assert.EqualValues(t, 0, countLogs(t, 1))
}

func TestChatTurnBareYesPersistsWithoutModelCall(t *testing.T) {
	pending := []ParsedLog{
		{Item: "eggs", Calories: fptr(140), Protein: fptr(12), Carbs: fptr(1), Fat: fptr(10)},
		{Item: "toast", Calories: fptr(80), Protein: fptr(3), Carbs: fptr(15), Fat: fptr(1)},
	}
	fake := &fakeCompleter{reply: `should not be called`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{
		Message: "yes",
		ConversationHistory: []ChatMessage{
			{Role: "assistant", Content: ConfirmationMessage(pending)},
		},
	})

	assert.Equal(t, 0, fake.calls)
	assert.Equal(t, "confirm", resp.Action)
	assert.Equal(t, "Confirmed! Added 2 item(s) to your food log.", resp.Reply)
	assert.EqualValues(t, 2, countLogs(t, 1))

	var rows []models.FoodLog
	require.NoError(t, config.DB.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "eggs", rows[0].Item)
	require.NotNil(t, rows[0].Calories)
	assert.Equal(t, 140, *rows[0].Calories)
	assert.Equal(t, "toast", rows[1].Item)
}

func TestChatTurnRepeatedConfirmationsStack(t *testing.T) {
	pending := []ParsedLog{{Item: "black coffee", Calories: fptr(5), Protein: fptr(0), Carbs: fptr(1), Fat: fptr(0)}}
	fake := &fakeCompleter{reply: `should not be called`}
	svc := newChatTestService(t, fake)

	history := []ChatMessage{
		{Role: "assistant", Content: ConfirmationMessage(pending)},
	}

	first := svc.HandleTurn(context.Background(), ChatRequest{Message: "yes", ConversationHistory: history})
	assert.Equal(t, "confirm", first.Action)
	assert.EqualValues(t, 1, countLogs(t, 1))

	// Confirming the same item again is a new entry, not a dedup target:
	// eating the same thing twice is two rows.
	second := svc.HandleTurn(context.Background(), ChatRequest{Message: "yes", ConversationHistory: history})
	assert.Equal(t, "confirm", second.Action)
	assert.EqualValues(t, 2, countLogs(t, 1))

	var rows []models.FoodLog
	require.NoError(t, config.DB.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "black coffee", rows[0].Item)
	assert.Equal(t, "black coffee", rows[1].Item)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestChatTurnBareNoCancels(t *testing.T) {
	pending := []ParsedLog{{Item: "eggs", Calories: fptr(140), Protein: fptr(12), Carbs: fptr(1), Fat: fptr(10)}}
	fake := &fakeCompleter{reply: `should not be called`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{
		Message: "no",
		ConversationHistory: []ChatMessage{
			{Role: "assistant", Content: ConfirmationMessage(pending)},
		},
	})

	assert.Equal(t, 0, fake.calls)
	assert.Equal(t, "No problem, I won't log that. What else can I help you with?", resp.Reply)
	assert.EqualValues(t, 0, countLogs(t, 1))
}

func TestChatTurnCorrectionDuringConfirmationReachesModel(t *testing.T) {
	pending := []ParsedLog{{Item: "eggs", Quantity: fptr(1), Unit: sptr("count"),
		Calories: fptr(70), Protein: fptr(6), Carbs: fptr(0), Fat: fptr(5)}}
	fake := &fakeCompleter{reply: `{"action":"log","logs":[{"item":"eggs","quantity":2,"unit":"count","calories":140,"protein":12,"carbs":1,"fat":10}],"needsConfirmation":true}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{
		Message: "no I had two of those",
		ConversationHistory: []ChatMessage{
			{Role: "assistant", Content: ConfirmationMessage(pending)},
		},
	})

	assert.Equal(t, 1, fake.calls, "a correction is not a bare denial")
	require.Len(t, resp.Logs, 1)
	require.NotNil(t, resp.Logs[0].Quantity)
	assert.Equal(t, 2.0, *resp.Logs[0].Quantity)
	assert.True(t, resp.NeedsConfirmation)
	assert.EqualValues(t, 0, countLogs(t, 1))
}

func TestChatTurnRemovalProposalThenDecline(t *testing.T) {
	fake := &fakeCompleter{reply: `{"action":"remove","itemsToRemove":[{"item":"eggs"}],"needsConfirmation":true}`}
	svc := newChatTestService(t, fake)

	_, err := CreateLogs(1, nowDay(), []ParsedLog{{Item: "eggs", Calories: fptr(140)}})
	require.NoError(t, err)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "remove the eggs"})
	assert.True(t, resp.NeedsConfirmation)
	assert.Contains(t, resp.Reply, "Please confirm removing the following 1 item(s):")
	assert.EqualValues(t, 1, countLogs(t, 1), "proposal must not delete")

	decline := svc.HandleTurn(context.Background(), ChatRequest{
		Message: "no",
		ConversationHistory: []ChatMessage{
			{Role: "user", Content: "remove the eggs"},
			{Role: "assistant", Content: resp.Reply},
		},
	})
	assert.Contains(t, decline.Reply, "leave your log as it is")
	assert.EqualValues(t, 1, countLogs(t, 1))
}

func TestChatTurnRemovalConfirmDeletes(t *testing.T) {
	fake := &fakeCompleter{reply: `should not be called`}
	svc := newChatTestService(t, fake)

	_, err := CreateLogs(1, nowDay(), []ParsedLog{{Item: "eggs", Calories: fptr(140)}})
	require.NoError(t, err)

	resp := svc.HandleTurn(context.Background(), ChatRequest{
		Message: "yes",
		ConversationHistory: []ChatMessage{
			{Role: "assistant", Content: RemovalMessage([]RemoveItem{{Item: "eggs"}})},
		},
	})

	assert.Equal(t, 0, fake.calls)
	assert.Equal(t, "Confirmed! Removed 1 item(s) from your food log.", resp.Reply)
	assert.EqualValues(t, 0, countLogs(t, 1))
}

func TestChatTurnModelConfirmFallsBackToTranscript(t *testing.T) {
	pending := []ParsedLog{{Item: "eggs", Calories: fptr(140), Protein: fptr(12), Carbs: fptr(1), Fat: fptr(10)}}
	fake := &fakeCompleter{reply: `{"action":"confirm"}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{
		Message: "yeah go ahead and log that for me",
		ConversationHistory: []ChatMessage{
			{Role: "assistant", Content: ConfirmationMessage(pending)},
		},
	})

	assert.Equal(t, "confirm", resp.Action)
	assert.EqualValues(t, 1, countLogs(t, 1))
}

func TestChatTurnGenericItemRejected(t *testing.T) {
	fake := &fakeCompleter{reply: `{"action":"log","logs":[{"item":"food item","calories":100}],"needsConfirmation":true}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "log what I ate"})

	assert.True(t, resp.Error)
	assert.Equal(t, "generic_item", resp.ErrorType)
	assert.Contains(t, resp.Reply, "more specific")
	assert.EqualValues(t, 0, countLogs(t, 1))
}

func TestChatTurnDoneLoggingSummaryShortCircuits(t *testing.T) {
	fake := &fakeCompleter{reply: `should not be called`}
	svc := newChatTestService(t, fake)

	_, err := EnsureUser(1)
	require.NoError(t, err)
	_, err = UpsertGoal(1, ParsedGoals{TargetCalories: iptr(2000), TargetProtein: iptr(150)}, nil)
	require.NoError(t, err)
	_, err = CreateLogs(1, nowDay(), []ParsedLog{{Item: "eggs", Calories: fptr(140), Protein: fptr(12)}})
	require.NoError(t, err)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "I'm done for today"})

	assert.Equal(t, 0, fake.calls)
	assert.Contains(t, resp.Reply, "Daily Totals")
	assert.Contains(t, resp.Reply, "Calories: ~140 / 2000")
	assert.Contains(t, resp.Reply, "Remaining")
	assert.Contains(t, resp.Reply, "Calories: ~1860")
	assert.EqualValues(t, 1, countLogs(t, 1))
}

func TestChatTurnGatewayErrorApologizes(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream 500")}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "I had a sandwich"})

	assert.True(t, resp.Error)
	assert.Equal(t, "general", resp.ErrorType)
	assert.NotEmpty(t, resp.Reply)
}

func TestChatTurnSalvagesPlainTextProposal(t *testing.T) {
	items := []ParsedLog{{Item: "eggs", Quantity: fptr(2), Unit: sptr("count"),
		Calories: fptr(140), Protein: fptr(12), Carbs: fptr(1), Fat: fptr(10)}}
	fake := &fakeCompleter{reply: ConfirmationMessage(items)}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "I had 2 eggs"})

	assert.True(t, resp.NeedsConfirmation)
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "eggs", resp.Logs[0].Item)
	assert.EqualValues(t, 0, countLogs(t, 1))
}

func TestChatTurnSalvageFallsBackToHelp(t *testing.T) {
	fake := &fakeCompleter{reply: "total nonsense with no structure"}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "hm"})

	assert.True(t, resp.Error)
	assert.Equal(t, "parsing", resp.ErrorType)
	assert.Contains(t, resp.Reply, "Log food")
}

func TestChatTurnGoalUpdate(t *testing.T) {
	fake := &fakeCompleter{reply: `{"action":"set_goals","goals":{"targetCalories":2200,"targetProtein":160},"reply":"Goals updated!"}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "set my calories to 2200 and protein to 160"})

	assert.Equal(t, "Goals updated!", resp.Reply)
	require.NotNil(t, resp.Goals)

	goal, err := GetGoal(1)
	require.NoError(t, err)
	require.NotNil(t, goal)
	require.NotNil(t, goal.TargetCalories)
	assert.Equal(t, 2200, *goal.TargetCalories)
	require.NotNil(t, goal.TargetProtein)
	assert.Equal(t, 160, *goal.TargetProtein)
}

func TestChatTurnReplyNeverEmpty(t *testing.T) {
	fake := &fakeCompleter{reply: `{"action":"chat"}`}
	svc := newChatTestService(t, fake)

	resp := svc.HandleTurn(context.Background(), ChatRequest{Message: "thanks"})

	assert.NotEmpty(t, resp.Reply)
	assert.NotNil(t, resp.Logs)
	assert.NotNil(t, resp.ItemsToRemove)
}
