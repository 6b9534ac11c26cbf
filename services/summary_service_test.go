package services

import (
	"testing"
	"time"

	"github.com/avandorn1/LLM-food-logging/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSummaryZeroFillsWindow(t *testing.T) {
	setupTestDB(t)

	now := time.Now()
	today := utils.DayStart(now)
	twoDaysAgo := today.AddDate(0, 0, -2)

	_, err := CreateLogs(1, today, []ParsedLog{
		{Item: "eggs", Calories: fptr(140), Protein: fptr(12)},
		{Item: "toast", Calories: fptr(80)},
	})
	require.NoError(t, err)
	_, err = CreateLogs(1, twoDaysAgo, []ParsedLog{{Item: "pasta", Calories: fptr(600), Carbs: fptr(90)}})
	require.NoError(t, err)

	series, _, err := GetSummary(1, 7, now)
	require.NoError(t, err)
	require.Len(t, series, 7)

	assert.Equal(t, today.Format("2006-01-02"), series[6].Day)
	assert.Equal(t, 220.0, series[6].Calories)
	assert.Equal(t, 2, series[6].LoggedItems)

	assert.Equal(t, twoDaysAgo.Format("2006-01-02"), series[4].Day)
	assert.Equal(t, 600.0, series[4].Calories)
	assert.Equal(t, 90.0, series[4].Carbs)

	for _, i := range []int{0, 1, 2, 3, 5} {
		assert.Zero(t, series[i].Calories, series[i].Day)
		assert.Zero(t, series[i].LoggedItems, series[i].Day)
	}
}

func TestGetSummaryDefaultsToSevenDays(t *testing.T) {
	setupTestDB(t)

	series, goal, err := GetSummary(1, 0, time.Now())
	require.NoError(t, err)
	assert.Len(t, series, 7)
	assert.Nil(t, goal)
}
