package services

import (
	"time"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/models"
	"github.com/avandorn1/LLM-food-logging/utils"
)

// DaySummary is one point of the per-day aggregate series.
type DaySummary struct {
	Day         string  `json:"day"` // YYYY-MM-DD
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	LoggedItems int     `json:"loggedItems"`
}

// GetSummary aggregates the trailing `days`-day window ending today (fixed
// reference zone), zero-filling days with no rows, and returns the series
// alongside the current goal.
func GetSummary(userID uint, days int, now time.Time) ([]DaySummary, *models.Goal, error) {
	if days <= 0 {
		days = 7
	}
	end := utils.DayStart(now)
	start := end.AddDate(0, 0, -(days - 1))

	var logs []models.FoodLog
	if err := config.DB.
		Where("user_id = ? AND day >= ? AND day <= ?", userID, start, end).
		Order("day ASC").
		Find(&logs).Error; err != nil {
		return nil, nil, err
	}

	goal, err := GetGoal(userID)
	if err != nil {
		return nil, nil, err
	}

	byDay := make(map[string]*DaySummary, days)
	series := make([]DaySummary, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		key := d.Format("2006-01-02")
		series[i] = DaySummary{Day: key}
		byDay[key] = &series[i]
	}

	for _, l := range logs {
		acc, ok := byDay[utils.DayStart(l.Day).Format("2006-01-02")]
		if !ok {
			continue
		}
		if l.Calories != nil {
			acc.Calories += float64(*l.Calories)
		}
		if l.Protein != nil {
			acc.Protein += *l.Protein
		}
		if l.Carbs != nil {
			acc.Carbs += *l.Carbs
		}
		if l.Fat != nil {
			acc.Fat += *l.Fat
		}
		acc.LoggedItems++
	}

	return series, goal, nil
}
