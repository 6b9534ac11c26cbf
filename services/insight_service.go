package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/utils"
)

// InsightService generates the motivational prose surfaces: the weekly
// progress review and the short daily encouragement blurb. Both degrade to a
// fixed friendly message when the model is unreachable.
type InsightService struct {
	llm Completer
}

func NewInsightService(llm Completer) *InsightService {
	return &InsightService{llm: llm}
}

const (
	progressFallback = "You're making great progress with your nutrition journey! Keep up the consistent logging and healthy choices."

	encouragementFallback = "You're doing great with your nutrition journey! Keep up the amazing work."
)

type ProgressReview struct {
	Review      string  `json:"review"`
	DaysLogged  int     `json:"daysLogged"`
	AvgCalories float64 `json:"avgCalories"`
	AvgProtein  float64 `json:"avgProtein"`
	OnTrackDays int     `json:"onTrackDays"`
}

// GetProgressReview summarizes the trailing week and asks the model for a
// short supportive write-up. Averages only count days with at least one row.
func (s *InsightService) GetProgressReview(ctx context.Context, userID uint, now time.Time) (*ProgressReview, error) {
	series, goal, err := GetSummary(userID, 7, now)
	if err != nil {
		return nil, err
	}

	out := &ProgressReview{Review: progressFallback}
	var calSum, proteinSum float64
	for _, d := range series {
		if d.LoggedItems == 0 {
			continue
		}
		out.DaysLogged++
		calSum += d.Calories
		proteinSum += d.Protein
		if goal != nil && goal.TargetCalories != nil && *goal.TargetCalories > 0 {
			ratio := d.Calories / float64(*goal.TargetCalories)
			if ratio >= 0.9 && ratio <= 1.1 {
				out.OnTrackDays++
			}
		}
	}
	if out.DaysLogged > 0 {
		out.AvgCalories = calSum / float64(out.DaysLogged)
		out.AvgProtein = proteinSum / float64(out.DaysLogged)
	}

	target := "no calorie goal set"
	if goal != nil && goal.TargetCalories != nil {
		target = fmt.Sprintf("%d cal/day goal", *goal.TargetCalories)
	}
	prompt := fmt.Sprintf(
		"Over the last 7 days the user logged food on %d day(s), averaging %.0f calories and %.0fg protein per logged day (%s). %d day(s) landed within 10%% of the calorie goal. "+
			"Write a warm, specific 2-3 sentence progress review. Plain text only, no JSON, no markdown headers.",
		out.DaysLogged, out.AvgCalories, out.AvgProtein, target, out.OnTrackDays)

	raw, err := s.llm.Complete(ctx, "You are an encouraging nutrition coach.", nil, prompt)
	if err != nil {
		config.Log.Warnw("progress review completion failed, using fallback", "err", err)
		return out, nil
	}
	if text := strings.TrimSpace(raw); text != "" {
		out.Review = text
	}
	return out, nil
}

// GetEncouragement compares today against yesterday and returns one short
// motivational line.
func (s *InsightService) GetEncouragement(ctx context.Context, userID uint, now time.Time) (string, error) {
	today, err := ListLogsForDay(userID, now)
	if err != nil {
		return "", err
	}
	yesterday, err := ListLogsForDay(userID, utils.DayStart(now).AddDate(0, 0, -1))
	if err != nil {
		return "", err
	}
	todayTotals := SumLogs(today)
	yesterdayTotals := SumLogs(yesterday)

	prompt := fmt.Sprintf(
		"Today the user has logged %d item(s) totaling %.0f calories and %.0fg protein. Yesterday: %d item(s), %.0f calories, %.0fg protein. "+
			"Write ONE short encouraging sentence about their momentum. Plain text only.",
		len(today), todayTotals.Calories, todayTotals.Protein,
		len(yesterday), yesterdayTotals.Calories, yesterdayTotals.Protein)

	raw, err := s.llm.Complete(ctx, "You are an encouraging nutrition coach.", nil, prompt)
	if err != nil {
		config.Log.Warnw("encouragement completion failed, using fallback", "err", err)
		return encouragementFallback, nil
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		text = encouragementFallback
	}
	return text, nil
}
