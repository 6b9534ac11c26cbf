package services

import (
	"math"
	"time"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/models"
	"github.com/avandorn1/LLM-food-logging/utils"

	"gorm.io/gorm"
)

// ListLogsForDay returns the rows attributed to the calendar day containing t.
// Rows whose Day field predates the column's introduction fall back to their
// LoggedAt timestamp.
func ListLogsForDay(userID uint, t time.Time) ([]models.FoodLog, error) {
	start, end := utils.DayWindow(t)
	var logs []models.FoodLog
	err := config.DB.
		Where("user_id = ?", userID).
		Where("(day >= ? AND day < ?) OR (logged_at >= ? AND logged_at < ?)", start, end, start, end).
		Order("logged_at ASC").
		Find(&logs).Error
	return logs, err
}

// CreateLogs persists candidate entries as FoodLog rows attributed to day, in
// a single transaction: all rows commit together or none do. Calories are
// rounded to the nearest integer on the way in.
func CreateLogs(userID uint, day time.Time, entries []ParsedLog) ([]models.FoodLog, error) {
	now := time.Now()
	rows := make([]models.FoodLog, 0, len(entries))

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			row := models.FoodLog{
				UserID:   userID,
				Day:      utils.DayStart(day),
				LoggedAt: now,
				Item:     e.Item,
				MealType: e.MealType,
				Quantity: e.Quantity,
				Unit:     e.Unit,
				Protein:  e.Protein,
				Carbs:    e.Carbs,
				Fat:      e.Fat,
				Fiber:    e.Fiber,
				Sugar:    e.Sugar,
				Sodium:   e.Sodium,
				Notes:    e.Notes,
			}
			if e.Calories != nil {
				cal := int(math.Round(*e.Calories))
				row.Calories = &cal
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteLog removes a single row by id, scoped to the user.
func DeleteLog(userID, id uint) error {
	return config.DB.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.FoodLog{}).Error
}

// RemoveLogs deletes each removal candidate: by id when known, otherwise by
// (item name, meal type, day window). Returns the number of rows deleted.
func RemoveLogs(userID uint, day time.Time, items []RemoveItem) (int64, error) {
	start, end := utils.DayWindow(day)
	var deleted int64

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			var res *gorm.DB
			if it.ID != nil {
				res = tx.Where("id = ? AND user_id = ?", *it.ID, userID).
					Delete(&models.FoodLog{})
			} else {
				q := tx.Where("user_id = ? AND item = ?", userID, it.Item).
					Where("logged_at >= ? AND logged_at < ?", start, end)
				if it.MealType != nil {
					q = q.Where("meal_type = ?", *it.MealType)
				}
				res = q.Delete(&models.FoodLog{})
			}
			if res.Error != nil {
				return res.Error
			}
			deleted += res.RowsAffected
		}
		return nil
	})
	return deleted, err
}
